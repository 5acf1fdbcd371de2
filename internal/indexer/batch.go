package indexer

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"ethyr-engine/internal/domain"
)

// batchChunkSize caps concurrent source lookups to stay inside provider
// rate limits.
const batchChunkSize = 5

// BatchContractSources resolves verification records for many addresses,
// fetched in concurrent chunks of five. The result map is keyed by
// lowercased address and only holds contracts that have a name on record.
// A failed lookup fails the whole batch.
func (c *Client) BatchContractSources(ctx context.Context, addresses []string) (map[string]ContractSource, error) {
	out := make(map[string]ContractSource)
	if len(addresses) == 0 {
		return out, nil
	}

	var mu sync.Mutex

	for start := 0; start < len(addresses); start += batchChunkSize {
		end := start + batchChunkSize
		if end > len(addresses) {
			end = len(addresses)
		}

		g, gctx := errgroup.WithContext(ctx)
		for _, addr := range addresses[start:end] {
			g.Go(func() error {
				source, err := c.ContractSource(gctx, addr)
				if err != nil {
					if isNotFound(err) {
						return nil
					}
					return err
				}
				if source.ContractName == "" {
					return nil
				}

				mu.Lock()
				out[domain.AddressKey(source.ContractAddress)] = *source
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	return out, nil
}
