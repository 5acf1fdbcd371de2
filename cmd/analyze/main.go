// Package main runs one address analysis and prints the report as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"ethyr-engine/internal/blocktime"
	"ethyr-engine/internal/dex"
	"ethyr-engine/internal/domain"
	"ethyr-engine/internal/ethereum"
	"ethyr-engine/internal/holders"
	"ethyr-engine/internal/indexer"
	"ethyr-engine/internal/orchestrator"
	"ethyr-engine/internal/profile"
	"ethyr-engine/internal/registry"
	"ethyr-engine/internal/risk"
)

func main() {
	// Load .env file if exists
	godotenv.Load()

	// Parse flags (env vars as defaults)
	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("ETH_RPC_ENDPOINT"), "Ethereum RPC endpoint (http(s):// or ws(s)://)")
	indexerURL := flag.String("indexer-url", envOrDefault("INDEXER_URL", "https://api.etherscan.io/api"), "Indexer API base URL")
	indexerKey := flag.String("indexer-key", os.Getenv("INDEXER_API_KEY"), "Indexer API key")
	registryDSN := flag.String("registry-dsn", os.Getenv("REGISTRY_DSN"), "PostgreSQL connection string for the protocol registry")
	registryFile := flag.String("registry-file", os.Getenv("REGISTRY_FILE"), "JSON file with the protocol registry")
	strategy := flag.String("strategy", "engine", "Scoring strategy: engine (weighted with combinations) or additive")
	timeout := flag.Duration("analysis-timeout", orchestrator.DefaultTimeout, "Per-analysis timeout")
	verbose := flag.Bool("verbose", false, "Verbose component logging")

	flag.Parse()

	address := flag.Arg(0)
	if address == "" {
		fmt.Fprintln(os.Stderr, "Usage: analyze [flags] <address>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	// Validate required flags
	if *rpcEndpoint == "" {
		fatal("--rpc-endpoint is required")
	}
	if *indexerKey == "" {
		fatal("--indexer-key is required")
	}

	scorer, err := createScorer(*strategy)
	if err != nil {
		fatal("%v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	chain, cleanup, err := createChainClient(ctx, *rpcEndpoint)
	if err != nil {
		fatal("Failed to create chain client: %v", err)
	}
	defer cleanup()

	reg, err := loadRegistry(ctx, *registryDSN, *registryFile)
	if err != nil {
		fatal("Failed to load protocol registry: %v", err)
	}

	index := indexer.NewClient(*indexerURL, *indexerKey)
	blocks := blocktime.New(chain, blocktime.Options{})

	orch := orchestrator.New(orchestrator.Options{
		Chain: chain,
		Contracts: profile.NewContractProfiler(profile.ContractProfilerOptions{
			Chain:    chain,
			Source:   index,
			Registry: reg,
			Verbose:  *verbose,
		}),
		Wallets: profile.NewWalletProfiler(profile.WalletProfilerOptions{
			Chain:    chain,
			Source:   index,
			Registry: reg,
			Verbose:  *verbose,
		}),
		Oracle: dex.NewOracle(dex.OracleOptions{
			Chain:   chain,
			Market:  index,
			Blocks:  blocks,
			Verbose: *verbose,
		}),
		Holders: holders.NewAnalyzer(index, blocks, reg),
		Scorer:  scorer,
		Timeout: *timeout,
		Verbose: *verbose,
	})

	report, err := orch.Analyze(ctx, address)
	if err != nil && !errors.Is(err, domain.ErrInvalidInput) {
		fmt.Fprintf(os.Stderr, "Warning: analysis incomplete: %v\n", err)
	}

	out, merr := json.MarshalIndent(report, "", "  ")
	if merr != nil {
		fatal("Failed to encode report: %v", merr)
	}
	fmt.Println(string(out))

	if err != nil {
		os.Exit(1)
	}
}

// createScorer selects the scoring strategy by name.
func createScorer(name string) (orchestrator.Scorer, error) {
	switch name {
	case "engine":
		return risk.NewEngine(), nil
	case "additive":
		return risk.NewAdditiveStrategy(), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (want engine or additive)", name)
	}
}

// createChainClient connects to the RPC endpoint. WebSocket endpoints
// get the reconnecting client; everything else goes over HTTP.
func createChainClient(ctx context.Context, endpoint string) (ethereum.Client, func(), error) {
	if strings.HasPrefix(endpoint, "ws://") || strings.HasPrefix(endpoint, "wss://") {
		ws, err := ethereum.NewWSClient(ctx, endpoint, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("connect websocket client: %w", err)
		}
		return ws, func() { ws.Close() }, nil
	}
	return ethereum.NewHTTPClient(endpoint), func() {}, nil
}

// loadRegistry resolves the protocol registry: PostgreSQL when a DSN is
// given, a JSON file when a path is given, the built-in set otherwise.
func loadRegistry(ctx context.Context, dsn, file string) (*registry.Registry, error) {
	if dsn != "" {
		pool, err := registry.NewPool(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		defer pool.Close()
		return registry.LoadPostgres(ctx, pool)
	}
	if file != "" {
		return registry.LoadFile(file)
	}
	return registry.Default(), nil
}

// envOrDefault returns the env var value or a default for non-secret
// settings.
func envOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
