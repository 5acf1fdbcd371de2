// Package indexer provides access to an Etherscan-compatible chain
// indexer API: transaction history, token transfers, contract metadata.
package indexer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ethyr-engine/internal/domain"
)

// DefaultTimeout bounds one indexer HTTP request.
const DefaultTimeout = 30 * time.Second

// Client talks to an Etherscan-compatible HTTP API.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	observe func(action string, d time.Duration)
}

// Option configures Client.
type Option func(*Client)

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithCallObserver registers a callback invoked after every API request
// with the action name and duration.
func WithCallObserver(fn func(action string, d time.Duration)) Option {
	return func(c *Client) {
		c.observe = fn
	}
}

// NewClient creates a new indexer client.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the common response wrapper. Result stays raw because its
// shape depends on the action.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// get performs one API request and decodes the result payload.
// A status "0" with a no-data message maps to domain.ErrNotFound.
func (c *Client) get(ctx context.Context, params url.Values, result interface{}) error {
	if c.observe != nil {
		start := time.Now()
		action := params.Get("action")
		defer func() {
			c.observe(action, time.Since(start))
		}()
	}

	if c.apiKey != "" {
		params.Set("apikey", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: http request: %v", domain.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", domain.ErrFetchFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status %d", domain.ErrFetchFailed, resp.StatusCode)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("%w: unmarshal envelope: %v", domain.ErrParseFailed, err)
	}

	if env.Status == "0" {
		if isNoData(env.Message) {
			return fmt.Errorf("%w: %s", domain.ErrNotFound, env.Message)
		}
		// Some actions report their error text in result
		var detail string
		json.Unmarshal(env.Result, &detail)
		if detail == "" {
			detail = env.Message
		}
		return fmt.Errorf("%w: indexer: %s", domain.ErrFetchFailed, detail)
	}

	if err := json.Unmarshal(env.Result, result); err != nil {
		return fmt.Errorf("%w: unmarshal result: %v", domain.ErrParseFailed, err)
	}
	return nil
}

// isNoData reports whether an error message means "valid query, nothing
// recorded" rather than a failure.
func isNoData(message string) bool {
	m := strings.ToLower(message)
	return strings.Contains(m, "no transactions found") ||
		strings.Contains(m, "no records found") ||
		strings.Contains(m, "no data found")
}

// ListOpts narrows a transaction or transfer listing.
type ListOpts struct {
	StartBlock int64
	EndBlock   int64
	Page       int
	Offset     int
	Sort       string // "asc" or "desc"
}

func (o ListOpts) apply(params url.Values) {
	params.Set("startblock", strconv.FormatInt(o.StartBlock, 10))
	if o.EndBlock > 0 {
		params.Set("endblock", strconv.FormatInt(o.EndBlock, 10))
	} else {
		params.Set("endblock", "99999999")
	}
	if o.Page > 0 {
		params.Set("page", strconv.Itoa(o.Page))
	}
	if o.Offset > 0 {
		params.Set("offset", strconv.Itoa(o.Offset))
	}
	if o.Sort != "" {
		params.Set("sort", o.Sort)
	}
}

// TransactionList returns normal transactions involving address.
// A valid address with no history yields an empty slice.
func (c *Client) TransactionList(ctx context.Context, address string, opts ListOpts) ([]Transaction, error) {
	params := url.Values{}
	params.Set("module", "account")
	params.Set("action", "txlist")
	params.Set("address", address)
	opts.apply(params)

	var txs []Transaction
	if err := c.get(ctx, params, &txs); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return txs, nil
}

// InternalTransactionList returns internal (message call) transactions
// involving address.
func (c *Client) InternalTransactionList(ctx context.Context, address string, opts ListOpts) ([]Transaction, error) {
	params := url.Values{}
	params.Set("module", "account")
	params.Set("action", "txlistinternal")
	params.Set("address", address)
	opts.apply(params)

	var txs []Transaction
	if err := c.get(ctx, params, &txs); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return txs, nil
}

// TokenTransferList returns ERC-20 transfer events involving address.
func (c *Client) TokenTransferList(ctx context.Context, address string, opts ListOpts) ([]TokenTransfer, error) {
	params := url.Values{}
	params.Set("module", "account")
	params.Set("action", "tokentx")
	params.Set("address", address)
	opts.apply(params)

	var transfers []TokenTransfer
	if err := c.get(ctx, params, &transfers); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return transfers, nil
}

// ContractSource returns the verified source record for address.
// Unverified contracts still return a record; Verified() reports the
// distinction.
func (c *Client) ContractSource(ctx context.Context, address string) (*ContractSource, error) {
	params := url.Values{}
	params.Set("module", "contract")
	params.Set("action", "getsourcecode")
	params.Set("address", address)

	var records []ContractSource
	if err := c.get(ctx, params, &records); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no source record for %s", domain.ErrNotFound, address)
	}

	record := records[0]
	if record.ContractAddress == "" {
		record.ContractAddress = address
	}
	return &record, nil
}

// ContractCreation returns deployment records for up to five addresses.
func (c *Client) ContractCreation(ctx context.Context, addresses ...string) ([]ContractCreation, error) {
	params := url.Values{}
	params.Set("module", "contract")
	params.Set("action", "getcontractcreation")
	params.Set("contractaddresses", strings.Join(addresses, ","))

	var records []ContractCreation
	if err := c.get(ctx, params, &records); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return records, nil
}

// EthPrice returns the current ETH/USD rate.
func (c *Client) EthPrice(ctx context.Context) (float64, error) {
	params := url.Values{}
	params.Set("module", "stats")
	params.Set("action", "ethprice")

	var result struct {
		EthUSD string `json:"ethusd"`
	}
	if err := c.get(ctx, params, &result); err != nil {
		return 0, err
	}

	price, err := strconv.ParseFloat(result.EthUSD, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: ethusd %q: %v", domain.ErrParseFailed, result.EthUSD, err)
	}
	return price, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
