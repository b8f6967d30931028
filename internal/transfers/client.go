package transfers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"conversion-insight/internal/domain"
	"conversion-insight/internal/observability"
)

// Default configuration values.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
	DefaultMaxPages    = 10
	defaultPageSize    = "0x3e8" // 1000 per page
)

// defaultCategories covers token transfers relevant to stablecoin
// conversion tracking.
var defaultCategories = []string{"erc20", "external"}

// Client fetches asset transfers over HTTP JSON-RPC 2.0.
type Client struct {
	endpoint    string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
	maxPages    int
	metrics     *observability.Metrics
	requestID   atomic.Uint64
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		c.retryDelay = d
	}
}

// WithMaxPages caps the number of result pages fetched per wallet.
func WithMaxPages(n int) ClientOption {
	return func(c *Client) {
		c.maxPages = n
	}
}

// WithMetrics records fetch counters and latency.
func WithMetrics(m *observability.Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates a new transfer API client.
func NewClient(endpoint string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint:    endpoint,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
		maxPages:    DefaultMaxPages,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchParams bounds one transfer history fetch.
type FetchParams struct {
	// FromBlock and ToBlock are hex block bounds; empty means the API
	// default ("0x0" and "latest").
	FromBlock string
	ToBlock   string
	// Categories overrides the default transfer categories.
	Categories []string
}

// FetchOutbound retrieves the outbound transfer history for a wallet,
// following result pages until exhausted or the page cap is hit.
func (c *Client) FetchOutbound(ctx context.Context, wallet string, params FetchParams) ([]domain.RawTransfer, error) {
	categories := params.Categories
	if len(categories) == 0 {
		categories = defaultCategories
	}

	var (
		transfers []domain.RawTransfer
		pageKey   string
	)
	started := time.Now()

	for page := 0; page < c.maxPages; page++ {
		result, err := c.getAssetTransfers(ctx, assetTransfersParams{
			FromBlock:    params.FromBlock,
			ToBlock:      params.ToBlock,
			FromAddress:  wallet,
			Category:     categories,
			WithMetadata: true,
			MaxCount:     defaultPageSize,
			PageKey:      pageKey,
		})
		if err != nil {
			if c.metrics != nil {
				c.metrics.TransferFetchErrors.Inc()
			}
			return nil, err
		}

		for _, t := range result.Transfers {
			transfers = append(transfers, toRawTransfer(t))
		}

		if result.PageKey == "" {
			break
		}
		pageKey = result.PageKey
	}

	if c.metrics != nil {
		c.metrics.TransfersFetched.Add(float64(len(transfers)))
		c.metrics.TransferFetchLatency.Observe(time.Since(started).Seconds())
	}
	return transfers, nil
}

// getAssetTransfers performs one alchemy_getAssetTransfers call with
// retries.
func (c *Client) getAssetTransfers(ctx context.Context, params assetTransfersParams) (*assetTransfersResult, error) {
	raw, err := c.call(ctx, "alchemy_getAssetTransfers", []any{params})
	if err != nil {
		return nil, err
	}

	var result assetTransfersResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode asset transfers result: %w", err)
	}
	return &result, nil
}

// call executes a JSON-RPC request with exponential backoff retries.
// Context cancellation aborts between attempts.
func (c *Client) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      c.requestID.Add(1),
		Method:  method,
		Params:  params,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal rpc request: %w", err)
	}

	delay := c.retryDelay
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		raw, err := c.doRequest(ctx, body)
		if err == nil {
			return raw, nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("%s failed after %d attempts: %w", method, c.maxRetries+1, lastErr)
}

// doRequest performs a single HTTP round trip.
func (c *Client) doRequest(ctx context.Context, body []byte) (json.RawMessage, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, fmt.Errorf("decode rpc response: %w", err)
	}
	if rpcResp.Error != nil {
		return nil, fmt.Errorf("rpc error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}
	return rpcResp.Result, nil
}

// lowerHex normalizes a hex address for map keys and comparisons.
func lowerHex(addr string) string {
	return strings.ToLower(addr)
}

// toRawTransfer maps a wire-format transfer to the domain type.
func toRawTransfer(t assetTransfer) domain.RawTransfer {
	raw := domain.RawTransfer{
		BlockNum: t.BlockNum,
		Hash:     t.Hash,
		From:     t.From,
		To:       t.To,
		Value:    t.Value,
		Asset:    t.Asset,
		Category: t.Category,
		RawContract: domain.RawContract{
			Address: t.RawContract.Address,
			Decimal: t.RawContract.Decimal,
		},
	}
	if t.Metadata.BlockTimestamp != "" {
		ts := t.Metadata.BlockTimestamp
		raw.Timestamp = &ts
	}
	return raw
}
