package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"donation-widget/internal/models"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// CallError is a JSON-RPC error object returned by the node
type CallError struct {
	Code    int
	Message string
}

func (e *CallError) Error() string {
	return fmt.Sprintf("RPC error: %d - %s", e.Code, e.Message)
}

// Client provides a standardized RPC client with rate limiting, retries, and structured logging
type Client struct {
	ChainID     models.ChainID
	Endpoint    string
	ApiKey      string
	RateLimiter *rate.Limiter
	MaxRetries  int
	RetryDelay  time.Duration
	HTTPTimeout time.Duration
	Logger      *zerolog.Logger
	HTTPClient  *http.Client
}

// NewClient creates a new RPC client with the given configuration
func NewClient(chainID models.ChainID, endpoint, apiKey string, rateLimit float64, maxRetries int, retryDelay, httpTimeout time.Duration, logger *zerolog.Logger) *Client {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Client{
		ChainID:     chainID,
		Endpoint:    endpoint,
		ApiKey:      apiKey,
		RateLimiter: rate.NewLimiter(rate.Limit(rateLimit), 1),
		MaxRetries:  maxRetries,
		RetryDelay:  retryDelay,
		HTTPTimeout: httpTimeout,
		Logger:      logger,
		HTTPClient: &http.Client{
			Timeout: httpTimeout,
			Transport: &CustomTransport{
				Base:   http.DefaultTransport,
				ApiKey: apiKey,
			},
		},
	}
}

// CustomTransport adds API key authentication to HTTP requests
type CustomTransport struct {
	Base   http.RoundTripper
	ApiKey string
}

func (t *CustomTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("Content-Type", "application/json")
	if t.ApiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.ApiKey)
	}
	return t.Base.RoundTrip(req)
}

// Call performs a read-only RPC call with rate limiting and retries
func (c *Client) Call(ctx context.Context, method string, params []interface{}) (*models.RPCResponse, error) {
	var response *models.RPCResponse
	err := c.retry(ctx, func() error {
		var err error
		response, err = c.CallOnce(ctx, method, params)
		return err
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// CallOnce performs a single RPC attempt. Calls with side effects must use it.
func (c *Client) CallOnce(ctx context.Context, method string, params []interface{}) (*models.RPCResponse, error) {
	c.Logger.Debug().
		Str("endpoint", c.Endpoint).
		Str("method", method).
		Interface("params", params).
		Msg("Making RPC call")

	if err := c.RateLimiter.Wait(ctx); err != nil {
		c.Logger.Error().Err(err).Msg("Rate limit error")
		return nil, fmt.Errorf("rate limit error: %w", err)
	}

	if params == nil {
		params = []interface{}{}
	}
	payload, err := json.Marshal(models.RPCRequest{
		Jsonrpc: "2.0",
		ID:      "1",
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.logFailure(err, method, params)
		return nil, err
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("HTTP error: %d - %s", resp.StatusCode, resp.Status)
		c.logFailure(err, method, params)
		return nil, err
	}

	var response models.RPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if response.Error != nil {
		err := &CallError{Code: response.Error.Code, Message: response.Error.Message}
		c.logFailure(err, method, params)
		return nil, err
	}

	return &response, nil
}

func (c *Client) logFailure(err error, method string, params []interface{}) {
	c.Logger.Error().
		Err(err).
		Str("chain", c.ChainID.String()).
		Str("method", method).
		Interface("params", params).
		Msg("RPC call failed")
}

// GetChainID returns the chain this client is configured for
func (c *Client) GetChainID() models.ChainID {
	return c.ChainID
}

// GetBlockHead returns the latest block number
func (c *Client) GetBlockHead(ctx context.Context) (uint64, error) {
	result, err := c.Call(ctx, "eth_blockNumber", nil)
	if err != nil {
		return 0, err
	}

	var blockNumberHex string
	if err := json.Unmarshal(result.Result, &blockNumberHex); err != nil {
		c.Logger.Error().Err(err).Msg("Error parsing response")
		return 0, err
	}

	return hexutil.DecodeUint64(blockNumberHex)
}

// RemoteChainID asks the node which chain it serves
func (c *Client) RemoteChainID(ctx context.Context) (models.ChainID, error) {
	result, err := c.Call(ctx, "eth_chainId", nil)
	if err != nil {
		return 0, err
	}

	var idHex string
	if err := json.Unmarshal(result.Result, &idHex); err != nil {
		return 0, fmt.Errorf("failed to parse chain id: %w", err)
	}
	id, err := hexutil.DecodeUint64(idHex)
	if err != nil {
		return 0, fmt.Errorf("failed to parse chain id: %w", err)
	}
	return models.ChainID(id), nil
}

// retry executes a function with retry logic
func (c *Client) retry(ctx context.Context, fn func() error) error {
	var err error
	for i := 0; i < c.MaxRetries; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == c.MaxRetries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.RetryDelay):
		}
	}
	return err
}

// Close closes the HTTP client connections
func (c *Client) Close() {
	if c.HTTPClient != nil {
		c.HTTPClient.CloseIdleConnections()
	}
}
