package network

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/chaincfg"
)

// RPCClient is a JSON-RPC 1.0 client for communicating with a Bitcoin node.
// It handles request serialization, authentication, and response parsing.
// All typed node operations are built on top of the Call method.
type RPCClient struct {
	url    string
	user   string
	pass   string
	params *chaincfg.Params
	client *http.Client
	nextID *atomic.Int64
}

// rpcRequest represents a JSON-RPC 1.0 request payload.
type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int64         `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

// rpcResponse represents a JSON-RPC 1.0 response payload.
type rpcResponse struct {
	ID     int64             `json:"id"`
	Result json.RawMessage   `json:"result"`
	Error  *btcjson.RPCError `json:"error"`
}

// NewRPCClient creates a new JSON-RPC client with the given configuration.
// The client uses HTTP Basic Auth when User is non-empty, and maintains
// a connection pool for efficient reuse.
//
// Addresses passed to the client are checked against cfg.Network; an unknown
// or empty network name falls back to regtest.
func NewRPCClient(cfg RPCConfig) *RPCClient {
	params, err := GetNetwork(cfg.Network)
	if err != nil {
		params = &chaincfg.RegressionNetParams
	}
	c := &RPCClient{
		url:    cfg.URL,
		user:   cfg.User,
		pass:   cfg.Password,
		params: params,
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				MaxIdleConnsPerHost: 10,
			},
		},
		nextID: new(atomic.Int64),
	}
	if cfg.Wallet != "" {
		c.url = walletURL(cfg.URL, cfg.Wallet)
	}
	return c
}

// walletURL returns the wallet-scoped endpoint for base.
func walletURL(base, wallet string) string {
	return strings.TrimRight(base, "/") + "/wallet/" + url.PathEscape(wallet)
}

// Wallet returns a client bound to the named wallet's endpoint path. The
// returned client shares the HTTP transport and request ID sequence.
func (c *RPCClient) Wallet(name string) NodeService {
	return c.forWallet(name)
}

func (c *RPCClient) forWallet(name string) *RPCClient {
	base := c.url
	if i := strings.Index(base, "/wallet/"); i >= 0 {
		base = base[:i]
	}
	w := *c
	w.url = walletURL(base, name)
	return &w
}

// URL returns the endpoint the client posts to.
func (c *RPCClient) URL() string { return c.url }

// Params returns the network the client checks addresses against.
func (c *RPCClient) Params() *chaincfg.Params { return c.params }

// Call invokes a JSON-RPC method on the node. It serializes the request,
// sends it with optional Basic Auth, and deserializes the response into result.
//
// If params is nil, an empty params array is sent. If result is nil, the
// response result is discarded.
//
// Call returns ErrConnectionFailed if the HTTP request fails or the node
// answers with a non-JSON error status, the context's error if ctx ends before
// the node answers, and ErrInvalidResponse if the response
// cannot be decoded. Error objects returned by the node (e.g., -5 "No such
// mempool transaction") are returned as *RemoteError.
func (c *RPCClient) Call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	if params == nil {
		params = []interface{}{}
	}
	reqBody := rpcRequest{
		JSONRPC: "1.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("network: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("network: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.user != "" {
		req.SetBasicAuth(c.user, c.pass)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		// A canceled or expired context is the caller's doing, not the node's.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("network: %s: %w", method, ctxErr)
		}
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: %w: HTTP %d", ErrConnectionFailed, ErrAuthFailed, resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %w", ErrConnectionFailed, err)
	}

	// Bitcoin Core reports RPC errors with a 4xx/5xx status and a JSON body,
	// so the body is decoded before the status is judged.
	var rpcResp rpcResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("%w: HTTP %d: %s", ErrConnectionFailed, resp.StatusCode, truncate(respBody, 1024))
		}
		return fmt.Errorf("%w: decode response: %w", ErrInvalidResponse, err)
	}

	if rpcResp.Error != nil {
		return &RemoteError{Code: rpcResp.Error.Code, Message: rpcResp.Error.Message}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: HTTP %d: %s", ErrConnectionFailed, resp.StatusCode, truncate(respBody, 1024))
	}

	if rpcResp.ID != reqBody.ID {
		return fmt.Errorf("%w: response ID mismatch: expected %d, got %d",
			ErrInvalidResponse, reqBody.ID, rpcResp.ID)
	}

	if result != nil && rpcResp.Result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("%w: unmarshal result: %w", ErrInvalidResponse, err)
		}
	}

	return nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
