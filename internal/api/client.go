// Package api centralizes outbound request shaping and inbound error
// normalization for the Sellora backend. Every other store assumes the
// contract established here: bearer and tenant headers attached when
// cached, non-2xx responses reduced to a single Error shape, and exactly
// one authority for the 401 logout policy.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sellora/client-go/config"
	"github.com/sellora/client-go/internal/storage"
	"github.com/sellora/client-go/pkg/logger"
)

// Page carries the pagination fields every list endpoint returns.
type Page struct {
	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`
}

// Client talks to the Sellora backend API.
type Client struct {
	baseURL      string
	tenantHeader string
	httpClient   *http.Client
	kv           storage.KV

	// onUnauthorized runs after a 401 has cleared the identity keys.
	// The session store registers here; nothing else decides logout policy.
	onUnauthorized func()
}

// NewClient creates a backend API client reading token and tenant
// identifiers through kv.
func NewClient(cfg config.APIConfig, tenantCfg config.TenantConfig, kv storage.KV) *Client {
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		tenantHeader: tenantCfg.Header,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		kv: kv,
	}
}

// OnUnauthorized registers the hook invoked once per 401 response.
func (c *Client) OnUnauthorized(fn func()) {
	c.onUnauthorized = fn
}

type requestOptions struct {
	skipAuthPolicy bool
}

// RequestOption adjusts per-request behavior.
type RequestOption func(*requestOptions)

// SkipAuthPolicy suppresses the global 401 handling for one request.
// The login call uses it: a 401 there means bad credentials, not an
// expired session.
func SkipAuthPolicy() RequestOption {
	return func(o *requestOptions) { o.skipAuthPolicy = true }
}

// Get performs a GET request and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out interface{}, opts ...RequestOption) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out, opts...)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out interface{}, opts ...RequestOption) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out, opts...)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out interface{}, opts ...RequestOption) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out, opts...)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, opts ...RequestOption) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil, opts...)
}

// PostWithHeaders performs a POST with extra headers (idempotency keys).
func (c *Client) PostWithHeaders(ctx context.Context, path string, headers map[string]string, body, out interface{}, opts ...RequestOption) error {
	return c.doWithHeaders(ctx, http.MethodPost, path, nil, headers, body, out, opts...)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}, opts ...RequestOption) error {
	return c.doWithHeaders(ctx, method, path, query, nil, body, out, opts...)
}

func (c *Client) doWithHeaders(ctx context.Context, method, path string, query url.Values, headers map[string]string, body, out interface{}, opts ...RequestOption) error {
	options := requestOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	// Attach the bearer token and tenant header when cached.
	if token, ok, _ := c.kv.Get(ctx, storage.KeyToken); ok && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if storeID, ok, _ := c.kv.Get(ctx, storage.KeyStoreID); ok && storeID != "" {
		req.Header.Set(c.tenantHeader, storeID)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn("Request transport failure", map[string]interface{}{
			"method": method,
			"path":   path,
			"error":  err.Error(),
		})
		return &Error{Status: 0, Message: GenericMessage}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Status: 0, Message: GenericMessage}
	}

	logger.Debug("Request completed", map[string]interface{}{
		"method":   method,
		"path":     path,
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	})

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := c.normalizeError(resp.StatusCode, raw)
		if apiErr.IsAuth() && !options.skipAuthPolicy {
			c.handleUnauthorized()
		}
		return apiErr
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return nil
}

// normalizeError reduces a non-2xx response to the uniform Error shape,
// falling back to a generic message when the body carries none.
func (c *Client) normalizeError(status int, raw []byte) *Error {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	msg := GenericMessage
	code := ""
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			msg = body.Message
		}
		code = body.Error
	}
	return &Error{Status: status, Code: code, Message: msg}
}

// handleUnauthorized is the single authority for session invalidation:
// it clears every cached identity key exactly once and notifies the
// registered hook so the session store can transition state.
func (c *Client) handleUnauthorized() {
	logger.Warn("Received 401, clearing cached identity", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.kv.Delete(ctx, storage.IdentityKeys...); err != nil {
		logger.Error("Failed to clear identity keys", err, nil)
	}

	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}
}
