// Package api implements the authenticated access layer for the condominium
// backend: a single HTTP client that stamps every request with the current
// bearer token and transparently recovers from access-token expiry with one
// coordinated refresh and one replay.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/condovista/condoctl/session"
)

const contentTypeJSON = "application/json"

// Client performs HTTP calls against the backend with implicit bearer
// authentication. One shared instance serves every domain call site; the
// domain packages only know this generic request surface.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      session.Store
	logger     zerolog.Logger
	refresher  *refresher
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (timeouts, transports,
// test doubles).
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger attaches a structured logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New builds a client for the given base URL, backed by the given session
// store.
func New(baseURL string, store session.Store, options ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("[api.New] base URL is required")
	}
	if store == nil {
		return nil, errors.New("[api.New] session store is required")
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		store:      store,
		logger:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	c.refresher = newRefresher(c.baseURL, c.httpClient, c.store)

	return c, nil
}

// Store exposes the session store backing this client, for callers that need
// the authentication gate or the identity-change subscription.
func (c *Client) Store() session.Store {
	return c.store
}

// Get issues an authenticated GET and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, params, "", nil, out, true)
}

// Post issues an authenticated POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "[Client.Post] marshal body")
	}
	return c.do(ctx, http.MethodPost, path, nil, contentTypeJSON, raw, out, true)
}

// Put issues an authenticated PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "[Client.Put] marshal body")
	}
	return c.do(ctx, http.MethodPut, path, nil, contentTypeJSON, raw, out, true)
}

// Delete issues an authenticated DELETE.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, "", nil, nil, true)
}

// PostRaw issues an authenticated POST with a prebuilt body, for payloads
// that are not JSON (multipart uploads).
func (c *Client) PostRaw(ctx context.Context, path, contentType string, body []byte, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, contentType, body, out, true)
}

// PutRaw issues an authenticated PUT with a prebuilt body.
func (c *Client) PutRaw(ctx context.Context, path, contentType string, body []byte, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, contentType, body, out, true)
}

// do runs the explicit request pipeline: stamp request ID, attach bearer
// token, send, and, when retryOn401 is set, recover a single 401 with one
// coordinated refresh and one replay. A request that fails again after the
// replay is terminal. Bodies are buffered up front so the replay is always
// possible.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, contentType string, body []byte, out any, retryOn401 bool) error {
	requestID := uuid.New().String()

	resp, raw, err := c.send(ctx, method, path, params, contentType, body, requestID, "")
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && retryOn401 {
		access, refreshErr := c.refresher.refresh(ctx)
		if refreshErr != nil {
			c.logger.Warn().
				Err(refreshErr).
				Str("request_id", requestID).
				Msg("token refresh failed, clearing session")
			if clearErr := c.store.Clear(); clearErr != nil {
				c.logger.Err(clearErr).Msg("failed to clear session")
			}
			// The caller sees the original authorization failure, not a
			// distinct refresh error.
			return &Error{StatusCode: resp.StatusCode, Body: raw, RequestID: requestID}
		}

		resp, raw, err = c.send(ctx, method, path, params, contentType, body, requestID, access)
		if err != nil {
			return err
		}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &Error{StatusCode: resp.StatusCode, Body: raw, RequestID: requestID}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return errors.Wrap(err, "[Client.do] decode response")
		}
	}
	return nil
}

// send performs one network round trip. overrideToken forces the bearer
// credential for the post-refresh replay; otherwise the current store value
// is attached when present.
func (c *Client) send(ctx context.Context, method, path string, params url.Values, contentType string, body []byte, requestID, overrideToken string) (*http.Response, []byte, error) {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, nil, errors.Wrap(err, "[Client.send] build request")
	}

	req.Header.Set("X-Request-ID", requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	token := overrideToken
	if token == "" {
		if access, ok := c.store.AccessToken(); ok {
			token = access
		}
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "[Client.send] %s %s", method, path)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, errors.Wrap(err, "[Client.send] read response body")
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Msg("request completed")

	return resp, raw, nil
}
