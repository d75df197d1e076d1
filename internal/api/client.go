// Package api implements the HTTP client for the scan platform backend.
//
// A single configured Client wraps every call. Outgoing requests pass
// through an ordered list of request hooks (bearer token, locale,
// accept header); responses pass through response hooks, one of which
// implements the forced-logout side effect on 401.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/MikhailDrugie/se-attack-modeling/internal/apierr"
	"github.com/MikhailDrugie/se-attack-modeling/internal/creds"
)

// DefaultLocale is attached when no locale preference is stored.
const DefaultLocale = "en"

// RequestHook mutates an outgoing request before it is sent.
type RequestHook func(req *http.Request)

// ResponseHook observes a completed response. Hooks run in order for
// every response, successful or not.
type ResponseHook func(req *http.Request, resp *http.Response)

// Client handles all backend API interactions.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	creds creds.Store
	log   *slog.Logger

	requestHooks  []RequestHook
	responseHooks []ResponseHook

	// mu serializes the forced-logout check so that N concurrent 401s
	// clear the store and fire the callback exactly once.
	mu             sync.Mutex
	onUnauthorized func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.HTTPClient = hc }
}

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithTimeout sets the request timeout on the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.HTTPClient.Timeout = d }
}

// WithRequestHook appends an extra request hook after the defaults.
func WithRequestHook(h RequestHook) Option {
	return func(c *Client) { c.requestHooks = append(c.requestHooks, h) }
}

// NewClient creates a client rooted at baseURL. Credentials are read
// from (and cleared in) store; the store is the only shared state.
func NewClient(baseURL string, store creds.Store, opts ...Option) *Client {
	c := &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		creds: store,
		log:   slog.Default(),
	}
	c.requestHooks = []RequestHook{c.attachBearer, c.attachLocale, attachAccept}
	c.responseHooks = []ResponseHook{c.handleUnauthorized}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnUnauthorized registers the forced-logout callback. It fires at most
// once per credential, after the store has been cleared, and never for
// the login endpoint itself.
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

// attachBearer adds the Authorization header when a token is present.
// An absent token means the header is omitted entirely; an empty bearer
// value is never sent.
func (c *Client) attachBearer(req *http.Request) {
	if tok := c.creds.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
}

// attachLocale adds the Accept-Language header from the stored locale
// preference, falling back to the default.
func (c *Client) attachLocale(req *http.Request) {
	locale := c.creds.Locale()
	if locale == "" {
		locale = DefaultLocale
	}
	req.Header.Set("Accept-Language", locale)
}

func attachAccept(req *http.Request) {
	req.Header.Set("Accept", "application/json")
}

// handleUnauthorized implements the forced-logout side effect. The
// request's own bearer token is compared against the store under the
// client mutex: only the first 401 carrying the still-current token
// clears the store and fires the callback, so concurrent failures
// cannot double-redirect. The error itself still reaches the caller.
func (c *Client) handleUnauthorized(req *http.Request, resp *http.Response) {
	if resp.StatusCode != http.StatusUnauthorized {
		return
	}
	sent := strings.TrimPrefix(req.Header.Get("Authorization"), "Bearer ")
	if sent == "" {
		return
	}

	c.mu.Lock()
	var cb func()
	if c.creds.Token() == sent {
		if err := c.creds.Clear(); err != nil {
			c.log.Error("clearing credentials after 401", "error", err)
		}
		cb = c.onUnauthorized
	}
	c.mu.Unlock()

	if cb != nil {
		c.log.Debug("session expired, forcing logout", "path", req.URL.Path)
		cb()
	}
}

// do builds, decorates, executes and post-processes a request. A JSON
// body is marshalled when body is non-nil; the response body is decoded
// into out when out is non-nil and the status is 2xx.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return err
	}
	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// send executes the request and runs both hook pipelines. Callers own
// the response body.
func (c *Client) send(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		buf = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, hook := range c.requestHooks {
		hook(req)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	for _, hook := range c.responseHooks {
		hook(req, resp)
	}
	return resp, nil
}

// checkStatus maps non-2xx responses to the error taxonomy. The caller
// keeps responsibility for closing the body.
func (c *Client) checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	msg := decodeDetail(resp.Body)
	apiErr := apierr.New(resp.StatusCode, msg)
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %w", apierr.ErrSessionExpired, apiErr)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %w", apierr.ErrForbidden, apiErr)
	default:
		return apiErr
	}
}

func decodeJSON(r io.Reader, out any) error {
	if err := json.NewDecoder(r).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeDetail extracts the backend's {"detail": "..."} message, if any.
func decodeDetail(r io.Reader) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 64<<10)).Decode(&payload); err != nil {
		return ""
	}
	return payload.Detail
}
