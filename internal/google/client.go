package google

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/workspace-go/internal/logger"
)

// Request describes one logical API call fed to the pipeline.
type Request struct {
	// Method is the HTTP method. Defaults to GET.
	Method string
	// Path is joined onto the client's base URL. Must start with "/".
	Path string
	// Query holds URL query parameters.
	Query url.Values
	// Header holds caller-supplied headers. They are layered onto the
	// defaults and may override them.
	Header http.Header
	// Body, when non-nil, is JSON-encoded as the request body.
	Body any
	// Dest, when non-nil, receives the JSON-decoded response body.
	Dest any
	// Raw disables JSON decoding; the response body is returned as-is
	// through RawBody. Used for binary downloads and exports.
	Raw bool
	// RawBody receives the raw response body when Raw is set.
	RawBody *[]byte
}

// Client is the shared request pipeline every Workspace API call flows
// through: rate limit gate, bearer auth, transport, error classification,
// bounded retry and a single transparent token refresh.
type Client struct {
	service    ServiceType
	baseURL    string
	httpClient *http.Client
	limiter    *RateLimiter
	refresh    RefreshFunc
	maxRetries int

	// The credential cell. The client is the only writer: either the
	// constructor or the refresh path via SetAccessToken.
	mu          sync.RWMutex
	accessToken string
}

// NewClient builds the base client for a service. The rate limit profile is
// the service default merged with any partial override from cfg; the
// limiter is owned exclusively by this client.
func NewClient(service ServiceType, baseURL string, cfg ClientConfig) *Client {
	if cfg.BaseURL != "" {
		baseURL = cfg.BaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}

	limiter := NewRateLimiter(service, cfg.RateLimit)
	if cfg.Backoff != nil {
		limiter.SetBackoffPolicy(*cfg.Backoff)
	}

	return &Client{
		service:     service,
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  httpClient,
		limiter:     limiter,
		refresh:     cfg.Refresh,
		maxRetries:  maxRetries,
		accessToken: cfg.AccessToken,
	}
}

// Service returns the service this client is bound to.
func (c *Client) Service() ServiceType {
	return c.service
}

// Stats returns a read-only snapshot of the client's rate limiter.
func (c *Client) Stats() Stats {
	return c.limiter.Stats()
}

// SetAccessToken replaces the held credential. The client itself calls this
// on refresh; callers may use it when the authentication subsystem rotates
// tokens out of band.
func (c *Client) SetAccessToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = token
}

// AccessToken returns the currently held credential.
func (c *Client) AccessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

// Do executes one logical request through the full pipeline.
//
// The retry/refresh logic is an explicit bounded loop: a 401 gets exactly
// one refresh when a Refresh callback is configured, and a second
// consecutive 401 after that refresh is terminal. Rate-limited and 5xx
// responses are retried up to maxRetries with exponential backoff, each
// retry re-acquiring a rate limit token. Refreshes do not consume the
// retry budget.
func (c *Client) Do(ctx context.Context, r Request) error {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	var payload []byte
	if r.Body != nil {
		var err error
		payload, err = json.Marshal(r.Body)
		if err != nil {
			return fmt.Errorf("%s: encode request body: %w", c.service, err)
		}
	}

	// The correlation ID only ever appears in verbose diagnostics.
	var reqID string
	if logger.IsVerbose() {
		reqID = uuid.NewString()[:8]
	}
	retries := 0
	refreshed := false

	for {
		if err := c.limiter.Acquire(ctx); err != nil {
			return fmt.Errorf("%s: rate limit wait: %w", c.service, err)
		}

		body, status, header, err := c.roundTrip(ctx, method, r, payload)
		if err != nil {
			return err
		}

		if status >= http.StatusOK && status < http.StatusMultipleChoices {
			c.limiter.ResetBackoff()
			if r.Raw {
				if r.RawBody != nil {
					*r.RawBody = body
				}
				return nil
			}
			if r.Dest != nil && len(body) > 0 {
				if err := json.Unmarshal(body, r.Dest); err != nil {
					return fmt.Errorf("%s: decode response: %w", c.service, err)
				}
			}
			return nil
		}

		cerr := classifyResponse(string(c.service), &http.Response{
			StatusCode: status,
			Header:     header,
		}, body)

		switch {
		case IsTokenExpired(cerr) && c.refresh != nil && !refreshed:
			logger.Info("[%s] %s %s: 401, refreshing access token", reqID, method, r.Path)
			token, rerr := c.refresh(ctx)
			if rerr != nil {
				return fmt.Errorf("%s: refresh access token: %w", c.service, rerr)
			}
			c.SetAccessToken(token)
			refreshed = true

		case isRetryable(cerr) && retries < c.maxRetries:
			retries++
			delay, berr := c.limiter.Backoff(ctx, retryHint(cerr))
			if berr != nil {
				return fmt.Errorf("%s: backoff wait: %w", c.service, berr)
			}
			logger.Warn("[%s] %s %s: status %d, retry %d/%d after %s",
				reqID, method, r.Path, status, retries, c.maxRetries, delay)

		default:
			logger.Debug("[%s] %s %s: failing with status %d", reqID, method, r.Path, status)
			return cerr
		}
	}
}

// roundTrip issues one transport attempt and returns the full response
// body, status and headers. The response body is always drained and closed
// here.
func (c *Client) roundTrip(
	ctx context.Context, method string, r Request, payload []byte,
) ([]byte, int, http.Header, error) {
	u := c.baseURL + r.Path
	if len(r.Query) > 0 {
		u += "?" + r.Query.Encode()
	}

	var reader io.Reader = http.NoBody
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("%s: build request: %w", c.service, err)
	}

	req.Header.Set("Authorization", "Bearer "+c.AccessToken())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	// Caller headers layer over the defaults and may override them.
	for key, values := range r.Header {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("%s: %s %s: %w", c.service, method, r.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("%s: read response: %w", c.service, err)
	}

	return body, resp.StatusCode, resp.Header, nil
}

// Get issues a GET request and decodes the JSON response into dest.
func (c *Client) Get(ctx context.Context, path string, query url.Values, dest any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query, Dest: dest})
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, query url.Values, body, dest any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Query: query, Body: body, Dest: dest})
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, query url.Values, body, dest any) error {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Query: query, Body: body, Dest: dest})
}

// Patch issues a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, query url.Values, body, dest any) error {
	return c.Do(ctx, Request{Method: http.MethodPatch, Path: path, Query: query, Body: body, Dest: dest})
}

// Delete issues a DELETE request and discards any response body.
func (c *Client) Delete(ctx context.Context, path string, query url.Values) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path, Query: query})
}

// Download issues a GET request and returns the raw response body without
// JSON decoding. It still acquires a rate limit token and resets backoff on
// success like every other call.
func (c *Client) Download(ctx context.Context, path string, query url.Values) ([]byte, error) {
	var raw []byte
	err := c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query, Raw: true, RawBody: &raw})
	if err != nil {
		return nil, err
	}
	return raw, nil
}
