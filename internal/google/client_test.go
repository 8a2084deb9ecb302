package google

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/workspace-go/internal/logger"
)

// fakeTransport scripts responses without touching the network and records
// every request it sees.
type fakeTransport struct {
	mu       sync.Mutex
	handler  func(call int, req *http.Request) *http.Response
	requests []*http.Request
}

func (ft *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	call := len(ft.requests)
	ft.requests = append(ft.requests, req)
	return ft.handler(call, req), nil
}

func (ft *fakeTransport) calls() int {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return len(ft.requests)
}

func (ft *fakeTransport) request(i int) *http.Request {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return ft.requests[i]
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": {"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// fastBackoff keeps retry waits at millisecond scale in tests.
var fastBackoff = BackoffPolicy{Initial: time.Millisecond, Multiplier: 2, Max: 5 * time.Millisecond, Jitter: 0.1}

// wideOpenProfile makes the rate limit gate effectively transparent.
var wideOpenProfile = RateLimitProfile{RequestsPerUserPerMinute: 60000, BurstSize: 100, Window: time.Minute}

func newTestClient(ft *fakeTransport, mutate func(*ClientConfig)) *Client {
	cfg := ClientConfig{
		AccessToken: "initial-token",
		HTTPClient:  &http.Client{Transport: ft},
		RateLimit:   &wideOpenProfile,
		Backoff:     &fastBackoff,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return NewClient(ServiceDrive, "https://drive.test/v3", cfg)
}

func TestClient_Success(t *testing.T) {
	ft := &fakeTransport{handler: func(_ int, _ *http.Request) *http.Response {
		return jsonResponse(http.StatusOK, `{"id":"f1","name":"report"}`)
	}}
	c := newTestClient(ft, nil)

	var dest struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	err := c.Get(context.Background(), "/files/f1", nil, &dest)
	require.NoError(t, err)

	assert.Equal(t, "f1", dest.ID)
	assert.Equal(t, "report", dest.Name)
	assert.Equal(t, 1, ft.calls())
	assert.Equal(t, "Bearer initial-token", ft.request(0).Header.Get("Authorization"))
	assert.Equal(t, "https://drive.test/v3/files/f1", ft.request(0).URL.String())
}

func TestClient_RefreshOnce(t *testing.T) {
	t.Run("401 then success refreshes exactly once", func(t *testing.T) {
		ft := &fakeTransport{handler: func(call int, _ *http.Request) *http.Response {
			if call == 0 {
				return jsonResponse(http.StatusUnauthorized, `{"error":{"message":"Invalid Credentials"}}`)
			}
			return jsonResponse(http.StatusOK, `{"id":"f1"}`)
		}}

		refreshes := 0
		c := newTestClient(ft, func(cfg *ClientConfig) {
			cfg.Refresh = func(_ context.Context) (string, error) {
				refreshes++
				return "refreshed-token", nil
			}
		})

		err := c.Get(context.Background(), "/files/f1", nil, nil)
		require.NoError(t, err)

		assert.Equal(t, 1, refreshes)
		assert.Equal(t, 2, ft.calls())
		assert.Equal(t, "Bearer initial-token", ft.request(0).Header.Get("Authorization"))
		assert.Equal(t, "Bearer refreshed-token", ft.request(1).Header.Get("Authorization"))
		assert.Equal(t, "refreshed-token", c.AccessToken())
	})

	t.Run("refresh through an oauth2 token source", func(t *testing.T) {
		ft := &fakeTransport{handler: func(call int, _ *http.Request) *http.Response {
			if call == 0 {
				return jsonResponse(http.StatusUnauthorized, `{"error":{"message":"Invalid Credentials"}}`)
			}
			return jsonResponse(http.StatusOK, `{"id":"f1"}`)
		}}

		c := newTestClient(ft, func(cfg *ClientConfig) {
			cfg.Refresh = TokenSourceRefresh(StaticTokenSource("source-token"))
		})

		err := c.Get(context.Background(), "/files/f1", nil, nil)
		require.NoError(t, err)

		assert.Equal(t, 2, ft.calls())
		assert.Equal(t, "Bearer source-token", ft.request(1).Header.Get("Authorization"))
		assert.Equal(t, "source-token", c.AccessToken())
	})

	t.Run("second consecutive 401 after refresh is terminal", func(t *testing.T) {
		ft := &fakeTransport{handler: func(_ int, _ *http.Request) *http.Response {
			return jsonResponse(http.StatusUnauthorized, `{"error":{"message":"Invalid Credentials"}}`)
		}}

		refreshes := 0
		c := newTestClient(ft, func(cfg *ClientConfig) {
			cfg.Refresh = func(_ context.Context) (string, error) {
				refreshes++
				return "refreshed-token", nil
			}
		})

		err := c.Get(context.Background(), "/files/f1", nil, nil)
		require.Error(t, err)
		assert.True(t, IsTokenExpired(err))
		assert.Equal(t, 1, refreshes, "no refresh loop")
		assert.Equal(t, 2, ft.calls())
	})

	t.Run("401 without refresh callback is terminal", func(t *testing.T) {
		ft := &fakeTransport{handler: func(_ int, _ *http.Request) *http.Response {
			return jsonResponse(http.StatusUnauthorized, `{}`)
		}}
		c := newTestClient(ft, nil)

		err := c.Get(context.Background(), "/files/f1", nil, nil)
		assert.True(t, IsTokenExpired(err))
		assert.Equal(t, 1, ft.calls())
	})

	t.Run("refresh failure propagates", func(t *testing.T) {
		ft := &fakeTransport{handler: func(_ int, _ *http.Request) *http.Response {
			return jsonResponse(http.StatusUnauthorized, `{}`)
		}}
		c := newTestClient(ft, func(cfg *ClientConfig) {
			cfg.Refresh = func(_ context.Context) (string, error) {
				return "", fmt.Errorf("provider unreachable")
			}
		})

		err := c.Get(context.Background(), "/files/f1", nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "provider unreachable")
	})
}

func TestClient_RetryOnRateLimit(t *testing.T) {
	t.Run("429 retried up to the budget then surfaced", func(t *testing.T) {
		ft := &fakeTransport{handler: func(_ int, _ *http.Request) *http.Response {
			return jsonResponse(http.StatusTooManyRequests, `{"error":{"message":"Rate Limit Exceeded"}}`)
		}}
		c := newTestClient(ft, nil)

		err := c.Get(context.Background(), "/files", nil, nil)
		require.Error(t, err)
		assert.True(t, IsRateLimited(err))
		// 1 initial attempt + 3 retries.
		assert.Equal(t, 4, ft.calls())
		assert.Equal(t, 3, c.Stats().ConsecutiveBackoffs)
	})

	t.Run("429 then success resets backoff", func(t *testing.T) {
		ft := &fakeTransport{handler: func(call int, _ *http.Request) *http.Response {
			if call == 0 {
				return jsonResponse(http.StatusTooManyRequests, `{}`)
			}
			return jsonResponse(http.StatusOK, `{}`)
		}}
		c := newTestClient(ft, nil)

		require.NoError(t, c.Get(context.Background(), "/files", nil, nil))
		assert.Equal(t, 2, ft.calls())

		stats := c.Stats()
		assert.Equal(t, 0, stats.ConsecutiveBackoffs)
		assert.False(t, stats.InBackoff)
	})

	t.Run("custom retry budget", func(t *testing.T) {
		ft := &fakeTransport{handler: func(_ int, _ *http.Request) *http.Response {
			return jsonResponse(http.StatusServiceUnavailable, `{}`)
		}}
		c := newTestClient(ft, func(cfg *ClientConfig) { cfg.MaxRetries = 1 })

		err := c.Get(context.Background(), "/files", nil, nil)
		require.Error(t, err)
		assert.Equal(t, 2, ft.calls())
	})
}

func TestClient_RetryOnServerError(t *testing.T) {
	ft := &fakeTransport{handler: func(call int, _ *http.Request) *http.Response {
		if call < 2 {
			return jsonResponse(http.StatusInternalServerError, "boom")
		}
		return jsonResponse(http.StatusOK, `{"id":"f1"}`)
	}}
	c := newTestClient(ft, nil)

	err := c.Get(context.Background(), "/files/f1", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, ft.calls())
}

func TestClient_NonRetryableErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"permission denied", http.StatusForbidden, IsPermissionDenied},
		{"not found", http.StatusNotFound, IsNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ft := &fakeTransport{handler: func(_ int, _ *http.Request) *http.Response {
				return jsonResponse(tc.status, `{"error":{"message":"nope"}}`)
			}}
			c := newTestClient(ft, nil)

			err := c.Get(context.Background(), "/files/f1", nil, nil)
			require.Error(t, err)
			assert.True(t, tc.check(err))
			assert.Equal(t, 1, ft.calls(), "must not retry")
		})
	}
}

func TestClient_HeaderLayering(t *testing.T) {
	ft := &fakeTransport{handler: func(_ int, _ *http.Request) *http.Response {
		return jsonResponse(http.StatusOK, `{}`)
	}}
	c := newTestClient(ft, nil)

	err := c.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/upload",
		Body:   map[string]string{"k": "v"},
		Header: http.Header{
			"Content-Type": {"application/json; charset=utf-8"},
			"X-Request-Ua": {"workspace-test"},
		},
	})
	require.NoError(t, err)

	req := ft.request(0)
	// Caller headers layer onto the defaults and may override them.
	assert.Equal(t, "application/json; charset=utf-8", req.Header.Get("Content-Type"))
	assert.Equal(t, "workspace-test", req.Header.Get("X-Request-Ua"))
	assert.Equal(t, "Bearer initial-token", req.Header.Get("Authorization"))
}

func TestClient_VerboseDiagnostics(t *testing.T) {
	defer func() {
		logger.SetVerbose(false)
		logger.SetOutput(os.Stderr)
	}()

	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.SetVerbose(true)

	ft := &fakeTransport{handler: func(call int, _ *http.Request) *http.Response {
		switch call {
		case 0:
			return jsonResponse(http.StatusUnauthorized, `{}`)
		case 1:
			return jsonResponse(http.StatusTooManyRequests, `{}`)
		default:
			return jsonResponse(http.StatusOK, `{}`)
		}
	}}
	c := newTestClient(ft, func(cfg *ClientConfig) {
		cfg.Refresh = func(_ context.Context) (string, error) { return "fresh", nil }
	})

	require.NoError(t, c.Get(context.Background(), "/files", nil, nil))

	out := buf.String()
	assert.Contains(t, out, "[INFO]")
	assert.Contains(t, out, "refreshing access token")
	assert.Contains(t, out, "[WARN]")
	assert.Contains(t, out, "retry 1/3")
}

func TestClient_Download(t *testing.T) {
	payload := "\x00\x01binary, not JSON\xff"
	ft := &fakeTransport{handler: func(_ int, _ *http.Request) *http.Response {
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": {"application/octet-stream"}},
			Body:       io.NopCloser(strings.NewReader(payload)),
		}
	}}
	c := newTestClient(ft, nil)

	data, err := c.Download(context.Background(), "/files/f1", nil)
	require.NoError(t, err)
	assert.Equal(t, []byte(payload), data)
	assert.Equal(t, 0, c.Stats().ConsecutiveBackoffs)
}

func TestClient_SetAccessToken(t *testing.T) {
	c := newTestClient(&fakeTransport{}, nil)
	assert.Equal(t, "initial-token", c.AccessToken())

	c.SetAccessToken("rotated")
	assert.Equal(t, "rotated", c.AccessToken())
}

func TestClient_BaseURLOverride(t *testing.T) {
	ft := &fakeTransport{handler: func(_ int, _ *http.Request) *http.Response {
		return jsonResponse(http.StatusOK, `{}`)
	}}
	c := NewClient(ServiceSheets, "https://prod.invalid", ClientConfig{
		AccessToken: "t",
		HTTPClient:  &http.Client{Transport: ft},
		BaseURL:     "https://override.test/",
		RateLimit:   &wideOpenProfile,
	})

	require.NoError(t, c.Get(context.Background(), "/spreadsheets/x", nil, nil))
	assert.Equal(t, "override.test", ft.request(0).URL.Host)
}
