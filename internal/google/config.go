package google

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultMaxRetries is the maximum number of backoff retries per request.
const DefaultMaxRetries = 3

// RefreshFunc obtains a new access token when the current one is rejected
// as expired. Supplied by the authentication subsystem.
type RefreshFunc func(ctx context.Context) (string, error)

// ClientConfig configures a single API client. Each client owns its config
// exclusively; configs are not shared across clients.
type ClientConfig struct {
	// AccessToken is the initial bearer credential.
	AccessToken string

	// Refresh, when set, is invoked once per request on a 401 response to
	// replace the held credential.
	Refresh RefreshFunc

	// RateLimit partially overrides the service's default rate limit
	// profile. Zero fields keep the default. Merged at construction only.
	RateLimit *RateLimitProfile

	// Backoff replaces the default backoff schedule when set.
	Backoff *BackoffPolicy

	// HTTPClient is the transport used for all requests. Defaults to a
	// client with DefaultTimeout. Tests substitute a fake transport here.
	HTTPClient *http.Client

	// BaseURL overrides the service's production endpoint. Used by tests.
	BaseURL string

	// MaxRetries overrides DefaultMaxRetries when positive.
	MaxRetries int
}

// TokenSourceRefresh adapts an oauth2.TokenSource to a RefreshFunc, so
// clients can refresh through the standard oauth2 machinery.
func TokenSourceRefresh(ts oauth2.TokenSource) RefreshFunc {
	return func(_ context.Context) (string, error) {
		tok, err := ts.Token()
		if err != nil {
			return "", err
		}
		return tok.AccessToken, nil
	}
}

// StaticTokenSource builds an oauth2.TokenSource from a bare access token.
// Useful when handing our credential to libraries that expect oauth2 types.
func StaticTokenSource(accessToken string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	})
}
