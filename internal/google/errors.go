package google

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"google.golang.org/api/googleapi"
)

// APIError is the generic Google API failure. It carries enough context
// to distinguish the failure kind without string-matching.
type APIError struct {
	// API is the service the request was issued against ("drive", ...).
	API string
	// StatusCode is the HTTP status of the failed response.
	StatusCode int
	// Message is the parsed error message, or a templated fallback when
	// the body is not structured JSON.
	Message string
	// Body is the raw response body, kept for diagnostics.
	Body string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: API error %d: %s", e.API, e.StatusCode, e.Message)
}

// TokenExpiredError indicates invalid or expired credentials (401).
type TokenExpiredError struct {
	APIError
}

func (e *TokenExpiredError) Error() string {
	return fmt.Sprintf("%s: token expired: %s", e.API, e.Message)
}

func (e *TokenExpiredError) Unwrap() error { return &e.APIError }

// PermissionError indicates insufficient permissions (403). Never retried.
type PermissionError struct {
	APIError
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("%s: permission denied: %s", e.API, e.Message)
}

func (e *PermissionError) Unwrap() error { return &e.APIError }

// NotFoundError indicates the requested resource does not exist (404).
// Never retried.
type NotFoundError struct {
	APIError
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: not found: %s", e.API, e.Message)
}

func (e *NotFoundError) Unwrap() error { return &e.APIError }

// RateLimitError indicates the API rate limit was exceeded (429).
type RateLimitError struct {
	APIError
	// RetryAfter is the server-suggested delay, zero when absent.
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s: rate limit exceeded, retry after %s", e.API, e.RetryAfter)
	}
	return fmt.Sprintf("%s: rate limit exceeded: %s", e.API, e.Message)
}

func (e *RateLimitError) Unwrap() error { return &e.APIError }

// SyncTokenExpiredError indicates an expired sync token (410 GONE).
// Calendar and sometimes Drive return this when the client must resync.
type SyncTokenExpiredError struct {
	APIError
}

func (e *SyncTokenExpiredError) Error() string {
	return fmt.Sprintf("%s: sync token expired, full resync required", e.API)
}

func (e *SyncTokenExpiredError) Unwrap() error { return &e.APIError }

// IsTokenExpired returns true if the error indicates invalid credentials.
func IsTokenExpired(err error) bool {
	var e *TokenExpiredError
	return errors.As(err, &e)
}

// IsPermissionDenied returns true if the error indicates insufficient
// permissions.
func IsPermissionDenied(err error) bool {
	var e *PermissionError
	return errors.As(err, &e)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var e *RateLimitError
	return errors.As(err, &e)
}

// IsSyncTokenExpired returns true if the error indicates an expired sync
// token (410 GONE).
func IsSyncTokenExpired(err error) bool {
	var e *SyncTokenExpiredError
	return errors.As(err, &e)
}

// isRetryable reports whether the pipeline may retry after backoff.
// Rate limits and 5xx are retryable; auth, permission and not-found are not.
func isRetryable(err error) bool {
	if IsRateLimited(err) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= http.StatusInternalServerError
	}
	return false
}

// retryHint extracts the server-suggested delay from a classified error,
// zero when none was supplied.
func retryHint(err error) time.Duration {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return rl.RetryAfter
	}
	return 0
}

// retryAfterPattern matches the "retry after N seconds" hint Google embeds
// in rate limit error messages.
var retryAfterPattern = regexp.MustCompile(`(?i)retry after (\d+(?:\.\d+)?)`)

// classifyResponse converts a non-2xx response into a typed error.
// The body is parsed through googleapi.CheckResponse; bodies that are not
// structured JSON yield a templated message, never a parse failure.
func classifyResponse(api string, resp *http.Response, body []byte) error {
	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	// CheckResponse consumes the body, so hand it a copy.
	shallow := *resp
	shallow.Body = io.NopCloser(bytes.NewReader(body))
	checked := googleapi.CheckResponse(&shallow)

	message := ""
	var gerr *googleapi.Error
	if errors.As(checked, &gerr) {
		message = gerr.Message
	}
	if message == "" {
		message = fmt.Sprintf("API error: %d", resp.StatusCode)
	}

	base := APIError{
		API:        api,
		StatusCode: resp.StatusCode,
		Message:    message,
		Body:       string(body),
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return &TokenExpiredError{base}
	case http.StatusForbidden:
		return &PermissionError{base}
	case http.StatusNotFound:
		return &NotFoundError{base}
	case http.StatusGone:
		return &SyncTokenExpiredError{base}
	case http.StatusTooManyRequests:
		return &RateLimitError{
			APIError:   base,
			RetryAfter: parseRetryAfter(resp.Header, message),
		}
	default:
		return &base
	}
}

// parseRetryAfter extracts a suggested delay from the Retry-After header,
// falling back to a "retry after N seconds" hint inside the error message.
func parseRetryAfter(header http.Header, message string) time.Duration {
	if v := header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	if m := retryAfterPattern.FindStringSubmatch(message); m != nil {
		if secs, err := strconv.ParseFloat(m[1], 64); err == nil && secs > 0 {
			return time.Duration(secs * float64(time.Second))
		}
	}
	return 0
}
