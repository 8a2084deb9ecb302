package google

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ServiceType identifies a Google API service for rate limiting purposes.
type ServiceType string

const (
	// ServiceDrive is the Google Drive API service.
	ServiceDrive ServiceType = "drive"
	// ServiceSheets is the Google Sheets API service.
	ServiceSheets ServiceType = "sheets"
	// ServiceCalendar is the Google Calendar API service.
	ServiceCalendar ServiceType = "calendar"
)

// RateLimitProfile holds the per-API request budget.
// RequestsPerMinute is the project-wide quota and is informational only;
// the refill rate is driven by RequestsPerUserPerMinute over Window.
type RateLimitProfile struct {
	// RequestsPerMinute is the overall project quota (informational).
	RequestsPerMinute int
	// RequestsPerUserPerMinute drives the token refill rate.
	RequestsPerUserPerMinute int
	// BurstSize is the maximum burst size (bucket capacity).
	BurstSize int
	// Window is the period RequestsPerUserPerMinute is measured over.
	Window time.Duration
}

// DefaultRateLimits provides conservative defaults for each Google service.
// These are well below Google's actual limits to avoid hitting quotas.
// Sheets has the tightest per-user budget, Drive the most generous.
var DefaultRateLimits = map[ServiceType]RateLimitProfile{
	ServiceDrive:    {RequestsPerMinute: 12000, RequestsPerUserPerMinute: 600, BurstSize: 10, Window: time.Minute},
	ServiceSheets:   {RequestsPerMinute: 300, RequestsPerUserPerMinute: 60, BurstSize: 5, Window: time.Minute},
	ServiceCalendar: {RequestsPerMinute: 600, RequestsPerUserPerMinute: 300, BurstSize: 10, Window: time.Minute},
}

// fallbackProfile is used when a service has no registered default.
var fallbackProfile = RateLimitProfile{
	RequestsPerMinute:        600,
	RequestsPerUserPerMinute: 300,
	BurstSize:                10,
	Window:                   time.Minute,
}

// merged returns the profile with any non-zero override fields applied.
// Overrides are merged at construction time only; the result is immutable
// for the life of the limiter.
func (p RateLimitProfile) merged(override *RateLimitProfile) RateLimitProfile {
	if override == nil {
		return p
	}
	if override.RequestsPerMinute > 0 {
		p.RequestsPerMinute = override.RequestsPerMinute
	}
	if override.RequestsPerUserPerMinute > 0 {
		p.RequestsPerUserPerMinute = override.RequestsPerUserPerMinute
	}
	if override.BurstSize > 0 {
		p.BurstSize = override.BurstSize
	}
	if override.Window > 0 {
		p.Window = override.Window
	}
	return p
}

// refillRate converts the per-user budget to a token refill rate.
func (p RateLimitProfile) refillRate() rate.Limit {
	window := p.Window
	if window <= 0 {
		window = time.Minute
	}
	return rate.Limit(float64(p.RequestsPerUserPerMinute) / window.Seconds())
}

// BackoffPolicy controls the exponential backoff schedule applied after
// server-signalled throttling or transient failures.
type BackoffPolicy struct {
	// Initial is the base delay before the multiplier is applied.
	Initial time.Duration
	// Multiplier is the exponential growth factor per consecutive attempt.
	Multiplier float64
	// Max caps the computed delay before jitter.
	Max time.Duration
	// Jitter is the maximum random fraction added to the delay (0..1).
	Jitter float64
}

// DefaultBackoffPolicy matches Google's recommended exponential backoff.
var DefaultBackoffPolicy = BackoffPolicy{
	Initial:    time.Second,
	Multiplier: 2.0,
	Max:        64 * time.Second,
	Jitter:     0.1,
}

// Stats is a read-only snapshot of a rate limiter's state.
type Stats struct {
	// Tokens is the number of tokens currently available.
	Tokens float64
	// InBackoff reports whether a backoff window is active.
	InBackoff bool
	// BackoffRemaining is the time left in the active backoff window.
	BackoffRemaining time.Duration
	// ConsecutiveBackoffs counts backoffs since the last success or reset.
	ConsecutiveBackoffs int
	// Profile is the effective rate limit profile.
	Profile RateLimitProfile
}

// RateLimiter provides rate limiting for Google API requests.
// It uses a token bucket with exponential backoff for 429/5xx responses.
// A limiter belongs to exactly one client; state is never shared.
type RateLimiter struct {
	mu           sync.Mutex
	bucket       *rate.Limiter
	profile      RateLimitProfile
	policy       BackoffPolicy
	attempts     int
	backoffUntil time.Time
	now          func() time.Time
}

// NewRateLimiter creates a rate limiter with the default profile for the
// service, merged with any partial override.
func NewRateLimiter(service ServiceType, override *RateLimitProfile) *RateLimiter {
	profile, ok := DefaultRateLimits[service]
	if !ok {
		profile = fallbackProfile
	}
	return NewRateLimiterWithProfile(profile.merged(override))
}

// NewRateLimiterWithProfile creates a rate limiter from an explicit profile.
func NewRateLimiterWithProfile(profile RateLimitProfile) *RateLimiter {
	if profile.BurstSize <= 0 {
		profile.BurstSize = fallbackProfile.BurstSize
	}
	if profile.RequestsPerUserPerMinute <= 0 {
		profile.RequestsPerUserPerMinute = fallbackProfile.RequestsPerUserPerMinute
	}
	if profile.Window <= 0 {
		profile.Window = time.Minute
	}
	return &RateLimiter{
		bucket:  rate.NewLimiter(profile.refillRate(), profile.BurstSize),
		profile: profile,
		policy:  DefaultBackoffPolicy,
		now:     time.Now,
	}
}

// SetBackoffPolicy replaces the backoff schedule. Intended for construction
// time only, before the limiter is shared with a request pipeline.
func (r *RateLimiter) SetBackoffPolicy(policy BackoffPolicy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if policy.Initial <= 0 {
		policy.Initial = DefaultBackoffPolicy.Initial
	}
	if policy.Multiplier < 1 {
		policy.Multiplier = DefaultBackoffPolicy.Multiplier
	}
	if policy.Max <= 0 {
		policy.Max = DefaultBackoffPolicy.Max
	}
	r.policy = policy
}

// Acquire blocks until a request can be made without exceeding the rate
// limit. It first waits out any active backoff window, re-reading the
// window after each sleep in case a concurrent Backoff extended it, then
// waits on the token bucket, consuming one token. Cancellation is honoured
// at every suspension point.
func (r *RateLimiter) Acquire(ctx context.Context) error {
	for {
		r.mu.Lock()
		until := r.backoffUntil
		r.mu.Unlock()

		now := r.now()
		if !now.Before(until) {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(until.Sub(now)):
		}
	}

	return r.bucket.Wait(ctx)
}

// TryAcquire reports whether a token was available and consumed. It returns
// false immediately during a backoff window, without consuming a token.
func (r *RateLimiter) TryAcquire() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if now.Before(r.backoffUntil) {
		return false
	}
	return r.bucket.AllowN(now, 1)
}

// Backoff records a throttling event and sleeps for the computed delay.
// The delay is hint when supplied (e.g. a server Retry-After), otherwise
// initial × multiplier^attempt capped at the policy maximum, plus up to
// policy.Jitter of random jitter. The applied delay is returned so callers
// can log it. The backoff-until timestamp only ever advances.
func (r *RateLimiter) Backoff(ctx context.Context, hint time.Duration) (time.Duration, error) {
	r.mu.Lock()
	r.attempts++
	delay := hint
	if delay <= 0 {
		delay = r.delayForAttempt(r.attempts)
	}
	if r.policy.Jitter > 0 {
		delay += time.Duration(rand.Float64() * r.policy.Jitter * float64(delay))
	}
	until := r.now().Add(delay)
	if until.After(r.backoffUntil) {
		r.backoffUntil = until
	}
	r.mu.Unlock()

	select {
	case <-ctx.Done():
		return delay, ctx.Err()
	case <-time.After(delay):
		return delay, nil
	}
}

// ResetBackoff zeroes the consecutive-backoff counter and clears the
// backoff window. Must be called after every successful request.
func (r *RateLimiter) ResetBackoff() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = 0
	r.backoffUntil = time.Time{}
}

// Stats returns a read-only snapshot of the limiter state. No side effects.
func (r *RateLimiter) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	s := Stats{
		Tokens:              r.bucket.TokensAt(now),
		ConsecutiveBackoffs: r.attempts,
		Profile:             r.profile,
	}
	if now.Before(r.backoffUntil) {
		s.InBackoff = true
		s.BackoffRemaining = r.backoffUntil.Sub(now)
	}
	return s
}

// delayForAttempt computes the raw exponential delay for the given
// consecutive-attempt count, before jitter. Caller holds r.mu.
func (r *RateLimiter) delayForAttempt(attempt int) time.Duration {
	d := time.Duration(float64(r.policy.Initial) * math.Pow(r.policy.Multiplier, float64(attempt)))
	if d > r.policy.Max || d <= 0 {
		d = r.policy.Max
	}
	return d
}
