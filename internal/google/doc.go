// Package google provides the shared request pipeline for Google Workspace
// API clients.
//
// This package contains the infrastructure the drive, sheets, and calendar
// clients are built on:
//   - Client, the base HTTP client every API call flows through: rate limit
//     gate, bearer auth, transport, error classification, bounded retry and
//     a single transparent token refresh
//   - RateLimiter, a per-client token bucket with exponential backoff
//   - Typed errors for common Google API failures (401, 403, 404, 410, 429)
//   - ClientConfig and the oauth2 TokenSource refresh adapter
//
// # Usage
//
// Each typed client wraps a Client bound to its API's base address and
// default rate limit profile:
//
//	base := google.NewClient(google.ServiceDrive, driveBaseURL, cfg)
//	err := base.Get(ctx, "/files", query, &fileList)
//
// The client never initiates a sign-in handshake itself: the access token
// and optional refresh callback come from the caller via ClientConfig.
package google
