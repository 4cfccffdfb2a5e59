// Package security provides the security building blocks used around the GitHub
// authentication flow: audit logging, CSRF state sealing, rate limiting,
// client IP extraction, request IDs and response headers.
//
// # Audit Logging
//
// The Auditor writes structured "security_audit" records through log/slog.
// User identifiers are hashed with SHA-256 before being logged so that audit
// logs can be correlated without storing GitHub logins in clear text.
//
//	auditor := security.NewAuditor(logger, true)
//	auditor.LogAuthSuccess("octocat", "github", "203.0.113.7")
//
// # CSRF State Sealing
//
// StateSealer encrypts and authenticates CSRF state values with
// XChaCha20-Poly1305 so a host can keep the expected state in a cookie
// without server-side storage. Sealed values carry an expiry.
//
//	sealer, err := security.NewStateSealer(key, 10*time.Minute)
//	cookieValue, err := sealer.Seal(state)
//	state, err := sealer.Open(cookieValue)
//
// # Rate Limiting
//
// RateLimiter provides per-identifier token bucket limiting (typically keyed
// by client IP) with LRU eviction to bound memory under distributed attacks.
//
//	limiter := security.NewRateLimiter(10, 20, logger)
//	defer limiter.Stop()
//	if !limiter.Allow(security.GetClientIP(r, false, 0)) {
//	    http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
//	    return
//	}
//
// # Security Considerations
//
//   - Only enable proxy header trust behind a trusted reverse proxy
//   - Never log access tokens, authorization codes or CSRF state values
//   - State sealing keys must be 32 random bytes and kept secret
package security
