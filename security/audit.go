package security

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"
)

// Auditor handles security event logging with PII protection.
type Auditor struct {
	logger  *slog.Logger
	enabled bool
	onEvent func(eventType string)
}

// NewAuditor creates a new security auditor
func NewAuditor(logger *slog.Logger, enabled bool) *Auditor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Auditor{
		logger:  logger,
		enabled: enabled,
	}
}

// OnEvent registers a hook invoked with the event type of every logged event.
// It is typically used to count audit events in metrics.
func (a *Auditor) OnEvent(fn func(eventType string)) {
	a.onEvent = fn
}

// Event represents a security audit event
type Event struct {
	Type      string
	UserID    string
	Provider  string
	IPAddress string
	Details   map[string]any
	Timestamp time.Time
}

// LogEvent logs a security event with hashed PII
func (a *Auditor) LogEvent(event Event) {
	if a == nil || !a.enabled {
		return
	}

	event.Timestamp = time.Now()

	a.logger.Info("security_audit",
		"event_type", event.Type,
		"user_id_hash", hashForLogging(event.UserID),
		"provider", event.Provider,
		"ip_address", event.IPAddress,
		"details", event.Details,
		"timestamp", event.Timestamp,
	)

	if a.onEvent != nil {
		a.onEvent(event.Type)
	}
}

// LogAuthorizationStarted logs a redirect to the provider's authorization page
func (a *Auditor) LogAuthorizationStarted(provider, ipAddress, scope string) {
	a.LogEvent(Event{
		Type:      EventAuthorizationFlowStarted,
		Provider:  provider,
		IPAddress: ipAddress,
		Details: map[string]any{
			"scope": scope,
		},
	})
}

// LogAuthSuccess logs a successful authentication
func (a *Auditor) LogAuthSuccess(userID, provider, ipAddress string) {
	a.LogEvent(Event{
		Type:      EventAuthSuccess,
		UserID:    userID,
		Provider:  provider,
		IPAddress: ipAddress,
	})
}

// LogAuthFailure logs an authentication failure
func (a *Auditor) LogAuthFailure(userID, provider, ipAddress, reason string) {
	a.LogEvent(Event{
		Type:      EventAuthFailure,
		UserID:    userID,
		Provider:  provider,
		IPAddress: ipAddress,
		Details: map[string]any{
			"reason": reason,
		},
	})
}

// LogCSRFMismatch logs a callback whose state did not match the issued one
func (a *Auditor) LogCSRFMismatch(provider, ipAddress string) {
	a.LogEvent(Event{
		Type:      EventCSRFStateMismatch,
		Provider:  provider,
		IPAddress: ipAddress,
	})
}

// LogOrganizationMembershipDenied logs a user rejected by the organization gate
func (a *Auditor) LogOrganizationMembershipDenied(userID, provider, ipAddress string, organizations []string) {
	a.LogEvent(Event{
		Type:      EventOrganizationMembershipDenied,
		UserID:    userID,
		Provider:  provider,
		IPAddress: ipAddress,
		Details: map[string]any{
			"organizations": strings.Join(organizations, ","),
		},
	})
}

// LogRateLimitExceeded logs a rate limit violation
func (a *Auditor) LogRateLimitExceeded(ipAddress, limiterType string) {
	a.LogEvent(Event{
		Type:      EventRateLimitExceeded,
		IPAddress: ipAddress,
		Details: map[string]any{
			"limiter_type": limiterType,
		},
	})
}

// hashForLogging creates a SHA256 hash of sensitive data for logging
func hashForLogging(sensitive string) string {
	if sensitive == "" {
		return "<empty>"
	}
	hash := sha256.Sum256([]byte(sensitive))
	return hex.EncodeToString(hash[:])[:16]
}
