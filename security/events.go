package security

// Event type constants for security audit logging.
const (
	// EventAuthorizationFlowStarted is logged when the browser is redirected to GitHub
	EventAuthorizationFlowStarted = "authorization_flow_started"

	// EventAuthSuccess is logged when an identity is handed to the host
	EventAuthSuccess = "auth_success"

	// EventAuthFailure is logged when a callback fails for any reason
	EventAuthFailure = "auth_failure"

	// EventCSRFStateMismatch is logged when the callback state does not match (possible CSRF)
	EventCSRFStateMismatch = "csrf_state_mismatch"

	// EventOrganizationMembershipDenied is logged when a user is not a member of any required organization
	EventOrganizationMembershipDenied = "organization_membership_denied"

	// EventRateLimitExceeded is logged when a rate limit is exceeded
	EventRateLimitExceeded = "rate_limit_exceeded"
)
