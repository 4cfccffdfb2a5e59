package authgithub

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrProviderDisabled is returned when Init or Callback is called while
	// the provider is disabled or has no client credentials.
	ErrProviderDisabled = errors.New("GitHub authentication is disabled")

	// ErrCSRFMismatch is returned when the callback state does not match.
	ErrCSRFMismatch = errors.New("CSRF state mismatch")

	// ErrMissingState is returned by Init when the host produced no CSRF state.
	ErrMissingState = errors.New("host generated an empty CSRF state")

	// ErrMissingCode is returned when the callback carries no authorization code.
	ErrMissingCode = errors.New("authorization code is missing from callback")
)

// AuthorizationDeniedError is returned when GitHub redirects back with an
// error, typically because the user declined the authorization.
type AuthorizationDeniedError struct {
	Code        string
	Description string
}

func (e *AuthorizationDeniedError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("authorization denied by GitHub: %s", e.Code)
	}
	return fmt.Sprintf("authorization denied by GitHub: %s: %s", e.Code, e.Description)
}

// UnauthorizedError is returned when the user belongs to none of the
// required organizations.
type UnauthorizedError struct {
	Login         string
	Organizations []string
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("'%s' must be a member of at least one organization: '%s'",
		e.Login, strings.Join(e.Organizations, "', '"))
}
