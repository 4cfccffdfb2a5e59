package github

import (
	"errors"
	"fmt"
)

// ErrMissingAccessToken is returned when the token endpoint answers without
// an access token and without an error code.
var ErrMissingAccessToken = errors.New("token response does not contain an access token")

// UpstreamError is returned for unexpected GitHub responses.
type UpstreamError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("request to '%s' failed. HTTP code: %d, response: %s", e.URL, e.StatusCode, e.Body)
}

// TokenExchangeError is returned when the token endpoint reports an OAuth
// error such as bad_verification_code. GitHub answers these with HTTP 200.
type TokenExchangeError struct {
	Code        string
	Description string
}

func (e *TokenExchangeError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("token exchange failed: %s", e.Code)
	}
	return fmt.Sprintf("token exchange failed: %s: %s", e.Code, e.Description)
}

// DecodeError is returned when a GitHub payload does not have the expected shape.
type DecodeError struct {
	Resource string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s: %v", e.Resource, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
