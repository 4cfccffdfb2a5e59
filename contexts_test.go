package authgithub

import (
	"errors"
	"net/url"
)

const testCallbackURL = "http://localhost:9000/oauth2/callback/github"

type recordingInitContext struct {
	state      string
	redirected string
}

func (c *recordingInitContext) GenerateCSRFState() string { return c.state }
func (c *recordingInitContext) RedirectTo(u string)       { c.redirected = u }
func (c *recordingInitContext) CallbackURL() string       { return testCallbackURL }
func (c *recordingInitContext) ClientIP() string          { return "203.0.113.7" }

type recordingCallbackContext struct {
	params        url.Values
	csrfErr       error
	rejectErr     error
	authenticated []Identity
	redirected    bool
}

func newCallbackContext(code string) *recordingCallbackContext {
	return &recordingCallbackContext{params: url.Values{"code": {code}}}
}

func (c *recordingCallbackContext) VerifyCSRFState() error          { return c.csrfErr }
func (c *recordingCallbackContext) RequestParam(name string) string { return c.params.Get(name) }
func (c *recordingCallbackContext) CallbackURL() string             { return testCallbackURL }
func (c *recordingCallbackContext) RedirectToRequestedPage()        { c.redirected = true }
func (c *recordingCallbackContext) ClientIP() string                { return "203.0.113.7" }

func (c *recordingCallbackContext) Authenticate(identity Identity) error {
	if c.rejectErr != nil {
		return c.rejectErr
	}
	c.authenticated = append(c.authenticated, identity)
	return nil
}

var errStateMismatch = errors.New("state cookie does not match")
