package httphost

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	authgithub "github.com/SonarSource/sonar-auth-github"
	"github.com/SonarSource/sonar-auth-github/security"
)

var (
	errMissingStateCookie = errors.New("state cookie is missing")
	errStateParamMismatch = errors.New("state parameter does not match")
)

type initContext struct {
	host     *Host
	w        http.ResponseWriter
	r        *http.Request
	ip       string
	returnTo string
	err      error
}

var _ authgithub.InitContext = (*initContext)(nil)

// GenerateCSRFState creates a random state and stores it, together with the
// page to return to, in the sealed state cookie.
func (c *initContext) GenerateCSRFState() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		c.err = fmt.Errorf("failed to generate state: %w", err)
		return ""
	}
	state := base64.RawURLEncoding.EncodeToString(b)

	sealed, err := c.host.sealer.Seal(state + " " + c.returnTo)
	if err != nil {
		c.err = err
		return ""
	}
	http.SetCookie(c.w, c.host.stateCookie(sealed, int(c.host.sealer.TTL().Seconds())))
	return state
}

func (c *initContext) RedirectTo(url string) {
	if c.err != nil {
		return
	}
	http.Redirect(c.w, c.r, url, http.StatusFound)
}

func (c *initContext) CallbackURL() string {
	return c.host.CallbackURL()
}

func (c *initContext) ClientIP() string {
	return c.ip
}

type callbackContext struct {
	host     *Host
	w        http.ResponseWriter
	r        *http.Request
	ip       string
	returnTo string
}

var _ authgithub.CallbackContext = (*callbackContext)(nil)

// VerifyCSRFState compares the state parameter with the sealed cookie. The
// cookie is cleared whatever the outcome.
func (c *callbackContext) VerifyCSRFState() error {
	http.SetCookie(c.w, c.host.stateCookie("", -1))

	cookie, err := c.r.Cookie(stateCookieName)
	if err != nil {
		return errMissingStateCookie
	}
	value, err := c.host.sealer.Open(cookie.Value)
	if err != nil {
		return err
	}
	state, returnTo, _ := strings.Cut(value, " ")

	param := c.r.URL.Query().Get("state")
	if state == "" || subtle.ConstantTimeCompare([]byte(state), []byte(param)) != 1 {
		return errStateParamMismatch
	}
	c.returnTo = c.host.safeReturnTo(returnTo)
	return nil
}

func (c *callbackContext) RequestParam(name string) string {
	return c.r.URL.Query().Get(name)
}

func (c *callbackContext) CallbackURL() string {
	return c.host.CallbackURL()
}

func (c *callbackContext) Authenticate(identity authgithub.Identity) error {
	return c.host.config.Authenticate(c.r.Context(), c.w, identity)
}

func (c *callbackContext) RedirectToRequestedPage() {
	http.Redirect(c.w, c.r, c.returnTo, http.StatusFound)
}

func (c *callbackContext) ClientIP() string {
	return c.ip
}

func (h *Host) stateCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     stateCookieName,
		Value:    value,
		Path:     h.config.CallbackPath,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   security.IsSecureURL(h.config.BaseURL),
		SameSite: http.SameSiteLaxMode,
	}
}
