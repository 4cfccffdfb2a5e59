package httphost

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	authgithub "github.com/SonarSource/sonar-auth-github"
	"github.com/SonarSource/sonar-auth-github/instrumentation"
	"github.com/SonarSource/sonar-auth-github/providers/github"
	"github.com/SonarSource/sonar-auth-github/security"
)

const (
	DefaultLoginPath    = "/sessions/init/github"
	DefaultCallbackPath = "/oauth2/callback/github"
	DefaultStateTTL     = 10 * time.Minute

	stateCookieName = "OAUTHSTATE"
	returnToParam   = "return_to"
)

// Provider is the subset of authgithub.IdentityProvider used by the host.
type Provider interface {
	Key() string
	Init(ctx context.Context, ic authgithub.InitContext) error
	Callback(ctx context.Context, cc authgithub.CallbackContext) error
}

// AuthenticateFunc registers or updates the user and opens a session.
type AuthenticateFunc func(ctx context.Context, w http.ResponseWriter, identity authgithub.Identity) error

// ErrorFunc renders a failed login.
type ErrorFunc func(w http.ResponseWriter, r *http.Request, err error)

// Config configures a Host.
type Config struct {
	// BaseURL is the public URL of the host, used to build the callback URL.
	BaseURL string

	// LoginPath and CallbackPath are the routes served by Handler.
	LoginPath    string
	CallbackPath string

	// DefaultReturnTo is used when the login request has no return_to (default: "/").
	DefaultReturnTo string

	// StateKey seals the state cookie. It must be security.KeySize bytes;
	// a random key is generated when nil, which invalidates pending logins
	// on restart.
	StateKey []byte

	// StateTTL bounds the time between login and callback (default: 10m).
	StateTTL time.Duration

	// Authenticate is called with the identity of every successful login (required).
	Authenticate AuthenticateFunc

	// OnError renders failures (default: a generic plain text page).
	OnError ErrorFunc

	// RateLimit is the number of login and callback requests per second
	// allowed per client IP. Zero disables limiting.
	RateLimit int
	RateBurst int

	// TrustProxy enables X-Forwarded-For / X-Real-IP handling.
	TrustProxy        bool
	TrustedProxyCount int

	Logger  *slog.Logger
	Auditor *security.Auditor
	Metrics *instrumentation.Metrics
}

// Host serves the GitHub login routes.
type Host struct {
	provider Provider
	config   Config
	sealer   *security.StateSealer
	limiter  *security.RateLimiter
	logger   *slog.Logger
}

// New creates a Host for provider.
func New(provider Provider, cfg Config) (*Host, error) {
	if provider == nil {
		return nil, fmt.Errorf("provider is required")
	}
	if cfg.Authenticate == nil {
		return nil, fmt.Errorf("authenticate function is required")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.LoginPath == "" {
		cfg.LoginPath = DefaultLoginPath
	}
	if cfg.CallbackPath == "" {
		cfg.CallbackPath = DefaultCallbackPath
	}
	if cfg.DefaultReturnTo == "" {
		cfg.DefaultReturnTo = "/"
	}
	if cfg.StateTTL <= 0 {
		cfg.StateTTL = DefaultStateTTL
	}
	if cfg.OnError == nil {
		cfg.OnError = defaultErrorPage
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	key := cfg.StateKey
	if key == nil {
		generated, err := security.GenerateKey()
		if err != nil {
			return nil, err
		}
		cfg.Logger.Warn("No state key configured, generated an ephemeral one")
		key = generated
	}
	sealer, err := security.NewStateSealer(key, cfg.StateTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid state key: %w", err)
	}

	h := &Host{
		provider: provider,
		config:   cfg,
		sealer:   sealer,
		logger:   cfg.Logger,
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = cfg.RateLimit * 2
		}
		h.limiter = security.NewRateLimiter(cfg.RateLimit, burst, cfg.Logger)
	}
	return h, nil
}

// Close stops background work.
func (h *Host) Close() {
	if h.limiter != nil {
		h.limiter.Stop()
	}
}

// CallbackURL is the redirect URI registered on the GitHub OAuth App.
func (h *Host) CallbackURL() string {
	return h.config.BaseURL + h.config.CallbackPath
}

// Handler returns the login and callback routes wrapped with request IDs.
func (h *Host) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+h.config.LoginPath, h.ServeLogin)
	mux.HandleFunc("GET "+h.config.CallbackPath, h.ServeCallback)
	return security.RequestIDMiddleware(mux)
}

// ServeLogin starts the flow and redirects to GitHub.
func (h *Host) ServeLogin(w http.ResponseWriter, r *http.Request) {
	security.SetSecurityHeaders(w, h.config.BaseURL)
	ip := h.clientIP(r)
	if !h.allow(w, r, ip) {
		return
	}

	ic := &initContext{host: h, w: w, r: r, ip: ip, returnTo: h.safeReturnTo(r.URL.Query().Get(returnToParam))}
	err := h.provider.Init(r.Context(), ic)
	if ic.err != nil {
		err = errors.Join(ic.err, err)
	}
	if err != nil {
		h.fail(w, r, err)
	}
}

// ServeCallback completes the flow.
func (h *Host) ServeCallback(w http.ResponseWriter, r *http.Request) {
	security.SetSecurityHeaders(w, h.config.BaseURL)
	ip := h.clientIP(r)
	if !h.allow(w, r, ip) {
		return
	}

	cc := &callbackContext{host: h, w: w, r: r, ip: ip, returnTo: h.config.DefaultReturnTo}
	if err := h.provider.Callback(r.Context(), cc); err != nil {
		h.fail(w, r, err)
	}
}

func (h *Host) clientIP(r *http.Request) string {
	return security.GetClientIP(r, h.config.TrustProxy, h.config.TrustedProxyCount)
}

func (h *Host) allow(w http.ResponseWriter, r *http.Request, ip string) bool {
	if h.limiter == nil || h.limiter.Allow(ip) {
		return true
	}
	h.config.Auditor.LogRateLimitExceeded(ip, "ip")
	if h.config.Metrics != nil {
		h.config.Metrics.RecordRateLimitExceeded(r.Context(), "ip")
	}
	h.logger.Warn("Login rate limit exceeded", "ip", ip, "request_id", security.GetRequestID(r.Context()))
	w.Header().Set("Retry-After", "1")
	http.Error(w, "too many requests", http.StatusTooManyRequests)
	return false
}

func (h *Host) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Warn("GitHub login failed",
		"path", r.URL.Path,
		"request_id", security.GetRequestID(r.Context()),
		"error", err)
	h.config.OnError(w, r, err)
}

// safeReturnTo only accepts local absolute paths.
func (h *Host) safeReturnTo(v string) string {
	if v == "" || !strings.HasPrefix(v, "/") || strings.HasPrefix(v, "//") || strings.HasPrefix(v, "/\\") ||
		strings.ContainsAny(v, "\r\n") {
		return h.config.DefaultReturnTo
	}
	return v
}

// StatusCode maps a login failure to an HTTP status.
func StatusCode(err error) int {
	var (
		denied       *authgithub.AuthorizationDeniedError
		unauthorized *authgithub.UnauthorizedError
		upstream     *github.UpstreamError
		exchange     *github.TokenExchangeError
	)
	switch {
	case errors.Is(err, authgithub.ErrProviderDisabled):
		return http.StatusNotFound
	case errors.Is(err, authgithub.ErrCSRFMismatch):
		return http.StatusForbidden
	case errors.Is(err, authgithub.ErrMissingCode):
		return http.StatusBadRequest
	case errors.As(err, &denied):
		return http.StatusUnauthorized
	case errors.As(err, &unauthorized):
		return http.StatusForbidden
	case errors.As(err, &upstream), errors.As(err, &exchange):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func defaultErrorPage(w http.ResponseWriter, _ *http.Request, err error) {
	var unauthorized *authgithub.UnauthorizedError
	msg := "GitHub authentication failed"
	if errors.As(err, &unauthorized) {
		msg = "You're not authorized to access this page: " + unauthorized.Error()
	}
	http.Error(w, msg, StatusCode(err))
}
