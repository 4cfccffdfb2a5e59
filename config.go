package authgithub

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/SonarSource/sonar-auth-github/instrumentation"
	"github.com/SonarSource/sonar-auth-github/providers/github"
	"github.com/SonarSource/sonar-auth-github/security"
)

// DefaultRequestTimeout bounds every HTTP request made to GitHub.
const DefaultRequestTimeout = 30 * time.Second

// Config holds the wiring of an IdentityProvider. Functional settings such
// as credentials and organizations come from the settings.Store instead.
type Config struct {
	// Logger for structured logging (default: slog.Default()).
	Logger *slog.Logger

	// HTTPClient performs GitHub requests. When nil, a client with
	// RequestTimeout is created.
	HTTPClient *http.Client

	// RequestTimeout is the transport timeout of the default HTTP client
	// (default: 30s).
	RequestTimeout time.Duration

	// TokenExchange selects the code exchange variant
	// (default: github.TokenExchangeLegacy).
	TokenExchange github.TokenExchange

	// HostVersion is the host's authentication API version, used to decide
	// which optional Identity fields are filled (default: CurrentHostVersion).
	HostVersion HostVersion

	// Instrumentation records metrics and spans (default: no-op).
	Instrumentation *instrumentation.Instrumentation

	// Auditor receives security audit events. Nil disables auditing.
	Auditor *security.Auditor

	// APIRateLimit throttles GitHub API calls across all flows, in requests
	// per second. Zero disables throttling.
	APIRateLimit float64

	// APIBurst is the burst allowed by APIRateLimit (default: 10).
	APIBurst int

	// MaxTeamPages bounds team pagination. Zero means unlimited.
	MaxTeamPages int
}

func applyDefaults(cfg *Config) *Config {
	c := *cfg
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.RequestTimeout}
	}
	if c.TokenExchange == "" {
		c.TokenExchange = github.TokenExchangeLegacy
	}
	if c.HostVersion.IsZero() {
		c.HostVersion = CurrentHostVersion
	}
	if c.Instrumentation == nil {
		c.Instrumentation = instrumentation.Noop()
	}
	if c.APIRateLimit > 0 && c.APIBurst <= 0 {
		c.APIBurst = 10
	}
	if c.MaxTeamPages < 0 {
		c.Logger.Warn("Negative MaxTeamPages, team pagination is unlimited", "max_team_pages", c.MaxTeamPages)
		c.MaxTeamPages = 0
	}
	return &c
}
