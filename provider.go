package authgithub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/SonarSource/sonar-auth-github/instrumentation"
	"github.com/SonarSource/sonar-auth-github/providers/github"
	"github.com/SonarSource/sonar-auth-github/security"
	"github.com/SonarSource/sonar-auth-github/settings"
)

const (
	// ProviderKey identifies the provider in host URLs and user records.
	ProviderKey = "github"

	// ProviderName is shown on the login button.
	ProviderName = "GitHub"

	scopeEmail   = "user:email"
	scopeReadOrg = "read:org"
)

// IdentityProvider authenticates users against GitHub.
// It is safe for concurrent use; each flow reads fresh settings.
type IdentityProvider struct {
	store        settings.Store
	logger       *slog.Logger
	httpClient   *http.Client
	exchange     github.TokenExchange
	capabilities Capabilities
	metrics      *instrumentation.Metrics
	flowTracer   trace.Tracer
	apiTracer    trace.Tracer
	auditor      *security.Auditor
	apiLimiter   *rate.Limiter
	maxTeamPages int
}

// New creates an IdentityProvider reading its settings from store.
func New(store settings.Store, cfg *Config) (*IdentityProvider, error) {
	if store == nil {
		return nil, fmt.Errorf("settings store is required")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if _, err := github.ParseTokenExchange(string(cfg.TokenExchange)); err != nil {
		return nil, err
	}
	cfg = applyDefaults(cfg)

	p := &IdentityProvider{
		store:        store,
		logger:       cfg.Logger,
		httpClient:   cfg.HTTPClient,
		exchange:     cfg.TokenExchange,
		capabilities: CapabilitiesFor(cfg.HostVersion),
		metrics:      cfg.Instrumentation.Metrics(),
		flowTracer:   cfg.Instrumentation.Tracer("flow"),
		apiTracer:    cfg.Instrumentation.Tracer("provider"),
		auditor:      cfg.Auditor,
		maxTeamPages: cfg.MaxTeamPages,
	}
	if cfg.APIRateLimit > 0 {
		p.apiLimiter = rate.NewLimiter(rate.Limit(cfg.APIRateLimit), cfg.APIBurst)
	}
	if p.auditor != nil {
		metrics := p.metrics
		p.auditor.OnEvent(func(eventType string) {
			metrics.RecordAuditEvent(context.Background(), eventType)
		})
	}

	p.logger.Debug("GitHub identity provider created",
		"token_exchange", p.exchange,
		"host_version", cfg.HostVersion.String(),
		"provider_id_supported", p.capabilities.ProviderID)
	return p, nil
}

// Key returns the provider key.
func (p *IdentityProvider) Key() string {
	return ProviderKey
}

// Name returns the provider display name.
func (p *IdentityProvider) Name() string {
	return ProviderName
}

// Display returns the login button rendering.
func (p *IdentityProvider) Display() Display {
	return Display{
		IconPath:        "/static/authgithub/github.svg",
		BackgroundColor: "#444444",
	}
}

// Settings returns a view over the current settings.
func (p *IdentityProvider) Settings() *settings.Settings {
	return settings.New(p.store)
}

// IsEnabled reports whether GitHub login is enabled and configured.
func (p *IdentityProvider) IsEnabled() bool {
	return p.Settings().IsEnabled()
}

// AllowsUsersToSignUp reports whether unknown GitHub users may be created.
func (p *IdentityProvider) AllowsUsersToSignUp() bool {
	return p.Settings().AllowUsersToSignUp()
}

// Scope returns the OAuth scope requested with s. read:org is only requested
// when teams or organization memberships must be read.
func Scope(s *settings.Settings) string {
	if s.SyncGroups() || len(s.Organizations()) > 0 {
		return scopeEmail + "," + scopeReadOrg
	}
	return scopeEmail
}

func (p *IdentityProvider) oauthApp(s *settings.Settings, callbackURL string) github.OAuthApp {
	return github.OAuthApp{
		ClientID:     s.ClientID(),
		ClientSecret: s.ClientSecret(),
		RedirectURL:  callbackURL,
		Endpoint:     github.NewEndpoint(s.WebURL(), p.exchange),
	}
}

// Init redirects the browser to GitHub's authorize page.
func (p *IdentityProvider) Init(ctx context.Context, ic InitContext) error {
	ctx, span := p.flowTracer.Start(ctx, "authgithub.init")
	defer span.End()

	s := p.Settings()
	if !s.IsEnabled() {
		instrumentation.RecordError(span, ErrProviderDisabled)
		return ErrProviderDisabled
	}

	state := ic.GenerateCSRFState()
	if state == "" {
		instrumentation.RecordError(span, ErrMissingState)
		return ErrMissingState
	}
	scope := Scope(s)
	ic.RedirectTo(p.oauthApp(s, ic.CallbackURL()).AuthCodeURL(state, scope))

	p.metrics.RecordInitStarted(ctx, scope)
	p.auditor.LogAuthorizationStarted(ProviderKey, clientIP(ic), scope)
	instrumentation.SetSpanAttributes(span, attribute.String(instrumentation.AttrScope, scope))
	instrumentation.SetSpanSuccess(span)
	p.logger.Debug("Redirecting to GitHub authorization", "scope", scope, "web_url", s.WebURL())
	return nil
}

// Callback completes the flow started by Init. On success the identity has
// been passed to the host and the browser redirected to the requested page.
// On failure nothing has been passed to the host.
func (p *IdentityProvider) Callback(ctx context.Context, cc CallbackContext) error {
	ctx, span := p.flowTracer.Start(ctx, "authgithub.callback")
	defer span.End()

	identity, err := p.callback(ctx, cc)
	result := callbackResult(err)
	p.metrics.RecordCallbackProcessed(ctx, result)
	instrumentation.SetSpanAttributes(span, attribute.String(instrumentation.AttrResult, result))

	if err != nil {
		instrumentation.RecordError(span, err)
		p.auditFailure(cc, identity.ProviderLogin, result, err)
		p.logger.Warn("GitHub authentication failed", "result", result, "error", err)
		return err
	}

	instrumentation.AddIdentityAttributes(span, identity.ProviderLogin, identity.GroupsSynced())
	instrumentation.SetSpanSuccess(span)
	p.auditor.LogAuthSuccess(identity.Login, ProviderKey, clientIP(cc))
	p.logger.Info("GitHub authentication succeeded",
		"login", identity.Login,
		"groups_synced", identity.GroupsSynced(),
		"groups", len(identity.Groups))
	return nil
}

// callback returns a partially filled identity on failure so that the
// GitHub login can be audited.
func (p *IdentityProvider) callback(ctx context.Context, cc CallbackContext) (Identity, error) {
	s := p.Settings()
	if !s.IsEnabled() {
		return Identity{}, ErrProviderDisabled
	}

	if err := cc.VerifyCSRFState(); err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrCSRFMismatch, err)
	}

	if code := cc.RequestParam("error"); code != "" {
		return Identity{}, &AuthorizationDeniedError{Code: code, Description: cc.RequestParam("error_description")}
	}
	code := cc.RequestParam("code")
	if code == "" {
		return Identity{}, ErrMissingCode
	}

	strategy, err := settings.ParseLoginStrategy(s.LoginStrategy())
	if err != nil {
		return Identity{}, err
	}

	token, err := p.oauthApp(s, cc.CallbackURL()).Exchange(ctx, p.httpClient, code)
	p.metrics.RecordCodeExchange(ctx, string(p.exchange), err == nil)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	profile, err := p.fetchProfile(ctx, s, token)
	if err != nil {
		return Identity{ProviderLogin: profile.User.Login}, err
	}

	identity, err := MapIdentity(profile, strategy, p.capabilities)
	if err != nil {
		return Identity{ProviderLogin: profile.User.Login}, err
	}

	if err := cc.Authenticate(identity); err != nil {
		return identity, fmt.Errorf("host rejected identity: %w", err)
	}
	cc.RedirectToRequestedPage()
	return identity, nil
}

// fetchProfile reads the user, resolves emails, enforces the organization
// gate and reads teams, in that order.
func (p *IdentityProvider) fetchProfile(ctx context.Context, s *settings.Settings, token *oauth2.Token) (Profile, error) {
	client := github.NewClient(github.ClientConfig{
		APIURL:       s.APIURL(),
		HTTPClient:   p.httpClient,
		Logger:       p.logger,
		Limiter:      p.apiLimiter,
		Metrics:      p.metrics,
		Tracer:       p.apiTracer,
		MaxTeamPages: p.maxTeamPages,
	}, token)

	var profile Profile
	user, err := client.GetUser(ctx)
	if err != nil {
		return profile, fmt.Errorf("failed to fetch GitHub user: %w", err)
	}
	profile.User = *user

	if user.Email != nil && *user.Email != "" {
		profile.Email = *user.Email
	} else {
		emails, err := client.GetEmails(ctx)
		if err != nil {
			return profile, fmt.Errorf("failed to fetch GitHub emails: %w", err)
		}
		profile.Email, _ = github.PrimaryEmail(emails)
		profile.SecondaryEmails = github.SecondaryEmails(emails)
	}

	if orgs := s.Organizations(); len(orgs) > 0 {
		if err := p.checkMembership(ctx, client, user.Login, orgs); err != nil {
			return profile, err
		}
	}

	if s.SyncGroups() {
		teams, err := client.GetTeams(ctx)
		if err != nil {
			return profile, fmt.Errorf("failed to fetch GitHub teams: %w", err)
		}
		if teams == nil {
			teams = []github.Team{}
		}
		profile.Teams = teams
	}
	return profile, nil
}

// checkMembership succeeds at the first organization, in configured order,
// that reports login as a member.
func (p *IdentityProvider) checkMembership(ctx context.Context, client *github.Client, login string, orgs []string) error {
	for _, org := range orgs {
		member, err := client.IsOrganizationMember(ctx, org, login)
		if err != nil {
			return fmt.Errorf("failed to check membership of organization %q: %w", org, err)
		}
		if member {
			p.logger.Debug("GitHub organization membership confirmed", "organization", org)
			return nil
		}
	}
	return &UnauthorizedError{Login: login, Organizations: orgs}
}

func (p *IdentityProvider) auditFailure(cc CallbackContext, login, result string, err error) {
	ip := clientIP(cc)
	var unauthorized *UnauthorizedError
	switch {
	case errors.Is(err, ErrCSRFMismatch):
		p.auditor.LogCSRFMismatch(ProviderKey, ip)
	case errors.As(err, &unauthorized):
		p.auditor.LogOrganizationMembershipDenied(unauthorized.Login, ProviderKey, ip, unauthorized.Organizations)
	default:
		p.auditor.LogAuthFailure(login, ProviderKey, ip, result)
	}
}

func callbackResult(err error) string {
	var (
		denied       *AuthorizationDeniedError
		unauthorized *UnauthorizedError
		upstream     *github.UpstreamError
		exchange     *github.TokenExchangeError
	)
	switch {
	case err == nil:
		return instrumentation.ResultSuccess
	case errors.Is(err, ErrProviderDisabled):
		return instrumentation.ResultDisabled
	case errors.Is(err, ErrCSRFMismatch):
		return instrumentation.ResultCSRFMismatch
	case errors.As(err, &denied):
		return instrumentation.ResultDenied
	case errors.As(err, &unauthorized):
		return instrumentation.ResultUnauthorized
	case errors.As(err, &upstream), errors.As(err, &exchange):
		return instrumentation.ResultUpstream
	default:
		return instrumentation.ResultError
	}
}
