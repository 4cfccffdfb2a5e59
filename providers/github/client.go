package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/SonarSource/sonar-auth-github/instrumentation"
	"github.com/SonarSource/sonar-auth-github/internal/util"
)

const (
	acceptHeader = "application/vnd.github.v3+json"

	// teamsPageSize is the largest page GitHub serves.
	teamsPageSize = 100

	maxResponseSize = 10 << 20
	maxBodyInError  = 1024
	maxBodyInLog    = 512
)

// ErrTooManyPages is returned when a paginated listing exceeds ClientConfig.MaxTeamPages.
var ErrTooManyPages = errors.New("github pagination exceeded the configured page limit")

// API operation names used in logs, spans and metrics.
const (
	OperationUser       = "get_user"
	OperationEmails     = "get_emails"
	OperationTeams      = "get_teams"
	OperationMembership = "check_membership"
)

// ClientConfig configures a Client.
type ClientConfig struct {
	// APIURL is the REST API base URL, e.g. https://api.github.com/ or
	// https://ghe.example.com/api/v3/.
	APIURL string

	// HTTPClient performs the requests (default: http.DefaultClient).
	HTTPClient *http.Client

	// Logger receives debug logs of API responses (default: slog.Default()).
	Logger *slog.Logger

	// Limiter throttles outbound API calls when set.
	Limiter *rate.Limiter

	// Metrics records API calls when set.
	Metrics *instrumentation.Metrics

	// Tracer creates one span per API call (default: no-op).
	Tracer trace.Tracer

	// MaxTeamPages bounds team pagination. 0 means unlimited.
	MaxTeamPages int
}

// Client issues signed requests against the GitHub REST API for one access token.
type Client struct {
	apiURL       string
	httpClient   *http.Client
	noRedirect   *http.Client
	token        *oauth2.Token
	logger       *slog.Logger
	limiter      *rate.Limiter
	metrics      *instrumentation.Metrics
	tracer       trace.Tracer
	maxTeamPages int
}

// NewClient returns a client signing every request with token.
func NewClient(cfg ClientConfig, token *oauth2.Token) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	noRedirect := *httpClient
	noRedirect.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}

	return &Client{
		apiURL:       util.WithTrailingSlash(cfg.APIURL),
		httpClient:   httpClient,
		noRedirect:   &noRedirect,
		token:        token,
		logger:       logger,
		limiter:      cfg.Limiter,
		metrics:      cfg.Metrics,
		tracer:       tracer,
		maxTeamPages: cfg.MaxTeamPages,
	}
}

// GetUser returns the authenticated user's profile.
func (c *Client) GetUser(ctx context.Context) (*User, error) {
	body, _, err := c.get(ctx, OperationUser, c.apiURL+"user")
	if err != nil {
		return nil, err
	}
	return decodeUser(body)
}

// GetEmails returns all email addresses of the authenticated user.
// Requires the user:email scope.
func (c *Client) GetEmails(ctx context.Context) ([]Email, error) {
	body, _, err := c.get(ctx, OperationEmails, c.apiURL+"user/emails")
	if err != nil {
		return nil, err
	}
	return decodeEmails(body)
}

// GetTeams returns every team of the authenticated user across all pages.
// Requires the read:org scope.
func (c *Client) GetTeams(ctx context.Context) ([]Team, error) {
	next := fmt.Sprintf("%suser/teams?per_page=%d", c.apiURL, teamsPageSize)
	var all []Team
	pages := 0

	for next != "" {
		if c.maxTeamPages > 0 && pages >= c.maxTeamPages {
			return nil, fmt.Errorf("%w: %d pages", ErrTooManyPages, c.maxTeamPages)
		}

		body, header, err := c.get(ctx, OperationTeams, next)
		if err != nil {
			return nil, err
		}
		teams, err := decodeTeams(body)
		if err != nil {
			return nil, err
		}
		all = append(all, teams...)
		pages++
		if c.metrics != nil {
			c.metrics.RecordTeamPage(ctx)
		}

		next = nextPageURL(header.Values("Link"))
	}

	c.logger.Debug("Fetched GitHub teams", "teams", len(all), "pages", pages)
	return all, nil
}

// IsOrganizationMember reports whether login is a member of organization.
// Requires the read:org scope to see private memberships.
func (c *Client) IsOrganizationMember(ctx context.Context, organization, login string) (bool, error) {
	endpoint := c.apiURL + "orgs/" + url.PathEscape(organization) + "/members/" + url.PathEscape(login)

	ctx, span := c.startSpan(ctx, OperationMembership, endpoint)
	defer span.End()
	instrumentation.SetSpanAttributes(span, attribute.String(instrumentation.AttrOrganization, organization))

	resp, body, duration, err := c.do(ctx, c.noRedirect, endpoint)
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	instrumentation.AddHTTPStatus(span, status)

	var member bool
	switch {
	case err != nil:
	case status == http.StatusNoContent:
		member = true
	case status == http.StatusFound, status == http.StatusNotFound:
	default:
		err = &UpstreamError{URL: endpoint, StatusCode: status, Body: util.SafeTruncate(string(body), maxBodyInError)}
	}

	c.recordCall(ctx, OperationMembership, status, duration, err)
	if c.metrics != nil {
		result := instrumentation.MembershipNotMember
		if err != nil {
			result = instrumentation.MembershipError
		} else if member {
			result = instrumentation.MembershipMember
		}
		c.metrics.RecordMembershipCheck(ctx, result)
	}

	if err != nil {
		instrumentation.RecordError(span, err)
		return false, err
	}
	instrumentation.SetSpanSuccess(span)
	c.logger.Debug("Checked GitHub organization membership", "organization", organization, "status", status, "member", member)
	return member, nil
}

// get issues a signed GET and returns the body of a 2xx response.
func (c *Client) get(ctx context.Context, operation, endpoint string) ([]byte, http.Header, error) {
	ctx, span := c.startSpan(ctx, operation, endpoint)
	defer span.End()

	resp, body, duration, err := c.do(ctx, c.httpClient, endpoint)
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	instrumentation.AddHTTPStatus(span, status)

	if err == nil && (status < 200 || status > 299) {
		err = &UpstreamError{URL: endpoint, StatusCode: status, Body: util.SafeTruncate(string(body), maxBodyInError)}
	}
	c.recordCall(ctx, operation, status, duration, err)

	if err != nil {
		instrumentation.RecordError(span, err)
		return nil, nil, err
	}

	c.logger.Debug("GitHub API response",
		"operation", operation,
		"url", endpoint,
		"status", status,
		"body", util.SafeTruncate(string(body), maxBodyInLog))
	instrumentation.SetSpanSuccess(span)
	return body, resp.Header, nil
}

func (c *Client) do(ctx context.Context, httpClient *http.Client, endpoint string) (*http.Response, []byte, time.Duration, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, nil, 0, fmt.Errorf("github api rate limit wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", acceptHeader)
	if c.token != nil {
		c.token.SetAuthHeader(req)
	}

	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, nil, time.Since(start), fmt.Errorf("request to '%s' failed: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	duration := time.Since(start)
	if err != nil {
		return resp, nil, duration, fmt.Errorf("failed to read response from '%s': %w", endpoint, err)
	}
	return resp, body, duration, nil
}

func (c *Client) startSpan(ctx context.Context, operation, endpoint string) (context.Context, trace.Span) {
	ctx, span := c.tracer.Start(ctx, "github.api."+operation, trace.WithSpanKind(trace.SpanKindClient))
	instrumentation.AddProviderCallAttributes(span, operation, http.MethodGet, stripQuery(endpoint))
	return ctx, span
}

func (c *Client) recordCall(ctx context.Context, operation string, status int, duration time.Duration, err error) {
	if c.metrics == nil {
		return
	}
	c.metrics.RecordProviderAPICall(ctx, operation, status, float64(duration.Microseconds())/1000, err)
}

func stripQuery(endpoint string) string {
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		return endpoint[:i]
	}
	return endpoint
}
