package instrumentation

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Callback results recorded on authgithub.flow.callback.total
const (
	ResultSuccess      = "success"
	ResultDisabled     = "disabled"
	ResultCSRFMismatch = "csrf_mismatch"
	ResultDenied       = "denied"
	ResultUnauthorized = "unauthorized"
	ResultUpstream     = "upstream_error"
	ResultError        = "error"
)

// Membership check results recorded on authgithub.membership.checks.total
const (
	MembershipMember    = "member"
	MembershipNotMember = "not_member"
	MembershipError     = "error"
)

// Metrics holds all metric instruments for the GitHub authentication plugin
type Metrics struct {
	// Flow Metrics
	InitStarted       metric.Int64Counter
	CallbackProcessed metric.Int64Counter
	CodeExchanged     metric.Int64Counter

	// Provider Metrics
	ProviderAPICallsTotal metric.Int64Counter
	ProviderAPIDuration   metric.Float64Histogram
	ProviderAPIErrors     metric.Int64Counter
	MembershipChecks      metric.Int64Counter
	TeamPagesFetched      metric.Int64Counter

	// Security Metrics
	RateLimitExceeded metric.Int64Counter
	AuditEventsTotal  metric.Int64Counter
}

// newMetrics creates and registers all metric instruments
func newMetrics(inst *Instrumentation) (*Metrics, error) {
	m := &Metrics{}
	flowMeter := inst.Meter("flow")
	providerMeter := inst.Meter("provider")
	securityMeter := inst.Meter("security")

	var err error

	// Flow Metrics
	m.InitStarted, err = flowMeter.Int64Counter(
		"authgithub.flow.init.total",
		metric.WithDescription("Number of authorization redirects issued"),
		metric.WithUnit("{flow}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create flow.init.total counter: %w", err)
	}

	m.CallbackProcessed, err = flowMeter.Int64Counter(
		"authgithub.flow.callback.total",
		metric.WithDescription("Number of OAuth callbacks processed, by result"),
		metric.WithUnit("{callback}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create flow.callback.total counter: %w", err)
	}

	m.CodeExchanged, err = flowMeter.Int64Counter(
		"authgithub.code.exchanged",
		metric.WithDescription("Number of authorization codes exchanged for access tokens"),
		metric.WithUnit("{exchange}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create code.exchanged counter: %w", err)
	}

	// Provider Metrics
	m.ProviderAPICallsTotal, err = providerMeter.Int64Counter(
		"authgithub.provider.api.calls.total",
		metric.WithDescription("Total number of GitHub API calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider.api.calls.total counter: %w", err)
	}

	m.ProviderAPIDuration, err = providerMeter.Float64Histogram(
		"authgithub.provider.api.duration",
		metric.WithDescription("GitHub API call duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider.api.duration histogram: %w", err)
	}

	m.ProviderAPIErrors, err = providerMeter.Int64Counter(
		"authgithub.provider.api.errors.total",
		metric.WithDescription("Total number of failed GitHub API calls"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider.api.errors.total counter: %w", err)
	}

	m.MembershipChecks, err = providerMeter.Int64Counter(
		"authgithub.membership.checks.total",
		metric.WithDescription("Number of organization membership checks, by result"),
		metric.WithUnit("{check}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create membership.checks.total counter: %w", err)
	}

	m.TeamPagesFetched, err = providerMeter.Int64Counter(
		"authgithub.teams.pages.total",
		metric.WithDescription("Number of team list pages fetched"),
		metric.WithUnit("{page}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create teams.pages.total counter: %w", err)
	}

	// Security Metrics
	m.RateLimitExceeded, err = securityMeter.Int64Counter(
		"authgithub.rate_limit.exceeded",
		metric.WithDescription("Number of rate limit violations"),
		metric.WithUnit("{violation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate_limit.exceeded counter: %w", err)
	}

	m.AuditEventsTotal, err = securityMeter.Int64Counter(
		"authgithub.audit.events.total",
		metric.WithDescription("Total number of audit events"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit.events.total counter: %w", err)
	}

	return m, nil
}

// RecordInitStarted records an authorization redirect
func (m *Metrics) RecordInitStarted(ctx context.Context, scope string) {
	m.InitStarted.Add(ctx, 1, metric.WithAttributes(
		attribute.String("scope", scope),
	))
}

// RecordCallbackProcessed records a callback outcome
func (m *Metrics) RecordCallbackProcessed(ctx context.Context, result string) {
	m.CallbackProcessed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("result", result),
	))
}

// RecordCodeExchange records an authorization code exchange
func (m *Metrics) RecordCodeExchange(ctx context.Context, variant string, success bool) {
	m.CodeExchanged.Add(ctx, 1, metric.WithAttributes(
		attribute.String("variant", variant),
		attribute.Bool("success", success),
	))
}

// RecordProviderAPICall records a GitHub API call
func (m *Metrics) RecordProviderAPICall(ctx context.Context, operation string, statusCode int, durationMs float64, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.Int("status", statusCode),
	}

	m.ProviderAPICallsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.ProviderAPIDuration.Record(ctx, durationMs, metric.WithAttributes(
		attribute.String("operation", operation),
	))

	if err != nil {
		errorType := "transport"
		if statusCode >= 400 && statusCode < 500 {
			errorType = "client_error"
		} else if statusCode >= 500 {
			errorType = "server_error"
		} else if statusCode != 0 {
			errorType = "unexpected_status"
		}

		m.ProviderAPIErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("error_type", errorType),
		))
	}
}

// RecordMembershipCheck records an organization membership check
func (m *Metrics) RecordMembershipCheck(ctx context.Context, result string) {
	m.MembershipChecks.Add(ctx, 1, metric.WithAttributes(
		attribute.String("result", result),
	))
}

// RecordTeamPage records one page of the team list
func (m *Metrics) RecordTeamPage(ctx context.Context) {
	m.TeamPagesFetched.Add(ctx, 1)
}

// RecordRateLimitExceeded records a rate limit violation
func (m *Metrics) RecordRateLimitExceeded(ctx context.Context, limiterType string) {
	m.RateLimitExceeded.Add(ctx, 1, metric.WithAttributes(
		attribute.String("limiter_type", limiterType),
	))
}

// RecordAuditEvent records an audit event
func (m *Metrics) RecordAuditEvent(ctx context.Context, eventType string) {
	m.AuditEventsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event_type", eventType),
	))
}
