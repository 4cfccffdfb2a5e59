package instrumentation

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Common span attribute keys
//
// SECURITY WARNING: Never record actual credential values (access tokens,
// authorization codes, client secrets, CSRF state) in traces or metrics.
// Only record metadata such as token types, scopes and result codes.
const (
	AttrProviderLogin = "github.login"
	AttrScope         = "oauth.scope"
	AttrTokenType     = "oauth.token_type" //nolint:gosec // Token type (bearer) - NOT the actual token
	AttrTokenVariant  = "oauth.token_exchange.variant"
	AttrGroupsSynced  = "github.groups_synced"
	AttrOrganization  = "github.organization"
	AttrTeamCount     = "github.team_count"
	AttrPageCount     = "github.page_count"
	AttrResult        = "authgithub.result"

	AttrProviderOperation = "provider.operation"
	AttrHTTPMethod        = "http.method"
	AttrHTTPURL           = "http.url"
	AttrHTTPStatusCode    = "http.status_code"

	AttrClientIP = "security.client_ip"
)

// RecordError records an error on a span with proper status codes (nil-safe)
func RecordError(span trace.Span, err error) {
	if span != nil && err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanSuccess marks a span as successful (nil-safe)
func SetSpanSuccess(span trace.Span) {
	if span != nil {
		span.SetStatus(codes.Ok, "")
	}
}

// SetSpanAttributes sets attributes on a span (nil-safe)
func SetSpanAttributes(span trace.Span, attrs ...attribute.KeyValue) {
	if span != nil {
		span.SetAttributes(attrs...)
	}
}

// AddProviderCallAttributes adds GitHub API call attributes to a span (nil-safe)
func AddProviderCallAttributes(span trace.Span, operation, method, url string) {
	SetSpanAttributes(span,
		attribute.String(AttrProviderOperation, operation),
		attribute.String(AttrHTTPMethod, method),
		attribute.String(AttrHTTPURL, url),
	)
}

// AddHTTPStatus records the response status code on a span (nil-safe)
func AddHTTPStatus(span trace.Span, statusCode int) {
	SetSpanAttributes(span, attribute.Int(AttrHTTPStatusCode, statusCode))
}

// AddIdentityAttributes records non-secret identity metadata on a span (nil-safe)
func AddIdentityAttributes(span trace.Span, providerLogin string, groupsSynced bool) {
	if providerLogin != "" {
		SetSpanAttributes(span, attribute.String(AttrProviderLogin, providerLogin))
	}
	SetSpanAttributes(span, attribute.Bool(AttrGroupsSynced, groupsSynced))
}
