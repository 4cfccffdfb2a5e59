// Package instrumentation provides OpenTelemetry (OTEL) instrumentation for the
// GitHub authentication plugin.
//
// It exposes:
//   - Metrics: counters and histograms for OAuth flows and GitHub API calls
//   - Traces: one span per init/callback and one child span per GitHub request
//
// Instrumentation is opt-in. With Enabled set to false every provider is a
// no-op, so recording has no overhead.
//
// # Quick Start
//
//	inst, err := instrumentation.New(instrumentation.Config{
//		Enabled:        true,
//		ServiceName:    "sonarqube",
//		ServiceVersion: "10.4",
//		MeterProvider:  meterProvider,  // wired to the host's exporter
//		TracerProvider: tracerProvider, // optional
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer inst.Shutdown(context.Background())
//
// # Available Metrics
//
// Flows:
//   - authgithub.flow.init.total{scope} - Authorization redirects issued
//   - authgithub.flow.callback.total{result} - Callbacks processed
//   - authgithub.code.exchanged{variant, success} - Code exchanges
//
// GitHub API:
//   - authgithub.provider.api.calls.total{operation, status}
//   - authgithub.provider.api.duration{operation} - milliseconds
//   - authgithub.provider.api.errors.total{operation, error_type}
//   - authgithub.membership.checks.total{result}
//   - authgithub.teams.pages.total
//
// Security:
//   - authgithub.rate_limit.exceeded{limiter_type}
//   - authgithub.audit.events.total{event_type}
//
// # Security
//
// Never record access tokens, authorization codes, client secrets or CSRF
// state values as attributes. Only record metadata.
package instrumentation
