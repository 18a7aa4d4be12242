package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	authAttempts    metric.Int64Counter
	gateVerdicts    metric.Int64Counter
	apiCallsTotal   metric.Int64Counter
	apiCallDuration metric.Float64Histogram
)

// Init creates the portal's instruments on the global meter provider.
// Recording before Init is a no-op.
func Init(serviceName string) error {
	meter := otel.Meter(serviceName)

	var err error
	authAttempts, err = meter.Int64Counter(
		"portal_auth_attempts_total",
		metric.WithDescription("Login, registration, restore and logout outcomes"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create portal_auth_attempts_total counter: %w", err)
	}

	gateVerdicts, err = meter.Int64Counter(
		"portal_gate_verdicts_total",
		metric.WithDescription("Route gate verdicts per required role"),
		metric.WithUnit("{verdict}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create portal_gate_verdicts_total counter: %w", err)
	}

	apiCallsTotal, err = meter.Int64Counter(
		"portal_api_calls_total",
		metric.WithDescription("Calls to the REST API"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create portal_api_calls_total counter: %w", err)
	}

	apiCallDuration, err = meter.Float64Histogram(
		"portal_api_call_duration_seconds",
		metric.WithDescription("REST API call duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create portal_api_call_duration_seconds histogram: %w", err)
	}

	return nil
}

func RecordAuthAttempt(ctx context.Context, operation string, success bool) {
	if authAttempts == nil {
		return
	}
	authAttempts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.Bool("success", success),
	))
}

func RecordGateVerdict(ctx context.Context, role, verdict string) {
	if gateVerdicts == nil {
		return
	}
	gateVerdicts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("role", role),
		attribute.String("verdict", verdict),
	))
}

func RecordAPICall(ctx context.Context, operation string, statusCode int, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.Int("http.status_code", statusCode),
	)
	if apiCallsTotal != nil {
		apiCallsTotal.Add(ctx, 1, attrs)
	}
	if apiCallDuration != nil {
		apiCallDuration.Record(ctx, duration.Seconds(), attrs)
	}
}
