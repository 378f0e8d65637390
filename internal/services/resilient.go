package services

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/spenly/backend/internal/logger"
)

// withFallback runs primary under a deadline and returns its result, or
// the fallback value when primary errors or times out.
func withFallback[T any](ctx context.Context, capability string, timeout time.Duration, primary func(context.Context) (T, error), fallback func() T) T {
	if primary == nil {
		oracleCallsTotal.WithLabelValues(capability, "skipped").Inc()
		return fallback()
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	timer := prometheus.NewTimer(oracleLatency.WithLabelValues(capability))
	out, err := primary(callCtx)
	timer.ObserveDuration()

	if err != nil {
		oracleCallsTotal.WithLabelValues(capability, "fallback").Inc()
		l := logger.FromContext(ctx)
		l.Warn().Err(err).Str("capability", capability).Msg("oracle call failed, using fallback")
		return fallback()
	}

	oracleCallsTotal.WithLabelValues(capability, "ok").Inc()
	return out
}
