package http

import (
	"time"

	"github.com/MarinaBrowser/marina/shell/internal/infrastructure/monitoring"
)

// HandlerMetrics times diagnostics operations into the op histogram.
type HandlerMetrics struct {
	metrics *monitoring.Metrics
}

// NewHandlerMetrics creates a metrics wrapper.
func NewHandlerMetrics(metrics *monitoring.Metrics) *HandlerMetrics {
	return &HandlerMetrics{metrics: metrics}
}

// Track times an operation; call the returned func when it finishes.
func (hm *HandlerMetrics) Track(op string) func() {
	start := time.Now()
	return func() {
		hm.metrics.RecordOp(op, "success", time.Since(start))
	}
}

// TrackErr records a failed operation under its error type.
func (hm *HandlerMetrics) TrackErr(op, errorType string) {
	hm.metrics.RecordOpError(op, errorType)
}
