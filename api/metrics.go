package api

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// requestMetrics collects per-request timings and emits them as one
// structured log line when the request finishes.
type requestMetrics struct {
	logger     *log.Logger
	route      string
	start      time.Time
	opDuration time.Duration
	errorStage string
}

func newRequestMetrics(logger *log.Logger, route string) *requestMetrics {
	return &requestMetrics{
		logger: logger,
		route:  route,
		start:  time.Now(),
	}
}

func (m *requestMetrics) ObserveOp(duration time.Duration) {
	if duration <= 0 {
		return
	}
	m.opDuration = duration
}

func (m *requestMetrics) SetErrorStage(stage string) {
	if stage == "" {
		return
	}
	m.errorStage = stage
}

func (m *requestMetrics) Log(status int, err error) {
	if m == nil || m.logger == nil {
		return
	}

	fields := log.Fields{
		"route":    m.route,
		"status":   status,
		"total_ms": durationToMillis(time.Since(m.start)),
	}
	if m.opDuration > 0 {
		fields["op_ms"] = durationToMillis(m.opDuration)
	}
	if m.errorStage != "" {
		fields["error_stage"] = m.errorStage
	}
	if err != nil {
		fields["error"] = err.Error()
	}

	m.logger.WithFields(fields).Info("request.metrics")
}

func durationToMillis(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}
