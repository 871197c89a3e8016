package metrics

import (
	"strconv"
	"time"
)

// Run outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeDomainError = "domain_error"
	OutcomeError       = "error"
)

// RecordStage observes the duration of one pipeline stage.
func RecordStage(stage string, d time.Duration) {
	PipelineStageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordRun counts one finished pipeline run.
func RecordRun(mode, outcome string) {
	PipelineRuns.WithLabelValues(mode, outcome).Inc()
}

// RecordAPIRequest records a served HTTP request.
func RecordAPIRequest(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
