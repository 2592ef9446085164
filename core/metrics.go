package core

import (
	"context"
	"maps"
	"strconv"
	"strings"
	"time"
)

// Metric names emitted once per executed request.
const (
	MetricRequestTotal    = "exolix.request.total"
	MetricRequestDuration = "exolix.request.duration_ms"
)

// NopMetricsRecorder discards every sample.
type NopMetricsRecorder struct{}

func (NopMetricsRecorder) IncCounter(context.Context, string, int64, map[string]string) {}

func (NopMetricsRecorder) ObserveHistogram(context.Context, string, float64, map[string]string) {}

// requestTags labels a request sample. Status is 0 when no response arrived.
func requestTags(method, path string, outcome Outcome, status int) map[string]string {
	return map[string]string{
		"method":      strings.ToUpper(method),
		"path":        metricPath(path),
		"outcome":     string(outcome),
		"status_code": strconv.Itoa(status),
	}
}

func (e *Executor) recordRequest(ctx context.Context, tags map[string]string, elapsed time.Duration) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.IncCounter(ctx, MetricRequestTotal, 1, maps.Clone(tags))
	e.metrics.ObserveHistogram(ctx, MetricRequestDuration, float64(elapsed.Milliseconds()), maps.Clone(tags))
}

// metricPath collapses identifiers so per-transaction paths share a series.
func metricPath(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) >= 2 && segments[0] == "transactions" {
		segments[1] = ":id"
	}
	if len(segments) >= 3 && segments[0] == "currencies" {
		segments[1] = ":code"
	}
	return "/" + strings.Join(segments, "/")
}
