package prometheus

import (
	"context"
	"net/http"
	"testing"

	"github.com/myshadowbank/exolix-sdk/core"
	"github.com/myshadowbank/exolix-sdk/devkit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricName(t *testing.T) {
	cases := map[string]string{
		"exolix.request.total":        "exolix_request_total",
		" exolix.request.duration_ms": "exolix_request_duration_ms",
		"9lives-metric":               "_9lives_metric",
	}
	for input, want := range cases {
		got, err := MetricName(input)
		if err != nil {
			t.Fatalf("MetricName(%q): %v", input, err)
		}
		if got != want {
			t.Fatalf("MetricName(%q) = %q, want %q", input, got, want)
		}
	}
	if _, err := MetricName(" "); err == nil {
		t.Fatalf("expected empty name error")
	}
}

func TestRecorder_CountsAndObservesWithFixedLabels(t *testing.T) {
	registry := prometheus.NewRegistry()
	recorder := NewRecorder(registry)
	ctx := context.Background()

	tags := map[string]string{"method": "GET", "path": "/rate", "outcome": "success", "status_code": "200"}
	recorder.IncCounter(ctx, "exolix.request.total", 1, tags)
	recorder.IncCounter(ctx, "exolix.request.total", 2, tags)
	recorder.IncCounter(ctx, "exolix.request.total", 1, map[string]string{"method": "GET", "extra": "dropped"})
	recorder.ObserveHistogram(ctx, "exolix.request.duration_ms", 42, tags)

	counter := recorder.counters["exolix_request_total"]
	if counter == nil {
		t.Fatalf("expected counter vector")
	}
	if got := testutil.ToFloat64(counter.vec.WithLabelValues("GET", "success", "/rate", "200")); got != 3 {
		t.Fatalf("expected counter 3, got %v", got)
	}
	if got := testutil.ToFloat64(counter.vec.WithLabelValues("GET", "", "", "")); got != 1 {
		t.Fatalf("expected partial-tag counter 1, got %v", got)
	}
	if got := testutil.CollectAndCount(recorder.histograms["exolix_request_duration_ms"].vec); got != 1 {
		t.Fatalf("expected one histogram series, got %d", got)
	}
}

func TestRecorder_ReusesAlreadyRegisteredCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()
	tags := map[string]string{"outcome": "success"}

	first := NewRecorder(registry)
	first.IncCounter(context.Background(), "exolix.request.total", 1, tags)

	var failures []error
	second := NewRecorder(registry, WithErrorHandler(func(err error) {
		failures = append(failures, err)
	}))
	second.IncCounter(context.Background(), "exolix.request.total", 1, tags)

	if len(failures) != 0 {
		t.Fatalf("expected shared registration, got %v", failures)
	}
	if got := testutil.ToFloat64(first.counters["exolix_request_total"].vec.WithLabelValues("success")); got != 2 {
		t.Fatalf("expected both recorders to share the series, got %v", got)
	}
}

func TestRecorder_ReceivesExecutorMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	recorder := NewRecorder(registry)
	transport := devkit.NewFakeTransport(devkit.JSONScript(http.StatusNotFound, `{"message":"Transaction not found"}`))
	client, err := core.NewClient(
		core.Config{BaseURL: "https://exolix.test/api/v2"},
		core.WithTransport(transport),
		core.WithMetricsRecorder(recorder),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	if _, err := client.GetTransaction(context.Background(), "ex_1"); err == nil {
		t.Fatalf("expected not found error")
	}
	count, err := testutil.GatherAndCount(registry, "exolix_request_total", "exolix_request_duration_ms")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected one counter and one histogram series, got %d", count)
	}
}
