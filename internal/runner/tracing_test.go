package runner_test

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/torosent/bufferbench/internal/runner"
)

func newTracedRunner(t *testing.T, f runner.Fetcher) (*runner.Runner, *tracetest.InMemoryExporter) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	r := runner.New(runner.Options{
		Executor: runner.NewExecutor(f),
		Tracer:   tp.Tracer("bufferbench-test"),
		Sleep:    (&sleepRecorder{}).Sleep,
	})
	return r, exporter
}

func spanAttr(span tracetest.SpanStub, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func spansNamed(spans tracetest.SpanStubs, name string) []tracetest.SpanStub {
	var out []tracetest.SpanStub
	for _, s := range spans {
		if s.Name == name {
			out = append(out, s)
		}
	}
	return out
}

func TestRunSuiteSpanHierarchy(t *testing.T) {
	r, exporter := newTracedRunner(t, &statusFetcher{status: 200})

	tests := []runner.Test{
		{Label: "c=1", URL: "http://target/", RequestsNumber: 2, ConcurrentRequests: 1, Repeats: 2},
		{Label: "c=2", URL: "http://target/", RequestsNumber: 2, ConcurrentRequests: 2, Repeats: 3},
	}
	result, err := r.RunSuite(context.Background(), "nesting", tests, runner.Unordered)
	if err != nil {
		t.Fatalf("RunSuite() error = %v", err)
	}

	spans := exporter.GetSpans()
	suites := spansNamed(spans, "suite nesting")
	if len(suites) != 1 {
		t.Fatalf("got %d suite spans, want 1", len(suites))
	}
	suite := suites[0]
	if suite.Parent.IsValid() {
		t.Error("suite span should be a root span")
	}
	if v, ok := spanAttr(suite, "bufferbench.ordering"); !ok || v.AsString() != runner.Unordered.String() {
		t.Errorf("bufferbench.ordering = %v, want %q", v.AsString(), runner.Unordered.String())
	}
	if v, ok := spanAttr(suite, "bufferbench.tests"); !ok || v.AsInt64() != 2 {
		t.Errorf("bufferbench.tests = %d, want 2", v.AsInt64())
	}

	trials := spansNamed(spans, "trial")
	if len(trials) != 5 {
		t.Fatalf("got %d trial spans, want 5", len(trials))
	}

	for i, test := range tests {
		matches := spansNamed(spans, "test "+test.Label)
		if len(matches) != 1 {
			t.Fatalf("got %d spans for %q, want 1", len(matches), test.Label)
		}
		span := matches[0]
		if span.Parent.SpanID() != suite.SpanContext.SpanID() {
			t.Errorf("%q is not parented to the suite span", test.Label)
		}

		want := result.Results[i].Summary
		if v, ok := spanAttr(span, "bufferbench.mean_seconds"); !ok || v.AsFloat64() != float64(want.Mean) {
			t.Errorf("%q mean_seconds = %v, want %v", test.Label, v.AsFloat64(), want.Mean)
		}
		if v, ok := spanAttr(span, "bufferbench.stddev_seconds"); !ok || v.AsFloat64() != float64(want.StdDev) {
			t.Errorf("%q stddev_seconds = %v, want %v", test.Label, v.AsFloat64(), want.StdDev)
		}
		if v, ok := spanAttr(span, "bufferbench.concurrent_requests"); !ok || v.AsInt64() != int64(test.ConcurrentRequests) {
			t.Errorf("%q concurrent_requests = %d, want %d", test.Label, v.AsInt64(), test.ConcurrentRequests)
		}

		children := 0
		for _, trial := range trials {
			if trial.Parent.SpanID() == span.SpanContext.SpanID() {
				children++
			}
		}
		if children != test.Repeats {
			t.Errorf("%q has %d trial spans, want %d", test.Label, children, test.Repeats)
		}
	}
}

func TestRunTestSpanRecordsFailure(t *testing.T) {
	r, exporter := newTracedRunner(t, &statusFetcher{status: 503})

	test := runner.Test{Label: "down", URL: "http://target/", RequestsNumber: 1, ConcurrentRequests: 1, Repeats: 1}
	_, err := r.RunTest(context.Background(), test, runner.Ordered, true)
	var httpErr *runner.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("RunTest() error = %v, want HTTPError", err)
	}

	for _, name := range []string{"test down", "trial"} {
		matches := spansNamed(exporter.GetSpans(), name)
		if len(matches) != 1 {
			t.Fatalf("got %d %q spans, want 1", len(matches), name)
		}
		if matches[0].Status.Code != codes.Error {
			t.Errorf("%q status = %v, want Error", name, matches[0].Status.Code)
		}
	}
	if _, ok := spanAttr(spansNamed(exporter.GetSpans(), "test down")[0], "bufferbench.mean_seconds"); ok {
		t.Error("failed test span should not carry a mean")
	}
}
