package runner

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/torosent/bufferbench/internal/metrics"
	"github.com/torosent/bufferbench/internal/tracing"
)

// Test is one benchmark definition. It is read-only for the whole run.
type Test struct {
	Label              string
	URL                string
	RequestsNumber     int           // requests per trial
	ConcurrentRequests int           // max in-flight requests per trial
	Repeats            int           // number of trials
	Delay              time.Duration // pause before a trial, see RunTest
	RatePerSecond      int           // optional admission pacing (0 means unlimited)
	ExpectJSONPath     string        // optional gjson path every body must contain
}

// TestResult is the outcome of all trials of one Test.
type TestResult struct {
	Test    Test
	Samples []float32 // elapsed seconds per trial
	Summary metrics.Summary
	Latency metrics.LatencyStats
}

// Runner runs tests and suites strictly sequentially.
type Runner struct {
	opt Options
}

func New(opt Options) *Runner {
	opt.normalize()
	return &Runner{opt: opt}
}

// RunTest runs test.Repeats timed trials and folds their durations into a
// Summary. Every trial sleeps test.Delay before dispatching, except the
// first trial of the first test of a suite.
//
// The first failed exchange, non-2xx status or body mismatch aborts the
// test. Zero repeats yield ErrEmptySampleSet.
func (r *Runner) RunTest(ctx context.Context, test Test, ordering Ordering, firstInSuite bool) (TestResult, error) {
	ctx, span := tracing.StartSpan(ctx, r.opt.Tracer, "test "+test.Label,
		attribute.String("bufferbench.url", test.URL),
		attribute.Int("bufferbench.requests_number", test.RequestsNumber),
		attribute.Int("bufferbench.concurrent_requests", test.ConcurrentRequests),
		attribute.Int("bufferbench.repeats", test.Repeats),
	)

	result, err := r.runTest(ctx, test, ordering, firstInSuite)
	if err != nil {
		tracing.EndSpan(span, err)
		return TestResult{}, err
	}
	tracing.EndSpan(span, nil,
		attribute.Float64("bufferbench.mean_seconds", float64(result.Summary.Mean)),
		attribute.Float64("bufferbench.stddev_seconds", float64(result.Summary.StdDev)),
	)
	r.opt.Observer.TestCompleted(result)
	return result, nil
}

func (r *Runner) runTest(ctx context.Context, test Test, ordering Ordering, firstInSuite bool) (TestResult, error) {
	if r.opt.Executor == nil {
		return TestResult{}, fmt.Errorf("runner has no executor")
	}

	urls := make([]string, test.RequestsNumber)
	for i := range urls {
		urls[i] = test.URL
	}

	collector := metrics.NewCollector()
	samples := make([]float32, 0, max(test.Repeats, 0))
	for trial := 1; trial <= test.Repeats; trial++ {
		if trial > 1 || !firstInSuite {
			if err := r.opt.Sleep(ctx, test.Delay); err != nil {
				return TestResult{}, err
			}
		}

		elapsed, err := r.runTrial(ctx, test, trial, urls, ordering, collector)
		if err != nil {
			return TestResult{}, fmt.Errorf("test %q trial %d: %w", test.Label, trial, err)
		}
		samples = append(samples, float32(elapsed.Seconds()))
		r.opt.Observer.TrialCompleted(trial, test.Repeats, elapsed)
	}

	summary, ok := metrics.Statistic(samples)
	if !ok {
		return TestResult{}, fmt.Errorf("test %q: %w", test.Label, ErrEmptySampleSet)
	}

	return TestResult{
		Test:    test,
		Samples: samples,
		Summary: summary,
		Latency: collector.Stats(),
	}, nil
}

// runTrial times one batch end to end and validates its outcomes. Outcomes
// reach the collector only after the executor has returned.
func (r *Runner) runTrial(ctx context.Context, test Test, trial int, urls []string, ordering Ordering, collector *metrics.Collector) (time.Duration, error) {
	ctx, span := tracing.StartSpan(ctx, r.opt.Tracer, "trial",
		attribute.Int("bufferbench.trial", trial),
		attribute.String("bufferbench.ordering", ordering.String()),
	)

	start := time.Now()
	outcomes, err := r.opt.Executor.Run(ctx, Batch{
		Limit:         test.ConcurrentRequests,
		URLs:          urls,
		Ordering:      ordering,
		RatePerSecond: test.RatePerSecond,
	})
	elapsed := time.Since(start)
	if err != nil {
		tracing.EndSpan(span, err)
		return 0, err
	}

	if err := validateOutcomes(outcomes, test.ExpectJSONPath); err != nil {
		tracing.EndSpan(span, err)
		return 0, err
	}

	for _, o := range outcomes {
		collector.RecordLatency(o.Latency)
	}
	tracing.EndSpan(span, nil, attribute.Float64("bufferbench.elapsed_seconds", elapsed.Seconds()))
	return elapsed, nil
}
