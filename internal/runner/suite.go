package runner

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/torosent/bufferbench/internal/metrics"
	"github.com/torosent/bufferbench/internal/tracing"
)

// SuiteResult holds one TestResult per input test, in input order.
type SuiteResult struct {
	Title    string
	Ordering Ordering
	Results  []TestResult
}

// Summaries returns the (mean, stddev) pair of every test, in test order.
func (s SuiteResult) Summaries() []metrics.Summary {
	out := make([]metrics.Summary, len(s.Results))
	for i, r := range s.Results {
		out[i] = r.Summary
	}
	return out
}

// RunSuite runs tests in order. Only the first test is treated as the first
// of the suite; any error stops the suite before later tests run.
func (r *Runner) RunSuite(ctx context.Context, title string, tests []Test, ordering Ordering) (SuiteResult, error) {
	ctx, span := tracing.StartSpan(ctx, r.opt.Tracer, "suite "+title,
		attribute.String("bufferbench.ordering", ordering.String()),
		attribute.Int("bufferbench.tests", len(tests)),
	)

	r.opt.Observer.SuiteStarted(title)
	results := make([]TestResult, 0, len(tests))
	for idx, test := range tests {
		r.opt.Observer.TestStarted(idx, test)
		result, err := r.RunTest(ctx, test, ordering, idx == 0)
		if err != nil {
			tracing.EndSpan(span, err)
			return SuiteResult{}, err
		}
		results = append(results, result)
	}

	tracing.EndSpan(span, nil)
	return SuiteResult{Title: title, Ordering: ordering, Results: results}, nil
}
