package runner

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/time/rate"
)

// Fetcher issues one GET request and returns the completed exchange.
// A transport or body-read failure must be reported as an error; a non-2xx
// status is a valid Outcome.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (Outcome, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, url string) (Outcome, error)

func (f FetcherFunc) Fetch(ctx context.Context, url string) (Outcome, error) {
	return f(ctx, url)
}

// Outcome is a completed HTTP exchange.
type Outcome struct {
	URL        string
	StatusCode int
	Body       string
	Latency    time.Duration
}

// Success reports whether the status is in the 2xx range.
func (o Outcome) Success() bool {
	return o.StatusCode >= 200 && o.StatusCode < 300
}

// Observer receives progress notifications. Calls are made from the
// goroutine driving the suite, never concurrently.
type Observer interface {
	SuiteStarted(title string)
	TestStarted(index int, test Test)
	TrialCompleted(trial, repeats int, elapsed time.Duration)
	TestCompleted(result TestResult)
}

// Options configure the Runner.
type Options struct {
	Executor *Executor                                        // batch executor (required)
	Observer Observer                                         // optional progress sink
	Tracer   trace.Tracer                                     // optional; no-op when nil
	Sleep    func(ctx context.Context, d time.Duration) error // inter-trial delay; injectable for tests
}

func (o *Options) normalize() {
	if o.Observer == nil {
		o.Observer = nopObserver{}
	}
	if o.Tracer == nil {
		o.Tracer = noop.NewTracerProvider().Tracer("bufferbench")
	}
	if o.Sleep == nil {
		o.Sleep = sleepContext
	}
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithLimiterFactory overrides how per-test rate limiters are built.
func WithLimiterFactory(factory func(rps int) *rate.Limiter) ExecutorOption {
	return func(e *Executor) {
		if factory != nil {
			e.limiterFactory = factory
		}
	}
}

// WithFailureLogger logs the failure that aborts a batch.
func WithFailureLogger(logger FailureLogger) ExecutorOption {
	return func(e *Executor) {
		e.logger = logger
	}
}

func defaultLimiterFactory(rps int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	// Burst of one keeps admissions evenly spaced.
	return rate.NewLimiter(rate.Limit(rps), 1)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type nopObserver struct{}

func (nopObserver) SuiteStarted(string)                    {}
func (nopObserver) TestStarted(int, Test)                  {}
func (nopObserver) TrialCompleted(int, int, time.Duration) {}
func (nopObserver) TestCompleted(TestResult)               {}
