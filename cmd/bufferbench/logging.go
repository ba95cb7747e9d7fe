package main

import (
	"context"
	"fmt"
	"time"

	"github.com/giantswarm/micrologger"

	"github.com/torosent/bufferbench/internal/runner"
)

// loggerFailureLogger reports the request failure that aborts a batch.
type loggerFailureLogger struct {
	logger micrologger.Logger
}

func (l *loggerFailureLogger) LogFailure(err error) {
	if err == nil {
		return
	}
	l.logger.Log("level", "error", "message", "request failed", "stack", err.Error())
}

// debugObserver logs runner progress at debug level.
type debugObserver struct {
	ctx    context.Context
	logger micrologger.Logger
}

func (o *debugObserver) SuiteStarted(title string) {
	o.logger.LogCtx(o.ctx, "level", "debug", "message", "suite started", "suite", title)
}

func (o *debugObserver) TestStarted(index int, test runner.Test) {
	o.logger.LogCtx(o.ctx, "level", "debug", "message", "test started",
		"test", index+1,
		"label", test.Label,
		"url", test.URL,
		"requests", test.RequestsNumber,
		"concurrency", test.ConcurrentRequests,
	)
}

func (o *debugObserver) TrialCompleted(trial, repeats int, elapsed time.Duration) {
	o.logger.LogCtx(o.ctx, "level", "debug", "message", fmt.Sprintf("trial %d/%d completed", trial, repeats), "elapsed", elapsed.String())
}

func (o *debugObserver) TestCompleted(result runner.TestResult) {
	o.logger.LogCtx(o.ctx, "level", "debug", "message", "test completed",
		"label", result.Test.Label,
		"mean_seconds", result.Summary.Mean,
		"stddev_seconds", result.Summary.StdDev,
		"p99_ms", result.Latency.P99LatencyMs,
	)
}

// observers fans progress out to several runner.Observer values in order.
type observers []runner.Observer

func (o observers) SuiteStarted(title string) {
	for _, obs := range o {
		obs.SuiteStarted(title)
	}
}

func (o observers) TestStarted(index int, test runner.Test) {
	for _, obs := range o {
		obs.TestStarted(index, test)
	}
}

func (o observers) TrialCompleted(trial, repeats int, elapsed time.Duration) {
	for _, obs := range o {
		obs.TrialCompleted(trial, repeats, elapsed)
	}
}

func (o observers) TestCompleted(result runner.TestResult) {
	for _, obs := range o {
		obs.TestCompleted(result)
	}
}
