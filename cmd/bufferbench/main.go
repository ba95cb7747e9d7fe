package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/giantswarm/microerror"
	"github.com/giantswarm/micrologger"

	"github.com/torosent/bufferbench/internal/config"
	"github.com/torosent/bufferbench/internal/httpclient"
	"github.com/torosent/bufferbench/internal/output"
	"github.com/torosent/bufferbench/internal/runner"
	"github.com/torosent/bufferbench/internal/tracing"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(exitCode(err))
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	logger, err := micrologger.New(micrologger.Config{IOWriter: stderr})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return microerror.Mask(err)
	}

	cfg, err := config.NewLoader().Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		logger.Log("level", "error", "message", "failed to load configuration", "stack", err.Error())
		return microerror.Maskf(invalidConfigError, "%s", err.Error())
	}
	if err := cfg.Validate(); err != nil {
		logger.Log("level", "error", "message", "invalid configuration", "stack", err.Error())
		return microerror.Maskf(invalidConfigError, "%s", err.Error())
	}
	for _, warning := range cfg.Warnings() {
		logger.Log("level", "warning", "message", warning)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	provider, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		logger.Log("level", "error", "message", "failed to initialize tracing", "stack", err.Error())
		return microerror.Maskf(invalidConfigError, "%s", err.Error())
	}
	defer func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
		defer done()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Log("level", "warning", "message", "failed to flush traces", "stack", err.Error())
		}
	}()

	client := httpclient.NewClient(cfg.Timeout, maxConcurrency(cfg.Suites))
	fetcher := newHTTPFetcher(client, provider.Tracer(), provider.ShouldPropagate())
	executor := runner.NewExecutor(fetcher, runner.WithFailureLogger(&loggerFailureLogger{logger: logger}))

	var obs observers
	if cfg.Output == config.OutputText {
		obs = append(obs, output.NewConsoleReporter(stdout))
	}
	if cfg.Verbose {
		obs = append(obs, &debugObserver{ctx: ctx, logger: logger})
	}

	r := runner.New(runner.Options{
		Executor: executor,
		Observer: obs,
		Tracer:   provider.Tracer(),
	})

	startedAt := time.Now()
	runID := output.NewRunID(startedAt)
	logger.LogCtx(ctx, "level", "info", "message", "benchmark started", "run_id", runID, "suites", len(cfg.Suites))

	var results []runner.SuiteResult
	for _, suite := range cfg.Suites {
		tests := toRunnerTests(suite.Tests)
		for _, mode := range cfg.Mode.Orderings() {
			ordering := toRunnerOrdering(mode)
			title := suiteTitle(ordering, suite.Title)

			result, err := r.RunSuite(ctx, title, tests, ordering)
			if err != nil {
				logger.LogCtx(ctx, "level", "error", "message", "suite aborted", "suite", title, "stack", err.Error())
				return err
			}
			results = append(results, result)

			if cfg.Output == config.OutputText {
				output.PrintReport(stdout, result)
				if cfg.Chart {
					fmt.Fprintf(stdout, "\n%s", output.RenderChart(result, suite.ChartAxis))
				}
			}
		}
	}

	report := output.NewReport(runID, startedAt, results)
	switch cfg.Output {
	case config.OutputJSON:
		if err := output.PrintJSONReport(stdout, report); err != nil {
			return microerror.Mask(err)
		}
	case config.OutputYAML:
		if err := output.PrintYAMLReport(stdout, report); err != nil {
			return microerror.Mask(err)
		}
	}

	logger.LogCtx(ctx, "level", "info", "message", "benchmark finished", "run_id", runID, "elapsed", time.Since(startedAt).String())
	return nil
}

func suiteTitle(ordering runner.Ordering, title string) string {
	if ordering == runner.Unordered {
		return "Unordered buffer - " + title
	}
	return "Ordered buffer - " + title
}

func toRunnerOrdering(mode config.Mode) runner.Ordering {
	if mode == config.ModeUnordered {
		return runner.Unordered
	}
	return runner.Ordered
}

func toRunnerTests(tests []config.Test) []runner.Test {
	result := make([]runner.Test, len(tests))
	for i, t := range tests {
		result[i] = runner.Test{
			Label:              t.Label,
			URL:                t.URLGet,
			RequestsNumber:     t.RequestsNumber,
			ConcurrentRequests: t.ConcurrentRequests,
			Repeats:            t.Repeats,
			Delay:              t.Delay,
			RatePerSecond:      t.RatePerSecond,
			ExpectJSONPath:     t.ExpectJSONPath,
		}
	}
	return result
}

func maxConcurrency(suites []config.Suite) int {
	n := 1
	for _, s := range suites {
		for _, t := range s.Tests {
			n = max(n, t.ConcurrentRequests)
		}
	}
	return n
}
