// Package runner provides the benchmark execution engine for bufferbench.
//
// The package has three layers:
//   - [Executor] issues a batch of GET requests through a sliding window of at
//     most N in-flight requests and returns their outcomes, either in
//     submission order ([Ordered]) or in completion order ([Unordered]).
//   - [Runner.RunTest] times repeated trials of one [Test], validates every
//     outcome and folds the trial durations into a mean and population
//     standard deviation.
//   - [Runner.RunSuite] runs an ordered list of tests under one title.
//
// # Basic Usage
//
//	exec := runner.NewExecutor(myFetcher)
//	r := runner.New(runner.Options{Executor: exec, Observer: reporter})
//	suite, err := r.RunSuite(ctx, "Ordered buffer - 250 requests", tests, runner.Ordered)
//
// # Fetcher Interface
//
// The [Fetcher] interface is the only transport dependency:
//
//	type Fetcher interface {
//		Fetch(ctx context.Context, url string) (Outcome, error)
//	}
//
// # Error Handling
//
// Failures are returned, never handled by exiting:
//   - [*ConnectionError]: a request could not be sent or its body read
//   - [*HTTPError]: a completed exchange had a non-2xx status
//   - [*BodyValidationError]: a body lacked the expected JSON path
//   - [ErrEmptySampleSet]: a test was configured with zero repeats
//
// Use [IsTargetFailure] to tell target failures from configuration errors.
package runner
