package runner

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Ordering selects how a batch's outcomes are collected.
type Ordering int

const (
	// Ordered returns outcome i for urls[i].
	Ordered Ordering = iota
	// Unordered returns outcomes in completion order.
	Unordered
)

func (o Ordering) String() string {
	switch o {
	case Unordered:
		return "unordered"
	default:
		return "ordered"
	}
}

// Batch describes one trial's worth of requests.
type Batch struct {
	Limit         int      // max requests in flight
	URLs          []string // one GET per entry
	Ordering      Ordering
	RatePerSecond int // admission pacing (0 means unlimited)
}

// Executor drives a batch of GET requests through a sliding concurrency
// window: a finished request frees its slot for the next queued URL
// immediately, whatever its submission position.
type Executor struct {
	fetcher        Fetcher
	limiterFactory func(rps int) *rate.Limiter
	logger         FailureLogger
}

func NewExecutor(fetcher Fetcher, opts ...ExecutorOption) *Executor {
	e := &Executor{
		fetcher:        fetcher,
		limiterFactory: defaultLimiterFactory,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute issues one GET per URL with at most limit in flight.
func (e *Executor) Execute(ctx context.Context, limit int, urls []string, ordering Ordering) ([]Outcome, error) {
	return e.Run(ctx, Batch{Limit: limit, URLs: urls, Ordering: ordering})
}

// Run executes b. The first failed exchange cancels the batch and is
// returned as a *ConnectionError; no partial outcomes are returned.
func (e *Executor) Run(ctx context.Context, b Batch) ([]Outcome, error) {
	if e == nil || e.fetcher == nil {
		return nil, errors.New("executor has no fetcher")
	}
	if len(b.URLs) == 0 {
		return []Outcome{}, nil
	}

	var (
		outcomes []Outcome
		err      error
	)
	switch b.Ordering {
	case Unordered:
		outcomes, err = e.runUnordered(ctx, b)
	default:
		outcomes, err = e.runOrdered(ctx, b)
	}
	if err != nil {
		if e.logger != nil {
			e.logger.LogFailure(err)
		}
		return nil, err
	}
	return outcomes, nil
}

// runOrdered stores each outcome at its submission index.
func (e *Executor) runOrdered(ctx context.Context, b Batch) ([]Outcome, error) {
	outcomes := make([]Outcome, len(b.URLs))
	err := e.dispatch(ctx, b, func(idx int, o Outcome) {
		outcomes[idx] = o
	})
	if err != nil {
		return nil, err
	}
	return outcomes, nil
}

// runUnordered appends outcomes as they arrive on a channel drained by a
// single aggregator goroutine.
func (e *Executor) runUnordered(ctx context.Context, b Batch) ([]Outcome, error) {
	completed := make(chan Outcome, windowSize(b.Limit))
	aggregated := make(chan []Outcome, 1)
	go func() {
		outcomes := make([]Outcome, 0, len(b.URLs))
		for o := range completed {
			outcomes = append(outcomes, o)
		}
		aggregated <- outcomes
	}()

	err := e.dispatch(ctx, b, func(_ int, o Outcome) {
		completed <- o
	})
	close(completed)
	outcomes := <-aggregated
	if err != nil {
		return nil, err
	}
	return outcomes, nil
}

// dispatch admits one fetch per URL into the window and hands every
// successful exchange to deliver. deliver may be called concurrently.
func (e *Executor) dispatch(ctx context.Context, b Batch, deliver func(idx int, o Outcome)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(windowSize(b.Limit))
	limiter := e.limiterFactory(b.RatePerSecond)

	for idx, url := range b.URLs {
		if limiter != nil {
			if err := limiter.Wait(gctx); err != nil {
				break
			}
		}
		if gctx.Err() != nil {
			break
		}
		// Go blocks while the window is full.
		g.Go(func() error {
			outcome, err := e.fetcher.Fetch(gctx, url)
			if err != nil {
				var connErr *ConnectionError
				if !errors.As(err, &connErr) {
					err = &ConnectionError{URL: url, Err: err}
				}
				return err
			}
			if outcome.URL == "" {
				outcome.URL = url
			}
			deliver(idx, outcome)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func windowSize(limit int) int {
	if limit < 1 {
		return 1
	}
	return limit
}
