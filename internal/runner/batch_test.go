package runner_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/torosent/bufferbench/internal/runner"
)

// inflightFetcher tracks how many fetches run at once.
type inflightFetcher struct {
	latency  time.Duration
	calls    int64
	inflight int64
	peak     int64
}

func (f *inflightFetcher) Fetch(ctx context.Context, url string) (runner.Outcome, error) {
	atomic.AddInt64(&f.calls, 1)
	current := atomic.AddInt64(&f.inflight, 1)
	defer atomic.AddInt64(&f.inflight, -1)
	for {
		peak := atomic.LoadInt64(&f.peak)
		if current <= peak || atomic.CompareAndSwapInt64(&f.peak, peak, current) {
			break
		}
	}
	select {
	case <-time.After(f.latency):
	case <-ctx.Done():
		return runner.Outcome{}, ctx.Err()
	}
	return runner.Outcome{URL: url, StatusCode: 200, Body: "ok", Latency: f.latency}, nil
}

func taggedURLs(n int) []string {
	urls := make([]string, n)
	for i := range urls {
		urls[i] = fmt.Sprintf("http://target/%d", i)
	}
	return urls
}

func TestExecutorRespectsConcurrencyLimit(t *testing.T) {
	for _, ordering := range []runner.Ordering{runner.Ordered, runner.Unordered} {
		t.Run(ordering.String(), func(t *testing.T) {
			fetcher := &inflightFetcher{latency: 5 * time.Millisecond}
			exec := runner.NewExecutor(fetcher)

			outcomes, err := exec.Execute(context.Background(), 3, taggedURLs(20), ordering)
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if len(outcomes) != 20 {
				t.Fatalf("expected 20 outcomes, got %d", len(outcomes))
			}
			if fetcher.calls != 20 {
				t.Fatalf("expected 20 fetches, got %d", fetcher.calls)
			}
			if fetcher.peak > 3 {
				t.Fatalf("expected at most 3 requests in flight, observed %d", fetcher.peak)
			}
		})
	}
}

func TestExecutorZeroLimitRunsSerially(t *testing.T) {
	fetcher := &inflightFetcher{latency: time.Millisecond}
	exec := runner.NewExecutor(fetcher)

	outcomes, err := exec.Execute(context.Background(), 0, taggedURLs(5), runner.Ordered)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(outcomes) != 5 {
		t.Fatalf("expected 5 outcomes, got %d", len(outcomes))
	}
	if fetcher.peak != 1 {
		t.Fatalf("expected a window of 1, observed %d", fetcher.peak)
	}
}

func TestExecutorEmptyBatch(t *testing.T) {
	fetcher := &inflightFetcher{}
	exec := runner.NewExecutor(fetcher)

	outcomes, err := exec.Execute(context.Background(), 4, nil, runner.Unordered)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(outcomes) != 0 {
		t.Fatalf("expected no outcomes, got %d", len(outcomes))
	}
	if fetcher.calls != 0 {
		t.Fatalf("expected no fetches, got %d", fetcher.calls)
	}
}

// TestExecutorSlidingWindow ensures a slow request does not hold back the
// rest of the window.
func TestExecutorSlidingWindow(t *testing.T) {
	release := make(chan struct{})
	var fastDone int64
	fetcher := runner.FetcherFunc(func(ctx context.Context, url string) (runner.Outcome, error) {
		if url == "slow" {
			select {
			case <-release:
			case <-time.After(2 * time.Second):
				return runner.Outcome{}, errors.New("slow request was never released")
			}
			return runner.Outcome{URL: url, StatusCode: 200}, nil
		}
		if atomic.AddInt64(&fastDone, 1) == 5 {
			close(release)
		}
		return runner.Outcome{URL: url, StatusCode: 200}, nil
	})

	urls := []string{"slow", "fast", "fast", "fast", "fast", "fast"}
	outcomes, err := runner.NewExecutor(fetcher).Execute(context.Background(), 2, urls, runner.Ordered)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(outcomes) != len(urls) {
		t.Fatalf("expected %d outcomes, got %d", len(urls), len(outcomes))
	}
}

func TestExecutorOrderedPreservesSubmissionOrder(t *testing.T) {
	urls := taggedURLs(8)
	// Earlier URLs finish later.
	fetcher := runner.FetcherFunc(func(ctx context.Context, url string) (runner.Outcome, error) {
		var idx int
		fmt.Sscanf(url, "http://target/%d", &idx)
		time.Sleep(time.Duration(len(urls)-idx) * 3 * time.Millisecond)
		return runner.Outcome{URL: url, StatusCode: 200, Body: url}, nil
	})

	outcomes, err := runner.NewExecutor(fetcher).Execute(context.Background(), 8, urls, runner.Ordered)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	for i, o := range outcomes {
		if o.Body != urls[i] {
			t.Fatalf("outcome %d = %q, want %q", i, o.Body, urls[i])
		}
	}
}

func TestExecutorUnorderedReturnsEveryOutcomeOnce(t *testing.T) {
	urls := taggedURLs(30)
	fetcher := runner.FetcherFunc(func(ctx context.Context, url string) (runner.Outcome, error) {
		time.Sleep(time.Duration(len(url)%3) * time.Millisecond)
		return runner.Outcome{URL: url, StatusCode: 200, Body: url}, nil
	})

	outcomes, err := runner.NewExecutor(fetcher).Execute(context.Background(), 7, urls, runner.Unordered)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	got := make([]string, len(outcomes))
	for i, o := range outcomes {
		got[i] = o.Body
	}
	want := append([]string(nil), urls...)
	sort.Strings(got)
	sort.Strings(want)
	if len(got) != len(want) {
		t.Fatalf("expected %d outcomes, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("outcome multiset mismatch at %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestExecutorUnorderedUsesCompletionOrder(t *testing.T) {
	fastDone := make(chan struct{})
	fetcher := runner.FetcherFunc(func(ctx context.Context, url string) (runner.Outcome, error) {
		if url == "first" {
			<-fastDone
			time.Sleep(20 * time.Millisecond)
			return runner.Outcome{URL: url, StatusCode: 200}, nil
		}
		close(fastDone)
		return runner.Outcome{URL: url, StatusCode: 200}, nil
	})

	outcomes, err := runner.NewExecutor(fetcher).Execute(context.Background(), 2, []string{"first", "second"}, runner.Unordered)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if outcomes[0].URL != "second" || outcomes[1].URL != "first" {
		t.Fatalf("expected completion order [second first], got [%s %s]", outcomes[0].URL, outcomes[1].URL)
	}
}

type recordingLogger struct {
	mu   sync.Mutex
	errs []error
}

func (l *recordingLogger) LogFailure(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs = append(l.errs, err)
}

func TestExecutorFailureAbortsBatch(t *testing.T) {
	boom := errors.New("connection refused")
	var calls int64
	fetcher := runner.FetcherFunc(func(ctx context.Context, url string) (runner.Outcome, error) {
		if atomic.AddInt64(&calls, 1) == 3 {
			return runner.Outcome{}, boom
		}
		select {
		case <-time.After(time.Millisecond):
		case <-ctx.Done():
			return runner.Outcome{}, ctx.Err()
		}
		return runner.Outcome{URL: url, StatusCode: 200}, nil
	})
	logger := &recordingLogger{}
	exec := runner.NewExecutor(fetcher, runner.WithFailureLogger(logger))

	for _, ordering := range []runner.Ordering{runner.Ordered, runner.Unordered} {
		atomic.StoreInt64(&calls, 0)
		outcomes, err := exec.Execute(context.Background(), 1, taggedURLs(50), ordering)
		if err == nil {
			t.Fatalf("%s: expected error", ordering)
		}
		if outcomes != nil {
			t.Fatalf("%s: expected no partial outcomes, got %d", ordering, len(outcomes))
		}
		var connErr *runner.ConnectionError
		if !errors.As(err, &connErr) {
			t.Fatalf("%s: expected *ConnectionError, got %T", ordering, err)
		}
		if !errors.Is(err, boom) {
			t.Fatalf("%s: expected wrapped cause, got %v", ordering, err)
		}
		if got := atomic.LoadInt64(&calls); got >= 50 {
			t.Fatalf("%s: expected dispatch to stop early, got %d fetches", ordering, got)
		}
	}
	if len(logger.errs) != 2 {
		t.Fatalf("expected one logged failure per batch, got %d", len(logger.errs))
	}
}

func TestExecutorRatePacing(t *testing.T) {
	fetcher := &inflightFetcher{}
	exec := runner.NewExecutor(fetcher, runner.WithLimiterFactory(func(rps int) *rate.Limiter {
		return rate.NewLimiter(rate.Limit(rps), 1)
	}))

	start := time.Now()
	_, err := exec.Run(context.Background(), runner.Batch{
		Limit:         5,
		URLs:          taggedURLs(5),
		RatePerSecond: 100,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	// 5 admissions at 100/s with burst 1 need at least 40ms.
	if elapsed := time.Since(start); elapsed < 35*time.Millisecond {
		t.Fatalf("expected paced admissions, finished in %s", elapsed)
	}
}

func TestExecutorHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := &inflightFetcher{latency: time.Second}
	_, err := runner.NewExecutor(fetcher).Execute(ctx, 2, taggedURLs(4), runner.Ordered)
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
