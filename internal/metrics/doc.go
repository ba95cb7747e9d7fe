// Package metrics aggregates benchmark timings.
//
// [Statistic] folds the wall-clock durations of a test's trials into a
// [Summary]: the arithmetic mean and the population standard deviation
// (divisor n, not n-1), both in seconds. An empty sample set yields no
// result, which callers treat as a configuration error.
//
//	summary, ok := metrics.Statistic([]float32{0.41, 0.39, 0.40})
//
// [Collector] records individual request latencies into an HDR histogram so
// a test can also report p50/p90/p99 request latency next to its trial
// statistics. It is safe for concurrent use.
package metrics
