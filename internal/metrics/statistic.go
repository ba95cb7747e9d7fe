package metrics

import "math"

// Summary is the aggregate of a test's trial durations, in seconds.
type Summary struct {
	Mean   float32 `json:"mean_seconds" yaml:"mean_seconds"`
	StdDev float32 `json:"stddev_seconds" yaml:"stddev_seconds"`
}

// Statistic returns the arithmetic mean and the population standard deviation
// (divisor n) of samples. ok is false when samples is empty.
func Statistic(samples []float32) (summary Summary, ok bool) {
	if len(samples) == 0 {
		return Summary{}, false
	}

	count := float32(len(samples))
	var sum float32
	for _, v := range samples {
		sum += v
	}
	mean := sum / count

	var variance float32
	for _, v := range samples {
		diff := mean - v
		variance += diff * diff
	}
	variance /= count

	return Summary{
		Mean:   mean,
		StdDev: float32(math.Sqrt(float64(variance))),
	}, true
}
