package runner

import (
	"errors"
	"fmt"
)

// ErrEmptySampleSet is returned when a test produced no timing samples,
// which only happens when it is configured with zero repeats.
var ErrEmptySampleSet = errors.New("empty sample set: repeats must be greater than zero")

// ConnectionError reports a request that could not be sent or whose
// response body could not be read.
type ConnectionError struct {
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("no connection to %s: %v", e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// HTTPError represents a completed exchange with a non-2xx status.
type HTTPError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("HTTP %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

// BodyValidationError reports a successful response whose body does not
// satisfy the test's JSON expectation.
type BodyValidationError struct {
	URL  string
	Path string
}

func (e *BodyValidationError) Error() string {
	return fmt.Sprintf("response from %s has no value at JSON path %q", e.URL, e.Path)
}

// FailureLogger logs fatal request failures before they abort a run.
type FailureLogger interface {
	LogFailure(err error)
}

// IsTargetFailure reports whether err was caused by the benchmarked target
// rather than by the harness configuration.
func IsTargetFailure(err error) bool {
	var connErr *ConnectionError
	var httpErr *HTTPError
	var bodyErr *BodyValidationError
	return errors.As(err, &connErr) || errors.As(err, &httpErr) || errors.As(err, &bodyErr)
}
