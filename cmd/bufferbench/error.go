package main

import (
	"errors"

	"github.com/giantswarm/microerror"

	"github.com/torosent/bufferbench/internal/runner"
)

const (
	exitTargetFailure = 1
	exitInvalidConfig = 2
)

var invalidConfigError = &microerror.Error{
	Kind: "invalidConfigError",
}

// IsInvalidConfig asserts invalidConfigError.
func IsInvalidConfig(err error) bool {
	return microerror.Cause(err) == invalidConfigError
}

// exitCode maps a run failure to the process exit status. Harness
// misconfiguration, including a test without samples, exits 2; anything the
// target caused exits 1.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case IsInvalidConfig(err), errors.Is(err, runner.ErrEmptySampleSet):
		return exitInvalidConfig
	default:
		return exitTargetFailure
	}
}
