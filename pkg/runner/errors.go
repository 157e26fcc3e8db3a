package runner

import (
	"errors"
	"fmt"

	"github.com/haivivi/musicseg/pkg/algorithms"
)

// Sentinel errors.
var (
	// ErrMissingGroundTruth matches every [*MissingGroundTruthError].
	ErrMissingGroundTruth = errors.New("runner: missing ground truth")

	// ErrOutputShape is wrapped by an [*AlgorithmExecutionError] when an
	// algorithm returns the wrong number of levels.
	ErrOutputShape = errors.New("runner: unexpected output shape")

	// ErrPanic is wrapped by an [*AlgorithmExecutionError] when an
	// algorithm panics.
	ErrPanic = errors.New("runner: algorithm panicked")
)

// MissingGroundTruthError reports that ground truth boundaries were
// requested for a track without a reference annotation.
type MissingGroundTruthError struct {
	Track     string
	Annotator int
	Err       error
}

func (e *MissingGroundTruthError) Error() string {
	return fmt.Sprintf("runner: no ground truth for %s (annotator %d): %v", e.Track, e.Annotator, e.Err)
}

func (e *MissingGroundTruthError) Unwrap() []error {
	return []error{ErrMissingGroundTruth, e.Err}
}

// AlgorithmExecutionError reports a failure raised inside an algorithm.
type AlgorithmExecutionError struct {
	ID   string
	Role algorithms.Role
	Err  error
}

func (e *AlgorithmExecutionError) Error() string {
	return fmt.Sprintf("runner: %s algorithm %q: %v", e.Role, e.ID, e.Err)
}

func (e *AlgorithmExecutionError) Unwrap() error { return e.Err }

func shapeError(id string, role algorithms.Role, format string, args ...any) error {
	return &AlgorithmExecutionError{
		ID:   id,
		Role: role,
		Err:  fmt.Errorf("%w: %s", ErrOutputShape, fmt.Sprintf(format, args...)),
	}
}
