package algorithms

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrResolution matches every [*ResolutionError].
	ErrResolution = errors.New("algorithms: resolution failed")

	// ErrUnknownAlgorithm is the reason when no algorithm is registered
	// under the requested id.
	ErrUnknownAlgorithm = errors.New("algorithms: no such algorithm")

	// ErrWrongRole is the reason when the algorithm exists but does not
	// support the requested role.
	ErrWrongRole = errors.New("algorithms: algorithm does not support this role")

	// ErrNotHierarchical is the reason when hierarchical output is requested
	// from an algorithm that only supports flat segmentation.
	ErrNotHierarchical = errors.New("algorithms: algorithm does not support hierarchical segmentation")

	// ErrNoHierarchicalBoundaries is the reason when hierarchical output is
	// requested with ground truth boundaries.
	ErrNoHierarchicalBoundaries = errors.New("algorithms: hierarchical segmentation needs a boundary algorithm")

	// ErrParamConflict is returned by BuildConfig when the boundary and
	// label algorithms disagree on a shared hyperparameter.
	ErrParamConflict = errors.New("algorithms: conflicting hyperparameters")
)

// Role is the role an algorithm is resolved for.
type Role string

const (
	RoleBoundaries Role = "boundaries"
	RoleLabels     Role = "labels"

	// RoleSegment is the joint role of a [Segmenter].
	RoleSegment Role = "segment"
)

// ResolutionError reports an identifier that cannot be resolved to an
// algorithm for a role. Reason is one of ErrUnknownAlgorithm, ErrWrongRole,
// ErrNotHierarchical or ErrNoHierarchicalBoundaries.
type ResolutionError struct {
	ID     string
	Role   Role
	Reason error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("algorithms: resolve %s algorithm %q: %v", e.Role, e.ID, e.Reason)
}

// Unwrap returns ErrResolution and the reason, so errors.Is matches both.
func (e *ResolutionError) Unwrap() []error {
	return []error{ErrResolution, e.Reason}
}
