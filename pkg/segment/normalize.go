package segment

import (
	"errors"
	"fmt"
	"math"
)

// Tolerance is the maximum distance in seconds between the first boundary
// and 0, and between the last boundary and the track duration.
const Tolerance = 0.01

// ErrInvariantViolation matches every [*InvariantViolationError].
var ErrInvariantViolation = errors.New("segment: invariant violation")

// Check names the invariant that failed.
type Check string

const (
	CheckStart Check = "start"
	CheckEnd   Check = "end"
	CheckCount Check = "count"
	CheckOrder Check = "order"
)

// InvariantViolationError reports a level that breaks the segmentation
// invariants.
type InvariantViolationError struct {
	Level int
	Check Check
	Got   float64
	Want  float64
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("segment: level %d violates %s invariant: got %g, want %g", e.Level, e.Check, e.Got, e.Want)
}

// Is reports whether target is ErrInvariantViolation.
func (e *InvariantViolationError) Is(target error) bool {
	return target == ErrInvariantViolation
}

// Normalize checks every level of raw against the segmentation invariants
// for a track of length dur and returns a normalized deep copy.
//
// The first and last boundaries must lie within Tolerance of 0 and dur; they
// are then set to exactly 0 and dur. Boundaries must not decrease. When
// labelsRequested is true each level must carry exactly one label per
// segment; otherwise any labels are replaced by [Unlabeled]. Violations are
// never repaired.
func Normalize(raw Segmentation, dur float64, labelsRequested bool) (Segmentation, error) {
	if len(raw.Levels) == 0 {
		return Segmentation{}, &InvariantViolationError{Level: 0, Check: CheckCount, Got: 0, Want: 1}
	}
	out := raw.Clone()
	for i := range out.Levels {
		if err := normalizeLevel(i, &out.Levels[i], dur, labelsRequested); err != nil {
			return Segmentation{}, err
		}
	}
	return out, nil
}

func normalizeLevel(i int, l *Level, dur float64, labelsRequested bool) error {
	n := len(l.Times)
	if n < 2 {
		return &InvariantViolationError{Level: i, Check: CheckCount, Got: float64(n), Want: 2}
	}
	if first := l.Times[0]; math.IsNaN(first) || math.Abs(first) > Tolerance {
		return &InvariantViolationError{Level: i, Check: CheckStart, Got: first, Want: 0}
	}
	if last := l.Times[n-1]; math.IsNaN(last) || math.Abs(last-dur) > Tolerance {
		return &InvariantViolationError{Level: i, Check: CheckEnd, Got: last, Want: dur}
	}
	l.Times[0] = 0
	l.Times[n-1] = dur
	for j := 1; j < n; j++ {
		if math.IsNaN(l.Times[j]) || l.Times[j] < l.Times[j-1] {
			return &InvariantViolationError{Level: i, Check: CheckOrder, Got: l.Times[j], Want: l.Times[j-1]}
		}
	}

	if !labelsRequested {
		l.Labels = make([]int, n-1)
		for j := range l.Labels {
			l.Labels[j] = Unlabeled
		}
		return nil
	}
	if len(l.Labels) != n-1 {
		return &InvariantViolationError{Level: i, Check: CheckCount, Got: float64(len(l.Labels)), Want: float64(n - 1)}
	}
	return nil
}
