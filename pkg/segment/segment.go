// Package segment defines the segmentation result shared by every algorithm
// combination and the normalizer that enforces its structural invariants.
//
// A [Segmentation] is either flat (one [Level]) or hierarchical (several
// levels, as ordered by the producing algorithm). For every level:
//
//	len(Times) == len(Labels) + 1
//	Times[0] == 0
//	Times[len(Times)-1] == track duration
//
// within [Tolerance] seconds. [Normalize] checks these rules once for all
// algorithms instead of each algorithm repairing its own output.
package segment

import "fmt"

// Unlabeled is the label assigned to segments when no labeling algorithm was
// requested.
const Unlabeled = -1

// Level is one segmentation level: the boundary times in seconds and one
// label per segment between consecutive boundaries.
type Level struct {
	Times  []float64 `json:"times" yaml:"times" msgpack:"times"`
	Labels []int     `json:"labels" yaml:"labels" msgpack:"labels"`
}

// Segments returns the number of segments delimited by Times.
func (l Level) Segments() int {
	if len(l.Times) == 0 {
		return 0
	}
	return len(l.Times) - 1
}

// Clone returns a deep copy of l. Nil slices stay nil.
func (l Level) Clone() Level {
	var c Level
	if l.Times != nil {
		c.Times = append([]float64(nil), l.Times...)
	}
	if l.Labels != nil {
		c.Labels = append([]int(nil), l.Labels...)
	}
	return c
}

// Segmentation is the output of a segmentation run: either a single flat
// level or a hierarchy of levels.
type Segmentation struct {
	Hierarchical bool    `json:"hierarchical" yaml:"hierarchical" msgpack:"hierarchical"`
	Levels       []Level `json:"levels" yaml:"levels" msgpack:"levels"`
}

// Flat returns a flat segmentation.
func Flat(times []float64, labels []int) Segmentation {
	return Segmentation{Levels: []Level{{Times: times, Labels: labels}}}
}

// Hierarchy returns a hierarchical segmentation of the given levels.
func Hierarchy(levels ...Level) Segmentation {
	return Segmentation{Hierarchical: true, Levels: levels}
}

// Level returns level i.
func (s Segmentation) Level(i int) Level { return s.Levels[i] }

// First returns the first level: the only level of a flat segmentation, or
// the first level of a hierarchy. It returns false if there are no levels.
func (s Segmentation) First() (Level, bool) {
	if len(s.Levels) == 0 {
		return Level{}, false
	}
	return s.Levels[0], true
}

// Times returns the boundary times of every level.
func (s Segmentation) Times() [][]float64 {
	out := make([][]float64, len(s.Levels))
	for i, l := range s.Levels {
		out[i] = l.Times
	}
	return out
}

// Clone returns a deep copy of s.
func (s Segmentation) Clone() Segmentation {
	c := Segmentation{Hierarchical: s.Hierarchical}
	if s.Levels != nil {
		c.Levels = make([]Level, len(s.Levels))
		for i, l := range s.Levels {
			c.Levels[i] = l.Clone()
		}
	}
	return c
}

// String implements fmt.Stringer.
func (s Segmentation) String() string {
	if !s.Hierarchical {
		if l, ok := s.First(); ok {
			return fmt.Sprintf("flat[%d segments]", l.Segments())
		}
		return "flat[]"
	}
	return fmt.Sprintf("hierarchy[%d levels]", len(s.Levels))
}
