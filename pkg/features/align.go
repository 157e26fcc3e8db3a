package features

import (
	"math"
	"sort"
)

// emptySegment is the maximum length of a segment that is considered empty
// and merged into its neighbour.
const emptySegment = 1e-9

// BoundaryTimes converts boundary frame indices into boundary times that
// cover the whole track: the result is 0, the times of the given frames in
// ascending order, then the track duration. Indices outside [0, Len) are
// clipped and segments of zero length are dropped, so the result always starts
// at 0, ends at Dur, and has at least two entries.
func (f *Features) BoundaryTimes(idxs []int) []float64 {
	sorted := append([]int(nil), idxs...)
	sort.Ints(sorted)

	times := make([]float64, 0, len(sorted)+2)
	times = append(times, 0)
	for _, i := range sorted {
		if f.n == 0 {
			break
		}
		i = min(max(i, 0), f.n-1)
		t := f.frameTimes[i]
		if t <= times[len(times)-1]+emptySegment || t >= f.dur-emptySegment {
			continue
		}
		times = append(times, t)
	}
	return append(times, f.dur)
}

// FrameIndex returns the index of the frame whose time is closest to t.
// It returns 0 when the payload has no frames.
func (f *Features) FrameIndex(t float64) int {
	if f.n == 0 {
		return 0
	}
	i := sort.SearchFloat64s(f.frameTimes, t)
	switch {
	case i <= 0:
		return 0
	case i >= f.n:
		return f.n - 1
	}
	if math.Abs(f.frameTimes[i-1]-t) <= math.Abs(f.frameTimes[i]-t) {
		return i - 1
	}
	return i
}

// FrameIndices aligns each boundary time to its closest frame.
func (f *Features) FrameIndices(times []float64) []int {
	idxs := make([]int, len(times))
	for i, t := range times {
		idxs[i] = f.FrameIndex(t)
	}
	return idxs
}

// Span is a half-open range of frames [Lo, Hi).
type Span struct {
	Lo, Hi int
}

// Len returns the number of frames in the span.
func (s Span) Len() int { return s.Hi - s.Lo }

// Spans returns the frame span of each segment delimited by consecutive
// boundary times. Every span holds at least one frame (when the payload has
// any), so labelers can always summarize a segment even if it is shorter than
// a frame.
func (f *Features) Spans(times []float64) []Span {
	if len(times) < 2 {
		return nil
	}
	idxs := f.FrameIndices(times)
	idxs[len(idxs)-1] = f.n
	spans := make([]Span, len(times)-1)
	for i := range spans {
		lo, hi := idxs[i], idxs[i+1]
		if hi <= lo {
			hi = lo + 1
		}
		if hi > f.n {
			hi = f.n
			lo = max(0, min(lo, hi-1))
		}
		spans[i] = Span{Lo: lo, Hi: hi}
	}
	return spans
}

// Mean returns the mean feature vector over the frames of s.
func (f *Features) Mean(s Span) []float64 {
	out := make([]float64, f.d)
	if s.Len() <= 0 {
		return out
	}
	for i := s.Lo; i < s.Hi; i++ {
		row := f.data[i*f.d : (i+1)*f.d]
		for j, v := range row {
			out[j] += v
		}
	}
	for j := range out {
		out[j] /= float64(s.Len())
	}
	return out
}
