// Package featurestest builds synthetic feature payloads for tests.
package featurestest

import (
	"math"

	"github.com/haivivi/musicseg/pkg/features"
)

// Dim is the dimension of synthetic frames, matching a chromagram.
const Dim = 12

// profiles are pitch profiles with distinct interval structures, so no
// section is a transposition of another.
var profiles = []map[int]float64{
	{0: 1, 4: 0.6, 7: 0.4},
	{2: 1, 3: 0.8},
	{5: 1, 8: 0.3, 11: 0.9},
	{1: 1, 6: 0.2},
}

// Blocks returns beat-synchronous features in which every letter of form is
// a section of sectionSec seconds. Sections with the same letter share a
// pitch profile; a small deterministic ripple on the profile keeps frames
// distinct.
func Blocks(form string, sectionSec, hop float64) *features.Features {
	perSection := max(int(math.Round(sectionSec/hop)), 1)
	n := perSection * len(form)
	rows := make([][]float64, n)
	times := make([]float64, n)
	for i := range n {
		profile := profiles[int(form[i/perSection]-'A')%len(profiles)]
		row := make([]float64, Dim)
		for j := range row {
			row[j] = 0.05
		}
		for j, w := range profile {
			row[j] += w * (1 + 0.02*math.Sin(float64(i*(j+1))*0.37))
		}
		rows[i] = row
		times[i] = float64(i) * hop
	}
	f, err := features.New("pcp", features.EstBeatSync, rows, times, float64(n)*hop)
	if err != nil {
		panic(err)
	}
	return f
}

// Long returns about three minutes of features with the form ABACABCA.
func Long() *features.Features {
	return Blocks("ABACABCA", 22.5, 0.5)
}

// Short returns features too short to segment: five frames over 1.2 s.
func Short() *features.Features {
	rows := make([][]float64, 5)
	times := make([]float64, 5)
	for i := range rows {
		rows[i] = make([]float64, Dim)
		rows[i][i%Dim] = 1
		times[i] = float64(i) * 0.2
	}
	f, err := features.New("pcp", features.EstBeatSync, rows, times, 1.2)
	if err != nil {
		panic(err)
	}
	return f
}
