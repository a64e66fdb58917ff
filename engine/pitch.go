package engine

import "math"

// pitches[k] = 440 * 2^((k-69)/12), precomputed once for the 128 MIDI key
// numbers (spec.md §4.F, §8). Computed at package init instead of lazily so
// the render path never has to branch on "has this been filled in yet".
var pitches [128]float64

func init() {
	for k := range pitches {
		pitches[k] = 440.0 * math.Pow(2.0, (float64(k)-69.0)/12.0)
	}
}

// Pitch returns the equal-tempered frequency, in Hz, of MIDI key k.
// Panics if k is outside [0,127]. Voice setup calls it with a split's root
// key: the sample's original key (limited to [0,127] by sf2's toSampleHdrs)
// unless the split's overridingRootKey replaces it.
func Pitch(k int) float64 {
	return pitches[k]
}
