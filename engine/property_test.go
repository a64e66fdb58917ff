package engine

import (
	"math"
	"testing"

	"pgregory.net/rapid"
)

// TestPitchFormulaProperty checks the MIDI-key-to-frequency table against
// its defining formula for keys that rapid draws from [0,127] (spec.md
// §4.F, §8).
func TestPitchFormulaProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		k := rapid.IntRange(0, 127).Draw(rt, "key")
		want := 440.0 * math.Pow(2.0, (float64(k)-69.0)/12.0)
		got := Pitch(k)
		if math.Abs(got-want) > 1e-9 {
			rt.Fatalf("Pitch(%d) = %v, want %v", k, got, want)
		}
	})
}

// TestAcceptsRangeClosedIntervalProperty checks that acceptsRange implements
// an inclusive [lo, hi] test (spec.md §8 "Key-range acceptance is a closed
// interval").
func TestAcceptsRangeClosedIntervalProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		lo := rapid.IntRange(0, 127).Draw(rt, "lo")
		hi := rapid.IntRange(lo, 127).Draw(rt, "hi")
		v := rapid.IntRange(0, 127).Draw(rt, "v")

		want := v >= lo && v <= hi
		got := acceptsRange(v, lo, hi)
		if got != want {
			rt.Fatalf("acceptsRange(%d, %d, %d) = %v, want %v", v, lo, hi, got, want)
		}
	})
}

// TestLoopWrapInvariant checks that once the loop-entered latch trips, the
// phase accumulator always satisfies startLoop <= phase < endLoop after
// loopWrap runs, regardless of how far a single step overshoots the loop
// (spec.md §4.G "Loop discipline").
func TestLoopWrapInvariant(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		startLoop := rapid.Float64Range(0, 1000).Draw(rt, "startLoop")
		loopLen := rapid.Float64Range(1, 1000).Draw(rt, "loopLen")
		endLoop := startLoop + loopLen
		overshoot := rapid.Float64Range(0, 100).Draw(rt, "overshoot")

		v := &Voice{
			Phase:     startLoop + overshoot,
			StartLoop: startLoop,
			EndLoop:   endLoop,
		}
		loopWrap(v)

		if v.Phase < startLoop || v.Phase >= endLoop {
			rt.Fatalf("phase %v escaped loop bounds [%v, %v)", v.Phase, startLoop, endLoop)
		}
	})
}
