package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// impulseVoice returns a single unlooped voice whose PCM pool is silent
// except for a unit impulse at frame 0 of the sample, playing at unit rate
// (spec.md §8 "Impulse passthrough").
func impulseVoice(length int) Voice {
	pcm := make([]int16, length+8)
	pcm[0] = 32767
	return Voice{
		PCM:        pcm,
		Base:       0,
		End:        float64(length),
		Mode:       0,
		Si:         1.0,
		LeftLevel:  1.0,
		RightLevel: 1.0,
		Atten:      1.0,
	}
}

func TestRenderStereoLinearImpulsePassthrough(t *testing.T) {
	v := impulseVoice(4)
	left := make([]float64, 8)
	right := make([]float64, 8)

	RenderStereoLinear([]Voice{v}, left, right, Control{Scalar: 1.0}, Control{Scalar: 1.0})

	assert.Greater(t, left[0], 0.0, "frame 0 should carry the impulse")
	for i := 1; i < 8; i++ {
		assert.Equal(t, 0.0, left[i], "frames after the impulse and past End should be silent")
		assert.Equal(t, 0.0, right[i])
	}
}

func TestRenderStereoLinearSilentSample(t *testing.T) {
	v := Voice{
		PCM:        make([]int16, 32),
		Base:       0,
		End:        16,
		Si:         1.0,
		LeftLevel:  1.0,
		RightLevel: 1.0,
	}
	left := make([]float64, 16)
	right := make([]float64, 16)

	RenderStereoLinear([]Voice{v}, left, right, Control{Scalar: 1.0}, Control{Scalar: 1.0})

	for i := range left {
		assert.Equal(t, 0.0, left[i])
		assert.Equal(t, 0.0, right[i])
	}
}

func TestRenderStereoLinearHaltsAtEnd(t *testing.T) {
	v := impulseVoice(4)
	v.Phase = 4 // already at End: should not produce any output
	left := make([]float64, 4)
	right := make([]float64, 4)

	RenderStereoLinear([]Voice{v}, left, right, Control{Scalar: 1.0}, Control{Scalar: 1.0})

	for i := range left {
		assert.Equal(t, 0.0, left[i])
	}
}

func TestRenderStereoLinearLoopWrapsWithinBounds(t *testing.T) {
	pcm := make([]int16, 64)
	for i := range pcm {
		pcm[i] = int16(i)
	}
	v := Voice{
		PCM:       pcm,
		Base:      0,
		End:       40,
		StartLoop: 10,
		EndLoop:   20,
		Mode:      1, // looped continuously
		Si:        3.0,
		LeftLevel: 1.0,
	}
	left := make([]float64, 200)
	right := make([]float64, 200)

	RenderStereoLinear([]Voice{v}, left, right, Control{Scalar: 1.0}, Control{Scalar: 1.0})

	// After many loop periods the render kernel's local copy of the voice
	// doesn't escape, but we can still check the output never goes silent
	// (a wrap bug would eventually index outside the loop and read zeros,
	// or panic on an out-of-range slice access).
	nonZero := 0
	for _, s := range left {
		if s != 0 {
			nonZero++
		}
	}
	assert.Greater(t, nonZero, 100, "a healthy loop should keep producing nonzero samples across many periods")
}

func TestRenderStereoLinearZeroLengthLoopIsSilent(t *testing.T) {
	pcm := make([]int16, 64)
	for i := range pcm {
		pcm[i] = 1000
	}
	v := Voice{
		PCM:       pcm,
		Base:      0,
		End:       40,
		StartLoop: 20,
		EndLoop:   20, // zero-length loop
		Mode:      1,
		Si:        1.0,
		LeftLevel: 1.0,
	}
	left := make([]float64, 32)
	right := make([]float64, 32)

	RenderStereoLinear([]Voice{v}, left, right, Control{Scalar: 1.0}, Control{Scalar: 1.0})

	for i := range left {
		assert.Equal(t, 0.0, left[i], "a zero-length loop must yield silence rather than loop forever")
	}
}

func TestRenderMonoLinearSumsMultipleVoices(t *testing.T) {
	mkVoice := func(val int16) Voice {
		pcm := make([]int16, 16)
		for i := range pcm {
			pcm[i] = val
		}
		return Voice{PCM: pcm, Base: 0, End: 16, Si: 1.0, Atten: 1.0}
	}

	voices := []Voice{mkVoice(10), mkVoice(20)}
	out := make([]float64, 4)
	RenderMonoLinear(voices, out, Control{Scalar: 1.0}, Control{Scalar: 1.0})

	for _, s := range out {
		assert.InDelta(t, 30.0, s, 1e-9)
	}
}

func TestRenderStereoCubicMatchesLinearOnConstantSignal(t *testing.T) {
	// On a perfectly constant signal, cubic and linear interpolation must
	// agree exactly (both degenerate to the constant value).
	pcm := make([]int16, 32)
	for i := range pcm {
		pcm[i] = 500
	}
	mk := func() Voice {
		return Voice{PCM: pcm, Base: 4, End: 20, Si: 1.3, LeftLevel: 1.0, RightLevel: 1.0}
	}

	leftLin := make([]float64, 10)
	rightLin := make([]float64, 10)
	RenderStereoLinear([]Voice{mk()}, leftLin, rightLin, Control{Scalar: 1.0}, Control{Scalar: 1.0})

	leftCub := make([]float64, 10)
	rightCub := make([]float64, 10)
	RenderStereoCubic([]Voice{mk()}, leftCub, rightCub, Control{Scalar: 1.0}, Control{Scalar: 1.0})

	for i := range leftLin {
		assert.InDelta(t, leftLin[i], leftCub[i], 1e-6)
	}
}

func TestPitchTableMonotonicAndFormula(t *testing.T) {
	for k := 1; k < 128; k++ {
		assert.Greater(t, Pitch(k), Pitch(k-1), "pitch table must be strictly increasing")
	}
	want := 440.0 * math.Pow(2.0, (69.0-69.0)/12.0)
	assert.InDelta(t, want, Pitch(69), 1e-9)
}
