package engine

import (
	"fmt"
	"math"

	"github.com/csaudio/sf2engine/sf2"
)

// globalAttenuation is the 0.3 headroom multiplier folded into every
// voice's attenuation (spec.md §4.F).
const globalAttenuation = 0.3

// Voice is the per-voice playback state computed by SetupPreset/SetupInstrument and
// consumed, unmodified except for Phase/loopEntered, by the render kernel
// (spec.md §4.F, §5 "the only mutable per-voice state is the phase
// accumulator and the loop-entered latch").
type Voice struct {
	PCM  []int16
	Base int // index into PCM of the sample's frame 0 (pcmBase + sample.Start)

	End       float64 // frames, relative to Base
	StartLoop float64
	EndLoop   float64
	Mode      int

	Phase float64
	Si    float64 // baseSi: multiplied by the runtime freq control to get the per-frame increment

	Stereo     bool
	LeftLevel  float64
	RightLevel float64
	Atten      float64 // used directly for mono output, and for the leftLevel²+rightLevel²=atten² property

	loopEntered bool
}

// Trigger describes a note-on event (spec.md §4.F "On note trigger").
type Trigger struct {
	Note, Vel   int
	IgnoreScale bool
	PhaseOffset float64
	OutputRate  float64 // host sample rate, Hz
}

// acceptsRange reports whether v lies in the closed interval [lo, hi]
// (spec.md §8: "Key-range acceptance is a closed interval").
func acceptsRange(v, lo, hi int) bool { return v >= lo && v <= hi }

// SetupPreset walks preset's layers and splits matching t.Note/t.Vel
// (spec.md §4.F "For the preset entry points") and appends one Voice per
// matching split into dst, returning the number appended. font must be the
// font preset was resolved from (its Instrs/Samples/PCM back the splits).
func SetupPreset(dst []Voice, font *sf2.Font, preset *sf2.Preset, t Trigger) (int, error) {
	n := 0
	for li := range preset.Layers {
		layer := &preset.Layers[li]
		if !acceptsRange(t.Note, layer.MinKey, layer.MaxKey) || !acceptsRange(t.Vel, layer.MinVel, layer.MaxVel) {
			continue
		}
		if layer.InstrIdx < 0 || layer.InstrIdx >= len(font.Instrs) {
			return n, fmt.Errorf("%w: preset %q layer references instrument %d of %d", ErrInstrumentOutOfRange, preset.Name, layer.InstrIdx, len(font.Instrs))
		}
		instr := &font.Instrs[layer.InstrIdx]
		for si := range instr.Splits {
			split := &instr.Splits[si]
			if !acceptsRange(t.Note, split.MinKey, split.MaxKey) || !acceptsRange(t.Vel, split.MinVel, split.MaxVel) {
				continue
			}
			if n >= len(dst) {
				return n, fmt.Errorf("%w: preset %q matched more than %d zones", ErrTooManyZones, preset.Name, len(dst))
			}
			dst[n] = buildVoice(font, split, layer, t, true)
			n++
		}
	}
	return n, nil
}

// SetupInstrument walks instr's splits directly, skipping the layer step
// (spec.md §4.F "For the instrument entry points, skip the layer step").
func SetupInstrument(dst []Voice, font *sf2.Font, instr *sf2.Instr, t Trigger) (int, error) {
	n := 0
	for si := range instr.Splits {
		split := &instr.Splits[si]
		if !acceptsRange(t.Note, split.MinKey, split.MaxKey) || !acceptsRange(t.Vel, split.MinVel, split.MaxVel) {
			continue
		}
		if n >= len(dst) {
			return n, fmt.Errorf("%w: instrument %q matched more than %d zones", ErrTooManyZones, instr.Name, len(dst))
		}
		dst[n] = buildVoice(font, split, nil, t, false)
		n++
	}
	return n, nil
}

// buildVoice computes the per-split playback state of spec.md §4.F. layer
// is nil on the instrument-direct path, in which case every layer.* term is
// treated as zero and the linear (not constant-power) pan law is used —
// the documented deviation of spec.md §9 (c).
func buildVoice(font *sf2.Font, split *sf2.Split, layer *sf2.Layer, t Trigger, stereoConstantPower bool) Voice {
	sample := font.Samples[split.SampleIdx]

	orgKey := split.OverridingRootKey
	if orgKey == -1 {
		orgKey = sample.OriginalKey
	}
	orgFreq := Pitch(orgKey)

	layerCoarse, layerFine, layerAtten, layerPan := 0, 0, 0, 0
	if layer != nil {
		layerCoarse, layerFine, layerAtten, layerPan = layer.CoarseTune, layer.FineTune, layer.InitialAtten, layer.Pan
	}

	tuneCorrection := float64(split.CoarseTune+layerCoarse) + float64(split.FineTune+layerFine)/100.0

	var freq, si float64
	if t.IgnoreScale {
		freq = orgFreq * math.Pow(2.0, tuneCorrection/12.0)
		si = (freq / (orgFreq * orgFreq)) * float64(sample.SampleRate) / t.OutputRate
	} else {
		freq = orgFreq * math.Pow(2.0, tuneCorrection/12.0) *
			math.Pow(2.0, (float64(split.ScaleTuning)/100.0)*float64(t.Note-orgKey)/12.0)
		si = (freq / orgFreq) * float64(sample.SampleRate) / t.OutputRate
	}

	atten := math.Pow(2.0, -float64(layerAtten+split.InitialAtten)/60.0) * globalAttenuation

	pan := float64(split.Pan+layerPan)/1000.0 + 0.5
	pan = math.Min(1.0, math.Max(0.0, pan))

	v := Voice{
		PCM:       font.PCM,
		Base:      int(sample.Start),
		End:       float64(int(sample.End)+split.EndOffset) - float64(sample.Start),
		StartLoop: float64(int(sample.StartLoop)+split.StartLoopOffset) - float64(sample.Start),
		EndLoop:   float64(int(sample.EndLoop)+split.EndLoopOffset) - float64(sample.Start),
		Mode:      split.SampleModes,
		Phase:     float64(split.StartOffset) + t.PhaseOffset,
		Si:        si,
		Stereo:    true,
		Atten:     atten,
	}
	if stereoConstantPower {
		v.LeftLevel = math.Sqrt(1.0-pan) * atten
		v.RightLevel = math.Sqrt(pan) * atten
	} else {
		v.LeftLevel = (1.0 - pan) * atten
		v.RightLevel = pan * atten
	}
	return v
}
