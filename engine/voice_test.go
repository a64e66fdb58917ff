package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csaudio/sf2engine/sf2"
)

func oneSplitFont() *sf2.Font {
	return &sf2.Font{
		Samples: []sf2.SampleHdr{
			{Name: "s", Start: 0, End: 100, StartLoop: 10, EndLoop: 90, SampleRate: 44100, OriginalKey: 60},
		},
		Instrs: []sf2.Instr{
			{Name: "instr", Splits: []sf2.Split{
				{SampleIdx: 0, MinKey: 0, MaxKey: 127, MinVel: 0, MaxVel: 127, OverridingRootKey: -1, ScaleTuning: 100},
			}},
		},
		Presets: []sf2.Preset{
			{Name: "preset", Program: 0, Bank: 0, Layers: []sf2.Layer{
				{InstrIdx: 0, MinKey: 0, MaxKey: 127, MinVel: 0, MaxVel: 127},
			}},
		},
		PCM: make([]int16, 200),
	}
}

func TestSetupPresetMatchesInRange(t *testing.T) {
	font := oneSplitFont()
	var voices [4]Voice
	n, err := SetupPreset(voices[:], font, &font.Presets[0], Trigger{Note: 60, Vel: 100, OutputRate: 44100})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 0, voices[0].Base)
	assert.InDelta(t, 1.0, voices[0].Si, 1e-9, "root-key note at root key should sample at unit rate")
}

func TestSetupPresetSkipsOutOfRangeKey(t *testing.T) {
	font := oneSplitFont()
	font.Presets[0].Layers[0].MinKey = 64
	font.Presets[0].Layers[0].MaxKey = 72
	var voices [4]Voice
	n, err := SetupPreset(voices[:], font, &font.Presets[0], Trigger{Note: 60, Vel: 100, OutputRate: 44100})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSetupPresetInstrumentOutOfRangeErrors(t *testing.T) {
	font := oneSplitFont()
	font.Presets[0].Layers[0].InstrIdx = 5
	var voices [4]Voice
	_, err := SetupPreset(voices[:], font, &font.Presets[0], Trigger{Note: 60, Vel: 100, OutputRate: 44100})
	assert.ErrorIs(t, err, ErrInstrumentOutOfRange)
}

func TestSetupPresetTooManyZonesErrors(t *testing.T) {
	font := oneSplitFont()
	var voices [0]Voice
	_, err := SetupPreset(voices[:], font, &font.Presets[0], Trigger{Note: 60, Vel: 100, OutputRate: 44100})
	assert.ErrorIs(t, err, ErrTooManyZones)
}

func TestSetupInstrumentUsesLinearPanLaw(t *testing.T) {
	font := oneSplitFont()
	font.Instrs[0].Splits[0].Pan = 250 // pan fraction 0.75
	var voices [4]Voice
	n, err := SetupInstrument(voices[:], font, &font.Instrs[0], Trigger{Note: 60, Vel: 100, OutputRate: 44100})
	require.NoError(t, err)
	require.Equal(t, 1, n)
	// Linear law: right level should equal pan fraction * atten, not sqrt
	// (the sqrt law would give 0.866 right, 0.5 left).
	assert.InDelta(t, 0.75, voices[0].RightLevel/globalAttenuation, 1e-9)
	assert.InDelta(t, 0.25, voices[0].LeftLevel/globalAttenuation, 1e-9)
}

func TestBuildVoicePitchDoublesOneOctaveUp(t *testing.T) {
	font := oneSplitFont()
	var voices [4]Voice
	n, err := SetupPreset(voices[:], font, &font.Presets[0], Trigger{Note: 72, Vel: 100, OutputRate: 44100})
	require.NoError(t, err)
	require.Equal(t, 1, n)
	assert.InDelta(t, 2.0, voices[0].Si, 1e-6, "one octave above root key should double the sample increment")
}

func TestBuildVoiceIgnoreScaleDecouplesSiFromNote(t *testing.T) {
	font := oneSplitFont()

	var lowVoices, highVoices [4]Voice
	_, err := SetupPreset(lowVoices[:], font, &font.Presets[0], Trigger{Note: 60, Vel: 100, OutputRate: 44100, IgnoreScale: true})
	require.NoError(t, err)
	_, err = SetupPreset(highVoices[:], font, &font.Presets[0], Trigger{Note: 72, Vel: 100, OutputRate: 44100, IgnoreScale: true})
	require.NoError(t, err)

	assert.InDelta(t, lowVoices[0].Si, highVoices[0].Si, 1e-9, "ignoreScale path must not scale si by the note-to-root-key distance")
}
