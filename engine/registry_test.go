package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csaudio/sf2engine/sf2"
)

func twoPresetFont() *sf2.Font {
	return &sf2.Font{
		Path: "test.sf2",
		Presets: []sf2.Preset{
			{Name: "A", Program: 0, Bank: 0},
			{Name: "B", Program: 1, Bank: 0},
		},
		Instrs: []sf2.Instr{{Name: "only"}},
	}
}

func registryWithFont(font *sf2.Font) *Registry {
	r := NewRegistry()
	r.fonts = append(r.fonts, font)
	return r
}

func TestAssignFindsMatchingProgramBank(t *testing.T) {
	r := registryWithFont(twoPresetFont())
	require.NoError(t, r.Assign(5, 0, 1, 0))

	font, preset, err := r.Preset(5)
	require.NoError(t, err)
	assert.Equal(t, "B", preset.Name)
	assert.Equal(t, "test.sf2", font.Path)
}

func TestAssignUnknownProgramBankErrors(t *testing.T) {
	r := registryWithFont(twoPresetFont())
	err := r.Assign(0, 0, 99, 0)
	assert.ErrorIs(t, err, ErrPresetNotFound)
}

func TestAssignHandleOutOfRangeErrors(t *testing.T) {
	r := registryWithFont(twoPresetFont())
	err := r.Assign(PresetHandleCapacity, 0, 0, 0)
	assert.ErrorIs(t, err, ErrHandleOutOfRange)
}

func TestAssignAllWritesEveryPresetInOrder(t *testing.T) {
	r := registryWithFont(twoPresetFont())
	require.NoError(t, r.AssignAll(10, 0))

	_, p0, err := r.Preset(10)
	require.NoError(t, err)
	assert.Equal(t, "A", p0.Name)

	_, p1, err := r.Preset(11)
	require.NoError(t, err)
	assert.Equal(t, "B", p1.Name)
}

func TestPresetUnassignedHandleErrors(t *testing.T) {
	r := registryWithFont(twoPresetFont())
	_, _, err := r.Preset(42)
	assert.ErrorIs(t, err, ErrInvalidPresetHandle)
}

func TestInstrumentOutOfRangeErrors(t *testing.T) {
	r := registryWithFont(twoPresetFont())
	_, _, err := r.Instrument(0, 7)
	assert.ErrorIs(t, err, ErrInstrumentOutOfRange)
}

func TestFontHandleOutOfRangeErrors(t *testing.T) {
	r := registryWithFont(twoPresetFont())
	_, err := r.Font(1)
	assert.ErrorIs(t, err, ErrHandleOutOfRange)
}

func TestCloseClearsHandlesAndFonts(t *testing.T) {
	r := registryWithFont(twoPresetFont())
	require.NoError(t, r.Assign(0, 0, 0, 0))
	r.Close()

	_, _, err := r.Preset(0)
	assert.ErrorIs(t, err, ErrInvalidPresetHandle)
	_, err = r.Font(0)
	assert.ErrorIs(t, err, ErrHandleOutOfRange)
}
