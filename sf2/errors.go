package sf2

import "errors"

// Load-time error kinds (spec.md §7). Render-time error kinds
// (PresetNotFound, HandleOutOfRange, InvalidPresetHandle,
// InstrumentOutOfRange, TooManyZones) live in package engine, next to the
// code that raises them.
var (
	// ErrFileOpenFailed wraps the underlying OS error from a failed sfload.
	ErrFileOpenFailed = errors.New("sf2: failed to open font file")

	// ErrFormatIncompatible is raised when the RIFF top-level structure
	// doesn't match (missing RIFF/sfbk/LIST tags, wrong chunk order).
	ErrFormatIncompatible = errors.New("sf2: file is not a valid SoundFont2 file")

	// ErrRomSample is raised when a resolved split references a sample
	// with the ROM type bit (0x8000) set. ROM playback is out of scope.
	ErrRomSample = errors.New("sf2: ROM samples are not supported")
)
