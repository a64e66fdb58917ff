package engine

import "errors"

// Render-time / handle-table error kinds (spec.md §7). Load-time parse
// errors (FormatIncompatible, RomSampleUnsupported, ...) live in package
// sf2, next to the parser that raises them.
var (
	// ErrPresetNotFound is returned by Assign when no preset in the font
	// matches the requested (program, bank).
	ErrPresetNotFound = errors.New("engine: no preset matches the requested program/bank")

	// ErrHandleOutOfRange is returned when a preset or font handle would
	// exceed the registry's fixed capacity, or when a font handle does not
	// name a loaded font.
	ErrHandleOutOfRange = errors.New("engine: handle exceeds table capacity")

	// ErrInvalidPresetHandle is returned by Registry.Preset when asked to
	// resolve a preset handle that has not been assigned.
	ErrInvalidPresetHandle = errors.New("engine: preset handle has not been assigned")

	// ErrInstrumentOutOfRange is returned when an instrument index exceeds
	// a font's instrument count.
	ErrInstrumentOutOfRange = errors.New("engine: instrument index out of range")

	// ErrTooManyZones is returned by SetupPreset/SetupInstrument when the number of splits
	// matching a note/velocity would overflow the caller-supplied voice
	// slot capacity (spec.md §9 "Unbounded zone matching").
	ErrTooManyZones = errors.New("engine: note trigger matched more zones than the voice slot capacity")
)
