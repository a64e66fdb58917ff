package engine

import (
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/csaudio/sf2engine/sf2"
)

// FontCapacity and PresetHandleCapacity are the fixed table sizes spec.md
// §3 requires ("capacity ≥ 10" / "fixed capacity (≥ 512)"). The original
// module-global C arrays are sized exactly at these bounds; a Go
// reimplementation keeps them as explicit constants on an explicit
// per-engine Registry rather than package-global arrays (spec.md §9
// "process-wide mutable state").
const (
	FontCapacity          = 16
	PresetHandleCapacity  = 512
)

// presetAssignment is one entry of the preset-handle table: a resolved
// preset plus the font it belongs to — voice setup needs the font's
// instrument table (to resolve Layer.InstrIdx) and PCM pool (spec.md §4.E).
type presetAssignment struct {
	font   *sf2.Font
	preset *sf2.Preset
}

// Registry owns every font loaded through it and the preset-handle table
// used to address those fonts' presets by small integer handle. It is the
// per-engine context spec.md §9 asks for in place of the original's
// module-global arrays; a host embeds one Registry per synthesis engine
// instance.
type Registry struct {
	mu    sync.Mutex // load operations are serialized (spec.md §5)
	fonts []*sf2.Font

	handles [PresetHandleCapacity]presetAssignment

	log *log.Logger
}

// NewRegistry returns an empty Registry ready to load fonts into.
func NewRegistry() *Registry {
	return &Registry{
		fonts: make([]*sf2.Font, 0, FontCapacity),
		log:   log.NewWithOptions(os.Stderr, log.Options{Prefix: "engine"}),
	}
}

// LoadFont parses path and appends it to the registry, returning its font
// handle (spec.md §4.D: "loading appends one entry, strictly serially, and
// returns its index").
func (r *Registry) LoadFont(path string) (fontID int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.fonts) >= FontCapacity {
		return 0, fmt.Errorf("%w: font table holds at most %d fonts", ErrHandleOutOfRange, FontCapacity)
	}

	font, err := sf2.Load(path)
	if err != nil {
		return 0, err
	}

	r.fonts = append(r.fonts, font)
	return len(r.fonts) - 1, nil
}

// Font returns the font registered under fontID.
func (r *Registry) Font(fontID int) (*sf2.Font, error) {
	if fontID < 0 || fontID >= len(r.fonts) {
		return nil, fmt.Errorf("%w: font handle %d", ErrHandleOutOfRange, fontID)
	}
	return r.fonts[fontID], nil
}

// Assign implements the sfpreset opcode (spec.md §4.E): search fontID's
// sorted preset list for the first (program, bank) match and bind it to
// presetHandle.
func (r *Registry) Assign(presetHandle, fontID, program, bank int) error {
	if presetHandle < 0 || presetHandle >= PresetHandleCapacity {
		return fmt.Errorf("%w: preset handle %d (capacity %d)", ErrHandleOutOfRange, presetHandle, PresetHandleCapacity)
	}
	font, err := r.Font(fontID)
	if err != nil {
		return err
	}

	for i := range font.Presets {
		p := &font.Presets[i]
		if p.Program == program && p.Bank == bank {
			r.handles[presetHandle] = presetAssignment{font: font, preset: p}
			return nil
		}
	}
	return fmt.Errorf("%w: program %d bank %d in %q", ErrPresetNotFound, program, bank, font.Path)
}

// AssignAll implements the sfpassign opcode (spec.md §4.E): write every
// preset of fontID into consecutive handles starting at startHandle, in
// the font's sorted order.
func (r *Registry) AssignAll(startHandle, fontID int) error {
	font, err := r.Font(fontID)
	if err != nil {
		return err
	}

	h := startHandle
	for i := range font.Presets {
		if h >= PresetHandleCapacity {
			return fmt.Errorf("%w: assigning all %d presets of %q starting at %d overflows capacity %d",
				ErrHandleOutOfRange, len(font.Presets), font.Path, startHandle, PresetHandleCapacity)
		}
		p := &font.Presets[i]
		r.handles[h] = presetAssignment{font: font, preset: p}
		r.log.Debug("assigned preset", "handle", h, "name", p.Name, "program", p.Program, "bank", p.Bank)
		h++
	}
	return nil
}

// Preset resolves a preset handle assigned via Assign/AssignAll, returning
// both the preset and the font it belongs to.
func (r *Registry) Preset(presetHandle int) (*sf2.Font, *sf2.Preset, error) {
	if presetHandle < 0 || presetHandle >= PresetHandleCapacity {
		return nil, nil, fmt.Errorf("%w: preset handle %d", ErrHandleOutOfRange, presetHandle)
	}
	a := r.handles[presetHandle]
	if a.preset == nil {
		return nil, nil, fmt.Errorf("%w: handle %d", ErrInvalidPresetHandle, presetHandle)
	}
	return a.font, a.preset, nil
}

// Instrument resolves an instrument index directly within fontID, for the
// sfinstr/sfinstrm "play instrument directly" opcodes.
func (r *Registry) Instrument(fontID, instrIdx int) (*sf2.Font, *sf2.Instr, error) {
	font, err := r.Font(fontID)
	if err != nil {
		return nil, nil, err
	}
	if instrIdx < 0 || instrIdx >= len(font.Instrs) {
		return nil, nil, fmt.Errorf("%w: instrument %d of %d in %q", ErrInstrumentOutOfRange, instrIdx, len(font.Instrs), font.Path)
	}
	return font, &font.Instrs[instrIdx], nil
}

// Close releases every font held by the registry, in reverse order of
// creation (spec.md §5 "Resource release": "splits → layers → presets →
// instruments → PCM pool"). In Go this is just dropping the references and
// letting the collector reclaim them, but the ordering is preserved for
// fidelity with the spec's teardown discipline.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.handles {
		r.handles[i] = presetAssignment{}
	}
	for i := len(r.fonts) - 1; i >= 0; i-- {
		r.fonts[i] = nil
	}
	r.fonts = r.fonts[:0]
}
