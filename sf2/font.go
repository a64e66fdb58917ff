package sf2

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
)

// Load opens path, parses it as an SF2 file, and resolves it into a
// playable Font. The file handle's acquisition is scoped to the read —
// it's closed before the resolver runs (spec.md §5 "Resource release").
func Load(path string) (*Font, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFileOpenFailed, path, err)
	}
	raw, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFileOpenFailed, path, err)
	}

	font, err := parse(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	font.Path = path

	defaultLogger.Info("loaded font", "path", path, "presets", len(font.Presets), "instruments", len(font.Instrs))
	return font, nil
}

// parse implements spec.md §4.A: RIFF/sfbk container holding three LIST
// chunks (INFO, sdta, pdta), followed by zone resolution (§4.C).
func parse(r io.Reader) (*Font, error) {
	var riff chunk
	if err := riff.expect(r, [4]byte{'R', 'I', 'F', 'F'}); err != nil {
		return nil, err
	}
	body := riff.newReader()

	ok, err := expectTag(body, []byte("sfbk"))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: missing sfbk tag", ErrFormatIncompatible)
	}

	var list chunk
	if err := list.expect(body, [4]byte{'L', 'I', 'S', 'T'}); err != nil {
		return nil, err
	}
	info, err := readInfo(list.newReader(), defaultLogger)
	if err != nil {
		return nil, err
	}

	if err := list.expect(body, [4]byte{'L', 'I', 'S', 'T'}); err != nil {
		return nil, err
	}
	sdtaReader := list.newReader()
	ok, err = expectTag(sdtaReader, []byte("sdta"))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: missing sdta tag", ErrFormatIncompatible)
	}
	pcm, err := readPCMPool(sdtaReader, defaultLogger)
	if err != nil {
		return nil, err
	}

	if err := list.expect(body, [4]byte{'L', 'I', 'S', 'T'}); err != nil {
		return nil, err
	}
	pdtaReader := list.newReader()
	ok, err = expectTag(pdtaReader, []byte("pdta"))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: missing pdta tag", ErrFormatIncompatible)
	}
	h, err := readHydra(pdtaReader, defaultLogger)
	if err != nil {
		return nil, err
	}

	samples := toSampleHdrs(h.samples)

	instrs, err := resolveInstruments(h, samples)
	if err != nil {
		return nil, err
	}

	presets, err := resolvePresets(h)
	if err != nil {
		return nil, err
	}
	// presets reference instruments only by index (h.pgen's instrument
	// generator amount); no further linking step is needed since Layer.InstrIdx
	// already indexes directly into instrs in declaration order.

	sort.SliceStable(presets, func(i, j int) bool {
		return presets[i].Bank*128+presets[i].Program < presets[j].Bank*128+presets[j].Program
	})

	font := &Font{
		Info:    info,
		PCM:     pcm,
		Samples: samples,
		Presets: presets,
		Instrs:  instrs,
	}
	warnOutOfBoundsSplits(font, defaultLogger)
	return font, nil
}

// warnOutOfBoundsSplits logs (but does not fail on) any split whose
// resolved PCM window would reach outside the pool once sample-address
// offsets are applied. Conformant SF2 files never do this (spec.md §3's
// invariant), but a malformed font shouldn't crash the load step. Such a
// split is not rejected here or at voice setup (engine.SetupPreset/
// SetupInstrument do no bounds check); the render kernel clamps every PCM
// read to the pool instead.
func warnOutOfBoundsSplits(f *Font, log diagLogger) {
	for ii := range f.Instrs {
		for si := range f.Instrs[ii].Splits {
			sp := &f.Instrs[ii].Splits[si]
			samp := f.Samples[sp.SampleIdx]
			end := int(samp.End) + sp.EndOffset
			if end+2 >= len(f.PCM) || end < int(samp.Start) {
				log.Warn("split PCM window out of bounds", "instrument", ii, "split", si, "sample", samp.Name)
			}
		}
	}
}
