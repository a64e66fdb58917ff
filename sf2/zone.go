package sf2

// Zone resolution (spec.md §4.C) folds the two-level preset→instrument→
// sample generator hierarchy into flat Preset/Layer/Instr/Split tables.
// This is the hard part of the engine and the one subsystem this package
// exists to own.

// optInt is a generator value that may be "not present". The zero value
// is unset; presetGlobals and instrGlobals use this instead of a sentinel constant
// because several recognized generators (coarseTune, pan, ...) are
// legitimately zero when present.
type optInt struct {
	set bool
	val int
}

func set(v int) optInt { return optInt{set: true, val: v} }

func (o optInt) orElse(d int) int {
	if o.set {
		return o.val
	}
	return d
}

// presetGlobals accumulates the recognized preset-level generators seen in
// a bag with no instrument generator (spec.md §4.C step 4). keyRange and
// velRange are deliberately NOT here: they're parsed (so the bag's
// generator count stays correct) but never inherited to layers, per
// spec.md's open question (b) / DESIGN.md.
type presetGlobals struct {
	coarseTune, fineTune, scaleTuning, initialAtten, pan optInt
}

// instrGlobals accumulates the recognized instrument-level generators
// seen in a bag with no sampleID generator (spec.md §4.C instrument
// resolution rules).
type instrGlobals struct {
	overridingRootKey, coarseTune, fineTune, scaleTuning optInt
	pan, sampleModes, initialAtten                       optInt
}

// resolvePresets builds the flat Preset/Layer table described by spec.md
// §4.C. The terminator preset record (named "EOP") is not itself resolved.
func resolvePresets(h *hydra) ([]Preset, error) {
	if len(h.presets) < 2 {
		return nil, nil
	}

	n := len(h.presets) - 1 // last record is the EOP terminator
	presets := make([]Preset, 0, n)

	for j := 0; j < n; j++ {
		ph := h.presets[j]
		bagLo, bagHi := int(ph.BagNdx), int(h.presets[j+1].BagNdx)

		layers, err := resolvePresetBags(h, bagLo, bagHi)
		if err != nil {
			return nil, err
		}

		presets = append(presets, Preset{
			Name:    ph.name(),
			Program: int(ph.Preset),
			Bank:    int(ph.Bank),
			Layers:  layers,
		})
	}

	return presets, nil
}

func resolvePresetBags(h *hydra, bagLo, bagHi int) ([]Layer, error) {
	var layers []Layer
	var globals presetGlobals

	for b := bagLo; b < bagHi; b++ {
		genLo, genHi := int(h.pbag[b].GenNdx), int(h.pbag[b+1].GenNdx)
		gens := h.pgen[genLo:genHi]

		instrIdx, hasInstr := findInstrumentGen(gens)
		if !hasInstr {
			applyPresetGlobalGens(&globals, gens)
			continue
		}

		layer := Layer{
			MinKey: 0, MaxKey: 127,
			MinVel: 0, MaxVel: 127,
			InstrIdx:     instrIdx,
			CoarseTune:   globals.coarseTune.orElse(0),
			FineTune:     globals.fineTune.orElse(0),
			ScaleTuning:  globals.scaleTuning.orElse(0),
			InitialAtten: globals.initialAtten.orElse(0),
			Pan:          globals.pan.orElse(0),
		}
		applyPresetLayerGens(&layer, gens)
		layers = append(layers, layer)
	}

	return layers, nil
}

func findInstrumentGen(gens []generator) (idx int, ok bool) {
	for _, g := range gens {
		if g.Oper == genInstrument {
			return int(g.Amount), true
		}
	}
	return 0, false
}

func applyPresetGlobalGens(g *presetGlobals, gens []generator) {
	for _, gen := range gens {
		switch gen.Oper {
		case genCoarseTune:
			g.coarseTune = set(int(gen.Amount))
		case genFineTune:
			g.fineTune = set(int(gen.Amount))
		case genScaleTuning:
			g.scaleTuning = set(int(gen.Amount))
		case genInitialAttenuation:
			g.initialAtten = set(int(gen.Amount))
		case genPan:
			g.pan = set(int(gen.Amount))
			// genKeyRange / genVelRange: recognized, not inherited (spec.md §9 (b)).
		}
	}
}

func applyPresetLayerGens(layer *Layer, gens []generator) {
	for _, gen := range gens {
		switch gen.Oper {
		case genKeyRange:
			layer.MinKey, layer.MaxKey = gen.rangeLoHi()
		case genVelRange:
			layer.MinVel, layer.MaxVel = gen.rangeLoHi()
		case genCoarseTune:
			layer.CoarseTune = int(gen.Amount)
		case genFineTune:
			layer.FineTune = int(gen.Amount)
		case genScaleTuning:
			layer.ScaleTuning = int(gen.Amount)
		case genInitialAttenuation:
			layer.InitialAtten = int(gen.Amount)
		case genPan:
			layer.Pan = int(gen.Amount)
		}
	}
}

// resolveInstruments builds the flat Instr/Split table. It runs once per
// load: the resolution rule is the same for the preset path and for the
// "play instrument directly" opcodes, so the one resulting Instr list
// serves both (preset layers index into it via Layer.InstrIdx).
func resolveInstruments(h *hydra, samples []SampleHdr) ([]Instr, error) {
	if len(h.instruments) < 2 {
		return nil, nil
	}

	n := len(h.instruments) - 1 // last record is the EOI terminator
	instrs := make([]Instr, 0, n)

	for j := 0; j < n; j++ {
		ih := h.instruments[j]
		bagLo, bagHi := int(ih.BagNdx), int(h.instruments[j+1].BagNdx)

		splits, err := resolveInstrBags(h, bagLo, bagHi, samples)
		if err != nil {
			return nil, err
		}

		instrs = append(instrs, Instr{Name: ih.name(), Splits: splits})
	}

	return instrs, nil
}

func resolveInstrBags(h *hydra, bagLo, bagHi int, samples []SampleHdr) ([]Split, error) {
	var splits []Split
	var globals instrGlobals

	for b := bagLo; b < bagHi; b++ {
		genLo, genHi := int(h.ibag[b].GenNdx), int(h.ibag[b+1].GenNdx)
		gens := h.igen[genLo:genHi]

		sampleIdx, hasSample := findSampleIDGen(gens)
		if !hasSample {
			applyInstrGlobalGens(&globals, gens)
			continue
		}

		if sampleIdx < 0 || sampleIdx >= len(samples) {
			return nil, ErrFormatIncompatible
		}
		if samples[sampleIdx].ROM {
			return nil, ErrRomSample
		}

		split := Split{
			SampleIdx:         sampleIdx,
			MinKey:            0, MaxKey: 127,
			MinVel:            0, MaxVel: 127,
			OverridingRootKey: globals.overridingRootKey.orElse(-1),
			CoarseTune:        globals.coarseTune.orElse(0),
			FineTune:          globals.fineTune.orElse(0),
			ScaleTuning:       globals.scaleTuning.orElse(100),
			Pan:               globals.pan.orElse(0),
			InitialAtten:      globals.initialAtten.orElse(0),
			SampleModes:       globals.sampleModes.orElse(0),
		}
		applyInstrSplitGens(&split, gens)
		splits = append(splits, split)
	}

	return splits, nil
}

func findSampleIDGen(gens []generator) (idx int, ok bool) {
	for _, g := range gens {
		if g.Oper == genSampleID {
			return int(g.Amount), true
		}
	}
	return 0, false
}

func applyInstrGlobalGens(g *instrGlobals, gens []generator) {
	for _, gen := range gens {
		switch gen.Oper {
		case genOverridingRootKey:
			g.overridingRootKey = set(int(gen.Amount))
		case genCoarseTune:
			g.coarseTune = set(int(gen.Amount))
		case genFineTune:
			g.fineTune = set(int(gen.Amount))
		case genScaleTuning:
			g.scaleTuning = set(int(gen.Amount))
		case genPan:
			g.pan = set(int(gen.Amount))
		case genSampleModes:
			g.sampleModes = set(int(gen.Amount))
		case genInitialAttenuation:
			g.initialAtten = set(int(gen.Amount))
			// genKeyRange / genVelRange: recognized, not inherited.
		}
	}
}

// applyInstrSplitGens applies a split's own bag generators, including the
// additive address-offset handling of spec.md §4.C: fine offsets add
// directly, coarse offsets add scaled by 32768.
func applyInstrSplitGens(split *Split, gens []generator) {
	for _, gen := range gens {
		amt := int(gen.Amount)
		switch gen.Oper {
		case genKeyRange:
			split.MinKey, split.MaxKey = gen.rangeLoHi()
		case genVelRange:
			split.MinVel, split.MaxVel = gen.rangeLoHi()
		case genOverridingRootKey:
			split.OverridingRootKey = amt
		case genCoarseTune:
			split.CoarseTune = amt
		case genFineTune:
			split.FineTune = amt
		case genScaleTuning:
			split.ScaleTuning = amt
		case genPan:
			split.Pan = amt
		case genInitialAttenuation:
			split.InitialAtten = amt
		case genSampleModes:
			split.SampleModes = amt
		case genStartAddrsOffset:
			split.StartOffset += amt
		case genStartAddrsCoarseOffset:
			split.StartOffset += amt * 32768
		case genEndAddrsOffset:
			split.EndOffset += amt
		case genEndAddrsCoarseOffset:
			split.EndOffset += amt * 32768
		case genStartloopAddrsOffset:
			split.StartLoopOffset += amt
		case genStartloopAddrsCoarse:
			split.StartLoopOffset += amt * 32768
		case genEndloopAddrsOffset:
			split.EndLoopOffset += amt
		case genEndloopAddrsCoarse:
			split.EndLoopOffset += amt * 32768
		}
	}
}

// toSampleHdrs converts the raw shdr records into the trimmed SampleHdr
// table exposed on Font, rejecting nothing here — the ROM check happens
// per-split in resolveInstrBags since only splits that actually reference
// a ROM sample should abort loading (an unreferenced ROM sample header is
// harmless).
func toSampleHdrs(raw []sampleHeader) []SampleHdr {
	out := make([]SampleHdr, len(raw))
	for i, s := range raw {
		orgKey := int(s.OriginalPitch)
		if orgKey > 127 {
			orgKey = 60
		}
		out[i] = SampleHdr{
			Name:            s.name(),
			Start:           s.Start,
			End:             s.End,
			StartLoop:       s.StartLoop,
			EndLoop:         s.EndLoop,
			SampleRate:      s.SampleRate,
			OriginalKey:     orgKey,
			PitchCorrection: int(s.PitchCorrection),
			ROM:             s.isROM(),
		}
	}
	return out
}
