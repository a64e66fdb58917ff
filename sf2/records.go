package sf2

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Generator operators recognized by the zone resolver (spec.md §4.C). Every
// other operator value is read (so bag generator counts stay correct) and
// then ignored, per spec.md's "modulators and envelopes are unimplemented".
const (
	genStartAddrsOffset       = 0
	genEndAddrsOffset         = 1
	genStartloopAddrsOffset   = 2
	genEndloopAddrsOffset     = 3
	genStartAddrsCoarseOffset = 4
	genEndAddrsCoarseOffset   = 12
	genPan                    = 17
	genInstrument             = 41
	genKeyRange               = 43
	genVelRange               = 44
	genStartloopAddrsCoarse   = 45
	genInitialAttenuation     = 48
	genEndloopAddrsCoarse     = 50
	genCoarseTune             = 51
	genFineTune               = 52
	genSampleID               = 53
	genSampleModes            = 54
	genScaleTuning            = 56
	genOverridingRootKey      = 58
)

// romSampleType is the SF2 "is a ROM sample" flag, OR'd into the low sample
// type bits (mono/right/left/linked).
const romSampleType = 0x8000

// bag is the raw {genNdx, modNdx} record shared by pbag and ibag. The
// resolver only ever needs the generator-index half; the terminator record's
// genNdx/modNdx mark the end of the previous record's range (the SF2
// "sentinel" convention, spec.md §4.B).
type bag struct {
	GenNdx, ModNdx uint16
}

// presetHeader is the raw phdr record (38 bytes).
type presetHeader struct {
	Name       [20]byte
	Preset     uint16
	Bank       uint16
	BagNdx     uint16
	Library    uint32
	Genre      uint32
	Morphology uint32
}

func (p presetHeader) name() string { return cstr(p.Name[:]) }

// instrumentHeader is the raw inst record (22 bytes).
type instrumentHeader struct {
	Name   [20]byte
	BagNdx uint16
}

func (h instrumentHeader) name() string { return cstr(h.Name[:]) }

// generator is the raw {oper, amount} record shared by pgen and igen.
// GenAmount is read as int16; callers that need the unsigned/range
// interpretation (keyRange/velRange pack two bytes as min/max) reinterpret
// the two bytes directly.
type generator struct {
	Oper   uint16
	Amount int16
}

func (g generator) rangeLoHi() (lo, hi int) {
	u := uint16(g.Amount)
	return int(u & 0xff), int(u >> 8)
}

// sampleHeader is the raw shdr record (46 bytes).
type sampleHeader struct {
	Name            [20]byte
	Start           uint32
	End             uint32
	StartLoop       uint32
	EndLoop         uint32
	SampleRate      uint32
	OriginalPitch   uint8
	PitchCorrection int8
	SampleLink      uint16
	SampleType      uint16
}

func (s sampleHeader) name() string { return cstr(s.Name[:]) }
func (s sampleHeader) isROM() bool  { return s.SampleType&romSampleType != 0 }

func cstr(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// hydra is the raw, typed view over the pdta sub-chunks described by
// spec.md §4.B. The resolver (zone.go) is the only consumer.
type hydra struct {
	presets      []presetHeader
	pbag         []bag
	pgen         []generator
	instruments  []instrumentHeader
	ibag         []bag
	igen         []generator
	samples      []sampleHeader
}

// readHydra parses every pdta sub-chunk in any order, per spec.md §4.A. The
// pmod/imod (modulator) sub-chunks are read and discarded — the SoundFont
// modulator system is out of scope (spec.md §1) but its sub-chunks must
// still be consumed so that a following unrelated chunk doesn't get
// misparsed.
func readHydra(r io.Reader, log diagLogger) (*hydra, error) {
	h := &hydra{}

	seen := map[[4]byte]bool{
		{'p', 'h', 'd', 'r'}: false,
		{'p', 'b', 'a', 'g'}: false,
		{'p', 'm', 'o', 'd'}: false,
		{'p', 'g', 'e', 'n'}: false,
		{'i', 'n', 's', 't'}: false,
		{'i', 'b', 'a', 'g'}: false,
		{'i', 'm', 'o', 'd'}: false,
		{'i', 'g', 'e', 'n'}: false,
		{'s', 'h', 'd', 'r'}: false,
	}

	for {
		var ck chunk
		if err := ck.parse(r); err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}

		if _, ok := seen[ck.id]; !ok {
			log.Debug("skipping unknown pdta chunk", "id", string(ck.id[:]), "size", ck.size)
			continue
		}
		seen[ck.id] = true
		log.Debug("found pdta chunk", "id", string(ck.id[:]), "size", ck.size)

		var err error
		switch ck.id {
		case [4]byte{'p', 'h', 'd', 'r'}:
			h.presets, err = readRecords[presetHeader](&ck, 38)
		case [4]byte{'p', 'b', 'a', 'g'}:
			h.pbag, err = readBags(&ck)
		case [4]byte{'p', 'g', 'e', 'n'}:
			h.pgen, err = readRecords[generator](&ck, 4)
		case [4]byte{'i', 'n', 's', 't'}:
			h.instruments, err = readRecords[instrumentHeader](&ck, 22)
		case [4]byte{'i', 'b', 'a', 'g'}:
			h.ibag, err = readBags(&ck)
		case [4]byte{'i', 'g', 'e', 'n'}:
			h.igen, err = readRecords[generator](&ck, 4)
		case [4]byte{'s', 'h', 'd', 'r'}:
			h.samples, err = readRecords[sampleHeader](&ck, 46)
		// pmod/imod: read to validate size, then discarded.
		case [4]byte{'p', 'm', 'o', 'd'}, [4]byte{'i', 'm', 'o', 'd'}:
			if ck.size%10 != 0 {
				err = fmt.Errorf("%w: modulator chunk size %d not a multiple of 10", ErrFormatIncompatible, ck.size)
			}
		}
		if err != nil {
			return nil, err
		}
	}

	for id, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("%w: missing pdta chunk %q", ErrFormatIncompatible, string(id[:]))
		}
	}

	return h, nil
}

// readRecords decodes a fixed-size-record chunk into a typed slice via
// encoding/binary, matching the teacher's per-chunk decode loop.
func readRecords[T any](ck *chunk, recordSize int) ([]T, error) {
	if int(ck.size)%recordSize != 0 {
		return nil, fmt.Errorf("%w: chunk %q size %d is not a multiple of %d", ErrFormatIncompatible, string(ck.id[:]), ck.size, recordSize)
	}
	out := make([]T, int(ck.size)/recordSize)
	r := ck.newReader()
	for i := range out {
		if err := binary.Read(r, binary.LittleEndian, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// readBags decodes pbag/ibag records by hand: each is two little-endian
// uint16 fields with no padding, so binary.Read would work too, but the
// teacher's original hand-unpacking is kept since pbag/ibag are the one
// record shape the resolver indexes into a hot loop per preset/instrument.
func readBags(ck *chunk) ([]bag, error) {
	if ck.size%4 != 0 {
		return nil, fmt.Errorf("%w: bag chunk %q size %d not a multiple of 4", ErrFormatIncompatible, string(ck.id[:]), ck.size)
	}
	out := make([]bag, ck.size/4)
	for i := range out {
		out[i].GenNdx = uint16(ck.data[4*i+1])<<8 | uint16(ck.data[4*i])
		out[i].ModNdx = uint16(ck.data[4*i+3])<<8 | uint16(ck.data[4*i+2])
	}
	return out, nil
}
