package sf2

import (
	"fmt"
	"io"
)

type Info struct {
	// SfVersion identifyies the SoundFont specification version level to which the file complies.
	// e.g. 2.1
	SfVersion struct {
		Major, Minor uint16
	} // made from the ifil subchunk

	// Engine is a mandatory field identifying the wavetable sound engine for which the file was optimized.
	// It contains an ASCII string of 256 or fewer bytes including one or two terminators of value zero, so as to make
	// the total byte count even.
	Engine string // made from the isng subchunk

	// Name is a mandatory field providing the name of the SoundFont compatible bank.
	// It contains an ASCII string of 256 or fewer bytes including one or two terminators of value zero, so as to make
	// the total byte count even.
	// e.g. "General MIDI\0\0"
	Name string // made from the INAM subchunk

	// ROM is an optional field identifying a particular wavetable sound data ROM to which any ROM samples refer.
	// It contains an ASCII string of 256 or fewer bytes including one or two terminators of value zero, so as to make
	// the total byte count even. Both ROM and ROMVer must be present if either is present.
	ROM string // made from the irom subchunk

	// ROMVer is an optional field identifying the particular wavetable sound data ROM revision to which any
	// ROM samples refer. Both ROM and ROMVer must be present if either is present.
	// e.g. 1.0
	ROMVer struct {
		Major, Minor uint16
	} // made from the iver subchunk

	// CreationDate is an optional field identifying the creation date of the SoundFont compatible bank.
	// It contains an ASCII string of 256 or fewer bytes including one or two terminators of value zero, so as to make
	// the total byte count even.
	// Conventionally, the format of the string is “Month Day, Year”
	// e.g. "January 1, 2000"
	CreationDate string // made from the ICRD subchunk

	// Engineers is an optional field identifying the engineers who created the SoundFont compatible bank.
	// It contains an ASCII string of 256 or fewer bytes including one or two terminators of value zero, so as to make
	// the total byte count even.
	// e.g. "Jane Doe\0\0"
	Engineers string // made from the IENG subchunk

	// Product is an optional field identifying any specific product for which the SoundFont compatible bank is intended.
	// It contains an ASCII string of 256 or fewer bytes including one or two terminators of value zero, so as to make
	// the total byte count even.
	// e.g. "SBAWE32\0\0"
	Product string // made from the IPRD subchunk

	// Copyright is an optional field containing any copyright assertion string associated with the SoundFont compatible bank.
	// It contains an ASCII string of 256 or fewer bytes including one or two terminators of value zero, so as to make
	// the total byte count even.
	// e.g. "Copyright (c) 1994-95, John Myles White. All rights reserved.\0"
	Copyright string // made from the ICOP subchunk

	// Comments is an optional field containing any comments associated with the SoundFont compatible bank.
	// It contains an ASCII string of 65,536 or fewer bytes including one or two terminators of value zero, so as to make
	// the total byte count even.
	// e.g. "This space unintentionally left blank.\0\0"
	Comments string // made from the ICMT subchunk

	// Software is an optional field identifying the SoundFont compatible tools used to create and most recently
	// modify the SoundFont compatible bank. It contains an ASCII string of 256 or fewer bytes including one or two
	// terminators of value zero, so as to make the total byte count even.
	// e.g. "Sonic Foundry's SoundFont Editor v2.01\0\0"
	Software string // made from the IFST subchunk
}

func (info Info) String() string {
	return fmt.Sprintf("SoundFontInfo{\n\tSfVersion: %d.%d\n\tEngine: %q\n\tName: %q\n\tROM: %q\n\tIVER: %d.%d\n\tCreationDate: %q\n\tEngineers: %q\n\tProduct: %q\n\tCopyright: %q\n\tComments: %q\n\tSoftware: %q\n\t}",
		info.SfVersion.Major,
		info.SfVersion.Minor,
		info.Engine,
		info.Name,
		info.ROM,
		info.ROMVer.Major,
		info.ROMVer.Minor,
		info.CreationDate,
		info.Engineers,
		info.Product,
		info.Copyright,
		info.Comments,
		info.Software)
}

// infoField describes one recognized INFO sub-chunk: its size constraint and
// how to fold its payload into an *Info. Driving readInfo from this table
// (rather than a per-tag switch repeating the same "check size, then
// assign" shape eleven times) is what lets a version bump or a new optional
// field turn into one table row instead of a new case arm duplicating the
// surrounding validation.
type infoField struct {
	id [4]byte

	// exactSize, when nonzero, requires the sub-chunk to be exactly that
	// many bytes (ifil/iver's packed major/minor version pair). Otherwise
	// maxSize caps it (every ASCII string sub-chunk).
	exactSize int
	maxSize   int

	apply func(info *Info, data []byte)
}

func (f infoField) validate(size uint32) error {
	switch {
	case f.exactSize != 0 && int(size) != f.exactSize:
		return fmt.Errorf("%w: %s subchunk must contain exactly %d bytes", ErrFormatIncompatible, string(f.id[:]), f.exactSize)
	case f.exactSize == 0 && int(size) > f.maxSize:
		return fmt.Errorf("%w: %s subchunk must contain %d or fewer bytes", ErrFormatIncompatible, string(f.id[:]), f.maxSize)
	}
	return nil
}

// parseVersion reads the packed {major, minor} little-endian uint16 pair
// shared by the ifil and iver sub-chunks.
func parseVersion(data []byte) (major, minor uint16) {
	return uint16(data[1])<<8 | uint16(data[0]), uint16(data[3])<<8 | uint16(data[2])
}

var tagIfil = [4]byte{'i', 'f', 'i', 'l'}
var tagIsng = [4]byte{'i', 's', 'n', 'g'}

var infoFields = []infoField{
	{id: tagIfil, exactSize: 4, apply: func(info *Info, data []byte) {
		info.SfVersion.Major, info.SfVersion.Minor = parseVersion(data)
	}},
	{id: tagIsng, maxSize: 256, apply: func(info *Info, data []byte) { info.Engine = string(data) }},
	{id: [4]byte{'I', 'N', 'A', 'M'}, maxSize: 256, apply: func(info *Info, data []byte) { info.Name = string(data) }},
	{id: [4]byte{'i', 'r', 'o', 'm'}, maxSize: 256, apply: func(info *Info, data []byte) { info.ROM = string(data) }},
	{id: [4]byte{'i', 'v', 'e', 'r'}, exactSize: 4, apply: func(info *Info, data []byte) {
		info.ROMVer.Major, info.ROMVer.Minor = parseVersion(data)
	}},
	{id: [4]byte{'I', 'C', 'R', 'D'}, maxSize: 256, apply: func(info *Info, data []byte) { info.CreationDate = string(data) }},
	{id: [4]byte{'I', 'E', 'N', 'G'}, maxSize: 256, apply: func(info *Info, data []byte) { info.Engineers = string(data) }},
	{id: [4]byte{'I', 'P', 'R', 'D'}, maxSize: 256, apply: func(info *Info, data []byte) { info.Product = string(data) }},
	{id: [4]byte{'I', 'C', 'O', 'P'}, maxSize: 256, apply: func(info *Info, data []byte) { info.Copyright = string(data) }},
	{id: [4]byte{'I', 'C', 'M', 'T'}, maxSize: 65536, apply: func(info *Info, data []byte) { info.Comments = string(data) }},
	{id: [4]byte{'I', 'S', 'F', 'T'}, maxSize: 256, apply: func(info *Info, data []byte) { info.Software = string(data) }},
}

var infoFieldByTag = func() map[[4]byte]infoField {
	m := make(map[[4]byte]infoField, len(infoFields))
	for _, f := range infoFields {
		m[f.id] = f
	}
	return m
}()

// readInfo parses the INFO list's metadata sub-chunks. Its fields aren't
// used by the resolver (spec.md §4.A: "INFO is skipped"), but are kept
// host-facing for diagnostics (the font name shown by the sfplist opcode).
func readInfo(r io.Reader, log diagLogger) (*Info, error) {
	info := &Info{}

	ok, err := expectTag(r, []byte{'I', 'N', 'F', 'O'})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: expected INFO tag", ErrFormatIncompatible)
	}

	seen := make(map[[4]byte]bool, len(infoFields))

	for {
		var ck chunk
		if err := ck.parse(r); err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}

		field, known := infoFieldByTag[ck.id]
		if !known {
			log.Debug("skipping unknown INFO chunk", "id", string(ck.id[:]))
			continue
		}
		if seen[ck.id] {
			return nil, fmt.Errorf("%w: duplicate INFO chunk %q", ErrFormatIncompatible, string(ck.id[:]))
		}
		seen[ck.id] = true

		if err := field.validate(ck.size); err != nil {
			return nil, err
		}
		field.apply(info, ck.data)
	}

	// If the ifil sub-chunk is missing, or its size is not four bytes, the file should be rejected as structurally unsound.
	if !seen[tagIfil] {
		return nil, fmt.Errorf("%w: ifil chunk is missing", ErrFormatIncompatible)
	}

	// If the isng sub-chunk is missing, EMU8000 is assumed. A present isng is kept as read: its terminator and
	// engine name are not checked.
	if !seen[tagIsng] {
		info.Engine = "EMU8000"
	}

	return info, nil
}
