package sf2

import "io"

// guardFrames is the number of extra zero frames appended after the parsed
// PCM pool. The SF2 convention is that encoders already leave 46 zero
// points after the last sample's End; render.go only ever needs 2 past a
// split's End for cubic interpolation (spec.md §3's "three guard frames
// past end" counts End itself as the first of the three), but padding
// defensively costs nothing at load time and keeps a malformed/truncated
// font from ever driving a read out of the backing array.
const guardFrames = 64

// readPCMPool parses the sdta LIST's smpl sub-chunk: an array of 16-bit
// little-endian signed PCM frames (spec.md §4.A). The optional sm24
// sub-chunk (24-bit extension) is read and discarded — spec.md says 24-bit
// extension chunks are ignored.
func readPCMPool(r io.Reader, log diagLogger) ([]int16, error) {
	var smpl chunk
	if err := smpl.expect(r, [4]byte{'s', 'm', 'p', 'l'}); err != nil {
		return nil, err
	}

	pool := make([]int16, int(smpl.size)/2+guardFrames)
	for i := 0; i < int(smpl.size)/2; i++ {
		pool[i] = int16(uint16(smpl.data[2*i]) | uint16(smpl.data[2*i+1])<<8)
	}

	var sm24 chunk
	if err := sm24.expect(r, [4]byte{'s', 'm', '2', '4'}); err != nil {
		if err == io.EOF {
			return pool, nil
		}
		// Not every font carries sm24; any other mismatch just means the
		// chunk wasn't there (sdta has no further siblings to misparse).
		return pool, nil
	}
	log.Debug("ignoring sm24 24-bit extension chunk", "size", sm24.size)

	return pool, nil
}
