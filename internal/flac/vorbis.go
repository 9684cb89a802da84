package flac

import "encoding/binary"

// VorbisComment is the decoded tag block: a vendor string plus NAME=value
// fields. Fields are kept verbatim, including any malformed entries, so the
// validator can point at the exact offender.
type VorbisComment struct {
	Vendor string
	Fields []string
}

// decodeVorbisComment unpacks the little-endian length-prefixed layout:
// vendor length + vendor, field count, then per field length + payload.
func decodeVorbisComment(p []byte) (*VorbisComment, error) {
	pos := 0
	readChunk := func(what string) ([]byte, error) {
		if len(p)-pos < 4 {
			return nil, formatErrorf(int64(pos), "VORBIS_COMMENT truncated before %s length", what)
		}
		n := binary.LittleEndian.Uint32(p[pos : pos+4])
		pos += 4
		if uint32(len(p)-pos) < n {
			return nil, formatErrorf(int64(pos), "VORBIS_COMMENT %s declares %d bytes, %d remain", what, n, len(p)-pos)
		}
		chunk := p[pos : pos+int(n)]
		pos += int(n)
		return chunk, nil
	}

	vendor, err := readChunk("vendor string")
	if err != nil {
		return nil, err
	}
	vc := &VorbisComment{Vendor: string(vendor)}

	if len(p)-pos < 4 {
		return nil, formatErrorf(int64(pos), "VORBIS_COMMENT truncated before field count")
	}
	count := binary.LittleEndian.Uint32(p[pos : pos+4])
	pos += 4

	for i := uint32(0); i < count; i++ {
		field, err := readChunk("field")
		if err != nil {
			return nil, err
		}
		vc.Fields = append(vc.Fields, string(field))
	}
	return vc, nil
}
