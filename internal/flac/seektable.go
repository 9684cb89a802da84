package flac

import (
	"encoding/binary"
	"math"
)

// SeekPointLength is the encoded size of one seek point.
const SeekPointLength = 18

// PlaceholderSample marks an unused seek point. Placeholders must be grouped
// at the end of the table.
const PlaceholderSample = math.MaxUint64

// SeekPoint locates a frame by its first sample number.
type SeekPoint struct {
	Sample       uint64
	StreamOffset uint64 // bytes from the start of the audio-data region
	FrameSamples uint16
}

// Placeholder reports whether the point is an unused placeholder entry.
func (p SeekPoint) Placeholder() bool {
	return p.Sample == PlaceholderSample
}

// SeekTable is the decoded SEEKTABLE payload.
type SeekTable struct {
	Points []SeekPoint
}

func decodeSeekTable(p []byte) (*SeekTable, error) {
	if len(p)%SeekPointLength != 0 {
		return nil, formatErrorf(0, "SEEKTABLE payload of %d bytes is not a multiple of %d", len(p), SeekPointLength)
	}
	st := &SeekTable{Points: make([]SeekPoint, 0, len(p)/SeekPointLength)}
	for i := 0; i < len(p); i += SeekPointLength {
		st.Points = append(st.Points, SeekPoint{
			Sample:       binary.BigEndian.Uint64(p[i : i+8]),
			StreamOffset: binary.BigEndian.Uint64(p[i+8 : i+16]),
			FrameSamples: binary.BigEndian.Uint16(p[i+16 : i+18]),
		})
	}
	return st, nil
}
