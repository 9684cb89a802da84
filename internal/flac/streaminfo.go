package flac

import "encoding/binary"

// Format-defined STREAMINFO ranges.
const (
	StreamInfoLength = 34

	MinBlockSize  = 16
	MaxBlockSize  = 65535
	MaxSampleRate = 655350 // limited by the frame-header encoding
	MaxChannels   = 8
	MinBitDepth   = 4
	MaxBitDepth   = 32
)

// StreamInfo carries the stream parameters from the mandatory first block.
// Signature is the MD5 digest of the unencoded audio; all zero means unset.
type StreamInfo struct {
	BlockSizeMin  uint16
	BlockSizeMax  uint16
	FrameSizeMin  uint32 // bytes, 0 = unknown
	FrameSizeMax  uint32 // bytes, 0 = unknown
	SampleRate    uint32
	Channels      uint8
	BitsPerSample uint8
	TotalSamples  uint64 // inter-channel samples, 0 = unknown
	Signature     [16]byte
}

// HasSignature reports whether the audio MD5 field is set.
func (si *StreamInfo) HasSignature() bool {
	return si != nil && si.Signature != [16]byte{}
}

// Duration returns the declared stream duration in seconds, or 0 when the
// sample rate or total-sample count is unknown.
func (si *StreamInfo) Duration() float64 {
	if si == nil || si.SampleRate == 0 || si.TotalSamples == 0 {
		return 0
	}
	return float64(si.TotalSamples) / float64(si.SampleRate)
}

// decodeStreamInfo unpacks the bit-packed 34-byte STREAMINFO payload:
//
//	block_size_min  u16
//	block_size_max  u16
//	frame_size_min  u24
//	frame_size_max  u24
//	sample_rate     u20
//	channels        u3  (stored as count-1)
//	bits_per_sample u5  (stored as depth-1)
//	total_samples   u36
//	md5             16 bytes
func decodeStreamInfo(p []byte) (*StreamInfo, error) {
	if len(p) != StreamInfoLength {
		return nil, formatErrorf(0, "STREAMINFO payload must be %d bytes, got %d", StreamInfoLength, len(p))
	}

	si := &StreamInfo{
		BlockSizeMin: binary.BigEndian.Uint16(p[0:2]),
		BlockSizeMax: binary.BigEndian.Uint16(p[2:4]),
		FrameSizeMin: uint32(p[4])<<16 | uint32(p[5])<<8 | uint32(p[6]),
		FrameSizeMax: uint32(p[7])<<16 | uint32(p[8])<<8 | uint32(p[9]),
	}

	// Bytes 10-17 pack sample rate (20), channels (3), depth (5), and the
	// 36-bit sample count into exactly 64 bits.
	packed := binary.BigEndian.Uint64(p[10:18])
	si.SampleRate = uint32(packed >> 44)
	si.Channels = uint8(packed>>41&0x7) + 1
	si.BitsPerSample = uint8(packed>>36&0x1F) + 1
	si.TotalSamples = packed & 0xFFFFFFFFF

	copy(si.Signature[:], p[18:34])
	return si, nil
}
