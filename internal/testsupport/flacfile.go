package testsupport

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"flackit/internal/flac"
)

// BlockSpec describes one synthetic metadata block.
type BlockSpec struct {
	Type    flac.BlockType
	Last    bool
	Payload []byte
	// DeclareLength forces the header to lie about the payload length.
	// Zero means declare the real length.
	DeclareLength int
}

// Container assembles a byte-level FLAC container from the given blocks plus
// an optional audio region. No audio is encoded; audio bytes are appended
// verbatim.
func Container(audio []byte, blocks ...BlockSpec) []byte {
	out := []byte(flac.Marker)
	for _, b := range blocks {
		length := len(b.Payload)
		if b.DeclareLength > 0 {
			length = b.DeclareLength
		}
		header := byte(b.Type) & 0x7F
		if b.Last {
			header |= 0x80
		}
		out = append(out, header, byte(length>>16), byte(length>>8), byte(length))
		out = append(out, b.Payload...)
	}
	return append(out, audio...)
}

// StreamInfoSpec holds the fields packed into a synthetic STREAMINFO payload.
type StreamInfoSpec struct {
	BlockSizeMin  uint16
	BlockSizeMax  uint16
	FrameSizeMin  uint32
	FrameSizeMax  uint32
	SampleRate    uint32
	Channels      uint8
	BitsPerSample uint8
	TotalSamples  uint64
	Signature     [16]byte
}

// DefaultStreamInfo is a healthy CD-audio profile.
func DefaultStreamInfo() StreamInfoSpec {
	return StreamInfoSpec{
		BlockSizeMin:  4096,
		BlockSizeMax:  4096,
		SampleRate:    44100,
		Channels:      2,
		BitsPerSample: 16,
		TotalSamples:  44100 * 3,
	}
}

// EncodeStreamInfo packs the spec into the 34-byte wire layout.
func EncodeStreamInfo(spec StreamInfoSpec) []byte {
	p := make([]byte, flac.StreamInfoLength)
	binary.BigEndian.PutUint16(p[0:2], spec.BlockSizeMin)
	binary.BigEndian.PutUint16(p[2:4], spec.BlockSizeMax)
	p[4], p[5], p[6] = byte(spec.FrameSizeMin>>16), byte(spec.FrameSizeMin>>8), byte(spec.FrameSizeMin)
	p[7], p[8], p[9] = byte(spec.FrameSizeMax>>16), byte(spec.FrameSizeMax>>8), byte(spec.FrameSizeMax)

	packed := uint64(spec.SampleRate)<<44 |
		uint64(spec.Channels-1)<<41 |
		uint64(spec.BitsPerSample-1)<<36 |
		spec.TotalSamples&0xFFFFFFFFF
	binary.BigEndian.PutUint64(p[10:18], packed)

	copy(p[18:34], spec.Signature[:])
	return p
}

// StreamInfoBlock is a non-last STREAMINFO block for the default profile.
func StreamInfoBlock() BlockSpec {
	return BlockSpec{Type: flac.TypeStreamInfo, Payload: EncodeStreamInfo(DefaultStreamInfo())}
}

// PaddingBlock returns a padding block of the given size.
func PaddingBlock(size int, last bool) BlockSpec {
	return BlockSpec{Type: flac.TypePadding, Last: last, Payload: make([]byte, size)}
}

// EncodeVorbisComment packs a vendor string and NAME=value fields.
func EncodeVorbisComment(vendor string, fields ...string) []byte {
	var p []byte
	appendChunk := func(s string) {
		var n [4]byte
		binary.LittleEndian.PutUint32(n[:], uint32(len(s)))
		p = append(p, n[:]...)
		p = append(p, s...)
	}
	appendChunk(vendor)
	var count [4]byte
	binary.LittleEndian.PutUint32(count[:], uint32(len(fields)))
	p = append(p, count[:]...)
	for _, f := range fields {
		appendChunk(f)
	}
	return p
}

// EncodeSeekPoints packs 18-byte seek points.
func EncodeSeekPoints(points ...flac.SeekPoint) []byte {
	p := make([]byte, 0, len(points)*flac.SeekPointLength)
	for _, pt := range points {
		var buf [flac.SeekPointLength]byte
		binary.BigEndian.PutUint64(buf[0:8], pt.Sample)
		binary.BigEndian.PutUint64(buf[8:16], pt.StreamOffset)
		binary.BigEndian.PutUint16(buf[16:18], pt.FrameSamples)
		p = append(p, buf[:]...)
	}
	return p
}

// EncodePicture packs a PICTURE payload.
func EncodePicture(pictureType uint32, mediaType, description string, data []byte) []byte {
	var p []byte
	appendU32 := func(v uint32) {
		var buf [4]byte
		binary.BigEndian.PutUint32(buf[:], v)
		p = append(p, buf[:]...)
	}
	appendU32(pictureType)
	appendU32(uint32(len(mediaType)))
	p = append(p, mediaType...)
	appendU32(uint32(len(description)))
	p = append(p, description...)
	appendU32(0) // width
	appendU32(0) // height
	appendU32(0) // color depth
	appendU32(0) // color count
	appendU32(uint32(len(data)))
	return append(p, data...)
}

// WriteFile writes data under dir and returns the full path.
func WriteFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// ValidFile writes a minimal healthy container (STREAMINFO + last padding)
// into dir and returns its path.
func ValidFile(t *testing.T, dir, name string) string {
	t.Helper()
	data := Container(nil, StreamInfoBlock(), PaddingBlock(16, true))
	return WriteFile(t, dir, name, data)
}
