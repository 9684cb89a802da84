package flac

import "encoding/binary"

// Picture types with reserved cardinality: the format allows at most one of
// each icon kind per stream.
const (
	PictureFileIcon      = 1 // 32x32 PNG icon
	PictureOtherFileIcon = 2
	MaxPictureType       = 20
)

// Picture is the decoded PICTURE payload. Data holds the embedded image.
type Picture struct {
	PictureType uint32
	MediaType   string
	Description string
	Width       uint32
	Height      uint32
	ColorDepth  uint32
	ColorCount  uint32
	Data        []byte
}

// decodePicture unpacks the big-endian layout: picture type, media-type
// length + bytes, description length + bytes, four dimension fields, then
// data length + bytes. Declared lengths overrunning the payload are decode
// errors; the validator reports them as length mismatches.
func decodePicture(p []byte) (*Picture, error) {
	pos := 0
	readU32 := func(what string) (uint32, error) {
		if len(p)-pos < 4 {
			return 0, formatErrorf(int64(pos), "PICTURE truncated before %s", what)
		}
		v := binary.BigEndian.Uint32(p[pos : pos+4])
		pos += 4
		return v, nil
	}
	readBytes := func(what string) ([]byte, error) {
		n, err := readU32(what + " length")
		if err != nil {
			return nil, err
		}
		if uint32(len(p)-pos) < n {
			return nil, formatErrorf(int64(pos), "PICTURE %s declares %d bytes, %d remain", what, n, len(p)-pos)
		}
		chunk := p[pos : pos+int(n)]
		pos += int(n)
		return chunk, nil
	}

	pic := &Picture{}
	var err error
	if pic.PictureType, err = readU32("picture type"); err != nil {
		return nil, err
	}
	mediaType, err := readBytes("media type")
	if err != nil {
		return nil, err
	}
	pic.MediaType = string(mediaType)
	description, err := readBytes("description")
	if err != nil {
		return nil, err
	}
	pic.Description = string(description)
	for _, field := range []struct {
		name string
		dst  *uint32
	}{
		{"width", &pic.Width},
		{"height", &pic.Height},
		{"color depth", &pic.ColorDepth},
		{"color count", &pic.ColorCount},
	} {
		if *field.dst, err = readU32(field.name); err != nil {
			return nil, err
		}
	}
	if pic.Data, err = readBytes("picture data"); err != nil {
		return nil, err
	}
	if pos != len(p) {
		return nil, formatErrorf(int64(pos), "PICTURE has %d trailing bytes", len(p)-pos)
	}
	return pic, nil
}
