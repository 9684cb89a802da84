package flac

// Marker is the four-byte stream signature every FLAC container starts with.
const Marker = "fLaC"

// BlockType identifies the kind of a metadata block. Values 7-126 are
// reserved by the format; 127 is forbidden.
type BlockType uint8

const (
	TypeStreamInfo    BlockType = 0
	TypePadding       BlockType = 1
	TypeApplication   BlockType = 2
	TypeSeekTable     BlockType = 3
	TypeVorbisComment BlockType = 4
	TypeCueSheet      BlockType = 5
	TypePicture       BlockType = 6
	TypeForbidden     BlockType = 127
)

// String returns the format's block-type name.
func (t BlockType) String() string {
	switch t {
	case TypeStreamInfo:
		return "STREAMINFO"
	case TypePadding:
		return "PADDING"
	case TypeApplication:
		return "APPLICATION"
	case TypeSeekTable:
		return "SEEKTABLE"
	case TypeVorbisComment:
		return "VORBIS_COMMENT"
	case TypeCueSheet:
		return "CUESHEET"
	case TypePicture:
		return "PICTURE"
	case TypeForbidden:
		return "FORBIDDEN"
	}
	return "RESERVED"
}

// MetadataBlock is one length-prefixed structural unit from the metadata
// chain. Raw always holds the payload bytes actually read; the typed fields
// are populated only for the block kinds the parser decodes, and stay nil
// when DecodeErr is set.
type MetadataBlock struct {
	Type   BlockType
	Last   bool
	Length uint32 // declared payload length from the block header
	Offset int64  // byte offset of the block header within the file
	Raw    []byte

	StreamInfo *StreamInfo
	SeekTable  *SeekTable
	Comment    *VorbisComment
	Picture    *Picture

	// DecodeErr records a per-kind payload decode failure. The block header
	// itself was still read successfully.
	DecodeErr error
}

// Container is the parsed metadata view of one file.
type Container struct {
	Path        string
	Size        int64
	Blocks      []MetadataBlock
	AudioOffset int64 // first byte of the audio-data region; 0 when never reached

	// TrailingBlocks are well-formed metadata blocks found after the flagged
	// end of the chain, where audio data should begin. A populated slice
	// means the last-block flag was set too early.
	TrailingBlocks []MetadataBlock
}

// First returns the first block of the given type, or nil.
func (c *Container) First(t BlockType) *MetadataBlock {
	for i := range c.Blocks {
		if c.Blocks[i].Type == t {
			return &c.Blocks[i]
		}
	}
	return nil
}

// Count returns how many blocks of the given type are present.
func (c *Container) Count(t BlockType) int {
	n := 0
	for i := range c.Blocks {
		if c.Blocks[i].Type == t {
			n++
		}
	}
	return n
}

// Info returns the decoded STREAMINFO when present.
func (c *Container) Info() *StreamInfo {
	if b := c.First(TypeStreamInfo); b != nil {
		return b.StreamInfo
	}
	return nil
}
