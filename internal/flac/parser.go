package flac

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ParseFile opens path and parses its metadata chain.
func ParseFile(path string) (*Container, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open container: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat container: %w", err)
	}

	c, err := Parse(f, info.Size())
	if c != nil {
		c.Path = path
	}
	return c, err
}

// Parse reads the metadata-block chain from r. size is the total file size
// when known (negative to disable size-dependent checks).
//
// On a FormatError the returned container is still populated with every block
// recovered before the failure, so validation can report what was seen. Any
// other error means the container could not be inspected at all.
func Parse(r io.Reader, size int64) (*Container, error) {
	c := &Container{Size: size}

	var marker [4]byte
	if _, err := io.ReadFull(r, marker[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return c, formatErrorf(0, "stream marker %q not found", Marker)
		}
		return nil, fmt.Errorf("read stream marker: %w", err)
	}
	if string(marker[:]) != Marker {
		return c, formatErrorf(0, "stream marker %q not found", Marker)
	}

	offset := int64(len(Marker))
	for {
		var header [4]byte
		n, err := io.ReadFull(r, header[:])
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return c, formatErrorf(offset, "truncated metadata block header (%d of 4 bytes)", n)
			}
			return c, fmt.Errorf("read block header: %w", err)
		}

		block := MetadataBlock{
			Type:   BlockType(header[0] & 0x7F),
			Last:   header[0]&0x80 != 0,
			Length: uint32(header[1])<<16 | uint32(header[2])<<8 | uint32(header[3]),
			Offset: offset,
		}

		// The length field is 24 bits, so the largest payload is 16 MiB - 1.
		payload := make([]byte, block.Length)
		read, err := io.ReadFull(r, payload)
		block.Raw = payload[:read]
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				c.Blocks = append(c.Blocks, block)
				return c, formatErrorf(offset, "truncated metadata block: declared %d bytes, read %d", block.Length, read)
			}
			c.Blocks = append(c.Blocks, block)
			return c, fmt.Errorf("read block payload: %w", err)
		}

		decodeBlock(&block)
		c.Blocks = append(c.Blocks, block)
		offset += 4 + int64(block.Length)

		if block.Last {
			c.AudioOffset = offset
			probeTrailing(r, c, offset)
			return c, nil
		}
	}
}

// probeTrailing peeks past the flagged end of the chain for metadata blocks
// that should not be there. Real audio always starts with a frame sync byte
// (0xFF), which reads as the forbidden type 127, so a header with a block
// type in the defined range and a length that fits the file is taken as a
// leaked metadata block rather than audio. The probe is diagnostic only;
// AudioOffset stays at the flagged end.
func probeTrailing(r io.Reader, c *Container, offset int64) {
	for {
		var header [4]byte
		if _, err := io.ReadFull(r, header[:]); err != nil {
			return
		}
		blockType := BlockType(header[0] & 0x7F)
		length := uint32(header[1])<<16 | uint32(header[2])<<8 | uint32(header[3])
		if blockType > TypePicture {
			return
		}
		if c.Size >= 0 && int64(length) > c.Size-offset-4 {
			return
		}

		block := MetadataBlock{
			Type:   blockType,
			Last:   header[0]&0x80 != 0,
			Length: length,
			Offset: offset,
		}
		payload := make([]byte, length)
		read, err := io.ReadFull(r, payload)
		block.Raw = payload[:read]
		c.TrailingBlocks = append(c.TrailingBlocks, block)
		if err != nil || block.Last {
			return
		}
		offset += 4 + int64(length)
	}
}

// decodeBlock populates the typed view for kinds the validator inspects.
// Decode failures are recorded on the block, never raised.
func decodeBlock(b *MetadataBlock) {
	var err error
	switch b.Type {
	case TypeStreamInfo:
		b.StreamInfo, err = decodeStreamInfo(b.Raw)
	case TypeSeekTable:
		b.SeekTable, err = decodeSeekTable(b.Raw)
	case TypeVorbisComment:
		b.Comment, err = decodeVorbisComment(b.Raw)
	case TypePicture:
		b.Picture, err = decodePicture(b.Raw)
	}
	b.DecodeErr = err
}
