package flac_test

import (
	"bytes"
	"errors"
	"testing"

	"flackit/internal/flac"
	"flackit/internal/testsupport"
)

func TestParseHealthyContainer(t *testing.T) {
	data := testsupport.Container(
		[]byte{0xFF, 0xF8, 0x00, 0x00},
		testsupport.StreamInfoBlock(),
		testsupport.PaddingBlock(8, true),
	)

	c, err := flac.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(c.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(c.Blocks))
	}
	if c.Blocks[0].Type != flac.TypeStreamInfo || c.Blocks[0].Last {
		t.Fatalf("unexpected first block: %+v", c.Blocks[0])
	}
	if c.Blocks[1].Type != flac.TypePadding || !c.Blocks[1].Last {
		t.Fatalf("unexpected second block: %+v", c.Blocks[1])
	}
	wantAudio := int64(4 + 4 + flac.StreamInfoLength + 4 + 8)
	if c.AudioOffset != wantAudio {
		t.Fatalf("audio offset: got %d want %d", c.AudioOffset, wantAudio)
	}

	si := c.Info()
	if si == nil {
		t.Fatal("expected decoded STREAMINFO")
	}
	if si.SampleRate != 44100 || si.Channels != 2 || si.BitsPerSample != 16 {
		t.Fatalf("unexpected stream parameters: %+v", si)
	}
	if si.BlockSizeMin != 4096 || si.BlockSizeMax != 4096 {
		t.Fatalf("unexpected block sizes: %+v", si)
	}
	if si.TotalSamples != 44100*3 {
		t.Fatalf("unexpected total samples: %d", si.TotalSamples)
	}
	if si.HasSignature() {
		t.Fatal("zero signature must read as unset")
	}
}

func TestParseMissingMarker(t *testing.T) {
	_, err := flac.Parse(bytes.NewReader([]byte("OggS....")), 8)
	var ferr *flac.FormatError
	if !errors.As(err, &ferr) {
		t.Fatalf("expected FormatError, got %v", err)
	}
	if ferr.Offset != 0 {
		t.Fatalf("marker error should point at offset 0, got %d", ferr.Offset)
	}
}

func TestParseTruncatedPayloadKeepsPartialBlocks(t *testing.T) {
	data := testsupport.Container(nil,
		testsupport.StreamInfoBlock(),
		testsupport.BlockSpec{Type: flac.TypePadding, Last: true, Payload: make([]byte, 4), DeclareLength: 64},
	)

	c, err := flac.Parse(bytes.NewReader(data), int64(len(data)))
	var ferr *flac.FormatError
	if !errors.As(err, &ferr) {
		t.Fatalf("expected FormatError, got %v", err)
	}
	if c == nil || len(c.Blocks) != 2 {
		t.Fatalf("expected partial block list with 2 entries, got %+v", c)
	}
	if got := len(c.Blocks[1].Raw); got != 4 {
		t.Fatalf("expected 4 recovered payload bytes, got %d", got)
	}
	if c.AudioOffset != 0 {
		t.Fatalf("audio offset must stay unset on truncation, got %d", c.AudioOffset)
	}
}

func TestParseDecodesVorbisComment(t *testing.T) {
	payload := testsupport.EncodeVorbisComment("reference encoder", "ARTIST=Someone", "TITLE=Something")
	data := testsupport.Container(nil,
		testsupport.StreamInfoBlock(),
		testsupport.BlockSpec{Type: flac.TypeVorbisComment, Last: true, Payload: payload},
	)

	c, err := flac.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	vc := c.Blocks[1].Comment
	if vc == nil {
		t.Fatalf("expected decoded comment, decode err: %v", c.Blocks[1].DecodeErr)
	}
	if vc.Vendor != "reference encoder" {
		t.Fatalf("unexpected vendor: %q", vc.Vendor)
	}
	if len(vc.Fields) != 2 || vc.Fields[0] != "ARTIST=Someone" {
		t.Fatalf("unexpected fields: %v", vc.Fields)
	}
}

func TestParseRecordsDecodeErrorWithoutFailing(t *testing.T) {
	// Vendor length claims more bytes than the payload holds.
	bad := []byte{0xFF, 0x00, 0x00, 0x00}
	data := testsupport.Container(nil,
		testsupport.StreamInfoBlock(),
		testsupport.BlockSpec{Type: flac.TypeVorbisComment, Last: true, Payload: bad},
	)

	c, err := flac.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("structural parse should survive payload decode failure: %v", err)
	}
	if c.Blocks[1].DecodeErr == nil {
		t.Fatal("expected decode error on malformed comment payload")
	}
	if c.Blocks[1].Comment != nil {
		t.Fatal("typed view must stay nil when decoding fails")
	}
}

func TestParseDecodesSeekTableAndPicture(t *testing.T) {
	seek := testsupport.EncodeSeekPoints(
		flac.SeekPoint{Sample: 0, StreamOffset: 0, FrameSamples: 4096},
		flac.SeekPoint{Sample: 4096, StreamOffset: 1000, FrameSamples: 4096},
	)
	pic := testsupport.EncodePicture(3, "image/png", "front", []byte{1, 2, 3})
	data := testsupport.Container(nil,
		testsupport.StreamInfoBlock(),
		testsupport.BlockSpec{Type: flac.TypeSeekTable, Payload: seek},
		testsupport.BlockSpec{Type: flac.TypePicture, Last: true, Payload: pic},
	)

	c, err := flac.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	st := c.Blocks[1].SeekTable
	if st == nil || len(st.Points) != 2 {
		t.Fatalf("unexpected seek table: %+v (err %v)", st, c.Blocks[1].DecodeErr)
	}
	if st.Points[1].Sample != 4096 || st.Points[1].StreamOffset != 1000 {
		t.Fatalf("unexpected second seek point: %+v", st.Points[1])
	}
	p := c.Blocks[2].Picture
	if p == nil {
		t.Fatalf("expected decoded picture, decode err: %v", c.Blocks[2].DecodeErr)
	}
	if p.MediaType != "image/png" || p.PictureType != 3 || len(p.Data) != 3 {
		t.Fatalf("unexpected picture: %+v", p)
	}
}

func TestParseProbesBlocksPastFlaggedEnd(t *testing.T) {
	si := testsupport.StreamInfoBlock()
	si.Last = true
	data := testsupport.Container(nil,
		si,
		testsupport.PaddingBlock(8, true), // second block also flagged last
	)

	c, err := flac.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(c.Blocks) != 1 {
		t.Fatalf("chain should stop at the first last-flag, got %d blocks", len(c.Blocks))
	}
	if len(c.TrailingBlocks) != 1 || c.TrailingBlocks[0].Type != flac.TypePadding || !c.TrailingBlocks[0].Last {
		t.Fatalf("expected one trailing last-flagged padding block, got %+v", c.TrailingBlocks)
	}
}

func TestParseDoesNotMistakeAudioForTrailingBlocks(t *testing.T) {
	data := testsupport.Container(
		[]byte{0xFF, 0xF8, 0x69, 0x18, 0x00, 0x00},
		testsupport.StreamInfoBlock(),
		testsupport.PaddingBlock(4, true),
	)

	c, err := flac.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(c.TrailingBlocks) != 0 {
		t.Fatalf("frame data misread as metadata: %+v", c.TrailingBlocks)
	}
}

func TestScanFramesCountsSyncPatterns(t *testing.T) {
	audio := []byte{
		0xFF, 0xF8, 0x11, 0x22, // frame sync
		0x00, 0xFF, 0x00, // 0xFF not followed by sync byte
		0xFF, 0xF9, 0x33, // variable-blocksize sync
	}
	n, err := flac.ScanFrames(bytes.NewReader(audio))
	if err != nil {
		t.Fatalf("ScanFrames returned error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 sync hits, got %d", n)
	}
}
