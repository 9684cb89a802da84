package analysis

import (
	"errors"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"flackit/internal/flac"
)

// DefaultPaddingThreshold is the padding size above which corruption becomes
// the likely explanation. Legitimate encoders reserve a few KiB at most.
const DefaultPaddingThreshold = 64 << 10

// Input bundles everything the validator may consult. Optional data left at
// its zero value simply skips the checks that need it.
type Input struct {
	Container *flac.Container
	ParseErr  error

	// FrameCount is the scanned frame-sync candidate count for the audio
	// region; negative when no scan was performed.
	FrameCount int

	// ComputedSignature is a decode-derived audio signature, when the caller
	// paid for one. Compared against the declared STREAMINFO signature.
	ComputedSignature    [16]byte
	HasComputedSignature bool

	// PaddingThreshold in bytes; 0 selects DefaultPaddingThreshold.
	PaddingThreshold uint32
}

// Validate runs the rule catalog over a parsed container. Findings come back
// in catalog order, which is fixed regardless of block order in the input.
func Validate(in Input) []Finding {
	c := in.Container
	if c == nil {
		c = &flac.Container{}
	}

	// A missing stream marker means this is not a FLAC container at all;
	// every later check would just be noise.
	var ferr *flac.FormatError
	if errors.As(in.ParseErr, &ferr) && ferr.Offset == 0 && len(c.Blocks) == 0 {
		return []Finding{errorf(RuleMarkerMissing, 0, "%s", ferr.Msg)}
	}

	var findings []Finding
	if ferr != nil {
		findings = append(findings, errorf(RuleBlockTruncated, ferr.Offset, "%s", ferr.Msg))
	}

	findings = append(findings, checkBlockTypes(c)...)
	findings = append(findings, checkLastFlag(c, ferr != nil)...)
	findings = append(findings, checkStreamInfoPlacement(c)...)
	findings = append(findings, checkCardinality(c)...)
	findings = append(findings, checkSeekTable(c)...)
	findings = append(findings, checkPadding(c, in.paddingThreshold())...)
	findings = append(findings, checkVorbisComment(c)...)
	findings = append(findings, checkPictures(c)...)
	findings = append(findings, checkStreamInfo(c)...)
	findings = append(findings, checkFrameCount(c, in.FrameCount)...)
	findings = append(findings, checkSignature(c, in)...)
	return findings
}

func (in Input) paddingThreshold() uint32 {
	if in.PaddingThreshold == 0 {
		return DefaultPaddingThreshold
	}
	return in.PaddingThreshold
}

func checkBlockTypes(c *flac.Container) []Finding {
	var findings []Finding
	for i := range c.Blocks {
		b := &c.Blocks[i]
		switch {
		case b.Type == flac.TypeForbidden:
			findings = append(findings, errorf(RuleForbiddenType, b.Offset, "block type 127 is forbidden"))
		case b.Type > flac.TypePicture:
			findings = append(findings, infof(RuleReservedType, b.Offset, "reserved block type %d", b.Type))
		}
	}
	return findings
}

func checkLastFlag(c *flac.Container, truncated bool) []Finding {
	if len(c.TrailingBlocks) > 0 {
		extra := 0
		for _, b := range c.TrailingBlocks {
			if b.Last {
				extra++
			}
		}
		return []Finding{errorf(RuleLastFlagMultiple, c.AudioOffset,
			"%d metadata block(s) found after the flagged end of chain (%d also flagged last)",
			len(c.TrailingBlocks), extra)}
	}
	if truncated && !anyLast(c.Blocks) {
		return []Finding{errorf(RuleLastFlagNone, chainEnd(c), "no block carries the last-metadata-block flag")}
	}
	return nil
}

func checkStreamInfoPlacement(c *flac.Container) []Finding {
	if len(c.Blocks) == 0 {
		return nil
	}
	count := c.Count(flac.TypeStreamInfo)
	switch {
	case count == 0:
		return []Finding{errorf(RuleStreamInfoMissing, 0, "STREAMINFO block missing")}
	case c.Blocks[0].Type != flac.TypeStreamInfo:
		return []Finding{errorf(RuleStreamInfoNotFirst, c.First(flac.TypeStreamInfo).Offset,
			"STREAMINFO must be the first metadata block, found %s first", c.Blocks[0].Type)}
	case count > 1:
		return []Finding{errorf(RuleStreamInfoDuplicate, 0, "%d STREAMINFO blocks, exactly one allowed", count)}
	}
	return nil
}

func checkCardinality(c *flac.Container) []Finding {
	var findings []Finding
	if n := c.Count(flac.TypeSeekTable); n > 1 {
		findings = append(findings, errorf(RuleSeekTableDuplicate, 0, "%d SEEKTABLE blocks, at most one allowed", n))
	}
	if n := c.Count(flac.TypeVorbisComment); n > 1 {
		findings = append(findings, errorf(RuleVorbisDuplicate, 0, "%d VORBIS_COMMENT blocks, at most one allowed", n))
	}
	return findings
}

func checkSeekTable(c *flac.Container) []Finding {
	b := c.First(flac.TypeSeekTable)
	if b == nil {
		return nil
	}
	if b.DecodeErr != nil {
		return []Finding{errorf(RuleSeekTableSize, b.Offset, "%v", b.DecodeErr)}
	}

	var findings []Finding
	points := b.SeekTable.Points
	seenPlaceholder := false
	var prevSample, prevOffset uint64
	offsetsWarned := false
	for i, pt := range points {
		if pt.Placeholder() {
			seenPlaceholder = true
			continue
		}
		if seenPlaceholder {
			findings = append(findings, errorf(RuleSeekTableOrder, b.Offset,
				"seek point %d follows a placeholder; placeholders must be grouped at the end", i))
			break
		}
		if i > 0 && pt.Sample <= prevSample {
			findings = append(findings, errorf(RuleSeekTableOrder, b.Offset,
				"seek point %d sample %d does not increase past %d", i, pt.Sample, prevSample))
			break
		}
		if i > 0 && pt.StreamOffset < prevOffset && !offsetsWarned {
			findings = append(findings, warnf(RuleSeekTableOffsets, b.Offset,
				"seek point %d stream offset %d decreases past %d", i, pt.StreamOffset, prevOffset))
			offsetsWarned = true
		}
		prevSample, prevOffset = pt.Sample, pt.StreamOffset
	}
	return findings
}

func checkPadding(c *flac.Container, threshold uint32) []Finding {
	var findings []Finding
	for i := range c.Blocks {
		b := &c.Blocks[i]
		if b.Type != flac.TypePadding {
			continue
		}
		if b.Length > threshold {
			findings = append(findings, warnf(RulePaddingOversized, b.Offset,
				"PADDING block of %s exceeds the %s threshold; probable corruption",
				humanize.IBytes(uint64(b.Length)), humanize.IBytes(uint64(threshold))))
		}
	}
	return findings
}

func checkVorbisComment(c *flac.Container) []Finding {
	b := c.First(flac.TypeVorbisComment)
	if b == nil {
		return nil
	}
	if b.DecodeErr != nil {
		return []Finding{errorf(RuleVorbisStructure, b.Offset, "%v", b.DecodeErr)}
	}

	var findings []Finding
	vc := b.Comment
	if !utf8.ValidString(vc.Vendor) {
		findings = append(findings, errorf(RuleVorbisEncoding, b.Offset, "vendor string is not valid UTF-8"))
	}
	for i, field := range vc.Fields {
		name, ok := splitFieldName(field)
		if !ok {
			findings = append(findings, errorf(RuleVorbisFieldName, b.Offset,
				"comment field %d has no '=' separator", i))
			continue
		}
		if !printableFieldName(name) {
			findings = append(findings, errorf(RuleVorbisFieldName, b.Offset,
				"comment field %d name %q contains characters outside printable ASCII", i, name))
		}
		if !utf8.ValidString(field) {
			findings = append(findings, errorf(RuleVorbisEncoding, b.Offset,
				"comment field %d is not valid UTF-8", i))
		}
	}
	return findings
}

func splitFieldName(field string) (string, bool) {
	for i := 0; i < len(field); i++ {
		if field[i] == '=' {
			return field[:i], true
		}
	}
	return "", false
}

// printableFieldName enforces the format's field-name alphabet: 0x20-0x7D
// excluding '='.
func printableFieldName(name string) bool {
	for i := 0; i < len(name); i++ {
		ch := name[i]
		if ch < 0x20 || ch > 0x7D || ch == '=' {
			return false
		}
	}
	return true
}

func checkPictures(c *flac.Container) []Finding {
	var findings []Finding
	iconCount := map[uint32]int{}
	for i := range c.Blocks {
		b := &c.Blocks[i]
		if b.Type != flac.TypePicture {
			continue
		}
		if b.DecodeErr != nil {
			findings = append(findings, errorf(RulePictureStructure, b.Offset, "%v", b.DecodeErr))
			continue
		}
		pic := b.Picture
		if pic.PictureType > flac.MaxPictureType {
			findings = append(findings, errorf(RulePictureTypeRange, b.Offset,
				"picture type %d outside the defined range 0-%d", pic.PictureType, flac.MaxPictureType))
		}
		if pic.PictureType == flac.PictureFileIcon || pic.PictureType == flac.PictureOtherFileIcon {
			iconCount[pic.PictureType]++
		}
	}
	for _, kind := range []uint32{flac.PictureFileIcon, flac.PictureOtherFileIcon} {
		if iconCount[kind] > 1 {
			findings = append(findings, errorf(RulePictureIconDup, 0,
				"%d pictures of reserved icon type %d, at most one allowed", iconCount[kind], kind))
		}
	}
	return findings
}

func checkStreamInfo(c *flac.Container) []Finding {
	b := c.First(flac.TypeStreamInfo)
	if b == nil {
		return nil
	}
	if b.DecodeErr != nil {
		return []Finding{errorf(RuleStreamInfoStructure, b.Offset, "%v", b.DecodeErr)}
	}

	var findings []Finding
	si := b.StreamInfo
	if si.BlockSizeMin < flac.MinBlockSize || si.BlockSizeMax < flac.MinBlockSize || si.BlockSizeMin > si.BlockSizeMax {
		findings = append(findings, errorf(RuleBlockSizeRange, b.Offset,
			"block sizes %d..%d outside %d..%d or inverted",
			si.BlockSizeMin, si.BlockSizeMax, flac.MinBlockSize, flac.MaxBlockSize))
	}
	if si.FrameSizeMin != 0 && si.FrameSizeMax != 0 && si.FrameSizeMin > si.FrameSizeMax {
		findings = append(findings, errorf(RuleFrameSizeRange, b.Offset,
			"min frame size %d exceeds max %d", si.FrameSizeMin, si.FrameSizeMax))
	}
	if si.SampleRate == 0 || si.SampleRate > flac.MaxSampleRate {
		findings = append(findings, errorf(RuleSampleRateRange, b.Offset,
			"sample rate %d outside 1..%d", si.SampleRate, flac.MaxSampleRate))
	}
	if si.BitsPerSample < flac.MinBitDepth {
		findings = append(findings, errorf(RuleBitDepthRange, b.Offset,
			"bit depth %d below the encodable minimum %d", si.BitsPerSample, flac.MinBitDepth))
	}
	return findings
}

// checkFrameCount cross-checks the declared sample count against the scanned
// sync-candidate count. The scan over-counts (sync bytes occur inside
// compressed payloads) so only a shortfall is meaningful, and exact frame
// accounting needs a full decode, so this never escalates past WARNING.
func checkFrameCount(c *flac.Container, frameCount int) []Finding {
	si := c.Info()
	if si == nil || frameCount < 0 || si.TotalSamples == 0 || si.BlockSizeMax == 0 {
		return nil
	}
	minFrames := int((si.TotalSamples + uint64(si.BlockSizeMax) - 1) / uint64(si.BlockSizeMax))
	if frameCount < minFrames {
		return []Finding{warnf(RuleFrameCountMismatch, c.AudioOffset,
			"declared %d samples need at least %d frames, audio region shows only %d sync candidates",
			si.TotalSamples, minFrames, frameCount)}
	}
	return nil
}

func checkSignature(c *flac.Container, in Input) []Finding {
	b := c.First(flac.TypeStreamInfo)
	if b == nil || b.StreamInfo == nil {
		return nil
	}
	si := b.StreamInfo
	if !si.HasSignature() {
		return []Finding{warnf(RuleSignatureUnset, b.Offset, "audio MD5 signature is unset in STREAMINFO")}
	}
	if in.HasComputedSignature && si.Signature != in.ComputedSignature {
		return []Finding{warnf(RuleSignatureMismatch, b.Offset,
			"declared audio signature %x does not match decoded audio %x", si.Signature, in.ComputedSignature)}
	}
	return nil
}

func anyLast(blocks []flac.MetadataBlock) bool {
	for _, b := range blocks {
		if b.Last {
			return true
		}
	}
	return false
}

func chainEnd(c *flac.Container) int64 {
	if len(c.Blocks) == 0 {
		return 0
	}
	last := c.Blocks[len(c.Blocks)-1]
	return last.Offset + 4 + int64(len(last.Raw))
}
