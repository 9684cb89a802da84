package analysis

import "fmt"

// Severity grades a finding.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
	SeverityInfo    Severity = "INFO"
)

// Stable rule identifiers. Reports, tests, and the suggestion table key on
// these; never rename one without a migration note.
const (
	RuleMarkerMissing       = "container.marker-missing"
	RuleBlockTruncated      = "container.block-truncated"
	RuleForbiddenType       = "container.forbidden-block-type"
	RuleReservedType        = "container.reserved-block-type"
	RuleLastFlagNone        = "container.last-flag-missing"
	RuleLastFlagMultiple    = "container.last-flag-multiple"
	RuleStreamInfoMissing   = "streaminfo.missing"
	RuleStreamInfoNotFirst  = "streaminfo.not-first"
	RuleStreamInfoDuplicate = "streaminfo.duplicate"
	RuleStreamInfoStructure = "streaminfo.structure"
	RuleBlockSizeRange      = "streaminfo.block-size-range"
	RuleFrameSizeRange      = "streaminfo.frame-size-range"
	RuleSampleRateRange     = "streaminfo.sample-rate"
	RuleBitDepthRange       = "streaminfo.bit-depth"
	RuleSeekTableDuplicate  = "seektable.duplicate"
	RuleSeekTableSize       = "seektable.size"
	RuleSeekTableOrder      = "seektable.order"
	RuleSeekTableOffsets    = "seektable.offsets"
	RuleVorbisDuplicate     = "vorbis.duplicate"
	RuleVorbisStructure     = "vorbis.structure"
	RuleVorbisFieldName     = "vorbis.field-name"
	RuleVorbisEncoding      = "vorbis.encoding"
	RulePaddingOversized    = "padding.oversized"
	RulePictureStructure    = "picture.structure"
	RulePictureTypeRange    = "picture.type-range"
	RulePictureIconDup      = "picture.icon-duplicate"
	RuleFrameCountMismatch  = "frames.count-mismatch"
	RuleSignatureUnset      = "signature.unset"
	RuleSignatureMismatch   = "signature.mismatch"
	RuleFilenameCompat      = "filename.compat"
)

// Finding is one validation observation. Findings are never mutated after
// creation.
type Finding struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Offset   int64    `json:"offset"`
}

func errorf(rule string, offset int64, format string, args ...any) Finding {
	return Finding{Rule: rule, Severity: SeverityError, Offset: offset, Message: fmt.Sprintf(format, args...)}
}

func warnf(rule string, offset int64, format string, args ...any) Finding {
	return Finding{Rule: rule, Severity: SeverityWarning, Offset: offset, Message: fmt.Sprintf(format, args...)}
}

func infof(rule string, offset int64, format string, args ...any) Finding {
	return Finding{Rule: rule, Severity: SeverityInfo, Offset: offset, Message: fmt.Sprintf(format, args...)}
}
