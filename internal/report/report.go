// Package report holds the aggregated per-file results a run produces and
// the summary derived from them. The core makes no assumption about output
// format; the CLI renders these as tables or JSON.
package report

import (
	"flackit/internal/analysis"
	"flackit/internal/dedupe"
	"flackit/internal/fingerprint"
	"flackit/internal/media"
	"flackit/internal/repair"
)

// StreamSummary is the display subset of a file's STREAMINFO.
type StreamSummary struct {
	SampleRate    uint32  `json:"sample_rate,omitempty"`
	Channels      uint8   `json:"channels,omitempty"`
	BitsPerSample uint8   `json:"bits_per_sample,omitempty"`
	Duration      float64 `json:"duration_seconds,omitempty"`
}

// FileResult is everything a run learned about one file.
type FileResult struct {
	Index       int                   `json:"-"`
	Path        string                `json:"path"`
	Status      analysis.FileStatus   `json:"status"`
	Findings    []analysis.Finding    `json:"findings,omitempty"`
	Suggestions []analysis.Suggestion `json:"suggestions,omitempty"`
	Stream      StreamSummary         `json:"stream,omitempty"`
	Tags        media.Tags            `json:"tags,omitempty"`
	Size        int64                 `json:"size_bytes,omitempty"`
	Fingerprint FingerprintResult     `json:"fingerprint,omitempty"`
	Repair      *repair.Result        `json:"repair,omitempty"`
	// Err carries a failure outside the finding model (I/O, fingerprint).
	Err string `json:"error,omitempty"`
}

// FingerprintResult is the serializable view of a computed fingerprint.
type FingerprintResult struct {
	AudioSignature string `json:"audio_signature,omitempty"`
	ByteHash       string `json:"byte_hash,omitempty"`
	Source         string `json:"source,omitempty"`
}

// Errors and Warnings count findings by severity.
func (r FileResult) Errors() int   { return r.countSeverity(analysis.SeverityError) }
func (r FileResult) Warnings() int { return r.countSeverity(analysis.SeverityWarning) }

func (r FileResult) countSeverity(sev analysis.Severity) int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == sev {
			n++
		}
	}
	return n
}

// SetFingerprint records a computed fingerprint on the result.
func (r *FileResult) SetFingerprint(fp fingerprint.Fingerprint) {
	r.Fingerprint = FingerprintResult{
		AudioSignature: fp.AudioHex(),
		ByteHash:       fp.ByteHex(),
		Source:         string(fp.Source),
	}
}

// Summary tallies a run.
type Summary struct {
	Total             int `json:"total"`
	Valid             int `json:"valid"`
	ValidWithWarnings int `json:"valid_with_warnings"`
	Invalid           int `json:"invalid"`
	Failed            int `json:"failed,omitempty"`

	Skipped       int `json:"skipped,omitempty"`
	Replaced      int `json:"replaced,omitempty"`
	RolledBack    int `json:"rolled_back,omitempty"`
	Unrecoverable int `json:"unrecoverable,omitempty"`
}

// Summarize tallies results into a summary.
func Summarize(results []FileResult) Summary {
	var s Summary
	s.Total = len(results)
	for _, r := range results {
		if r.Err != "" && r.Status == "" {
			s.Failed++
			continue
		}
		switch r.Status {
		case analysis.StatusValid:
			s.Valid++
		case analysis.StatusValidWithWarnings:
			s.ValidWithWarnings++
		case analysis.StatusInvalid:
			s.Invalid++
		}
		if r.Repair != nil {
			switch r.Repair.Outcome {
			case repair.OutcomeSkipped:
				s.Skipped++
			case repair.OutcomeReplaced:
				s.Replaced++
			case repair.OutcomeRolledBack:
				s.RolledBack++
			case repair.OutcomeUnrecoverable:
				s.Unrecoverable++
			}
		}
	}
	return s
}

// Run is the machine-readable shape of a whole run.
type Run struct {
	Files   []FileResult   `json:"files"`
	Summary Summary        `json:"summary"`
	Dedupe  *dedupe.Report `json:"dedupe,omitempty"`
}
