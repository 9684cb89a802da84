package main

import (
	"context"
	"errors"
	"os"

	"flackit/internal/analysis"
	"flackit/internal/config"
	"flackit/internal/encoder"
	"flackit/internal/filename"
	"flackit/internal/flac"
	"flackit/internal/media"
	"flackit/internal/report"
)

// analyzed bundles a file's analysis result with the parsed stream info the
// repair and dedupe paths consume afterwards.
type analyzed struct {
	result report.FileResult
	info   *flac.StreamInfo
}

// analyzeFile runs the full analysis pass for one file: parse, validate,
// classify, suggest, and tag extraction. It never returns an error; failures
// outside the finding model land in the result's Err field.
func analyzeFile(ctx context.Context, path string, cfg *config.Config, dec encoder.Decoder) analyzed {
	var res report.FileResult

	if info, err := os.Stat(path); err == nil {
		res.Size = info.Size()
	}

	container, parseErr := flac.ParseFile(path)

	// A FormatError is a finding about the container; anything else is an
	// I/O failure with nothing to validate. Surfacing it on the result keeps
	// the batch going while the summary counts the file as failed.
	var ferr *flac.FormatError
	if parseErr != nil && !errors.As(parseErr, &ferr) {
		res.Err = parseErr.Error()
		return analyzed{result: res}
	}

	in := analysis.Input{
		Container:        container,
		ParseErr:         parseErr,
		FrameCount:       -1,
		PaddingThreshold: uint32(cfg.Analysis.PaddingThresholdBytes),
	}

	var si *flac.StreamInfo
	if container != nil {
		si = container.Info()
	}

	// Tag library first; the native parser's comment block covers files the
	// library rejects.
	if tags, err := media.ReadTags(path); err == nil {
		res.Tags = tags
	} else if container != nil {
		if comment := container.First(flac.TypeVorbisComment); comment != nil && comment.Comment != nil {
			res.Tags = media.FromComment(comment.Comment)
		}
	}

	if cfg.Analysis.FrameScan && container != nil && container.AudioOffset > 0 && parseErr == nil {
		if n, err := flac.ScanFramesFile(path, container.AudioOffset); err == nil {
			in.FrameCount = n
		}
	}

	if cfg.Analysis.VerifySignatures && dec != nil && si != nil && si.HasSignature() {
		if sig, err := dec.Signature(ctx, path); err == nil {
			in.ComputedSignature = sig
			in.HasComputedSignature = true
		}
	}

	findings := analysis.Validate(in)
	findings = append(findings, filename.Check(path)...)

	res.Findings = findings
	res.Status = analysis.Classify(findings)
	res.Suggestions = analysis.Suggest(findings)
	if si != nil {
		res.Stream = report.StreamSummary{
			SampleRate:    si.SampleRate,
			Channels:      si.Channels,
			BitsPerSample: si.BitsPerSample,
			Duration:      si.Duration(),
		}
	}

	return analyzed{result: res, info: si}
}
