package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"flackit/internal/report"
	"flackit/internal/testsupport"
)

func TestAnalyzeValidFile(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := t.TempDir()

	// A signed STREAMINFO and enough frame-sync candidates in the audio
	// region keep the file free of warnings.
	spec := testsupport.DefaultStreamInfo()
	spec.Signature = [16]byte{1, 2, 3, 4}
	audio := bytes.Repeat([]byte{0xFF, 0xF8, 0x00, 0x00}, 64)
	data := testsupport.Container(audio,
		testsupport.BlockSpec{Type: 0, Payload: testsupport.EncodeStreamInfo(spec)},
		testsupport.PaddingBlock(16, true),
	)
	testsupport.WriteFile(t, dir, "good.flac", data)

	out, _, err := runCLI(t, env, "analyze", dir, "--json")
	if err != nil {
		t.Fatalf("analyze: %v\n%s", err, out)
	}

	var run report.Run
	if err := json.Unmarshal([]byte(out), &run); err != nil {
		t.Fatalf("parse JSON output: %v\n%s", err, out)
	}
	if run.Summary.Total != 1 || run.Summary.Valid != 1 {
		t.Fatalf("unexpected summary: %+v", run.Summary)
	}
	if run.Files[0].Stream.SampleRate != 44100 {
		t.Fatalf("stream summary not populated: %+v", run.Files[0].Stream)
	}
}

func TestAnalyzeInvalidFileExitsNonZero(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := t.TempDir()
	testsupport.WriteFile(t, dir, "broken.flac", []byte("not a flac container"))

	out, _, err := runCLI(t, env, "analyze", dir)
	if err == nil {
		t.Fatalf("expected analyze to fail for an invalid file\n%s", out)
	}
	if !strings.Contains(err.Error(), "invalid") {
		t.Fatalf("unexpected error: %v", err)
	}
	requireContains(t, out, "broken.flac")
	requireContains(t, out, "INVALID")
}

func TestAnalyzeEmptyDirectory(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, env, "analyze", t.TempDir())
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	requireContains(t, out, "No FLAC files found")
}
