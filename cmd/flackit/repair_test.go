package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"flackit/internal/journal"
	"flackit/internal/report"
	"flackit/internal/testsupport"
)

// installStubFlac places a fake `flac` binary on PATH that copies a
// prepared healthy container to the requested output path.
func installStubFlac(t *testing.T, replacement string) {
	t.Helper()
	binDir := t.TempDir()
	script := fmt.Sprintf("#!/bin/sh\n# args: --best --verify --force -o <dst> <src>\ncp %q \"$5\"\n", replacement)
	if err := os.WriteFile(filepath.Join(binDir, "flac"), []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	// Prepend so the stub shadows any real flac; cp still needs the rest.
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func TestRepairReplacesInvalidFile(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := t.TempDir()

	original := []byte("definitely not a flac container")
	path := testsupport.WriteFile(t, dir, "broken.flac", original)

	healthy := testsupport.ValidFile(t, t.TempDir(), "healthy.flac")
	installStubFlac(t, healthy)

	out, _, err := runCLI(t, env, "repair", dir, "--json")
	if err != nil {
		t.Fatalf("repair: %v\n%s", err, out)
	}

	var run report.Run
	if err := json.Unmarshal([]byte(out), &run); err != nil {
		t.Fatalf("parse JSON output: %v\n%s", err, out)
	}
	if run.Summary.Replaced != 1 {
		t.Fatalf("unexpected summary: %+v", run.Summary)
	}

	replaced, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("replacement missing: %v", err)
	}
	want, _ := os.ReadFile(healthy)
	if string(replaced) != string(want) {
		t.Fatal("replacement content unexpected")
	}

	quarantined := filepath.Join(dir, "_flackit_quarantine", "broken.flac")
	kept, err := os.ReadFile(quarantined)
	if err != nil {
		t.Fatalf("quarantined original missing: %v", err)
	}
	if string(kept) != string(original) {
		t.Fatal("quarantined original not byte-identical")
	}

	// The run is journaled.
	store, err := journal.Open(filepath.Join(env.home, "journal.db"))
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer store.Close()

	last, err := store.LastRun(context.Background())
	if err != nil || last == nil {
		t.Fatalf("last run: %v %v", last, err)
	}
	if last.Mode != "repair" || last.TotalFiles != 1 {
		t.Fatalf("unexpected run: %+v", last)
	}
	records, err := store.RunFiles(context.Background(), last.ID)
	if err != nil || len(records) != 1 {
		t.Fatalf("run files: %v %v", records, err)
	}
	if records[0].RepairState != "REPLACED" || records[0].Outcome != "replaced" {
		t.Fatalf("journaled record = %+v", records[0])
	}
}

func TestRepairSkipsValidFiles(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := t.TempDir()

	// Signed, with enough frame-sync candidates to carry no warnings at all.
	spec := testsupport.DefaultStreamInfo()
	spec.Signature = [16]byte{7}
	audio := bytes.Repeat([]byte{0xFF, 0xF8, 0x00, 0x00}, 64)
	data := testsupport.Container(audio,
		testsupport.BlockSpec{Type: 0, Payload: testsupport.EncodeStreamInfo(spec)},
		testsupport.PaddingBlock(16, true),
	)
	path := testsupport.WriteFile(t, dir, "fine.flac", data)

	healthy := testsupport.ValidFile(t, t.TempDir(), "healthy.flac")
	installStubFlac(t, healthy)

	out, _, err := runCLI(t, env, "repair", dir, "--json")
	if err != nil {
		t.Fatalf("repair: %v\n%s", err, out)
	}

	var run report.Run
	if err := json.Unmarshal([]byte(out), &run); err != nil {
		t.Fatalf("parse JSON output: %v", err)
	}
	if run.Summary.Skipped != 1 || run.Summary.Replaced != 0 {
		t.Fatalf("unexpected summary: %+v", run.Summary)
	}

	after, _ := os.ReadFile(path)
	if string(after) != string(data) {
		t.Fatal("skipped file was modified")
	}
}
