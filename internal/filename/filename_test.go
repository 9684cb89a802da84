package filename_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"flackit/internal/filename"
)

func TestSanitizeFoldsDiacritics(t *testing.T) {
	got := filename.Sanitize("Béla Bartók - Allegro.flac")
	want := "Bela Bartok - Allegro.flac"
	if got != want {
		t.Fatalf("Sanitize = %q, want %q", got, want)
	}
}

func TestSanitizeReplacesUnsafeCharacters(t *testing.T) {
	got := filename.Sanitize(`What? "A:B" <Live>.flac`)
	if strings.ContainsAny(got, `?":<>|*/\`) {
		t.Fatalf("unsafe characters survived: %q", got)
	}
	if !strings.HasSuffix(got, ".flac") {
		t.Fatalf("extension lost: %q", got)
	}
}

func TestSanitizeKeepsExtensionWhenTruncating(t *testing.T) {
	long := strings.Repeat("a", 300) + ".flac"
	got := filename.Sanitize(long)
	if len(got) > 255 {
		t.Fatalf("sanitized name still %d bytes", len(got))
	}
	if !strings.HasSuffix(got, ".flac") {
		t.Fatalf("extension lost: %q", got)
	}
}

func TestCheckFlagsProblems(t *testing.T) {
	cases := []struct {
		name string
		path string
		want bool
	}{
		{"clean ascii", "album/01 Intro.flac", false},
		{"non-ascii", "album/Tèst.flac", true},
		{"reserved character", "album/a?b.flac", true},
		{"overlong", "album/" + strings.Repeat("x", 300) + ".flac", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			findings := filename.Check(tc.path)
			if got := len(findings) > 0; got != tc.want {
				t.Fatalf("Check(%q) findings = %v, want findings: %v", tc.path, findings, tc.want)
			}
		})
	}
}

func TestRepairRenamesOnDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Tèst?.flac")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	newPath, renamed, err := filename.Repair(path)
	if err != nil {
		t.Fatalf("Repair returned error: %v", err)
	}
	if !renamed {
		t.Fatal("expected a rename")
	}
	if filepath.Base(newPath) != "Test.flac" {
		t.Fatalf("renamed to %q", newPath)
	}
	if _, err := os.Stat(newPath); err != nil {
		t.Fatalf("renamed file missing: %v", err)
	}
}

func TestRepairNoopForCleanName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clean.flac")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	newPath, renamed, err := filename.Repair(path)
	if err != nil {
		t.Fatalf("Repair returned error: %v", err)
	}
	if renamed || newPath != path {
		t.Fatalf("unexpected rename: %q renamed=%v", newPath, renamed)
	}
}

func TestRepairRefusesToOverwrite(t *testing.T) {
	dir := t.TempDir()
	dirty := filepath.Join(dir, "Tèst.flac")
	clean := filepath.Join(dir, "Test.flac")
	for _, p := range []string{dirty, clean} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if _, _, err := filename.Repair(dirty); err == nil {
		t.Fatal("expected collision error")
	}
	if _, err := os.Stat(dirty); err != nil {
		t.Fatalf("source should be untouched: %v", err)
	}
}
