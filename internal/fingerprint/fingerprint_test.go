package fingerprint_test

import (
	"context"
	"crypto/sha256"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"flackit/internal/fingerprint"
	"flackit/internal/flac"
)

type stubDecoder struct {
	sig   [16]byte
	err   error
	calls int
}

func (d *stubDecoder) Signature(ctx context.Context, path string) ([16]byte, error) {
	d.calls++
	return d.sig, d.err
}

func writeTemp(t *testing.T, contents []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "track.flac")
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestDeclaredSignatureWinsOverDecode(t *testing.T) {
	path := writeTemp(t, []byte("container bytes"))
	dec := &stubDecoder{sig: [16]byte{0xAA}}
	engine := fingerprint.NewEngine(dec)

	si := &flac.StreamInfo{Signature: [16]byte{0x01, 0x02}}
	fp, err := engine.Fingerprint(context.Background(), path, si)
	if err != nil {
		t.Fatalf("Fingerprint returned error: %v", err)
	}
	if fp.AudioSignature != si.Signature {
		t.Fatalf("expected declared signature, got %x", fp.AudioSignature)
	}
	if fp.Source != fingerprint.SourceStreamInfo {
		t.Fatalf("unexpected source: %s", fp.Source)
	}
	if dec.calls != 0 {
		t.Fatalf("decoder should not run when a signature is declared")
	}
}

func TestUnsetSignatureFallsBackToDecoder(t *testing.T) {
	path := writeTemp(t, []byte("container bytes"))
	dec := &stubDecoder{sig: [16]byte{0xBE, 0xEF}}
	engine := fingerprint.NewEngine(dec)

	fp, err := engine.Fingerprint(context.Background(), path, &flac.StreamInfo{})
	if err != nil {
		t.Fatalf("Fingerprint returned error: %v", err)
	}
	if fp.AudioSignature != dec.sig {
		t.Fatalf("expected decoded signature, got %x", fp.AudioSignature)
	}
	if fp.Source != fingerprint.SourceDecoded {
		t.Fatalf("unexpected source: %s", fp.Source)
	}
	if dec.calls != 1 {
		t.Fatalf("decoder calls = %d, want 1", dec.calls)
	}
}

func TestByteHashMatchesFileContents(t *testing.T) {
	contents := []byte("exact bytes on disk")
	path := writeTemp(t, contents)
	engine := fingerprint.NewEngine(nil)

	fp, err := engine.Fingerprint(context.Background(), path, &flac.StreamInfo{Signature: [16]byte{1}})
	if err != nil {
		t.Fatalf("Fingerprint returned error: %v", err)
	}
	if fp.ByteHash != sha256.Sum256(contents) {
		t.Fatalf("byte hash does not match file contents")
	}
}

func TestDecodeFailureDoesNotPoisonCache(t *testing.T) {
	path := writeTemp(t, []byte("bytes"))
	dec := &stubDecoder{err: errors.New("decoder exploded")}
	engine := fingerprint.NewEngine(dec)

	if _, err := engine.Fingerprint(context.Background(), path, nil); err == nil {
		t.Fatal("expected decode error")
	}

	dec.err = nil
	dec.sig = [16]byte{0x10}
	fp, err := engine.Fingerprint(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("retry returned error: %v", err)
	}
	if fp.AudioSignature != dec.sig {
		t.Fatalf("expected fresh decode after failure, got %x", fp.AudioSignature)
	}
}

func TestFingerprintCachedPerRun(t *testing.T) {
	path := writeTemp(t, []byte("bytes"))
	dec := &stubDecoder{sig: [16]byte{0x42}}
	engine := fingerprint.NewEngine(dec)

	for i := 0; i < 3; i++ {
		if _, err := engine.Fingerprint(context.Background(), path, nil); err != nil {
			t.Fatalf("Fingerprint returned error: %v", err)
		}
	}
	if dec.calls != 1 {
		t.Fatalf("decoder calls = %d, want 1 (cached)", dec.calls)
	}
}

func TestNoDecoderAndNoSignatureFails(t *testing.T) {
	path := writeTemp(t, []byte("bytes"))
	engine := fingerprint.NewEngine(nil)

	if _, err := engine.Fingerprint(context.Background(), path, &flac.StreamInfo{}); err == nil {
		t.Fatal("expected error when no signature source exists")
	}
}
