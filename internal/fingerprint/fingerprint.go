// Package fingerprint computes content identities for duplicate detection:
// an audio-content signature (declared in STREAMINFO or derived by decoding)
// paired with an exact-byte hash of the whole file.
package fingerprint

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sync"

	"flackit/internal/encoder"
	"flackit/internal/flac"
)

// SignatureSource records where the audio signature came from.
type SignatureSource string

const (
	SourceStreamInfo SignatureSource = "streaminfo"
	SourceDecoded    SignatureSource = "decoded"
)

// Fingerprint identifies a file's content. Files sharing AudioSignature hold
// the same decoded audio; files also sharing ByteHash are byte-identical.
type Fingerprint struct {
	AudioSignature [16]byte
	ByteHash       [sha256.Size]byte
	Source         SignatureSource
}

// AudioHex returns the audio signature as lowercase hex.
func (fp Fingerprint) AudioHex() string { return hex.EncodeToString(fp.AudioSignature[:]) }

// ByteHex returns the exact-byte hash as lowercase hex.
func (fp Fingerprint) ByteHex() string { return hex.EncodeToString(fp.ByteHash[:]) }

// Engine resolves fingerprints, caching them for the duration of a run. The
// cache is never persisted; identical inputs in a later run are recomputed.
type Engine struct {
	decoder encoder.Decoder

	mu    sync.Mutex
	cache map[string]Fingerprint
}

// NewEngine builds an engine. The decoder may be nil, in which case files
// without a declared signature fail to fingerprint.
func NewEngine(dec encoder.Decoder) *Engine {
	return &Engine{decoder: dec, cache: make(map[string]Fingerprint)}
}

// Fingerprint resolves the identity of path. The declared STREAMINFO
// signature wins when set; otherwise the audio is decoded. The file is never
// mutated. The exact-byte hash is always computed from the file as-is.
func (e *Engine) Fingerprint(ctx context.Context, path string, si *flac.StreamInfo) (Fingerprint, error) {
	e.mu.Lock()
	if fp, ok := e.cache[path]; ok {
		e.mu.Unlock()
		return fp, nil
	}
	e.mu.Unlock()

	fp := Fingerprint{}
	switch {
	case si.HasSignature():
		fp.AudioSignature = si.Signature
		fp.Source = SourceStreamInfo
	case e.decoder != nil:
		sig, err := e.decoder.Signature(ctx, path)
		if err != nil {
			return Fingerprint{}, err
		}
		fp.AudioSignature = sig
		fp.Source = SourceDecoded
	default:
		return Fingerprint{}, fmt.Errorf("no declared signature and no decoder available for %s", path)
	}

	hash, err := hashFile(path)
	if err != nil {
		return Fingerprint{}, err
	}
	fp.ByteHash = hash

	e.mu.Lock()
	e.cache[path] = fp
	e.mu.Unlock()
	return fp, nil
}

func hashFile(path string) ([sha256.Size]byte, error) {
	var zero [sha256.Size]byte
	f, err := os.Open(path)
	if err != nil {
		return zero, fmt.Errorf("open for hashing: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return zero, fmt.Errorf("hash %s: %w", path, err)
	}
	var sum [sha256.Size]byte
	copy(sum[:], h.Sum(nil))
	return sum, nil
}
