package encoder

import (
	"bytes"
	"context"
	"crypto/md5"
	"fmt"
	"io"
)

// DecodeError reports a failed external decode. It fails the affected file's
// fingerprint or verification step only, never the batch.
type DecodeError struct {
	Path   string
	Stderr string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("decode %s: %v: %s", e.Path, e.Err, e.Stderr)
	}
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decoder produces the audio-content signature of a file by decoding it.
type Decoder interface {
	Signature(ctx context.Context, path string) ([16]byte, error)
}

// FlacDecoder computes signatures by streaming raw samples out of `flac -d`.
type FlacDecoder struct {
	opts options
}

// NewFlacDecoder constructs a decoder around the reference binary.
func NewFlacDecoder(opts ...Option) *FlacDecoder {
	return &FlacDecoder{opts: buildOptions("flac", opts)}
}

// Signature decodes path and hashes the sample stream. The raw output format
// (signed little-endian interleaved samples) matches the layout the container
// format defines its audio MD5 over, so the digest is directly comparable to
// the STREAMINFO signature.
func (d *FlacDecoder) Signature(ctx context.Context, path string) ([16]byte, error) {
	var zero [16]byte
	if d.opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.opts.timeout)
		defer cancel()
	}

	args := []string{"-d", "-c", "--force-raw-format", "--endian=little", "--sign=signed", path}
	cmd := commandContext(ctx, d.opts.binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return zero, &DecodeError{Path: path, Err: fmt.Errorf("stdout pipe: %w", err)}
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		return zero, &DecodeError{Path: path, Err: fmt.Errorf("start decoder: %w", err)}
	}

	digest := md5.New()
	if _, err := io.Copy(digest, stdout); err != nil {
		_ = cmd.Wait()
		return zero, &DecodeError{Path: path, Stderr: stderrTail(stderr.Bytes()), Err: err}
	}
	if err := cmd.Wait(); err != nil {
		return zero, &DecodeError{Path: path, Stderr: stderrTail(stderr.Bytes()), Err: err}
	}

	var sig [16]byte
	copy(sig[:], digest.Sum(nil))
	return sig, nil
}

var _ Decoder = (*FlacDecoder)(nil)
