package encoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

var commandContext = exec.CommandContext

// ErrToolUnavailable means no encoder from the preference list resolved to a
// runnable binary. Fatal for repair mode, irrelevant for analysis.
var ErrToolUnavailable = errors.New("no usable encoder found")

// DefaultTimeout bounds a single encode or decode invocation.
const DefaultTimeout = 10 * time.Minute

// stderrTailLimit caps how much tool output is kept for error messages.
const stderrTailLimit = 2048

// Client re-encodes one file. Implementations must write the output at
// destination only on success and exit non-zero otherwise.
type Client interface {
	Name() string
	Encode(ctx context.Context, source, destination string) error
}

// EncodeError reports a failed or timed-out encoder invocation.
type EncodeError struct {
	Tool   string
	Stderr string
	Err    error
}

func (e *EncodeError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s encode failed: %v: %s", e.Tool, e.Err, e.Stderr)
	}
	return fmt.Sprintf("%s encode failed: %v", e.Tool, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// Option configures a CLI client.
type Option func(*options)

type options struct {
	binary  string
	timeout time.Duration
}

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(o *options) {
		if binary != "" {
			o.binary = binary
		}
	}
}

// WithTimeout overrides the per-invocation timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

func buildOptions(binary string, opts []Option) options {
	o := options{binary: binary, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// FlacCLI wraps the reference `flac` encoder.
type FlacCLI struct {
	opts options
}

// NewFlacCLI constructs a client for the reference encoder.
func NewFlacCLI(opts ...Option) *FlacCLI {
	return &FlacCLI{opts: buildOptions("flac", opts)}
}

func (c *FlacCLI) Name() string { return "flac" }

// Encode re-encodes source into destination with verification enabled, so a
// bitstream the decoder cannot reproduce fails the invocation instead of
// writing a broken file.
func (c *FlacCLI) Encode(ctx context.Context, source, destination string) error {
	args := []string{"--best", "--verify", "--force", "-o", destination, source}
	return runTool(ctx, c.opts, args)
}

// FFmpegCLI wraps ffmpeg as the fallback encoder.
type FFmpegCLI struct {
	opts options
}

// NewFFmpegCLI constructs the fallback client.
func NewFFmpegCLI(opts ...Option) *FFmpegCLI {
	return &FFmpegCLI{opts: buildOptions("ffmpeg", opts)}
}

func (c *FFmpegCLI) Name() string { return "ffmpeg" }

func (c *FFmpegCLI) Encode(ctx context.Context, source, destination string) error {
	args := []string{"-i", source, "-acodec", "flac", "-y", destination}
	return runTool(ctx, c.opts, args)
}

func runTool(ctx context.Context, o options, args []string) error {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	cmd := commandContext(ctx, o.binary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return &EncodeError{Tool: o.binary, Stderr: stderrTail(stderr.Bytes()), Err: err}
	}
	return nil
}

func stderrTail(out []byte) string {
	s := strings.TrimSpace(string(out))
	if len(s) > stderrTailLimit {
		s = "..." + s[len(s)-stderrTailLimit:]
	}
	return s
}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// Select returns the first encoder from the preference list whose binary is
// on the host, or ErrToolUnavailable naming everything that was tried.
func Select(order []string, opts ...Option) (Client, error) {
	if len(order) == 0 {
		order = []string{"flac", "ffmpeg"}
	}
	for _, name := range order {
		if _, err := lookPath(name); err != nil {
			continue
		}
		switch name {
		case "flac":
			return NewFlacCLI(opts...), nil
		case "ffmpeg":
			return NewFFmpegCLI(opts...), nil
		}
	}
	return nil, fmt.Errorf("%w (tried %s)", ErrToolUnavailable, strings.Join(order, ", "))
}
