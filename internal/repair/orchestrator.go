package repair

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"flackit/internal/analysis"
	"flackit/internal/encoder"
	"flackit/internal/filename"
	"flackit/internal/fileutil"
	"flackit/internal/flac"
	"flackit/internal/logging"
)

// StreamParams are the stream values captured before quarantine, used to
// verify the re-encoded file.
type StreamParams struct {
	Duration      float64
	SampleRate    uint32
	Channels      uint8
	BitsPerSample uint8
}

// ParamsFromStreamInfo captures verification values from a parsed container.
func ParamsFromStreamInfo(si *flac.StreamInfo) StreamParams {
	if si == nil {
		return StreamParams{}
	}
	return StreamParams{
		Duration:      si.Duration(),
		SampleRate:    si.SampleRate,
		Channels:      si.Channels,
		BitsPerSample: si.BitsPerSample,
	}
}

// Options configures the orchestrator.
type Options struct {
	// QuarantineDirName is the basename of the per-directory quarantine
	// folder.
	QuarantineDirName string
	// Force re-encodes VALID files too.
	Force bool
	// NoBackup deletes the original after a verified replacement instead of
	// retaining it in quarantine.
	NoBackup bool
	// Retries is how many additional encode attempts a file gets after the
	// first failure.
	Retries int
	// DurationEpsilon absorbs rounding drift when comparing durations.
	DurationEpsilon float64
	// RenameFiles applies filename compatibility repair before quarantining.
	RenameFiles bool
}

// Result is the audit record of one job.
type Result struct {
	// Path is the file's final location (rename may change it).
	Path string
	// State is the terminal state the job reached.
	State State
	// Outcome is the user-visible bucket.
	Outcome Outcome
	// Transitions lists every state entered, in order.
	Transitions []State
	// QuarantinePath is where the original was retained, when it was.
	QuarantinePath string
	// Renamed reports whether filename repair changed the path.
	Renamed bool
	// Err carries the failure for non-replaced, non-skipped outcomes.
	Err error
}

// Orchestrator runs repair jobs. Safe for concurrent use; each call owns its
// file exclusively.
type Orchestrator struct {
	encoder encoder.Client
	opts    Options
	logger  *slog.Logger
}

// New builds an orchestrator around the selected encoder client.
func New(enc encoder.Client, opts Options, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	if opts.DurationEpsilon <= 0 {
		opts.DurationEpsilon = 0.1
	}
	return &Orchestrator{encoder: enc, opts: opts, logger: logger}
}

// Repair drives one file through the state machine. status and params must
// come from the analysis pass that preceded the call. The returned result is
// always terminal.
func (o *Orchestrator) Repair(ctx context.Context, path string, status analysis.FileStatus, params StreamParams) Result {
	job := &Result{Path: path}
	o.enter(job, StateAnalyzed)

	// Anything short of fully VALID goes through the machine: warning-level
	// findings like oversized padding are fixed by a re-encode too, and the
	// quarantined original survives either way.
	if status == analysis.StatusValid && !o.opts.Force {
		o.enter(job, StateSkipped)
		job.Outcome = OutcomeSkipped
		return *job
	}

	if o.opts.RenameFiles {
		newPath, renamed, err := filename.Repair(job.Path)
		if err != nil {
			o.logger.Warn("filename repair failed, keeping original name",
				logging.String(logging.FieldFile, job.Path), logging.Error(err))
		} else if renamed {
			o.logger.Info("renamed for filesystem compatibility",
				logging.String(logging.FieldFile, job.Path),
				logging.String("renamed_to", newPath))
			job.Path = newPath
			job.Renamed = true
		}
	}

	// Quarantine first so the job owns the only copy; the encoder reads from
	// quarantine and writes to the original path.
	o.enter(job, StateQuarantining)
	backup, err := o.quarantine(job.Path)
	if err != nil {
		o.enter(job, StateQuarantineFailed)
		job.Outcome = OutcomeUnrecoverable
		job.Err = err
		return *job
	}
	job.QuarantinePath = backup

	o.enter(job, StateReencoding)
	if err := o.encode(ctx, backup, job.Path); err != nil {
		o.enter(job, StateReencodeFailed)
		return o.rollback(job, &RepairFailedError{State: StateReencodeFailed, Err: err})
	}

	o.enter(job, StateVerifying)
	if err := o.verify(job.Path, params); err != nil {
		o.enter(job, StateVerifyFailed)
		return o.rollback(job, &RepairFailedError{State: StateVerifyFailed, Err: err})
	}

	o.enter(job, StateReplaced)
	job.Outcome = OutcomeReplaced
	if o.opts.NoBackup {
		if err := os.Remove(backup); err != nil {
			o.logger.Warn("failed to delete original after replacement",
				logging.String("backup", backup), logging.Error(err))
		} else {
			job.QuarantinePath = ""
		}
	}
	return *job
}

func (o *Orchestrator) enter(job *Result, s State) {
	job.State = s
	job.Transitions = append(job.Transitions, s)
}

// quarantine moves the original aside and returns the backup location. With
// backups enabled the file lands in the quarantine folder next to it; in
// no-backup mode it is parked under a temporary name and deleted once the
// replacement verifies.
func (o *Orchestrator) quarantine(path string) (string, error) {
	var dest string
	if o.opts.NoBackup {
		dest = path + ".orig"
	} else {
		dir := filepath.Join(filepath.Dir(path), o.opts.QuarantineDirName)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", &FilesystemError{Op: "create quarantine dir", Path: dir, Err: err}
		}
		dest = filepath.Join(dir, filepath.Base(path))
		// A leftover from an earlier run loses to the current original.
		if _, err := os.Stat(dest); err == nil {
			if err := os.Remove(dest); err != nil {
				return "", &FilesystemError{Op: "clear quarantine slot", Path: dest, Err: err}
			}
		}
	}
	if err := fileutil.MoveFile(path, dest); err != nil {
		return "", &FilesystemError{Op: "quarantine", Path: path, Err: err}
	}
	return dest, nil
}

func (o *Orchestrator) encode(ctx context.Context, source, destination string) error {
	attempts := 1 + o.opts.Retries
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = o.encoder.Encode(ctx, source, destination)
		if lastErr == nil {
			return nil
		}
		o.logger.Warn("encode attempt failed",
			logging.String(logging.FieldFile, destination),
			logging.Int("attempt", attempt),
			logging.Int("attempts", attempts),
			logging.Error(lastErr))
	}
	return lastErr
}

// verify re-parses the replacement and compares its stream parameters to the
// values recorded before quarantine.
func (o *Orchestrator) verify(path string, want StreamParams) error {
	container, err := flac.ParseFile(path)
	if err != nil {
		return fmt.Errorf("re-parse replacement: %w", err)
	}
	si := container.Info()
	if si == nil {
		return fmt.Errorf("replacement has no STREAMINFO")
	}
	// Zero-valued params mean the original never declared them; there is
	// nothing to compare against.
	if want.SampleRate > 0 && si.SampleRate != want.SampleRate {
		return fmt.Errorf("sample rate changed: %d -> %d", want.SampleRate, si.SampleRate)
	}
	if want.Channels > 0 && si.Channels != want.Channels {
		return fmt.Errorf("channel count changed: %d -> %d", want.Channels, si.Channels)
	}
	if want.BitsPerSample > 0 && si.BitsPerSample != want.BitsPerSample {
		return fmt.Errorf("bit depth changed: %d -> %d", want.BitsPerSample, si.BitsPerSample)
	}
	if want.Duration > 0 {
		if drift := math.Abs(si.Duration() - want.Duration); drift > o.opts.DurationEpsilon {
			return fmt.Errorf("duration drifted %.3fs (epsilon %.3fs)", drift, o.opts.DurationEpsilon)
		}
	}
	return nil
}

// rollback restores the quarantined original when it still exists. A backup
// that cannot be restored leaves the file unrecoverable and is never
// silently dropped.
func (o *Orchestrator) rollback(job *Result, cause error) Result {
	job.Err = cause

	// Drop any partial replacement before restoring.
	if _, err := os.Stat(job.Path); err == nil {
		if err := os.Remove(job.Path); err != nil {
			job.Outcome = OutcomeUnrecoverable
			job.Err = &FilesystemError{Op: "remove partial replacement", Path: job.Path, Err: err}
			return *job
		}
	}

	if job.QuarantinePath == "" {
		job.Outcome = OutcomeUnrecoverable
		return *job
	}
	if _, err := os.Stat(job.QuarantinePath); err != nil {
		job.Outcome = OutcomeUnrecoverable
		return *job
	}
	if err := fileutil.MoveFile(job.QuarantinePath, job.Path); err != nil {
		job.Outcome = OutcomeUnrecoverable
		job.Err = &FilesystemError{Op: "restore original", Path: job.Path, Err: err}
		return *job
	}
	job.QuarantinePath = ""
	o.enter(job, StateRolledBack)
	job.Outcome = OutcomeRolledBack
	return *job
}
