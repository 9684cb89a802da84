package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"flackit/internal/encoder"
	"flackit/internal/journal"
	"flackit/internal/preflight"
	"flackit/internal/repair"
	"flackit/internal/report"
	"flackit/internal/scanner"
)

func newRepairCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var force bool
	var noBackup bool
	var rename bool

	cmd := &cobra.Command{
		Use:   "repair [paths...]",
		Short: "Re-encode invalid files, quarantining the originals",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			for _, check := range preflight.RunAll(cfg) {
				if !check.Passed {
					return fmt.Errorf("preflight failed: %s: %s", check.Name, check.Detail)
				}
			}

			enc, err := encoder.Select(cfg.Repair.Encoders,
				encoder.WithTimeout(time.Duration(cfg.Repair.EncodeTimeout)*time.Second))
			if err != nil {
				return err
			}

			// One repair run per journal at a time; concurrent runs would
			// race on the same quarantine slots.
			lock := flock.New(cfg.Paths.JournalPath + ".lock")
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire repair lock: %w", err)
			}
			if !locked {
				return fmt.Errorf("another repair run is already using %s", cfg.Paths.JournalPath)
			}
			defer func() { _ = lock.Unlock() }()

			store, err := journal.Open(cfg.Paths.JournalPath)
			if err != nil {
				return err
			}
			defer store.Close()

			files, err := scanner.New(cfg.Paths.QuarantineDirName, logger).Discover(args)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No FLAC files found")
				return nil
			}

			run, err := store.BeginRun(cmd.Context(), "repair")
			if err != nil {
				return err
			}

			orchestrator := repair.New(enc, repair.Options{
				QuarantineDirName: cfg.Paths.QuarantineDirName,
				Force:             force,
				NoBackup:          noBackup || cfg.Repair.NoBackup,
				Retries:           cfg.Repair.Retries,
				DurationEpsilon:   cfg.Repair.DurationEpsilon,
				RenameFiles:       rename || cfg.Repair.RenameFiles,
			}, logger)

			pool := ctx.pool(cmd, "repairing")
			results := pool.Run(cmd.Context(), files, func(taskCtx context.Context, path string) report.FileResult {
				a := analyzeFile(taskCtx, path, cfg, nil)
				res := a.result

				// Unreadable files never reach the state machine; journal
				// the failure so the run stays auditable.
				if res.Err != "" && res.Status == "" {
					if err := store.RecordFile(taskCtx, journal.FileRecord{
						RunID: run.ID, Path: path, Detail: res.Err,
					}); err != nil {
						logger.Warn("journal write failed", "path", path, "error", err)
					}
					return res
				}

				job := orchestrator.Repair(taskCtx, path, res.Status, repair.ParamsFromStreamInfo(a.info))
				res.Repair = &job
				if job.Renamed {
					res.Path = job.Path
				}

				rec := journal.FileRecord{
					RunID:       run.ID,
					Path:        job.Path,
					Status:      string(res.Status),
					Errors:      res.Errors(),
					Warnings:    res.Warnings(),
					RepairState: string(job.State),
					Outcome:     string(job.Outcome),
				}
				if job.Err != nil {
					rec.Detail = job.Err.Error()
				}
				if err := store.RecordFile(taskCtx, rec); err != nil {
					logger.Warn("journal write failed", "path", path, "error", err)
				}
				return res
			})

			if err := store.FinishRun(cmd.Context(), run.ID, len(results)); err != nil {
				logger.Warn("journal finish failed", "error", err)
			}

			out := report.Run{Files: results, Summary: report.Summarize(results)}
			if jsonOutput {
				if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
					return err
				}
			} else {
				printRepairReport(cmd.OutOrStdout(), out)
			}

			if out.Summary.Unrecoverable > 0 {
				return fmt.Errorf("%d of %d files unrecoverable", out.Summary.Unrecoverable, out.Summary.Total)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit machine-readable JSON")
	cmd.Flags().BoolVar(&force, "force", false, "Repair valid files too")
	cmd.Flags().BoolVar(&noBackup, "no-backup", false, "Delete originals instead of quarantining them")
	cmd.Flags().BoolVar(&rename, "rename", false, "Apply filename compatibility repair")
	return cmd
}

func printRepairReport(out io.Writer, run report.Run) {
	columns := []column{{title: "File"}, {title: "Status"}, {title: "Repair"}, {title: "Outcome"}}
	rows := make([][]string, 0, len(run.Files))
	for _, file := range run.Files {
		state, outcome := "", ""
		if file.Repair != nil {
			state = string(file.Repair.State)
			outcome = string(file.Repair.Outcome)
		}
		rows = append(rows, []string{file.Path, string(file.Status), state, outcome})
	}
	fmt.Fprintln(out, renderTable(columns, rows))

	for _, file := range run.Files {
		if file.Repair == nil || file.Repair.Err == nil {
			continue
		}
		fmt.Fprintf(out, "\n%s\n  %s\n", file.Path, file.Repair.Err)
		if file.Repair.QuarantinePath != "" {
			fmt.Fprintf(out, "  original retained at %s\n", file.Repair.QuarantinePath)
		}
	}

	parts := []string{
		fmt.Sprintf("%d skipped", run.Summary.Skipped),
		fmt.Sprintf("%d replaced", run.Summary.Replaced),
	}
	if run.Summary.RolledBack > 0 {
		parts = append(parts, fmt.Sprintf("%d rolled back", run.Summary.RolledBack))
	}
	if run.Summary.Unrecoverable > 0 {
		parts = append(parts, fmt.Sprintf("%d unrecoverable", run.Summary.Unrecoverable))
	}
	fmt.Fprintf(out, "\n%d files: %s\n", run.Summary.Total, strings.Join(parts, ", "))
}
