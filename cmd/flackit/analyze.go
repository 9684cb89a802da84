package main

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"flackit/internal/encoder"
	"flackit/internal/report"
	"flackit/internal/scanner"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "analyze [paths...]",
		Short: "Validate FLAC container structure without modifying files",
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

			files, err := scanner.New(cfg.Paths.QuarantineDirName, logger).Discover(args)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No FLAC files found")
				return nil
			}

			var dec encoder.Decoder
			if cfg.Analysis.VerifySignatures {
				dec = encoder.NewFlacDecoder()
			}

			pool := ctx.pool(cmd, "analyzing")
			results := pool.Run(cmd.Context(), files, func(taskCtx context.Context, path string) report.FileResult {
				return analyzeFile(taskCtx, path, cfg, dec).result
			})

			run := report.Run{Files: results, Summary: report.Summarize(results)}
			if jsonOutput {
				if err := writeJSON(cmd.OutOrStdout(), run); err != nil {
					return err
				}
			} else {
				printAnalysisReport(cmd.OutOrStdout(), run)
			}

			if run.Summary.Invalid > 0 {
				return fmt.Errorf("%d of %d files invalid", run.Summary.Invalid, run.Summary.Total)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit machine-readable JSON")
	return cmd
}

func printAnalysisReport(out io.Writer, run report.Run) {
	columns := []column{
		{title: "File"},
		{title: "Status"},
		{title: "Errors", alignRight: true},
		{title: "Warnings", alignRight: true},
		{title: "Size", alignRight: true},
	}
	rows := make([][]string, 0, len(run.Files))
	for _, file := range run.Files {
		status := string(file.Status)
		if file.Err != "" && status == "" {
			status = "FAILED"
		}
		size := ""
		if file.Size > 0 {
			size = humanize.IBytes(uint64(file.Size))
		}
		rows = append(rows, []string{
			file.Path,
			status,
			fmt.Sprintf("%d", file.Errors()),
			fmt.Sprintf("%d", file.Warnings()),
			size,
		})
	}
	fmt.Fprintln(out, renderTable(columns, rows))

	for _, file := range run.Files {
		if len(file.Findings) == 0 && file.Err == "" {
			continue
		}
		fmt.Fprintf(out, "\n%s\n", file.Path)
		if file.Err != "" {
			fmt.Fprintf(out, "  error: %s\n", file.Err)
		}
		for _, finding := range file.Findings {
			fmt.Fprintf(out, "  [%s] %s: %s\n", finding.Severity, finding.Rule, finding.Message)
		}
		for _, suggestion := range file.Suggestions {
			fmt.Fprintf(out, "  -> %s: %s\n", suggestion.Action, suggestion.Reason)
		}
	}

	fmt.Fprintf(out, "\n%d files: %d valid, %d with warnings, %d invalid",
		run.Summary.Total, run.Summary.Valid, run.Summary.ValidWithWarnings, run.Summary.Invalid)
	if run.Summary.Failed > 0 {
		fmt.Fprintf(out, ", %d failed", run.Summary.Failed)
	}
	fmt.Fprintln(out)
}
