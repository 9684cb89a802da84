package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"flackit/internal/deps"
	"flackit/internal/journal"
	"flackit/internal/preflight"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show tool availability, preflight checks, and the last run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			printSectionHeader(out, "External tools", colorize)
			for _, status := range deps.CheckBinaries(deps.Requirements()) {
				detail := status.Description
				if !status.Available {
					detail = status.Detail
					if status.Optional {
						detail += " (optional)"
					}
				}
				printStatusLine(out, status.Name, status.Available || status.Optional, detail, colorize)
			}

			printSectionHeader(out, "Preflight", colorize)
			for _, check := range preflight.RunAll(cfg) {
				printStatusLine(out, check.Name, check.Passed, check.Detail, colorize)
			}

			printSectionHeader(out, "Journal", colorize)
			printLastRun(cmd, out, cfg.Paths.JournalPath, colorize)

			return nil
		},
	}
}

func printLastRun(cmd *cobra.Command, out io.Writer, journalPath string, colorize bool) {
	if _, err := os.Stat(journalPath); err != nil {
		fmt.Fprintf(out, "%sno journal at %s\n", statusIndent, journalPath)
		return
	}

	store, err := journal.Open(journalPath)
	if err != nil {
		printStatusLine(out, "Journal", false, err.Error(), colorize)
		return
	}
	defer store.Close()

	run, err := store.LastRun(cmd.Context())
	if err != nil {
		printStatusLine(out, "Journal", false, err.Error(), colorize)
		return
	}
	if run == nil {
		fmt.Fprintf(out, "%sno runs recorded yet\n", statusIndent)
		return
	}

	fmt.Fprintf(out, "%slast run: %s (%s) started %s",
		statusIndent, run.ID, run.Mode, run.StartedAt.Local().Format("2006-01-02 15:04:05"))
	if !run.FinishedAt.IsZero() {
		fmt.Fprintf(out, ", %d files", run.TotalFiles)
	} else {
		fmt.Fprint(out, ", unfinished")
	}
	fmt.Fprintln(out)

	records, err := store.RunFiles(cmd.Context(), run.ID)
	if err != nil {
		return
	}
	var replaced, rolledBack, unrecoverable int
	for _, rec := range records {
		switch rec.Outcome {
		case "replaced":
			replaced++
		case "rolled-back":
			rolledBack++
		case "unrecoverable":
			unrecoverable++
		}
	}
	if replaced+rolledBack+unrecoverable > 0 {
		fmt.Fprintf(out, "%s%d replaced, %d rolled back, %d unrecoverable\n",
			statusIndent, replaced, rolledBack, unrecoverable)
	}
}

func printSectionHeader(out io.Writer, title string, colorize bool) {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	if colorize {
		line = ansiBlue + line + ansiReset
	}
	fmt.Fprintln(out, line)
}

func printStatusLine(out io.Writer, label string, ok bool, detail string, colorize bool) {
	statusText := "[OK]"
	color := ansiGreen
	if !ok {
		statusText = "[FAIL]"
		color = ansiRed
	}
	if detail != "" {
		statusText += " " + detail
	}
	line := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		line = color + line + ansiReset
	}
	fmt.Fprintln(out, line)
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
