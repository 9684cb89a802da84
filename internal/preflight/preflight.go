package preflight

import (
	"path/filepath"

	"flackit/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the checks a repair run depends on: writable log and
// journal directories, and at least one available encoder.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	logDir, err := config.ExpandPath(cfg.Paths.LogDir)
	if err != nil {
		results = append(results, Result{Name: "Log directory", Detail: err.Error()})
	} else {
		results = append(results, CheckDirectoryAccess("Log directory", logDir))
	}

	journalPath, err := config.ExpandPath(cfg.Paths.JournalPath)
	if err != nil {
		results = append(results, Result{Name: "Journal directory", Detail: err.Error()})
	} else {
		results = append(results, CheckDirectoryAccess("Journal directory", filepath.Dir(journalPath)))
	}

	results = append(results, CheckEncoders(cfg.Repair.Encoders))

	return results
}
