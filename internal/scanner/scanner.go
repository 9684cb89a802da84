// Package scanner discovers FLAC files under the requested paths.
package scanner

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Extension is the only suffix considered, matched case-insensitively.
const Extension = ".flac"

// Scanner walks the requested paths. Directories under the configured
// quarantine name are skipped so already-quarantined originals never re-enter
// a batch.
type Scanner struct {
	quarantineDir string
	logger        *slog.Logger
}

// New builds a scanner. quarantineDir is the directory basename to skip.
func New(quarantineDir string, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{quarantineDir: quarantineDir, logger: logger}
}

// Discover expands paths into the list of FLAC files to process. Explicit
// file arguments are taken as-is when they carry the extension; directories
// are walked recursively. Missing paths are logged and skipped rather than
// failing the batch. Order is deterministic: argument order, then lexical
// walk order within each directory.
func (s *Scanner) Discover(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				s.logger.Warn("path does not exist, skipping", "path", path)
				continue
			}
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}

		if !info.IsDir() {
			if hasExtension(path) {
				files = append(files, path)
			}
			continue
		}

		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if s.quarantineDir != "" && d.Name() == s.quarantineDir {
					return filepath.SkipDir
				}
				return nil
			}
			if hasExtension(p) {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", path, err)
		}
	}
	return files, nil
}

func hasExtension(path string) bool {
	return strings.EqualFold(filepath.Ext(path), Extension)
}
