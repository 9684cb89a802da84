package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and file location configuration.
type Paths struct {
	// QuarantineDirName is the basename of the per-directory quarantine
	// folder. Scans skip it; repairs move originals into it.
	QuarantineDirName string `toml:"quarantine_dir_name"`
	LogDir            string `toml:"log_dir"`
	JournalPath       string `toml:"journal_path"`
}

// Analysis contains configuration for structural validation.
type Analysis struct {
	// PaddingThresholdBytes is the padding size above which a warning is
	// reported.
	PaddingThresholdBytes int64 `toml:"padding_threshold_bytes"`
	// FrameScan enables the opportunistic frame-sync scan of the audio
	// region.
	FrameScan bool `toml:"frame_scan"`
	// VerifySignatures decodes audio to check the declared STREAMINFO MD5.
	// Slow; off by default.
	VerifySignatures bool `toml:"verify_signatures"`
}

// Repair contains configuration for the repair pipeline.
type Repair struct {
	// Encoders is the preference-ordered list of external encoders.
	Encoders []string `toml:"encoders"`
	// EncodeTimeout bounds one encode invocation, in seconds.
	EncodeTimeout int `toml:"encode_timeout"`
	// Retries is how many additional encode attempts a file gets.
	Retries int `toml:"retries"`
	// DurationEpsilon is the allowed drift, in seconds, between the original
	// and re-encoded duration during verification.
	DurationEpsilon float64 `toml:"duration_epsilon"`
	// NoBackup deletes originals instead of quarantining them.
	NoBackup bool `toml:"no_backup"`
	// RenameFiles applies filename compatibility repair before re-encoding.
	RenameFiles bool `toml:"rename_files"`
}

// Dedupe contains configuration for duplicate detection.
type Dedupe struct {
	// DecodeMissingSignatures decodes files whose STREAMINFO MD5 is unset so
	// they can still join duplicate groups.
	DecodeMissingSignatures bool `toml:"decode_missing_signatures"`
}

// Workers contains worker pool configuration.
type Workers struct {
	// Count is the pool size; 0 means one worker per CPU.
	Count int `toml:"count"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for flackit.
type Config struct {
	Paths    Paths    `toml:"paths"`
	Analysis Analysis `toml:"analysis"`
	Repair   Repair   `toml:"repair"`
	Dedupe   Dedupe   `toml:"dedupe"`
	Workers  Workers  `toml:"workers"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/flackit/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. A missing file yields
// the defaults with exists=false.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("flackit.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the CLI writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.LogDir}
	if strings.TrimSpace(c.Paths.JournalPath) != "" {
		dirs = append(dirs, filepath.Dir(c.Paths.JournalPath))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Sample returns the embedded sample configuration text.
func Sample() string {
	return sampleConfig
}
