package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAnalysis()
	c.normalizeRepair()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	c.Paths.QuarantineDirName = strings.TrimSpace(c.Paths.QuarantineDirName)
	if c.Paths.QuarantineDirName == "" {
		c.Paths.QuarantineDirName = defaultQuarantineDirName
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.JournalPath) == "" {
		c.Paths.JournalPath = defaultJournalPath
	}
	if c.Paths.JournalPath, err = expandPath(c.Paths.JournalPath); err != nil {
		return fmt.Errorf("paths.journal_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeAnalysis() {
	if c.Analysis.PaddingThresholdBytes <= 0 {
		c.Analysis.PaddingThresholdBytes = defaultPaddingThreshold
	}
}

func (c *Config) normalizeRepair() {
	encoders := make([]string, 0, len(c.Repair.Encoders))
	seen := make(map[string]struct{}, len(c.Repair.Encoders))
	for _, name := range c.Repair.Encoders {
		normalized := strings.ToLower(strings.TrimSpace(name))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		encoders = append(encoders, normalized)
	}
	if len(encoders) == 0 {
		encoders = defaultEncoders()
	}
	c.Repair.Encoders = encoders

	if c.Repair.EncodeTimeout <= 0 {
		c.Repair.EncodeTimeout = defaultEncodeTimeout
	}
	if c.Repair.Retries < 0 {
		c.Repair.Retries = 0
	}
	if c.Repair.DurationEpsilon <= 0 {
		c.Repair.DurationEpsilon = defaultDurationEpsilon
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
