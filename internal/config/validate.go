package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateRepair(); err != nil {
		return err
	}
	if err := c.validateWorkers(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	name := c.Paths.QuarantineDirName
	if name == "." || name == ".." || strings.ContainsRune(name, filepath.Separator) {
		return fmt.Errorf("paths.quarantine_dir_name must be a plain directory name, got %q", name)
	}
	return nil
}

func (c *Config) validateRepair() error {
	for _, name := range c.Repair.Encoders {
		switch name {
		case "flac", "ffmpeg":
		default:
			return fmt.Errorf("repair.encoders: unsupported encoder %q (supported: flac, ffmpeg)", name)
		}
	}
	if c.Repair.EncodeTimeout <= 0 {
		return errors.New("repair.encode_timeout must be positive (seconds)")
	}
	if c.Repair.DurationEpsilon <= 0 {
		return errors.New("repair.duration_epsilon must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateWorkers() error {
	if c.Workers.Count < 0 {
		return errors.New("workers.count must be >= 0 (0 means one per CPU)")
	}
	return nil
}
