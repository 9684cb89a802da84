package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"flackit/internal/config"
	"flackit/internal/logging"
	"flackit/internal/runner"
)

type commandContext struct {
	configFlag    *string
	workersFlag   *int
	logLevelFlag  *string
	logFormatFlag *string
	quietFlag     *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string, workersFlag *int, logLevelFlag, logFormatFlag *string, quietFlag *bool) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		workersFlag:   workersFlag,
		logLevelFlag:  logLevelFlag,
		logFormatFlag: logFormatFlag,
		quietFlag:     quietFlag,
	}
}

// ensureConfig loads the configuration once and layers the global flag
// overrides on top of it.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.workersFlag != nil && *c.workersFlag >= 0 {
			cfg.Workers.Count = *c.workersFlag
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.TrimSpace(*c.logLevelFlag)
		}
		if c.logFormatFlag != nil && strings.TrimSpace(*c.logFormatFlag) != "" {
			cfg.Logging.Format = strings.TrimSpace(*c.logFormatFlag)
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) quiet() bool {
	return c.quietFlag != nil && *c.quietFlag
}

// pool builds the worker pool for a batch. Progress rendering goes to the
// command's stderr unless --quiet was given.
func (c *commandContext) pool(cmd *cobra.Command, label string) *runner.Pool {
	workers := 0
	if cfg, err := c.ensureConfig(); err == nil {
		workers = cfg.Workers.Count
	}
	var opts []runner.Option
	if !c.quiet() {
		opts = append(opts, runner.WithProgress(cmd.ErrOrStderr(), label))
	}
	return runner.New(workers, opts...)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
