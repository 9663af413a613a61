package main

import (
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"segprep/internal/config"
	"segprep/internal/logging"
	"segprep/internal/runlock"
)

type globalFlags struct {
	config    string
	logLevel  string
	logFormat string
	json      bool
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = err
			return
		}
		if level := strings.TrimSpace(c.flags.logLevel); level != "" {
			cfg.Logging.Level = strings.ToLower(level)
		}
		if format := strings.TrimSpace(c.flags.logFormat); format != "" {
			cfg.Logging.Format = strings.ToLower(format)
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) baseLogger() (*slog.Logger, error) {
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

func (c *commandContext) jsonOutput() bool {
	return c.flags != nil && c.flags.json
}

// stageRun bundles what one stage invocation needs: a logger tagged with the
// run id and stage, a progress reporter, and the locks it holds.
type stageRun struct {
	id       string
	logger   *slog.Logger
	progress logging.ProgressFactory
	locks    []*runlock.Lock
}

// beginStage locks every output directory in lockDirs and prepares logging.
// Callers must call end.
func (c *commandContext) beginStage(stage string, lockDirs ...string) (*stageRun, error) {
	base, err := c.baseLogger()
	if err != nil {
		return nil, err
	}
	id := runlock.NewRunID()
	run := &stageRun{
		id:     id,
		logger: logging.NewComponentLogger(logging.WithRun(base, id, stage), "segprep"),
	}
	run.progress = logging.NewProgressFactory(os.Stderr, run.logger)

	for _, dir := range lockDirs {
		lock, err := runlock.Acquire(dir, id)
		if err != nil {
			run.end()
			return nil, err
		}
		run.locks = append(run.locks, lock)
	}
	return run, nil
}

func (r *stageRun) forStage(stage string) *slog.Logger {
	return r.logger.With(logging.String(logging.FieldStage, stage))
}

func (r *stageRun) end() {
	for i := len(r.locks) - 1; i >= 0; i-- {
		if err := r.locks[i].Release(); err != nil {
			r.logger.Warn("release lock failed", logging.Error(err))
		}
	}
	r.locks = nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// firstNonEmpty returns the flag value when set, otherwise the config value.
func firstNonEmpty(flag, fallback string) string {
	if v := strings.TrimSpace(flag); v != "" {
		return v
	}
	return fallback
}
