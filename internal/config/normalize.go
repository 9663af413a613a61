package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeMasks()
	c.normalizeClasses()
	if c.Merge.WarnLimit < 0 {
		c.Merge.WarnLimit = defaultWarnLimit
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.SourceRoot) == "" {
		c.Paths.SourceRoot = defaultSourceRoot
	}
	if c.Paths.SourceRoot, err = expandPath(strings.TrimSpace(c.Paths.SourceRoot)); err != nil {
		return fmt.Errorf("paths.source_root: %w", err)
	}
	if strings.TrimSpace(c.Paths.MergedDir) == "" {
		c.Paths.MergedDir = defaultMergedDir
	}
	if c.Paths.MergedDir, err = expandPath(strings.TrimSpace(c.Paths.MergedDir)); err != nil {
		return fmt.Errorf("paths.merged_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(strings.TrimSpace(c.Paths.OutputDir)); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeMasks() {
	c.Masks.InputSubdir = strings.TrimSpace(c.Masks.InputSubdir)
	if c.Masks.InputSubdir == "" {
		c.Masks.InputSubdir = defaultMasksInput
	}
	c.Masks.OutputSubdir = strings.TrimSpace(c.Masks.OutputSubdir)
	if c.Masks.OutputSubdir == "" {
		c.Masks.OutputSubdir = defaultMasksOutput
	}
	c.Masks.LabelsSubdir = strings.TrimSpace(c.Masks.LabelsSubdir)
	if c.Masks.LabelsSubdir == "" {
		c.Masks.LabelsSubdir = defaultLabelsSubdir
	}
}

func (c *Config) normalizeClasses() {
	if c.Classes.Count == 0 {
		c.Classes.Count = defaultClassCount
	}
	names := make([]string, 0, len(c.Classes.Names))
	for _, name := range c.Classes.Names {
		names = append(names, strings.TrimSpace(name))
	}
	c.Classes.Names = names
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
