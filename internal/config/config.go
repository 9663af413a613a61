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

// Paths contains the dataset directory layout.
type Paths struct {
	SourceRoot string `toml:"source_root"`
	MergedDir  string `toml:"merged_dir"`
	OutputDir  string `toml:"output_dir"`
	LogDir     string `toml:"log_dir"`
}

// Split contains the train/valid/test ratios.
type Split struct {
	Train float64 `toml:"train"`
	Valid float64 `toml:"valid"`
	Test  float64 `toml:"test"`
	// Seed makes the shuffle reproducible when non-zero.
	Seed int64 `toml:"seed"`
}

// Masks contains mask normalization settings. Subdirectories are relative to
// Paths.MergedDir.
type Masks struct {
	InputSubdir  string `toml:"input_subdir"`
	OutputSubdir string `toml:"output_subdir"`
	LabelsSubdir string `toml:"labels_subdir"`
	GlobalIDs    bool   `toml:"global_ids"`
}

// Classes describes the class table handed to the label converter and
// written into the dataset manifest.
type Classes struct {
	Count int      `toml:"count"`
	Names []string `toml:"names"`
}

// Merge contains dataset merge settings.
type Merge struct {
	WarnLimit int `toml:"warn_limit"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	// RetentionDays prunes daily log files older than this; 0 keeps everything.
	RetentionDays int `toml:"retention_days"`
}

// Config encapsulates all configuration values for segprep.
type Config struct {
	Paths   Paths   `toml:"paths"`
	Split   Split   `toml:"split"`
	Masks   Masks   `toml:"masks"`
	Classes Classes `toml:"classes"`
	Merge   Merge   `toml:"merge"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
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

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("segprep.toml")
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

// EnsureDirectories creates the log directory. Dataset directories are
// created by the commands that write them.
func (c *Config) EnsureDirectories() error {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return nil
	}
	if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.LogDir, err)
	}
	return nil
}

// MasksInputDir returns the directory holding raw merged masks.
func (c *Config) MasksInputDir() string {
	return filepath.Join(c.Paths.MergedDir, c.Masks.InputSubdir)
}

// MasksOutputDir returns the directory receiving normalized masks.
func (c *Config) MasksOutputDir() string {
	return filepath.Join(c.Paths.MergedDir, c.Masks.OutputSubdir)
}

// LabelsDir returns the directory receiving converted label files.
func (c *Config) LabelsDir() string {
	return filepath.Join(c.Paths.MergedDir, c.Masks.LabelsSubdir)
}

// ClassNames returns Classes.Count names, filling unnamed ids with their
// decimal string form.
func (c *Config) ClassNames() []string {
	names := make([]string, c.Classes.Count)
	for i := range names {
		if i < len(c.Classes.Names) && strings.TrimSpace(c.Classes.Names[i]) != "" {
			names[i] = strings.TrimSpace(c.Classes.Names[i])
			continue
		}
		names[i] = fmt.Sprint(i)
	}
	return names
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
