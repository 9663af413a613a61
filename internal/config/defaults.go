package config

const (
	defaultConfigPath   = "~/.config/segprep/config.toml"
	defaultSourceRoot   = "datasets_origin"
	defaultMergedDir    = "merged_data"
	defaultOutputDir    = "datasets"
	defaultLogDir       = "~/.local/share/segprep/logs"
	defaultTrainRatio   = 0.7
	defaultValidRatio   = 0.2
	defaultTestRatio    = 0.1
	defaultMasksInput   = "masks"
	defaultMasksOutput  = "masks_normalized"
	defaultLabelsSubdir = "labels"
	defaultClassCount   = 6
	defaultWarnLimit    = 4
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
	defaultRetention    = 30

	// maxClassCount bounds class ids to the 8-bit mask value space.
	maxClassCount = 255
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SourceRoot: defaultSourceRoot,
			MergedDir:  defaultMergedDir,
			OutputDir:  defaultOutputDir,
			LogDir:     defaultLogDir,
		},
		Split: Split{
			Train: defaultTrainRatio,
			Valid: defaultValidRatio,
			Test:  defaultTestRatio,
		},
		Masks: Masks{
			InputSubdir:  defaultMasksInput,
			OutputSubdir: defaultMasksOutput,
			LabelsSubdir: defaultLabelsSubdir,
		},
		Classes: Classes{
			Count: defaultClassCount,
		},
		Merge: Merge{
			WarnLimit: defaultWarnLimit,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultRetention,
		},
	}
}
