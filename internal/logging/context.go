package logging

import "log/slog"

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID identifies one command invocation across every log line it emits.
	FieldRunID = "run_id"
	// FieldStage names the pipeline stage (merge, normalize, labels, split).
	FieldStage = "stage"
	// FieldEventType classifies a log line for filtering.
	FieldEventType = "event_type"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldSource names the dataset source directory being processed.
	FieldSource = "source"
	// FieldFile names the file being processed.
	FieldFile = "file"
)

// WithRun returns a logger tagged with the run id and, when set, the stage.
func WithRun(logger *slog.Logger, runID, stage string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	attrs := make([]any, 0, 2)
	if runID != "" {
		attrs = append(attrs, String(FieldRunID, runID))
	}
	if stage != "" {
		attrs = append(attrs, String(FieldStage, stage))
	}
	if len(attrs) == 0 {
		return logger
	}
	return logger.With(attrs...)
}
