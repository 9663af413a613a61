// Package logging assembles structured slog loggers and formatting helpers used
// across segprep commands.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes run/stage tagging so every line of a batch job can be
// correlated. Progress reporting lives here too: terminals get progress bars,
// everything else gets sampled log lines.
//
// Prefer these constructors over hand-rolled slog setup so new stages emit
// data with the same shape as the rest of the tool.
package logging
