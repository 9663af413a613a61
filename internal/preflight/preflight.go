package preflight

import (
	"segprep/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll checks every configured directory. Inputs must exist; outputs only
// need a writable nearest existing ancestor.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	return []Result{
		CheckDirectoryAccess("Source root", cfg.Paths.SourceRoot),
		CheckWritableTarget("Merged directory", cfg.Paths.MergedDir),
		CheckWritableTarget("Output directory", cfg.Paths.OutputDir),
		CheckWritableTarget("Log directory", cfg.Paths.LogDir),
	}
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
