package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"segprep/internal/labels"
	"segprep/internal/masks"
	"segprep/internal/masks/registry"
	"segprep/internal/merge"
	"segprep/internal/split"
)

// Each helper below runs one stage with fully resolved parameters. They are
// shared by the single-stage commands and by "run".

type mergeParams struct {
	sources    []string
	sourceRoot string
	target     string
	// warnLimit follows merge.warn_limit: 0 prints no per-file warnings.
	warnLimit int
}

func runMerge(ctx context.Context, run *stageRun, p mergeParams) (merge.Result, error) {
	sources := p.sources
	if len(sources) == 0 {
		discovered, err := merge.DiscoverSources(p.sourceRoot, filepath.Base(p.target))
		if err != nil {
			return merge.Result{}, err
		}
		sources = discovered
	}
	limit := p.warnLimit
	switch {
	case limit == 0:
		limit = merge.NoWarnings
	case limit < 0:
		limit = merge.DefaultWarnLimit
	}
	m := &merge.Merger{
		WarnLimit: limit,
		Logger:    run.forStage("merge"),
		Progress:  run.progress,
	}
	return m.Run(ctx, sources, p.target)
}

type normalizeParams struct {
	input     string
	output    string
	globalIDs bool
}

func runNormalize(ctx context.Context, run *stageRun, p normalizeParams) (masks.Result, error) {
	n := &masks.Normalizer{
		Logger:   run.forStage("normalize"),
		Progress: run.progress,
	}
	if p.globalIDs {
		reg, err := registry.Open(filepath.Join(p.output, registry.FileName))
		if err != nil {
			return masks.Result{}, err
		}
		defer reg.Close()
		n.Registry = reg
	}
	return n.Run(ctx, p.input, p.output)
}

type labelsParams struct {
	masksDir  string
	labelsDir string
	classes   int
}

func runLabels(ctx context.Context, run *stageRun, p labelsParams) (labels.Result, error) {
	c := &labels.Converter{
		Classes:  p.classes,
		Logger:   run.forStage("labels"),
		Progress: run.progress,
	}
	return c.Run(ctx, p.masksDir, p.labelsDir)
}

type splitParams struct {
	merged     string
	output     string
	ratios     split.Ratios
	seed       int64
	classNames []string
}

func runSplit(ctx context.Context, run *stageRun, p splitParams) (split.Result, error) {
	s := &split.Splitter{
		Ratios:     p.ratios,
		ClassNames: p.classNames,
		Logger:     run.forStage("split"),
		Progress:   run.progress,
	}
	if p.seed != 0 {
		s.Rand = split.NewRand(p.seed)
	}
	return s.Run(ctx, p.merged, p.output)
}

func printMergeResult(w io.Writer, r merge.Result) {
	rows := make([][]string, 0, len(r.PerSource)+1)
	for _, s := range r.PerSource {
		rows = append(rows, []string{s.Name, strconv.Itoa(s.Images), strconv.Itoa(s.Pairs), strconv.Itoa(s.MissingMasks)})
	}
	rows = append(rows, []string{"total", strconv.Itoa(r.Images), strconv.Itoa(r.Pairs), strconv.Itoa(r.MissingMasks)})
	fmt.Fprintln(w, "Merge")
	fmt.Fprintln(w, renderTable(
		[]string{"Source", "Images", "Pairs", "Missing masks"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
	))
	if len(r.Skipped) > 0 {
		fmt.Fprintf(w, "Skipped (missing images/ or masks/): %s\n", strings.Join(r.Skipped, ", "))
	}
	if len(r.Empty) > 0 {
		fmt.Fprintf(w, "Empty image directories: %s\n", strings.Join(r.Empty, ", "))
	}
	for _, group := range r.LookAlike {
		fmt.Fprintf(w, "Look-alike source names (kept apart): %s\n", strings.Join(group, ", "))
	}
}

func printNormalizeResult(w io.Writer, r masks.Result, globalIDs bool) {
	mode := "per file"
	if globalIDs {
		mode = "global registry"
	}
	renderSummary(w, "Normalize", [][2]string{
		{"Masks processed", strconv.Itoa(r.Processed())},
		{"Background only", strconv.Itoa(len(r.Background))},
		{"Id mode", mode},
	})
}

func printLabelsResult(w io.Writer, r labels.Result) {
	renderSummary(w, "Labels", [][2]string{
		{"Masks converted", strconv.Itoa(r.Masks)},
		{"Instances", strconv.Itoa(r.Instances)},
		{"Masks without instances", strconv.Itoa(len(r.Empty))},
		{"Values without a class", strconv.Itoa(len(r.Unknown))},
	})
}

func printSplitResult(w io.Writer, r split.Result) {
	renderSummary(w, "Split", [][2]string{
		{"Train", strconv.Itoa(r.Train)},
		{"Valid", strconv.Itoa(r.Valid)},
		{"Test", strconv.Itoa(r.Test)},
		{"Total", strconv.Itoa(r.Total)},
		{"Missing labels", strconv.Itoa(len(r.MissingLabels))},
		{"Manifest", r.Manifest},
	})
}
