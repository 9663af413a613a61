package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"segprep/internal/dataset"
	"segprep/internal/labels"
	"segprep/internal/logging"
	"segprep/internal/masks"
	"segprep/internal/merge"
	"segprep/internal/preflight"
	"segprep/internal/split"
)

type pipelineResult struct {
	RunID     string        `json:"run_id"`
	Merge     merge.Result  `json:"merge"`
	Normalize masks.Result  `json:"normalize"`
	Labels    labels.Result `json:"labels"`
	Split     split.Result  `json:"split"`
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var seed int64

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run merge, normalize, labels and split using the configured layout",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			ratios := split.Ratios{Train: cfg.Split.Train, Valid: cfg.Split.Valid, Test: cfg.Split.Test}
			if err := ratios.Validate(); err != nil {
				return err
			}
			if failed := preflight.Failed(preflight.RunAll(cfg)); len(failed) > 0 {
				details := make([]string, 0, len(failed))
				for _, f := range failed {
					details = append(details, f.Name+": "+f.Detail)
				}
				return dataset.Wrap(dataset.ErrConfiguration, "run", "preflight", strings.Join(details, "; "), nil)
			}
			if cfg.Paths.MergedDir == cfg.Paths.OutputDir {
				return errors.New("merged_dir and output_dir must differ")
			}

			run, err := ctx.beginStage("run", cfg.Paths.MergedDir, cfg.Paths.OutputDir)
			if err != nil {
				return err
			}
			defer run.end()

			result := pipelineResult{RunID: run.id}
			goCtx := cmd.Context()

			result.Merge, err = runMerge(goCtx, run, mergeParams{
				sourceRoot: cfg.Paths.SourceRoot,
				target:     cfg.Paths.MergedDir,
				warnLimit:  cfg.Merge.WarnLimit,
			})
			if err != nil {
				return fmt.Errorf("merge: %w", err)
			}
			result.Normalize, err = runNormalize(goCtx, run, normalizeParams{
				input:     cfg.MasksInputDir(),
				output:    cfg.MasksOutputDir(),
				globalIDs: cfg.Masks.GlobalIDs,
			})
			if err != nil {
				return fmt.Errorf("normalize: %w", err)
			}
			result.Labels, err = runLabels(goCtx, run, labelsParams{
				masksDir:  cfg.MasksOutputDir(),
				labelsDir: cfg.LabelsDir(),
				classes:   cfg.Classes.Count,
			})
			if err != nil {
				return fmt.Errorf("labels: %w", err)
			}
			p := splitParams{
				merged:     cfg.Paths.MergedDir,
				output:     cfg.Paths.OutputDir,
				ratios:     ratios,
				seed:       cfg.Split.Seed,
				classNames: cfg.ClassNames(),
			}
			if cmd.Flags().Changed("seed") {
				p.seed = seed
			}
			result.Split, err = runSplit(goCtx, run, p)
			if err != nil {
				return fmt.Errorf("split: %w", err)
			}

			run.logger.Info("pipeline complete",
				logging.Int("pairs", result.Merge.Pairs),
				logging.Int("instances", result.Labels.Instances),
				logging.String("manifest", result.Split.Manifest),
			)
			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}
			out := cmd.OutOrStdout()
			printMergeResult(out, result.Merge)
			printNormalizeResult(out, result.Normalize, cfg.Masks.GlobalIDs)
			printLabelsResult(out, result.Labels)
			printSplitResult(out, result.Split)
			return nil
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 0, "Shuffle seed override; 0 shuffles non-deterministically")
	return cmd
}
