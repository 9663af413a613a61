package main

import (
	"github.com/spf13/cobra"

	"segprep/internal/split"
)

func newSplitCommand(ctx *commandContext) *cobra.Command {
	var merged, output, ratios string
	var seed int64

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split the merged dataset into train/valid/test and write data.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			p := splitParams{
				merged:     firstNonEmpty(merged, cfg.Paths.MergedDir),
				output:     firstNonEmpty(output, cfg.Paths.OutputDir),
				ratios:     split.Ratios{Train: cfg.Split.Train, Valid: cfg.Split.Valid, Test: cfg.Split.Test},
				seed:       cfg.Split.Seed,
				classNames: cfg.ClassNames(),
			}
			if ratios != "" {
				parsed, err := split.ParseRatios(ratios)
				if err != nil {
					return err
				}
				p.ratios = parsed
			}
			if cmd.Flags().Changed("seed") {
				p.seed = seed
			}
			if err := p.ratios.Validate(); err != nil {
				return err
			}
			if err := split.CheckInputs(p.merged); err != nil {
				return err
			}

			run, err := ctx.beginStage("split", p.output)
			if err != nil {
				return err
			}
			defer run.end()

			result, err := runSplit(cmd.Context(), run, p)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}
			printSplitResult(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVar(&merged, "merged", "", "Merged dataset directory (default from config)")
	cmd.Flags().StringVar(&output, "output", "", "Output root; subsets go under <output>/data (default from config)")
	cmd.Flags().StringVar(&ratios, "ratios", "", "train,valid,test ratios, e.g. 0.7,0.2,0.1 (default from config)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Shuffle seed; 0 shuffles non-deterministically")
	return cmd
}
