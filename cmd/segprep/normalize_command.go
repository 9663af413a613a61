package main

import (
	"github.com/spf13/cobra"
)

func newNormalizeCommand(ctx *commandContext) *cobra.Command {
	var input, output string
	var globalIDs bool

	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Rewrite mask values to contiguous ids",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			p := normalizeParams{
				input:     firstNonEmpty(input, cfg.MasksInputDir()),
				output:    firstNonEmpty(output, cfg.MasksOutputDir()),
				globalIDs: cfg.Masks.GlobalIDs,
			}
			if cmd.Flags().Changed("global-ids") {
				p.globalIDs = globalIDs
			}

			run, err := ctx.beginStage("normalize", p.output)
			if err != nil {
				return err
			}
			defer run.end()

			result, err := runNormalize(cmd.Context(), run, p)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}
			printNormalizeResult(cmd.OutOrStdout(), result, p.globalIDs)
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Directory of mask rasters (default <merged>/masks)")
	cmd.Flags().StringVar(&output, "output", "", "Directory for normalized masks (default <merged>/masks_normalized)")
	cmd.Flags().BoolVar(&globalIDs, "global-ids", false, "Share one value->id registry across all masks")
	return cmd
}
