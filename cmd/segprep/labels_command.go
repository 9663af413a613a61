package main

import (
	"github.com/spf13/cobra"
)

func newLabelsCommand(ctx *commandContext) *cobra.Command {
	var masksDir, output string
	var classes int

	cmd := &cobra.Command{
		Use:   "labels",
		Short: "Convert normalized masks into polygon label files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			p := labelsParams{
				masksDir:  firstNonEmpty(masksDir, cfg.MasksOutputDir()),
				labelsDir: firstNonEmpty(output, cfg.LabelsDir()),
				classes:   cfg.Classes.Count,
			}
			if cmd.Flags().Changed("classes") {
				p.classes = classes
			}

			run, err := ctx.beginStage("labels", p.labelsDir)
			if err != nil {
				return err
			}
			defer run.end()

			result, err := runLabels(cmd.Context(), run, p)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}
			printLabelsResult(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVar(&masksDir, "masks", "", "Directory of normalized masks (default <merged>/masks_normalized)")
	cmd.Flags().StringVar(&output, "output", "", "Directory for label files (default <merged>/labels)")
	cmd.Flags().IntVar(&classes, "classes", 0, "Number of classes (default from config)")
	return cmd
}
