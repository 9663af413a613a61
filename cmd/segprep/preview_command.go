package main

import (
	"errors"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"segprep/internal/dataset"
	"segprep/internal/preview"
)

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	var imagePath, labelsPath, output string
	var names []string
	var fontSize float64

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Draw an image's label polygons over it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if imagePath == "" || output == "" {
				return errors.New("--image and --output are required")
			}
			if labelsPath == "" {
				labelsPath = filepath.Join(cfg.LabelsDir(), dataset.Stem(imagePath)+dataset.LabelExt)
			}
			if len(names) == 0 {
				names = cfg.ClassNames()
			}

			result, err := preview.Run(imagePath, labelsPath, output, preview.Options{Names: names, FontSize: fontSize})
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}
			renderSummary(cmd.OutOrStdout(), "Preview", [][2]string{
				{"Instances", strconv.Itoa(result.Instances)},
				{"Output", result.Output},
			})
			return nil
		},
	}

	cmd.Flags().StringVar(&imagePath, "image", "", "Image to draw on")
	cmd.Flags().StringVar(&labelsPath, "labels", "", "Label file (default <labels dir>/<image stem>.txt)")
	cmd.Flags().StringVar(&output, "output", "", "Rendered image path")
	cmd.Flags().StringSliceVar(&names, "names", nil, "Class names by index (default from config)")
	cmd.Flags().Float64Var(&fontSize, "font-size", 0, "Label font size in points (default 12)")
	return cmd
}
