package main

import (
	"github.com/spf13/cobra"
)

func newMergeCommand(ctx *commandContext) *cobra.Command {
	var sourceRoot, target string
	var warnLimit int

	cmd := &cobra.Command{
		Use:   "merge [SOURCE...]",
		Short: "Merge source datasets into one images/masks tree",
		Long: "Copy every source's images/ and masks/ into the target, prefixing file names with the source directory name.\n" +
			"Without SOURCE arguments every sub-directory of the source root (except the target) is merged.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			p := mergeParams{
				sources:    args,
				sourceRoot: firstNonEmpty(sourceRoot, cfg.Paths.SourceRoot),
				target:     firstNonEmpty(target, cfg.Paths.MergedDir),
				warnLimit:  cfg.Merge.WarnLimit,
			}
			if cmd.Flags().Changed("warn-limit") {
				p.warnLimit = warnLimit
			}

			run, err := ctx.beginStage("merge", p.target)
			if err != nil {
				return err
			}
			defer run.end()

			result, err := runMerge(cmd.Context(), run, p)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}
			printMergeResult(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceRoot, "source-root", "", "Directory whose sub-directories are merged (default from config)")
	cmd.Flags().StringVar(&target, "target", "", "Merged dataset directory (default from config)")
	cmd.Flags().IntVar(&warnLimit, "warn-limit", 0, "Missing-mask warnings to print; 0 disables per-file warnings (default from config)")
	return cmd
}
