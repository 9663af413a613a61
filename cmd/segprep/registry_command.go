package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"segprep/internal/masks/registry"
)

func newRegistryCommand(ctx *commandContext) *cobra.Command {
	registryCmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect the global mask id registry",
	}
	registryCmd.AddCommand(newRegistryListCommand(ctx))
	return registryCmd
}

func newRegistryListCommand(ctx *commandContext) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every mask value and its shared id",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := firstNonEmpty(dbPath, filepath.Join(cfg.MasksOutputDir(), registry.FileName))
			reg, err := registry.OpenExisting(path)
			if err != nil {
				return err
			}
			defer reg.Close()

			entries, err := reg.Entries(cmd.Context())
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, entries)
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				created := ""
				if !e.CreatedAt.IsZero() {
					created = e.CreatedAt.Local().Format(time.DateTime)
				}
				rows = append(rows, []string{strconv.Itoa(int(e.Value)), strconv.Itoa(int(e.ID)), e.FirstSeen, created})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Value", "Id", "First seen", "Created"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Registry database (default <masks_normalized>/label_registry.db)")
	return cmd
}
