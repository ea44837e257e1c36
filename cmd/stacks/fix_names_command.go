package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"stacks/internal/config"
	"stacks/internal/library"
)

func newFixNamesCommand(ctx *commandContext) *cobra.Command {
	var destDir string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "fix-names",
		Short: "Rename library entries that contain raw colons",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			root := cfg.Paths.LibraryDir
			if strings.TrimSpace(destDir) != "" {
				root, err = config.ExpandPath(destDir)
				if err != nil {
					return err
				}
			}

			logger, err := quietLogger(cfg)
			if err != nil {
				return err
			}

			renamer, err := library.NewRenamer(root, logger, library.WithRenameDryRun(dryRun))
			if err != nil {
				return err
			}

			results, err := renamer.FixNames()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(out, "No names need fixing")
				return nil
			}

			verb := "Renamed"
			if dryRun {
				verb = "Would rename"
			}
			fixed := 0
			for _, result := range results {
				switch {
				case result.Renamed || (dryRun && result.Detail == ""):
					fmt.Fprintf(out, "%s %s -> %s\n", verb, result.OldPath, result.NewPath)
					fixed++
				default:
					fmt.Fprintf(out, "Skipped %s (%s)\n", result.OldPath, result.Detail)
				}
			}
			fmt.Fprintf(out, "%d of %d entries fixed\n", fixed, len(results))
			return nil
		},
	}

	cmd.Flags().StringVar(&destDir, "dest", "", "Override the configured library directory")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List intended renames without touching the tree")

	return cmd
}
