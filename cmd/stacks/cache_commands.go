package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"stacks/internal/cache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the metadata and link caches",
	}

	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache entry counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := quietLogger(cfg)
			if err != nil {
				return err
			}

			metaCache := cache.NewMetadataCache(cfg.MetadataCachePath(), logger)
			links := cache.NewLinkCache(cfg.LinkCachePath(), logger)

			rows := [][]string{
				{"Metadata", strconv.Itoa(metaCache.Count()), metaCache.Path()},
				{"Links", strconv.Itoa(links.Count()), links.Path()},
			}
			table := renderTable([]string{"Cache", "Entries", "Path"}, rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft})
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	var clearMetadata bool
	var clearLinks bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Drop cache entries",
		Long: `Drop cached entries. With no flags both caches are cleared; pass
--metadata or --links to clear just one. Clearing the link cache makes the
next organize run re-verify every library entry.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := quietLogger(cfg)
			if err != nil {
				return err
			}

			// No selector means both.
			all := !clearMetadata && !clearLinks
			out := cmd.OutOrStdout()

			if all || clearMetadata {
				metaCache := cache.NewMetadataCache(cfg.MetadataCachePath(), logger)
				count := metaCache.Count()
				if err := metaCache.Clear(); err != nil {
					return err
				}
				fmt.Fprintf(out, "Cleared %d metadata entries\n", count)
			}
			if all || clearLinks {
				links := cache.NewLinkCache(cfg.LinkCachePath(), logger)
				count := links.Count()
				if err := links.Clear(); err != nil {
					return err
				}
				fmt.Fprintf(out, "Cleared %d link entries\n", count)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&clearMetadata, "metadata", false, "Clear only the metadata cache")
	cmd.Flags().BoolVar(&clearLinks, "links", false, "Clear only the link cache")

	return cmd
}
