package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"stacks/internal/cache"
	"stacks/internal/config"
	"stacks/internal/library"
	"stacks/internal/logging"
	"stacks/internal/metadata"
	"stacks/internal/metadata/omdb"
	"stacks/internal/metadata/tmdb"
	"stacks/internal/notifications"
	"stacks/internal/organizer"
	"stacks/internal/release"
)

func newOrganizeCommand(ctx *commandContext) *cobra.Command {
	var (
		sourceDir  string
		destDir    string
		mediaType  string
		language   string
		delay      int
		jitter     int
		dryRun     bool
		clearCache bool
	)

	cmd := &cobra.Command{
		Use:   "organize",
		Short: "Scan the source tree and link releases into the library",
		Long: `Walk the configured source directory, resolve every video release
against the metadata providers, and materialize symlinks in the canonical
library layout. Files already linked are skipped, so repeat runs are cheap.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			// Flag overrides apply to a copy so the shared config keeps the
			// file-backed view.
			runCfg := *cfg
			if strings.TrimSpace(sourceDir) != "" {
				expanded, err := config.ExpandPath(sourceDir)
				if err != nil {
					return err
				}
				runCfg.Paths.SourceDir = expanded
			}
			if strings.TrimSpace(destDir) != "" {
				expanded, err := config.ExpandPath(destDir)
				if err != nil {
					return err
				}
				runCfg.Paths.LibraryDir = expanded
			}
			if cmd.Flags().Changed("delay") {
				runCfg.Organize.RequestDelay = delay
			}
			if cmd.Flags().Changed("jitter") {
				runCfg.Organize.RequestJitter = jitter
			}
			if strings.TrimSpace(language) != "" {
				runCfg.TMDB.Language = language
			}
			if dryRun {
				runCfg.Organize.DryRun = true
			}

			policy, err := release.ParsePolicy(mediaType)
			if err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(&runCfg)
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			notifier := notifications.NewService(&runCfg)
			summary, err := runOrganize(runCtx, &runCfg, policy, clearCache, logger)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					_ = notifier.NotifyError(context.Background(), err, "organize")
				}
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderOrganizeSummary(summary))
			_ = notifier.NotifyRunCompleted(context.Background(), summary.Placed(), summary.Skipped(), summary.Elapsed)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&sourceDir, "source", "", "Override the configured source directory")
	flags.StringVar(&destDir, "dest", "", "Override the configured library directory")
	flags.StringVarP(&mediaType, "type", "t", "auto", "Naming policy: auto, movie, or series")
	flags.StringVar(&language, "language", "", "Metadata language override (ISO 639-1 code)")
	flags.IntVar(&delay, "delay", 0, "Seconds to wait between provider lookups")
	flags.IntVar(&jitter, "jitter", 0, "Extra random seconds added to each delay")
	flags.BoolVar(&dryRun, "dry-run", false, "Log intended links without touching the library")
	flags.BoolVar(&clearCache, "clear-cache", false, "Drop cached metadata before the run")

	return cmd
}

// runOrganize assembles the pipeline from configuration and runs it once.
func runOrganize(ctx context.Context, cfg *config.Config, policy release.Policy, clearCache bool, logger *slog.Logger) (organizer.Summary, error) {
	primary, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language)
	if err != nil {
		return organizer.Summary{}, err
	}

	var secondary omdb.Fetcher
	if strings.TrimSpace(cfg.OMDB.APIKey) != "" {
		fallback, err := omdb.New(cfg.OMDB.APIKey, cfg.OMDB.BaseURL)
		if err != nil {
			return organizer.Summary{}, err
		}
		secondary = fallback
	}

	metaCache := cache.NewMetadataCache(cfg.MetadataCachePath(), logger)
	if clearCache {
		if err := metaCache.Clear(); err != nil {
			return organizer.Summary{}, err
		}
	}
	links := cache.NewLinkCache(cfg.LinkCachePath(), logger)

	resolver := metadata.NewResolver(primary, secondary, metaCache, logger,
		metadata.WithRetryPolicy(cfg.Organize.MaxRetries, time.Duration(cfg.Organize.RetryBackoff)*time.Second))

	materializer, err := library.NewMaterializer(cfg.Paths.LibraryDir, links, logger,
		library.WithDryRun(cfg.Organize.DryRun))
	if err != nil {
		return organizer.Summary{}, err
	}

	runner, err := organizer.NewRunner(release.NewParser(policy), resolver, materializer, logger,
		organizer.WithPacing(
			time.Duration(cfg.Organize.RequestDelay)*time.Second,
			time.Duration(cfg.Organize.RequestJitter)*time.Second),
		organizer.WithLockPath(cfg.LockPath()))
	if err != nil {
		return organizer.Summary{}, err
	}

	return runner.Run(ctx, cfg.Paths.SourceDir)
}

func renderOrganizeSummary(sum organizer.Summary) string {
	rows := [][]string{
		{"Scanned", strconv.Itoa(sum.Scanned)},
		{"Linked", strconv.Itoa(sum.Linked)},
		{"Already linked", strconv.Itoa(sum.Cached + sum.Existing)},
		{"Dry run", strconv.Itoa(sum.DryRun)},
		{"Unparsable", strconv.Itoa(sum.Unparsable)},
		{"Specials skipped", strconv.Itoa(sum.Specials)},
		{"Not found", strconv.Itoa(sum.NotFound)},
		{"Rate limited", strconv.Itoa(sum.RateLimited)},
		{"Failed", strconv.Itoa(sum.Failed)},
	}
	table := renderTable([]string{"Outcome", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
	return fmt.Sprintf("%s\nPlaced %d, skipped %d in %s",
		table, sum.Placed(), sum.Skipped(), sum.Elapsed.Round(time.Millisecond))
}
