package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofrs/flock"

	"stacks/internal/config"
	"stacks/internal/debrid"
	"stacks/internal/ingest"
	"stacks/internal/logging"
	"stacks/internal/notifications"
	"stacks/internal/preflight"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if !cfg.Ingest.Enabled {
		log.Fatalf("ingest is disabled; set ingest.enabled = true in the config file")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	lock := flock.New(cfg.DaemonLockPath())
	held, err := lock.TryLock()
	if err != nil {
		logger.Error("acquire daemon lock", logging.Error(err))
		os.Exit(1)
	}
	if !held {
		logger.Error("another stacksd instance holds the lock",
			logging.String("lock", cfg.DaemonLockPath()))
		os.Exit(1)
	}
	defer lock.Unlock() //nolint:errcheck

	if err := runIngestPreflight(ctx, cfg, logger); err != nil {
		logger.Error("startup aborted", logging.Error(err))
		os.Exit(1)
	}

	watcher, store, err := buildWatcher(cfg, logger)
	if err != nil {
		logger.Error("create watcher", logging.Error(err))
		os.Exit(1)
	}
	defer store.Close()

	logStartupState(ctx, cfg, store, logger)

	if err := watcher.Start(ctx); err != nil {
		logger.Error("start watcher", logging.Error(err))
		os.Exit(1)
	}

	<-ctx.Done()
	watcher.Stop()
	logger.Info("stacksd shutting down")
}

func buildWatcher(cfg *config.Config, logger *slog.Logger) (*ingest.Watcher, *ingest.Store, error) {
	uploader, err := debrid.New(cfg.Ingest.DebridToken, cfg.Ingest.DebridBaseURL)
	if err != nil {
		return nil, nil, err
	}

	store, err := ingest.Open(cfg)
	if err != nil {
		return nil, nil, err
	}

	watcher, err := ingest.NewWatcher(cfg, store, uploader, notifications.NewService(cfg), logger)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return watcher, store, nil
}

// runIngestPreflight verifies the watch and quarantine directories and the
// debrid endpoint before the poll loop starts. All failures are reported at
// once so a misconfigured host needs only one restart to fix.
func runIngestPreflight(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	var failures []string
	for _, result := range preflight.RunIngest(ctx, cfg) {
		if result.Passed {
			logger.Info("preflight check passed",
				logging.String("check", result.Name),
				logging.String("detail", result.Detail))
			continue
		}
		logger.Error("preflight check failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail))
		failures = append(failures, fmt.Sprintf("%s: %s", result.Name, result.Detail))
	}
	if len(failures) > 0 {
		return fmt.Errorf("preflight checks failed: %s", strings.Join(failures, "; "))
	}
	return nil
}

// logStartupState records what the daemon found in the queue so operators
// can tell a clean start from one resuming interrupted work.
func logStartupState(ctx context.Context, cfg *config.Config, store *ingest.Store, logger *slog.Logger) {
	counts, err := store.Counts(ctx)
	if err != nil {
		logger.Warn("read queue counts", logging.Error(err))
		return
	}
	attrs := []logging.Attr{
		logging.String("watch_dir", cfg.Ingest.WatchDir),
		logging.Int("poll_interval_s", cfg.Ingest.PollInterval),
	}
	for _, status := range ingest.AllStatuses() {
		if count := counts[status]; count > 0 {
			attrs = append(attrs, logging.Int(string(status), count))
		}
	}
	logger.Info("stacksd starting", logging.Args(attrs...)...)
}
