package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"stacks/internal/config"
	"stacks/internal/debrid"
	"stacks/internal/fileutil"
	"stacks/internal/logging"
	"stacks/internal/notifications"
	"stacks/internal/services"
	"stacks/internal/textutil"
)

// ErrNoSelectableFiles marks a torrent whose member listing held nothing
// worth fetching. Treated like a service rejection: the item goes straight
// to quarantine.
var ErrNoSelectableFiles = errors.New("no selectable member files")

const (
	selectionPollAttempts = 10
	selectionPollDelay    = 2 * time.Second
)

// Watcher polls the drop folder, uploads discovered torrents and magnets
// to the debrid service, and quarantines anything the service or the
// selection heuristics refuse.
type Watcher struct {
	store    *Store
	uploader debrid.Uploader
	notifier notifications.Service
	logger   *slog.Logger

	watchDir      string
	quarantineDir string
	pollInterval  time.Duration
	minBytes      int64
	maxAttempts   int
	retryDelay    time.Duration

	sleep func(context.Context, time.Duration)
	move  func(src, dst string) error

	mu      sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewWatcher builds the drop-folder watcher from configuration.
func NewWatcher(cfg *config.Config, store *Store, uploader debrid.Uploader, notifier notifications.Service, logger *slog.Logger) (*Watcher, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrValidation, "ingest", "new", "config is required", nil)
	}
	if store == nil {
		return nil, services.Wrap(services.ErrValidation, "ingest", "new", "store is required", nil)
	}
	if uploader == nil {
		return nil, services.Wrap(services.ErrValidation, "ingest", "new", "debrid uploader is required", nil)
	}
	watchDir := strings.TrimSpace(cfg.Ingest.WatchDir)
	if watchDir == "" {
		return nil, services.Wrap(services.ErrConfiguration, "ingest", "new", "watch directory is not configured", nil)
	}
	quarantineDir := strings.TrimSpace(cfg.Ingest.QuarantineDir)
	if quarantineDir == "" {
		return nil, services.Wrap(services.ErrConfiguration, "ingest", "new", "quarantine directory is not configured", nil)
	}

	poll := time.Duration(cfg.Ingest.PollInterval) * time.Second
	if poll <= 0 {
		poll = 10 * time.Second
	}
	maxAttempts := cfg.Ingest.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	retryDelay := time.Duration(cfg.Ingest.RetryDelay) * time.Second
	if retryDelay <= 0 {
		retryDelay = 10 * time.Second
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}

	return &Watcher{
		store:         store,
		uploader:      uploader,
		notifier:      notifier,
		logger:        logging.NewComponentLogger(logger, "ingest"),
		watchDir:      watchDir,
		quarantineDir: quarantineDir,
		pollInterval:  poll,
		minBytes:      int64(cfg.Ingest.MinFileSizeMB) * 1024 * 1024,
		maxAttempts:   maxAttempts,
		retryDelay:    retryDelay,
		sleep:         sleepContext,
		move:          fileutil.MoveFile,
	}, nil
}

// Start launches the poll loop. Items left uploading by a previous run are
// rolled back to pending first so they are retried.
func (w *Watcher) Start(ctx context.Context) error {
	if w == nil {
		return errors.New("watcher unavailable")
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return errors.New("watcher already running")
	}

	if reset, err := w.store.ResetStuck(ctx); err != nil {
		return services.Wrap(services.ErrTransient, "ingest", "start", "reset interrupted items", err)
	} else if reset > 0 {
		w.logger.Info("re-queued interrupted items", logging.Int64("count", reset))
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.ctx = runCtx
	w.cancel = cancel
	w.running = true

	w.wg.Add(1)
	go w.loop()
	return nil
}

// Stop cancels the poll loop and waits for the in-flight pass to finish.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	cancel := w.cancel
	w.running = false
	w.cancel = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	w.pass(w.ctx)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.pass(w.ctx)
		}
	}
}

// pass runs one poll cycle: discover new drop files, then drain the
// pending queue.
func (w *Watcher) pass(ctx context.Context) {
	if ctx == nil || ctx.Err() != nil {
		return
	}
	if err := w.scan(ctx); err != nil {
		w.logger.Warn("drop folder scan failed; will retry", logging.Error(err))
	}
	w.drain(ctx)
}

func (w *Watcher) scan(ctx context.Context) error {
	entries, err := os.ReadDir(w.watchDir)
	if err != nil {
		return fmt.Errorf("read watch directory: %w", err)
	}
	for _, entry := range entries {
		if ctx.Err() != nil {
			return nil
		}
		if entry.IsDir() {
			continue
		}
		kind, ok := KindForPath(entry.Name())
		if !ok {
			continue
		}
		path := filepath.Join(w.watchDir, entry.Name())
		active, err := w.store.FindActive(ctx, path)
		if err != nil {
			return err
		}
		if active != nil {
			continue
		}
		item, err := w.store.Enqueue(ctx, path, kind)
		if err != nil {
			return err
		}
		w.logger.Info("queued drop file",
			logging.Int64(logging.FieldItemID, item.ID),
			logging.String(logging.FieldFile, item.Name()),
			logging.String("kind", string(kind)),
		)
	}
	return nil
}

func (w *Watcher) drain(ctx context.Context) {
	for ctx.Err() == nil {
		item, err := w.store.NextPending(ctx)
		if err != nil {
			w.logger.Warn("reading pending queue failed", logging.Error(err))
			return
		}
		if item == nil {
			return
		}
		w.process(ctx, item)
	}
}

// process runs one upload attempt for an item and settles its next state:
// completed, back to pending with a backoff pause, or quarantined.
func (w *Watcher) process(ctx context.Context, item *Item) {
	ctx = services.WithItemID(ctx, item.ID)
	ctx = services.WithFile(ctx, item.Name())
	logger := logging.WithContext(ctx, w.logger)

	item.Status = StatusUploading
	if err := w.store.Update(ctx, item); err != nil {
		logger.Warn("marking item uploading failed", logging.Error(err))
		return
	}

	err := w.upload(ctx, item)
	if err == nil {
		item.Status = StatusCompleted
		item.ErrorMessage = ""
		if updateErr := w.store.Update(ctx, item); updateErr != nil {
			logger.Warn("marking item completed failed", logging.Error(updateErr))
		}
		if removeErr := os.Remove(item.SourcePath); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
			logger.Warn("removing ingested drop file failed", logging.Error(removeErr))
		}
		logger.Info("ingest completed",
			logging.String("torrent_id", item.TorrentID),
			logging.Int("files_selected", item.FilesSelected),
		)
		if notifyErr := w.notifier.NotifyIngestCompleted(ctx, item.Name(), item.FilesSelected); notifyErr != nil {
			logger.Warn("ingest notification failed", logging.Error(notifyErr))
		}
		return
	}

	if ctx.Err() != nil {
		// Shutdown mid-upload: leave the item uploading so ResetStuck
		// re-queues it on the next start.
		return
	}

	item.Attempts++
	item.ErrorMessage = err.Error()

	rejected := errors.Is(err, debrid.ErrRejected) || errors.Is(err, ErrNoSelectableFiles)
	if rejected || item.Attempts >= w.maxAttempts {
		w.quarantine(ctx, item, logger)
		return
	}

	item.Status = StatusPending
	if updateErr := w.store.Update(ctx, item); updateErr != nil {
		logger.Warn("re-queueing item failed", logging.Error(updateErr))
		return
	}
	backoff := time.Duration(item.Attempts) * w.retryDelay
	logger.Warn("upload failed; backing off",
		logging.Error(err),
		logging.Int("attempt", item.Attempts),
		logging.Duration("backoff", backoff),
	)
	w.sleep(ctx, backoff)
}

// upload pushes one drop file to the debrid service and selects its member
// files. On success the item carries the torrent id and selection count.
func (w *Watcher) upload(ctx context.Context, item *Item) error {
	added, err := w.add(ctx, item)
	if err != nil {
		return err
	}
	item.TorrentID = added.ID

	info, err := w.awaitSelection(ctx, added.ID)
	if err != nil {
		return err
	}

	if info.Status == debrid.StatusDownloaded {
		// Already cached on the service side; nothing left to select.
		item.FilesSelected = countSelected(info.Files)
		return nil
	}

	selected := SelectFiles(info.Files, w.minBytes)
	if len(selected) == 0 {
		return fmt.Errorf("%w: %d member files, none selectable", ErrNoSelectableFiles, len(info.Files))
	}
	if err := w.uploader.SelectFiles(ctx, added.ID, FileIDs(selected)); err != nil {
		return err
	}
	item.FilesSelected = len(selected)
	return nil
}

func (w *Watcher) add(ctx context.Context, item *Item) (debrid.Torrent, error) {
	switch item.Kind {
	case KindTorrent:
		data, err := os.ReadFile(item.SourcePath)
		if err != nil {
			return debrid.Torrent{}, fmt.Errorf("read drop file: %w", err)
		}
		return w.uploader.AddTorrent(ctx, item.Name(), data)
	case KindMagnet, KindText:
		magnet, err := readMagnetLink(item.SourcePath)
		if err != nil {
			return debrid.Torrent{}, err
		}
		return w.uploader.AddMagnet(ctx, magnet)
	}
	return debrid.Torrent{}, fmt.Errorf("%w: unsupported kind %q", debrid.ErrRejected, item.Kind)
}

// awaitSelection polls the service until the torrent is inspected and
// waiting for a file selection.
func (w *Watcher) awaitSelection(ctx context.Context, torrentID string) (debrid.Info, error) {
	var info debrid.Info
	for attempt := 0; attempt < selectionPollAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return info, err
		}
		current, err := w.uploader.Info(ctx, torrentID)
		if err != nil {
			return info, err
		}
		info = current
		if info.Failed() {
			return info, fmt.Errorf("%w: service reports status %q", debrid.ErrRejected, info.Status)
		}
		if info.SelectionReady() || info.Status == debrid.StatusDownloaded {
			return info, nil
		}
		w.sleep(ctx, selectionPollDelay)
	}
	return info, fmt.Errorf("torrent %s not ready for selection after %d checks", torrentID, selectionPollAttempts)
}

// quarantine moves the drop file into a per-item folder under the
// quarantine directory and marks the row terminal.
func (w *Watcher) quarantine(ctx context.Context, item *Item, logger *slog.Logger) {
	stem := strings.TrimSuffix(item.Name(), filepath.Ext(item.Name()))
	folder := filepath.Join(w.quarantineDir, textutil.SanitizeToken(stem))
	target := filepath.Join(folder, item.Name())
	if _, err := os.Lstat(target); err == nil {
		target = filepath.Join(folder, fmt.Sprintf("%d-%s", item.ID, item.Name()))
	}

	if err := w.move(item.SourcePath, target); err != nil {
		logger.Error("quarantine move failed", logging.Error(err))
		item.ErrorMessage = fmt.Sprintf("%s (quarantine move failed: %v)", item.ErrorMessage, err)
	}

	item.Status = StatusQuarantined
	if err := w.store.Update(ctx, item); err != nil {
		logger.Warn("marking item quarantined failed", logging.Error(err))
	}
	logger.Warn("item quarantined",
		logging.Int("attempt", item.Attempts),
		logging.String("reason", item.ErrorMessage),
	)
	if err := w.notifier.NotifyIngestQuarantined(ctx, item.Name(), item.ErrorMessage); err != nil {
		logger.Warn("quarantine notification failed", logging.Error(err))
	}
}

// readMagnetLink extracts the first magnet URI from a drop file.
func readMagnetLink(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read drop file: %w", err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "magnet:") {
			return line, nil
		}
	}
	return "", fmt.Errorf("%w: no magnet link in drop file", debrid.ErrRejected)
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
