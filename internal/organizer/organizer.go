package organizer

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"stacks/internal/cache"
	"stacks/internal/library"
	"stacks/internal/logging"
	"stacks/internal/metadata"
	"stacks/internal/release"
	"stacks/internal/services"
)

// videoExtensions is the fixed set of extensions the source walk considers.
var videoExtensions = map[string]struct{}{
	".mkv":  {},
	".mp4":  {},
	".avi":  {},
	".m4v":  {},
	".mov":  {},
	".wmv":  {},
	".flv":  {},
	".webm": {},
	".ts":   {},
	".m2ts": {},
}

// Resolver resolves a parsed release to a canonical metadata record.
type Resolver interface {
	Resolve(ctx context.Context, req metadata.Request) (metadata.Resolution, error)
}

// Materializer places a resolved release into the library tree.
type Materializer interface {
	Materialize(sourcePath string, rel release.Release, record cache.MetadataEntry) (library.LinkResult, error)
}

// Summary aggregates the outcome of one organize run.
type Summary struct {
	RunID       string
	Scanned     int
	Linked      int
	Cached      int
	Existing    int
	DryRun      int
	Unparsable  int
	Specials    int
	NotFound    int
	RateLimited int
	Failed      int
	Elapsed     time.Duration
}

// Placed returns the number of files that ended up with a library entry,
// whether created now, recorded earlier, or previewed in dry-run mode.
func (s Summary) Placed() int {
	return s.Linked + s.Cached + s.Existing + s.DryRun
}

// Skipped returns the number of files that produced no library entry.
func (s Summary) Skipped() int {
	return s.Unparsable + s.Specials + s.NotFound + s.RateLimited + s.Failed
}

// Runner drives the organize pipeline: walk the source tree, parse each
// release name, resolve it against the metadata providers, and materialize
// the library link. Files are processed strictly sequentially so provider
// calls stay paced and no title is resolved twice in flight.
type Runner struct {
	parser   *release.Parser
	resolver Resolver
	library  Materializer
	logger   *slog.Logger

	delay    time.Duration
	jitter   time.Duration
	lockPath string

	rand  *rand.Rand
	sleep func(context.Context, time.Duration)
}

// Option configures a Runner.
type Option func(*Runner)

// WithPacing sets the delay owed after each resolution that touched the
// network, plus a random jitter window added on top.
func WithPacing(delay, jitter time.Duration) Option {
	return func(r *Runner) {
		r.delay = delay
		r.jitter = jitter
	}
}

// WithLockPath enables a cross-process file lock acquired for the duration
// of a run. An empty path leaves locking to the caller.
func WithLockPath(path string) Option {
	return func(r *Runner) { r.lockPath = path }
}

// NewRunner constructs a Runner from its pipeline stages.
func NewRunner(parser *release.Parser, resolver Resolver, materializer Materializer, logger *slog.Logger, opts ...Option) (*Runner, error) {
	if parser == nil || resolver == nil || materializer == nil {
		return nil, services.Wrap(services.ErrValidation, "organizer", "new", "parser, resolver, and materializer are required", nil)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Runner{
		parser:   parser,
		resolver: resolver,
		library:  materializer,
		logger:   logging.NewComponentLogger(logger, "organizer"),
		rand:     rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run walks the source tree and processes every video file in directory-walk
// order. Per-file errors are counted and logged but never abort the batch;
// only an unreadable source root, a held instance lock, or cancellation do.
func (r *Runner) Run(ctx context.Context, source string) (Summary, error) {
	summary := Summary{RunID: uuid.NewString()}
	ctx = services.WithRunID(ctx, summary.RunID)
	logger := r.logger.With(logging.String(logging.FieldRunID, summary.RunID))

	source = strings.TrimSpace(source)
	if source == "" {
		return summary, services.Wrap(services.ErrValidation, "organizer", "run", "source root is required", nil)
	}
	info, err := os.Stat(source)
	if err != nil {
		return summary, services.Wrap(services.ErrConfiguration, "organizer", "run", "source root is not readable", err)
	}
	if !info.IsDir() {
		return summary, services.Wrap(services.ErrConfiguration, "organizer", "run", "source root is not a directory", nil)
	}

	if r.lockPath != "" {
		lock := flock.New(r.lockPath)
		ok, err := lock.TryLock()
		if err != nil {
			return summary, services.Wrap(services.ErrConfiguration, "organizer", "run", "acquire instance lock", err)
		}
		if !ok {
			return summary, services.Wrap(services.ErrConfiguration, "organizer", "run", "another stacks instance holds the lock", nil)
		}
		defer func() {
			if err := lock.Unlock(); err != nil {
				logger.Warn("failed to release instance lock", logging.Error(err))
			}
		}()
	}

	start := time.Now()
	logger.Info("organize run starting", logging.String("source", source))

	walkErr := filepath.WalkDir(source, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == source {
				return services.Wrap(services.ErrConfiguration, "organizer", "run", "read source root", err)
			}
			logger.Warn("skipping unreadable entry",
				logging.String(logging.FieldFile, path),
				logging.Error(err))
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := videoExtensions[strings.ToLower(filepath.Ext(path))]; !ok {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		summary.Scanned++
		out := r.process(ctx, path)
		if out.err != nil && (errors.Is(out.err, context.Canceled) || errors.Is(out.err, context.DeadlineExceeded)) {
			return out.err
		}
		r.record(&summary, logger, path, out)
		if out.network {
			r.pause(ctx)
		}
		return nil
	})

	summary.Elapsed = time.Since(start)
	if walkErr != nil {
		return summary, walkErr
	}

	logger.Info("organize run finished",
		logging.Int("scanned", summary.Scanned),
		logging.Int("linked", summary.Linked),
		logging.Int("placed", summary.Placed()),
		logging.Int("skipped", summary.Skipped()),
		logging.Duration("elapsed", summary.Elapsed))
	return summary, nil
}

// outcome carries the per-file result plus whether the resolution touched
// the network, which decides if the pacing delay is owed.
type outcome struct {
	status  library.LinkStatus
	err     error
	network bool
}

func (r *Runner) process(ctx context.Context, path string) outcome {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	ctx = services.WithFile(ctx, base)

	rel, err := r.parser.Parse(stem, filepath.Dir(path))
	if err != nil {
		return outcome{err: err}
	}

	kind := metadata.KindMovie
	if rel.IsSeries() {
		kind = metadata.KindTV
	}
	res, err := r.resolver.Resolve(ctx, metadata.Request{Title: rel.RawTitle, Year: rel.Year, Kind: kind})
	if err != nil {
		return outcome{err: err, network: true}
	}

	result, err := r.library.Materialize(path, rel, res.Record)
	if err != nil {
		return outcome{err: err, network: !res.FromCache}
	}
	return outcome{status: result.Status, network: !res.FromCache}
}

func (r *Runner) record(summary *Summary, logger *slog.Logger, path string, out outcome) {
	fileAttr := logging.String(logging.FieldFile, filepath.Base(path))

	if out.err == nil {
		switch out.status {
		case library.StatusLinked:
			summary.Linked++
		case library.StatusCached:
			summary.Cached++
		case library.StatusExists:
			summary.Existing++
		case library.StatusDryRun:
			summary.DryRun++
		}
		return
	}

	var rateLimit *metadata.RateLimitError
	switch {
	case errors.Is(out.err, release.ErrSkippedSpecial):
		summary.Specials++
		logger.Info("skipping season zero special", fileAttr)
	case errors.Is(out.err, release.ErrUnparsable):
		summary.Unparsable++
		logger.Warn("cannot parse release name", fileAttr)
	case errors.As(out.err, &rateLimit):
		summary.RateLimited++
		logger.Warn("provider rate limit exhausted", fileAttr, logging.Error(out.err))
	case errors.Is(out.err, services.ErrNotFound):
		summary.NotFound++
		logger.Warn("no metadata match", fileAttr)
	default:
		summary.Failed++
		logger.Warn("failed to organize file", fileAttr, logging.Error(out.err))
	}
}

// pause sleeps the pacing delay plus jitter. Called only after resolutions
// that hit the network; cache hits owe nothing.
func (r *Runner) pause(ctx context.Context) {
	delay := r.delay
	if r.jitter > 0 {
		delay += time.Duration(r.rand.Int63n(int64(r.jitter)))
	}
	if delay <= 0 {
		return
	}
	r.sleep(ctx, delay)
}

func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
