package metadata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"stacks/internal/cache"
	"stacks/internal/logging"
	"stacks/internal/metadata/omdb"
	"stacks/internal/metadata/tmdb"
	"stacks/internal/services"
)

// Kind selects which provider catalog a title is resolved against.
type Kind string

const (
	KindMovie Kind = "movie"
	KindTV    Kind = "tv"
)

// Request names one title to resolve. Year is a hint from the parsed name
// and may be zero.
type Request struct {
	Title string
	Year  int
	Kind  Kind
}

// Resolution is a resolved record plus where it came from. FromCache lets
// the caller skip its inter-request delay when no network was touched.
type Resolution struct {
	Record    cache.MetadataEntry
	FromCache bool
}

const (
	defaultMaxAttempts  = 4
	defaultRetryBackoff = 5 * time.Second
)

// Resolver turns parsed titles into confirmed provider records. All state,
// including the cache and both provider clients, lives on the resolver so
// one is constructed per run and nothing leaks between runs.
type Resolver struct {
	primary      tmdb.Searcher
	secondary    omdb.Fetcher
	store        *cache.MetadataCache
	logger       *slog.Logger
	maxAttempts  int
	retryBackoff time.Duration
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRetryPolicy bounds the rate-limit retry loop: maxAttempts total
// tries, with the wait doubling from backoff between them.
func WithRetryPolicy(maxAttempts int, backoff time.Duration) Option {
	return func(r *Resolver) {
		if maxAttempts > 0 {
			r.maxAttempts = maxAttempts
		}
		if backoff > 0 {
			r.retryBackoff = backoff
		}
	}
}

// NewResolver builds a resolver over the given providers and cache.
// secondary may be nil when no fallback provider is configured; store may
// be nil, which keeps resolutions in memory for the run only.
func NewResolver(primary tmdb.Searcher, secondary omdb.Fetcher, store *cache.MetadataCache, logger *slog.Logger, opts ...Option) *Resolver {
	if logger == nil {
		logger = logging.NewNop()
	}
	if store == nil {
		store = cache.NewMetadataCache("", logger)
	}
	r := &Resolver{
		primary:      primary,
		secondary:    secondary,
		store:        store,
		logger:       logging.NewComponentLogger(logger, "resolver"),
		maxAttempts:  defaultMaxAttempts,
		retryBackoff: defaultRetryBackoff,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the provider record for a title. Cache hits return
// without touching the network. Live resolutions are cached and flushed
// before Resolve returns; not-found outcomes are never cached, so a title
// added to a provider later is found on the next run.
func (r *Resolver) Resolve(ctx context.Context, req Request) (Resolution, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return Resolution{}, services.Wrap(services.ErrValidation, "resolver", "resolve", "title must not be empty", nil)
	}
	if req.Kind == "" {
		req.Kind = KindMovie
	}

	logger := logging.WithContext(ctx, r.logger)
	key := cache.MetadataKey(title, req.Year)
	if entry, ok := r.store.Lookup(key); ok {
		logger.Debug("resolved from cache",
			logging.String(logging.FieldTitle, title),
			logging.String("key", key))
		return Resolution{Record: entry, FromCache: true}, nil
	}

	record, err := r.resolveLive(ctx, title, req)
	if err != nil {
		return Resolution{}, err
	}
	record.Key = key
	if err := r.store.Store(record); err != nil {
		return Resolution{}, services.Wrap(nil, "resolver", "cache store", "persist resolution", err)
	}
	logger.Info("resolved title",
		logging.String(logging.FieldTitle, record.Title),
		logging.Int("year", record.Year),
		logging.String(logging.FieldProvider, record.Provider))
	return Resolution{Record: record}, nil
}

func (r *Resolver) resolveLive(ctx context.Context, title string, req Request) (cache.MetadataEntry, error) {
	resp, err := r.searchPrimary(ctx, title, req.Year, req.Kind)
	if err != nil {
		if terminal(err) {
			return cache.MetadataEntry{}, err
		}
		logging.WithContext(ctx, r.logger).Warn("primary provider failed; trying fallback",
			logging.String(logging.FieldTitle, title),
			logging.Error(err))
		resp = nil
	}
	if resp != nil {
		if best := pickResult(resp.Results, req.Year); best != nil {
			return entryFromPrimary(*best, req.Kind), nil
		}
	}
	return r.resolveFallback(ctx, title, req)
}

// resolveFallback consults the secondary provider and, when it supplies a
// different canonical title, re-queries the primary with it. The secondary
// record itself is the answer of last resort.
func (r *Resolver) resolveFallback(ctx context.Context, title string, req Request) (cache.MetadataEntry, error) {
	if r.secondary == nil {
		return cache.MetadataEntry{}, r.notFound(title, req.Year)
	}
	logger := logging.WithContext(ctx, r.logger)
	alt, err := r.secondary.Lookup(ctx, title, req.Year)
	if err != nil {
		if !errors.Is(err, omdb.ErrNotFound) {
			logger.Warn("fallback provider failed",
				logging.String(logging.FieldTitle, title),
				logging.Error(err))
		}
		return cache.MetadataEntry{}, r.notFound(title, req.Year)
	}

	canonical := strings.TrimSpace(alt.Title)
	if canonical != "" && !strings.EqualFold(canonical, title) {
		logger.Debug("fallback produced canonical title; re-querying primary",
			logging.String(logging.FieldTitle, title),
			logging.String("canonical", canonical))
		resp, err := r.searchPrimary(ctx, canonical, req.Year, req.Kind)
		switch {
		case err != nil && terminal(err):
			return cache.MetadataEntry{}, err
		case err == nil:
			if best := pickResult(resp.Results, req.Year); best != nil {
				return entryFromPrimary(*best, req.Kind), nil
			}
		}
	}
	return entryFromFallback(*alt), nil
}

// searchPrimary runs one primary search, retrying only rate-limit refusals
// with a doubling backoff until the attempt budget is spent.
func (r *Resolver) searchPrimary(ctx context.Context, query string, year int, kind Kind) (*tmdb.Response, error) {
	opts := tmdb.SearchOptions{Year: year}
	backoff := r.retryBackoff
	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		var (
			resp *tmdb.Response
			err  error
		)
		if kind == KindTV {
			resp, err = r.primary.SearchTV(ctx, query, opts)
		} else {
			resp, err = r.primary.SearchMovie(ctx, query, opts)
		}
		if err == nil {
			return resp, nil
		}
		if !errors.Is(err, tmdb.ErrRateLimited) {
			return nil, err
		}
		lastErr = err
		if attempt == r.maxAttempts {
			break
		}
		logging.WithContext(ctx, r.logger).Warn("primary provider rate limited; backing off",
			logging.String("query", query),
			logging.Int("attempt", attempt),
			logging.Duration("backoff", backoff))
		if err := sleepContext(ctx, backoff); err != nil {
			return nil, err
		}
		backoff *= 2
	}
	return nil, &RateLimitError{Attempts: r.maxAttempts, Err: lastErr}
}

// terminal reports errors that must surface to the caller instead of
// triggering the fallback provider.
func terminal(err error) bool {
	var rle *RateLimitError
	return errors.As(err, &rle) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// pickResult prefers an exact year match on the release or first air date
// and otherwise takes the provider's first result.
func pickResult(results []tmdb.Result, year int) *tmdb.Result {
	if len(results) == 0 {
		return nil
	}
	if year > 0 {
		for i := range results {
			if results[i].ReleaseYear() == year {
				return &results[i]
			}
		}
	}
	return &results[0]
}

func entryFromPrimary(result tmdb.Result, kind Kind) cache.MetadataEntry {
	return cache.MetadataEntry{
		Title:      result.DisplayTitle(),
		Year:       result.ReleaseYear(),
		MediaType:  string(kind),
		Provider:   "tmdb",
		ProviderID: strconv.FormatInt(result.ID, 10),
		Raw:        result.Raw,
	}
}

func entryFromFallback(result omdb.Result) cache.MetadataEntry {
	return cache.MetadataEntry{
		Title:      strings.TrimSpace(result.Title),
		Year:       result.ReleaseYear(),
		MediaType:  result.MediaType(),
		Provider:   "omdb",
		ProviderID: strings.TrimSpace(result.IMDBID),
		Raw:        result.Raw,
	}
}

func (r *Resolver) notFound(title string, year int) error {
	detail := title
	if year > 0 {
		detail = fmt.Sprintf("%s (%d)", title, year)
	}
	return services.Wrap(services.ErrNotFound, "resolver", "resolve", detail, nil)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
