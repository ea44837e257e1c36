package config

const (
	defaultSourceDir      = "~/downloads/media"
	defaultLibraryDir     = "~/library"
	defaultCacheDir       = "~/.cache/stacks"
	defaultLogDir         = "~/.local/share/stacks/logs"
	defaultTMDBBaseURL    = "https://api.themoviedb.org/3"
	defaultTMDBLanguage   = "en-US"
	defaultOMDBBaseURL    = "https://www.omdbapi.com"
	defaultRequestDelay   = 3
	defaultRequestJitter  = 2
	defaultMaxRetries     = 4
	defaultRetryBackoff   = 5
	defaultWatchDir       = "~/downloads/drops"
	defaultQuarantineDir  = "~/downloads/drops/quarantine"
	defaultPollInterval   = 10
	defaultMinFileSizeMB  = 300
	defaultIngestAttempts = 3
	defaultIngestRetry    = 10
	defaultNotifyTimeout  = 10
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SourceDir:  defaultSourceDir,
			LibraryDir: defaultLibraryDir,
			CacheDir:   defaultCacheDir,
			LogDir:     defaultLogDir,
		},
		TMDB: TMDB{
			BaseURL:  defaultTMDBBaseURL,
			Language: defaultTMDBLanguage,
		},
		OMDB: OMDB{
			BaseURL: defaultOMDBBaseURL,
		},
		Organize: Organize{
			RequestDelay:  defaultRequestDelay,
			RequestJitter: defaultRequestJitter,
			MaxRetries:    defaultMaxRetries,
			RetryBackoff:  defaultRetryBackoff,
		},
		Ingest: Ingest{
			WatchDir:      defaultWatchDir,
			QuarantineDir: defaultQuarantineDir,
			PollInterval:  defaultPollInterval,
			MinFileSizeMB: defaultMinFileSizeMB,
			MaxAttempts:   defaultIngestAttempts,
			RetryDelay:    defaultIngestRetry,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			RunSummary:     true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
