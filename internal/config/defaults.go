package config

const (
	defaultDataDir              = "~/.local/share/mediaranker"
	defaultLogDir               = "~/.local/share/mediaranker/logs"
	defaultAPIBind              = "127.0.0.1:7488"
	defaultTMDBBaseURL          = "https://api.themoviedb.org/3"
	defaultTMDBImageBaseURL     = "https://image.tmdb.org/t/p/w500"
	defaultTMDBPlaceholderImage = "https://via.placeholder.com/120x180/333/666?text=No+Image"
	defaultTMDBLanguage         = "en-US"
	defaultTMDBRequestTimeout   = 10
	defaultSearchDebounceMillis = 300
	defaultSearchMinQueryLength = 2
	defaultSearchResultLimit    = 5
	defaultPersonCreditLimit    = 3
	defaultStorageLockTimeout   = 5
	defaultExportFileName       = "media-ranker-export.json"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		TMDB: TMDB{
			BaseURL:          defaultTMDBBaseURL,
			ImageBaseURL:     defaultTMDBImageBaseURL,
			PlaceholderImage: defaultTMDBPlaceholderImage,
			Language:         defaultTMDBLanguage,
			RequestTimeout:   defaultTMDBRequestTimeout,
		},
		Search: Search{
			DebounceMillis:    defaultSearchDebounceMillis,
			MinQueryLength:    defaultSearchMinQueryLength,
			ResultLimit:       defaultSearchResultLimit,
			PersonCreditLimit: defaultPersonCreditLimit,
		},
		Storage: Storage{
			LockTimeout: defaultStorageLockTimeout,
		},
		Export: Export{
			FileName: defaultExportFileName,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
