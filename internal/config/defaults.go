package config

const (
	defaultConfigPath         = "~/.config/reelchain/config.toml"
	defaultDataDir            = "~/.local/share/reelchain"
	defaultLogDir             = "~/.local/share/reelchain/logs"
	defaultTMDBBaseURL        = "https://api.themoviedb.org/3"
	defaultTMDBLanguage       = "en-US"
	defaultRequestTimeoutMS   = 5000
	defaultRequestsPerSecond  = 20
	defaultMaxRetries         = 3
	defaultBaseDelayMS        = 250
	defaultCreditsCapacity    = 128
	defaultLowestYear         = 1980
	defaultGenerationAttempts = 3
	defaultAPIBind            = "127.0.0.1:7490"
	defaultGeneratePerMinute  = 6
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultLogRetentionDays   = 30
)

// Documentary and TV Movie.
var defaultExcludedGenres = []int{99, 10770}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		TMDB: TMDB{
			BaseURL:           defaultTMDBBaseURL,
			Language:          defaultTMDBLanguage,
			RequestTimeoutMS:  defaultRequestTimeoutMS,
			RequestsPerSecond: defaultRequestsPerSecond,
			CircuitBreaker:    true,
		},
		Retry: Retry{
			MaxRetries:  defaultMaxRetries,
			BaseDelayMS: defaultBaseDelayMS,
		},
		Cache: Cache{
			CreditsCapacity: defaultCreditsCapacity,
		},
		Puzzle: Puzzle{
			LowestYear:         defaultLowestYear,
			ExcludedGenres:     append([]int(nil), defaultExcludedGenres...),
			GenerationAttempts: defaultGenerationAttempts,
		},
		Archive: Archive{
			Enabled: true,
		},
		API: API{
			Bind:              defaultAPIBind,
			GeneratePerMinute: defaultGeneratePerMinute,
			CORSOrigins:       []string{"*"},
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
