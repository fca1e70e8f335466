package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeTMDB(); err != nil {
		return err
	}
	if err := c.normalizePuzzle(); err != nil {
		return err
	}
	c.normalizeAPI()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.DataDir, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ArchiveDir) == "" {
		c.Paths.ArchiveDir = filepath.Join(c.Paths.DataDir, "puzzles")
	}
	if c.Paths.ArchiveDir, err = expandPath(c.Paths.ArchiveDir); err != nil {
		return fmt.Errorf("paths.archive_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTMDB() error {
	c.TMDB.APIToken = strings.TrimSpace(c.TMDB.APIToken)
	if c.TMDB.APIToken == "" {
		if value, ok := os.LookupEnv("TMDB_API_TOKEN"); ok {
			c.TMDB.APIToken = strings.TrimSpace(value)
		}
	}
	c.TMDB.APIKey = strings.TrimSpace(c.TMDB.APIKey)
	if c.TMDB.APIKey == "" {
		if value, ok := os.LookupEnv("TMDB_API_KEY"); ok {
			c.TMDB.APIKey = strings.TrimSpace(value)
		}
	}
	c.TMDB.BaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.BaseURL), "/")
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}
	c.TMDB.Language = strings.TrimSpace(c.TMDB.Language)
	if value, ok := os.LookupEnv("TMDB_REQUEST_TIMEOUT_MS"); ok && strings.TrimSpace(value) != "" {
		parsed, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("TMDB_REQUEST_TIMEOUT_MS: %w", err)
		}
		c.TMDB.RequestTimeoutMS = parsed
	}
	if c.TMDB.RequestTimeoutMS == 0 {
		c.TMDB.RequestTimeoutMS = defaultRequestTimeoutMS
	}
	return nil
}

func (c *Config) normalizePuzzle() error {
	if value, ok := os.LookupEnv("LOWEST_YEAR"); ok && strings.TrimSpace(value) != "" {
		parsed, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("LOWEST_YEAR: %w", err)
		}
		c.Puzzle.LowestYear = parsed
	}
	if c.Puzzle.LowestYear == 0 {
		c.Puzzle.LowestYear = defaultLowestYear
	}
	if c.Puzzle.ExcludedGenres == nil {
		c.Puzzle.ExcludedGenres = append([]int(nil), defaultExcludedGenres...)
	}
	slices.Sort(c.Puzzle.ExcludedGenres)
	c.Puzzle.ExcludedGenres = slices.Compact(c.Puzzle.ExcludedGenres)
	if c.Puzzle.GenerationAttempts == 0 {
		c.Puzzle.GenerationAttempts = defaultGenerationAttempts
	}
	if c.Cache.CreditsCapacity == 0 {
		c.Cache.CreditsCapacity = defaultCreditsCapacity
	}
	return nil
}

func (c *Config) normalizeAPI() {
	c.API.Bind = strings.TrimSpace(c.API.Bind)
	if c.API.Bind == "" {
		c.API.Bind = defaultAPIBind
	}
	origins := c.API.CORSOrigins[:0]
	for _, origin := range c.API.CORSOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	c.API.CORSOrigins = origins
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.Level == "warning" {
		c.Logging.Level = "warn"
	}
}
