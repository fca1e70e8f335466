package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir    string `toml:"data_dir" validate:"required"`
	LogDir     string `toml:"log_dir" validate:"required"`
	ArchiveDir string `toml:"archive_dir"`
}

// TMDB contains configuration for The Movie Database API.
type TMDB struct {
	APIToken          string  `toml:"api_token"`
	APIKey            string  `toml:"api_key"`
	BaseURL           string  `toml:"base_url" validate:"required,url"`
	Language          string  `toml:"language"`
	RequestTimeoutMS  int     `toml:"request_timeout_ms" validate:"min=100,max=120000"`
	RequestsPerSecond float64 `toml:"requests_per_second" validate:"min=0"`
	CircuitBreaker    bool    `toml:"circuit_breaker"`
}

// Retry controls per-request backoff against TMDB.
type Retry struct {
	MaxRetries  int `toml:"max_retries" validate:"min=0,max=10"`
	BaseDelayMS int `toml:"base_delay_ms" validate:"min=0,max=60000"`
}

// Cache sizes the credits cache.
type Cache struct {
	CreditsCapacity int `toml:"credits_capacity" validate:"min=1"`
}

// Puzzle controls chain selection.
type Puzzle struct {
	LowestYear         int   `toml:"lowest_year" validate:"min=1874"`
	MinRuntime         int   `toml:"min_runtime" validate:"min=0,max=600"`
	ExcludedGenres     []int `toml:"excluded_genres" validate:"dive,min=1"`
	GenerationAttempts int   `toml:"generation_attempts" validate:"min=1,max=10"`
}

// Archive controls the JSON file archive of generated puzzles.
type Archive struct {
	Enabled bool `toml:"enabled"`
}

// API contains configuration for the HTTP daemon.
type API struct {
	Bind              string   `toml:"bind" validate:"required"`
	GeneratePerMinute int      `toml:"generate_per_minute" validate:"min=0"`
	CORSOrigins       []string `toml:"cors_origins"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format" validate:"oneof=console json"`
	Level         string `toml:"level" validate:"oneof=debug info warn error"`
	RetentionDays int    `toml:"retention_days" validate:"min=0"`
}

// Config encapsulates all configuration values for reelchain.
//
// Configuration sections by subsystem:
//   - Paths: data, log, and archive directories
//   - TMDB: metadata provider credentials and transport
//   - Retry: per-request backoff
//   - Cache: credits cache capacity
//   - Puzzle: year bounds, genre exclusions, runtime filter, attempts
//   - Archive: JSON file archive of generated puzzles
//   - API: daemon bind address and request limits
//   - Logging: log format, level, and retention
type Config struct {
	Paths   Paths   `toml:"paths"`
	TMDB    TMDB    `toml:"tmdb"`
	Retry   Retry   `toml:"retry"`
	Cache   Cache   `toml:"cache"`
	Puzzle  Puzzle  `toml:"puzzle"`
	Archive Archive `toml:"archive"`
	API     API     `toml:"api"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("reelchain.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data, log, and archive directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.DataDir, c.Paths.LogDir}
	if c.Archive.Enabled {
		dirs = append(dirs, c.Paths.ArchiveDir)
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the location of the SQLite puzzle database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "reelchain.db")
}

// LockPath returns the location of the daemon single-instance lock.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "reelchaind.lock")
}

// RequestTimeout returns the per-request TMDB transport timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.TMDB.RequestTimeoutMS) * time.Millisecond
}

// RetryBaseDelay returns the first backoff delay applied after a 5xx response.
func (c *Config) RetryBaseDelay() time.Duration {
	return time.Duration(c.Retry.BaseDelayMS) * time.Millisecond
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
