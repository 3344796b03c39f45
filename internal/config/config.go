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

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Sonarr contains the library catalog connection and add-request settings.
type Sonarr struct {
	Address                  string `toml:"address"`
	APIKey                   string `toml:"api_key"`
	RootFolderPath           string `toml:"root_folder_path"`
	QualityProfileID         int    `toml:"quality_profile_id"`
	MetadataProfileID        int    `toml:"metadata_profile_id"`
	SearchForMissingEpisodes bool   `toml:"search_for_missing_episodes"`
	DryRun                   bool   `toml:"dry_run"`
}

// TMDB contains configuration for The Movie Database API (recommendations).
type TMDB struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// TVDB contains configuration for TheTVDB v4 API (identity lookups).
type TVDB struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// Discovery contains the recommendation quality filters and match policy.
type Discovery struct {
	MinimumRating       float64 `toml:"minimum_rating"`
	MinimumVotes        int     `toml:"minimum_votes"`
	LanguageChoice      string  `toml:"language_choice"`
	FallbackToTopResult bool    `toml:"fallback_to_top_result"`
	// MatchPolicy selects how the identity resolver combines title and year
	// scores: "literal" or "year_required".
	MatchPolicy string `toml:"match_policy"`
	SampleSize  int    `toml:"sample_size"`
}

// Network contains settings shared by every outbound HTTP client.
type Network struct {
	// RequestTimeout is the per-request timeout in seconds.
	RequestTimeout float64 `toml:"request_timeout"`
}

// Server contains the web surface bind address.
type Server struct {
	Bind string `toml:"bind"`
}

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for SonaShow.
//
// Configuration sections by subsystem:
//   - Sonarr: owned library listing and add requests
//   - TMDB: recommendation source
//   - TVDB: identity directory used to resolve series IDs
//   - Discovery: rating/vote/language filters and match policy
//   - Network: outbound request timeout
//   - Server: web surface bind address
//   - Paths: data directory (lock file, id cache, logs)
//   - Notifications: optional ntfy push notifications
//   - Logging: log format and level
type Config struct {
	Sonarr        Sonarr        `toml:"sonarr"`
	TMDB          TMDB          `toml:"tmdb"`
	TVDB          TVDB          `toml:"tvdb"`
	Discovery     Discovery     `toml:"discovery"`
	Network       Network       `toml:"network"`
	Server        Server        `toml:"server"`
	Paths         Paths         `toml:"paths"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/sonashow/config.toml")
}

// Load locates, parses, and validates a configuration file. Values resolve in
// the order environment, then file, then defaults. A .env file in the working
// directory is read first but never overrides variables already set.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, "", false, fmt.Errorf("load .env: %w", err)
	}

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

	if err := cfg.applyEnvironment(); err != nil {
		return nil, "", false, err
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

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("sonashow.toml")
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

// Save writes the configuration to path as TOML, creating parent directories.
func (c *Config) Save(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("config path is empty")
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// EnsureDirectories creates the data directory used for the lock file, caches, and logs.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.LogDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LogDir returns the directory holding log files.
func (c *Config) LogDir() string {
	return filepath.Join(c.Paths.DataDir, "logs")
}

// LockPath returns the single-instance lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "sonashow.lock")
}

// IDCachePath returns the sqlite database caching resolved series IDs.
func (c *Config) IDCachePath() string {
	return filepath.Join(c.Paths.DataDir, "idcache.db")
}

// RequestTimeout returns the outbound HTTP timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Network.RequestTimeout * float64(time.Second))
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
