package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DataConfig locates the data files behind the views.
type DataConfig struct {
	// Conferences is the YAML list of conference records.
	Conferences string `yaml:"conferences" json:"conferences"`
	// CSRankings and Core are the area CSV tables; either may be empty.
	CSRankings string `yaml:"csrankings" json:"csrankings"`
	Core       string `yaml:"core" json:"core"`
	// AcceptanceURL is the remote CSV with per-edition accepted/submitted
	// counts. Empty disables the merge.
	AcceptanceURL string `yaml:"acceptance_url" json:"acceptance_url"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA zone that decides which day is "today" on the
	// calendar. Deadlines themselves are always AoE.
	Timezone string `yaml:"timezone" json:"timezone"`

	// WeekStart controls the first column of calendar grids:
	//   - "sunday" (default)
	//   - "monday"
	WeekStart string `yaml:"week_start" json:"week_start"`

	// RefreshCron is a cron-style schedule for reloading the data files.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// DefaultSort is the sort key used when a request does not name one.
	DefaultSort string `yaml:"default_sort" json:"default_sort"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	Data DataConfig `yaml:"data" json:"data"`

	// CacheDir holds cached copies of remote data files.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// BasicAuth, if set, protects every endpoint except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

const (
	defaultListen     = "127.0.0.1:8080"
	defaultTimezone   = "UTC"
	defaultRefresh    = "*/30 * * * *"
	defaultSort       = "submission_deadline"
	defaultLogLevel   = "info"
	defaultCacheDir   = "./var/cache"
	defaultData       = "./data/conferences.yaml"
	defaultAcceptance = "https://raw.githubusercontent.com/emeryberger/csconferences/refs/heads/main/csconferences.csv"
)

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:      defaultListen,
		Timezone:    defaultTimezone,
		WeekStart:   "sunday",
		RefreshCron: defaultRefresh,
		DefaultSort: defaultSort,
		LogLevel:    defaultLogLevel,
		Data: DataConfig{
			Conferences:   defaultData,
			CSRankings:    "./data/csrankings_conferences.csv",
			Core:          "./data/core_conferences.csv",
			AcceptanceURL: defaultAcceptance,
		},
		CacheDir: defaultCacheDir,
	}
}

// Normalize fills in missing/zero values with defaults so that partially
// filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	switch c.WeekStart {
	case "monday", "sunday":
		// ok
	default:
		// Unknown value; fall back to sunday to avoid surprising layouts.
		c.WeekStart = "sunday"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = defaultRefresh
	}
	if c.DefaultSort == "" {
		c.DefaultSort = defaultSort
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.Data.Conferences == "" {
		c.Data.Conferences = defaultData
	}
	if c.CacheDir == "" {
		c.CacheDir = defaultCacheDir
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written with 0600
//     permissions and returned.
//   - Otherwise the YAML is decoded and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the configuration atomically (temp file + rename) with 0600
// permissions, creating the parent directory if needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".csconfs-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save is a convenience method delegating to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
