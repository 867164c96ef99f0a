package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/Chabota512/forge-drift/internal/constants"
)

// Config holds all application configuration
type Config struct {
	Storage StorageConfig `toml:"storage"`
	Drift   DriftConfig   `toml:"drift"`
	Backend BackendConfig `toml:"backend"`
	AI      AIConfig      `toml:"ai"`
	Backup  BackupConfig  `toml:"backup"`
}

// StorageConfig selects where schedules and drift events live: a sqlite
// file path, a postgres:// DSN, or the literal "backend" for the local
// sidecar.
type StorageConfig struct {
	Path string `toml:"path"`
}

// DriftConfig holds the drift engine's tunables
type DriftConfig struct {
	ThresholdMinutes int `toml:"threshold_minutes"`
	SurfaceDelayMs   int `toml:"surface_delay_ms"`
	SuccessCloseMs   int `toml:"success_close_ms"`
	PollIntervalSecs int `toml:"poll_interval_secs"`
}

// BackendConfig holds sidecar connection settings
type BackendConfig struct {
	LockPath         string `toml:"lock_path"`
	RequestTimeoutMs int    `toml:"request_timeout_ms"`
}

// AIConfig selects the re-planner backend
type AIConfig struct {
	Provider string `toml:"provider"` // "sidecar", "gemini", or "local"
	Model    string `toml:"model"`
}

// BackupConfig holds backup retention settings
type BackupConfig struct {
	MaxBackups int `toml:"max_backups"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Path: constants.DefaultConfigPath,
		},
		Drift: DriftConfig{
			ThresholdMinutes: constants.DriftThresholdMin,
			SurfaceDelayMs:   int(constants.DriftSurfaceDelay / time.Millisecond),
			SuccessCloseMs:   int(constants.SuccessCloseDelay / time.Millisecond),
			PollIntervalSecs: int(constants.TrackerPollInterval / time.Second),
		},
		Backend: BackendConfig{
			RequestTimeoutMs: int(constants.RequestTimeout / time.Millisecond),
		},
		AI: AIConfig{
			Provider: "sidecar",
			Model:    "gemini-2.5-flash",
		},
		Backup: BackupConfig{
			MaxBackups: constants.MaxBackups,
		},
	}
}

// Load reads configuration from a TOML file, falling back to defaults
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.Storage.Path = ExpandPath(cfg.Storage.Path)
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.Storage.Path = ExpandPath(cfg.Storage.Path)
	cfg.Backend.LockPath = ExpandPath(cfg.Backend.LockPath)

	return cfg, nil
}

// Save writes the configuration to a TOML file, creating parent directories
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// SurfaceDelay returns the tracker's presentation delay as a duration
func (c *Config) SurfaceDelay() time.Duration {
	return time.Duration(c.Drift.SurfaceDelayMs) * time.Millisecond
}

// SuccessCloseDelay returns the auto-close delay of the success screen
func (c *Config) SuccessCloseDelay() time.Duration {
	return time.Duration(c.Drift.SuccessCloseMs) * time.Millisecond
}

// RequestTimeout returns the read-path timeout for backend calls
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Backend.RequestTimeoutMs) * time.Millisecond
}

// PollInterval returns the idle tracker re-evaluation cadence
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Drift.PollIntervalSecs) * time.Second
}

// ExpandPath expands ~ to the user's home directory
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// Dir returns the application config directory
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", constants.AppName)
}

// DefaultConfigPath returns the default config file location
func DefaultConfigPath() string {
	return filepath.Join(Dir(), constants.ConfigFileName)
}
