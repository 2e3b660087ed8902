package app

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/shhac/interfere/internal/httpclient"
	"github.com/shhac/interfere/internal/storage"
)

// Theme preferences accepted by the theme setting.
const (
	ThemeSystem = "system"
	ThemeLight  = "light"
	ThemeDark   = "dark"
)

// Config holds application-wide configuration.
type Config struct {
	// Debug enables debug logging and additional diagnostics
	Debug bool `mapstructure:"debug"`

	// StoragePath is the directory holding the database and logs config.
	// Empty means storage.DefaultStoragePath().
	StoragePath string `mapstructure:"storage_path"`

	// DBFile overrides the database location. Relative paths resolve
	// against StoragePath.
	DBFile string `mapstructure:"db_file"`

	// Timeout bounds a single request
	Timeout time.Duration `mapstructure:"timeout"`

	// Theme is one of system, light or dark
	Theme string `mapstructure:"theme"`

	// ConfigFile is the file the settings were read from, if any
	ConfigFile string `mapstructure:"-"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Timeout: httpclient.DefaultTimeout,
		Theme:   ThemeSystem,
	}
}

// LoadConfig reads configuration from defaults, an optional config.yaml and
// INTERFERE_* environment variables, in increasing priority. Flags bound to v
// by the caller win over all of them.
func LoadConfig(configPath string, v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.New()
	}

	setDefaults(v)

	v.SetEnvPrefix("INTERFERE")
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir := v.GetString("storage_path"); dir != "" {
			v.AddConfigPath(dir)
		} else if dir, err := storage.DefaultStoragePath(); err == nil {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("debug", d.Debug)
	v.SetDefault("storage_path", d.StoragePath)
	v.SetDefault("db_file", d.DBFile)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("theme", d.Theme)
}

// Validate checks the values LoadConfig cannot coerce.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	switch c.Theme {
	case ThemeSystem, ThemeLight, ThemeDark:
	default:
		return fmt.Errorf("unknown theme %q (want system, light or dark)", c.Theme)
	}
	return nil
}

// ResolveStoragePath returns StoragePath or the per-user default.
func (c *Config) ResolveStoragePath() (string, error) {
	if c.StoragePath != "" {
		return c.StoragePath, nil
	}
	return storage.DefaultStoragePath()
}

// DatabasePath returns where the history database lives.
func (c *Config) DatabasePath() (string, error) {
	if c.DBFile != "" && filepath.IsAbs(c.DBFile) {
		return c.DBFile, nil
	}
	dir, err := c.ResolveStoragePath()
	if err != nil {
		return "", fmt.Errorf("failed to determine storage path: %w", err)
	}
	if c.DBFile != "" {
		return filepath.Join(dir, c.DBFile), nil
	}
	return filepath.Join(dir, storage.DatabaseFileName), nil
}
