package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/everstacklabs/modelsync/internal/copilot"
)

// Config holds all configuration for modelsync.
type Config struct {
	BaseURL      string  `mapstructure:"base_url"`
	StudioURL    string  `mapstructure:"studio_url"`
	Editor       string  `mapstructure:"editor"`
	SettingsPath string  `mapstructure:"settings_path"`
	ManagedKey   string  `mapstructure:"managed_key"`
	CacheDir     string  `mapstructure:"cache_dir"`
	CacheTTL     string  `mapstructure:"cache_ttl"`
	NoCache      bool    `mapstructure:"no_cache"`
	HTTPTimeout  string  `mapstructure:"http_timeout"`
	RateLimit    float64 `mapstructure:"rate_limit"`
	AssumeYes    bool    `mapstructure:"assume_yes"`
	LogLevel     string  `mapstructure:"log_level"`
}

// Load reads configuration from file, environment, and defaults.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("base_url", "http://localhost:3000/v1")
	v.SetDefault("studio_url", "")
	v.SetDefault("editor", "")
	v.SetDefault("settings_path", "")
	v.SetDefault("managed_key", copilot.ManagedKey)
	v.SetDefault("cache_dir", defaultCacheDir())
	v.SetDefault("cache_ttl", "10m")
	v.SetDefault("no_cache", false)
	v.SetDefault("http_timeout", "30s")
	v.SetDefault("rate_limit", 4.0)
	v.SetDefault("assume_yes", false)
	v.SetDefault("log_level", "info")

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/modelsync")
	}

	// Environment variables
	v.SetEnvPrefix("MODELSYNC")
	v.AutomaticEnv()

	_ = v.BindEnv("base_url", "MODELSYNC_BASE_URL")
	_ = v.BindEnv("studio_url", "MODELSYNC_STUDIO_URL")
	_ = v.BindEnv("settings_path", "MODELSYNC_SETTINGS_PATH")
	_ = v.BindEnv("no_cache", "MODELSYNC_NO_CACHE")
	_ = v.BindEnv("log_level", "MODELSYNC_LOG_LEVEL")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.Editor != "" && cfg.SettingsPath != "" {
		return nil, fmt.Errorf("editor and settings_path are mutually exclusive")
	}

	return &cfg, nil
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "modelsync-cache")
	}
	return filepath.Join(home, ".cache", "modelsync")
}
