package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// StoreConfig locates the durable store.
type StoreConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// AIConfig holds settings for the assistant integration.
type AIConfig struct {
	Model      string `mapstructure:"model" yaml:"model"`
	MaxTokens  int    `mapstructure:"max_tokens" yaml:"max_tokens"`
	TimeoutSec int    `mapstructure:"timeout_sec" yaml:"timeout_sec"`
	// BaseURL overrides the API endpoint. Empty means the public API.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
}

// ServerConfig holds settings for the local HTTP transport.
type ServerConfig struct {
	Addr           string   `mapstructure:"addr" yaml:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

// SyncConfig controls how often the board is refreshed from the store.
type SyncConfig struct {
	RefreshIntervalSec int `mapstructure:"refresh_interval_sec" yaml:"refresh_interval_sec"`
}

// LogConfig controls the log sink.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	Dir   string `mapstructure:"dir" yaml:"dir"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Store  StoreConfig  `mapstructure:"store" yaml:"store"`
	AI     AIConfig     `mapstructure:"ai" yaml:"ai"`
	Server ServerConfig `mapstructure:"server" yaml:"server"`
	Sync   SyncConfig   `mapstructure:"sync" yaml:"sync"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
}

const envPrefix = "SMARTTODO"

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/smarttodo/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(homeDir(), ".config", "smarttodo", "config.yaml")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// DefaultAppConfig returns the configuration used when no file exists.
func DefaultAppConfig() *AppConfig {
	home := homeDir()
	return &AppConfig{
		Store: StoreConfig{
			Path: filepath.Join(home, ".local", "share", "smarttodo", "smart-todo.db"),
		},
		AI: AIConfig{
			Model:      "claude-sonnet-4-20250514",
			MaxTokens:  1024,
			TimeoutSec: 60,
		},
		Server: ServerConfig{
			Addr:           "127.0.0.1:7878",
			AllowedOrigins: []string{"*"},
		},
		Sync: SyncConfig{RefreshIntervalSec: 5},
		Log: LogConfig{
			Level: "info",
			Dir:   filepath.Join(home, ".local", "state", "smarttodo"),
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Values may be overridden with SMARTTODO_* environment variables, e.g.
// SMARTTODO_STORE_PATH. If the file does not exist, defaults are used.
func LoadConfig(path string) (*AppConfig, error) {
	def := DefaultAppConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults so missing keys resolve to sensible values and so
	// AutomaticEnv knows every key.
	v.SetDefault("store.path", def.Store.Path)
	v.SetDefault("ai.model", def.AI.Model)
	v.SetDefault("ai.max_tokens", def.AI.MaxTokens)
	v.SetDefault("ai.timeout_sec", def.AI.TimeoutSec)
	v.SetDefault("ai.base_url", def.AI.BaseURL)
	v.SetDefault("server.addr", def.Server.Addr)
	v.SetDefault("server.allowed_origins", def.Server.AllowedOrigins)
	v.SetDefault("sync.refresh_interval_sec", def.Sync.RefreshIntervalSec)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.dir", def.Log.Dir)

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.AI.MaxTokens <= 0 {
		cfg.AI.MaxTokens = def.AI.MaxTokens
	}
	if cfg.AI.TimeoutSec <= 0 {
		cfg.AI.TimeoutSec = def.AI.TimeoutSec
	}
	if cfg.Sync.RefreshIntervalSec <= 0 {
		cfg.Sync.RefreshIntervalSec = def.Sync.RefreshIntervalSec
	}
	cfg.Store.Path = expandHome(cfg.Store.Path)
	cfg.Log.Dir = expandHome(cfg.Log.Dir)

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("store", cfg.Store)
	v.Set("ai", cfg.AI)
	v.Set("server", cfg.Server)
	v.Set("sync", cfg.Sync)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(p string) string {
	if p == "~" {
		return homeDir()
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(homeDir(), p[2:])
	}
	return p
}
