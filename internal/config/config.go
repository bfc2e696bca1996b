// Package config loads the application configuration from defaults, an
// optional YAML file, and SHOPFRONT_* environment overrides, with hot reload
// of the file while the application runs.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const envPrefix = "SHOPFRONT"

// Config is the full application configuration.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	UI      UIConfig      `mapstructure:"ui"`
	Storage StorageConfig `mapstructure:"storage"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// APIConfig points the client at the backend.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// UIConfig controls the terminal presentation.
type UIConfig struct {
	Theme string `mapstructure:"theme"` // "dark", "light", or "auto"
}

// StorageConfig locates local durable state (the session database).
type StorageConfig struct {
	Dir string `mapstructure:"dir"`
}

// LoggingConfig controls the file logger used by the interactive UI.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:8080/api",
			Timeout: 15 * time.Second,
		},
		UI:      UIConfig{Theme: "auto"},
		Storage: StorageConfig{Dir: ".shopfront"},
		Logging: LoggingConfig{Level: "info", File: ".shopfront/logs/shopfront.log"},
	}
}

// Validate checks for values the application cannot run with.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if _, err := url.Parse(c.API.BaseURL); err != nil {
		return fmt.Errorf("api.base_url is not a valid URL: %w", err)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	switch c.UI.Theme {
	case "dark", "light", "auto":
	default:
		return fmt.Errorf("ui.theme must be dark, light, or auto (got %q)", c.UI.Theme)
	}
	if c.Storage.Dir == "" {
		return fmt.Errorf("storage.dir is required")
	}
	return nil
}

// Manager wraps viper with thread-safe access and change notification. The
// config file is optional: when it does not exist, defaults plus environment
// overrides apply.
type Manager struct {
	mu          sync.RWMutex
	viper       *viper.Viper
	current     *Config
	subscribers []func(*Config)
}

// Load reads configuration from the given file path. An empty path or a
// missing file is not an error.
func Load(path string) (*Manager, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("api.base_url", def.API.BaseURL)
	v.SetDefault("api.timeout", def.API.Timeout)
	v.SetDefault("ui.theme", def.UI.Theme)
	v.SetDefault("storage.dir", def.Storage.Dir)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.file", def.Logging.File)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Manager{viper: v, current: cfg}, nil
}

// Get returns the current configuration snapshot.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Subscribe registers a callback invoked after every successful reload.
func (m *Manager) Subscribe(fn func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, fn)
}

// Watch enables hot reload of the config file. Updates that fail to parse or
// validate are ignored and the previous configuration stays active.
func (m *Manager) Watch() {
	m.viper.WatchConfig()
	m.viper.OnConfigChange(func(_ fsnotify.Event) {
		cfg := Default()
		if err := m.viper.Unmarshal(cfg); err != nil {
			return
		}
		if err := cfg.Validate(); err != nil {
			return
		}

		m.mu.Lock()
		m.current = cfg
		subs := make([]func(*Config), len(m.subscribers))
		copy(subs, m.subscribers)
		m.mu.Unlock()

		for _, fn := range subs {
			fn(cfg)
		}
	})
}
