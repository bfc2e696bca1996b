package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	mgr, err := Load("")
	require.NoError(t, err)

	cfg := mgr.Get()
	assert.Equal(t, "http://localhost:8080/api", cfg.API.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.API.Timeout)
	assert.Equal(t, "auto", cfg.UI.Theme)
	assert.Equal(t, ".shopfront", cfg.Storage.Dir)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	mgr, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "auto", mgr.Get().UI.Theme)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  base_url: https://shop.example.com/api
  timeout: 30s
ui:
  theme: dark
storage:
  dir: /var/lib/shopfront
`), 0o644))

	mgr, err := Load(path)
	require.NoError(t, err)

	cfg := mgr.Get()
	assert.Equal(t, "https://shop.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, "dark", cfg.UI.Theme)
	assert.Equal(t, "/var/lib/shopfront", cfg.Storage.Dir)
	// Values the file omits keep their defaults.
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SHOPFRONT_API_BASE_URL", "http://env.example.com/api")
	t.Setenv("SHOPFRONT_UI_THEME", "light")

	mgr, err := Load("")
	require.NoError(t, err)

	cfg := mgr.Get()
	assert.Equal(t, "http://env.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, "light", cfg.UI.Theme)
}

func TestLoad_RejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ui:\n  theme: neon\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ui.theme")
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(c *Config) {}, ""},
		{"empty base url", func(c *Config) { c.API.BaseURL = "" }, "api.base_url"},
		{"zero timeout", func(c *Config) { c.API.Timeout = 0 }, "api.timeout"},
		{"negative timeout", func(c *Config) { c.API.Timeout = -time.Second }, "api.timeout"},
		{"bad theme", func(c *Config) { c.UI.Theme = "sepia" }, "ui.theme"},
		{"empty storage dir", func(c *Config) { c.Storage.Dir = "" }, "storage.dir"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
			}
		})
	}
}

func TestWatch_ReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ui:\n  theme: dark\n"), 0o644))

	mgr, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "dark", mgr.Get().UI.Theme)

	reloaded := make(chan *Config, 1)
	mgr.Subscribe(func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})
	mgr.Watch()

	require.NoError(t, os.WriteFile(path, []byte("ui:\n  theme: light\n"), 0o644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, "light", cfg.UI.Theme)
		assert.Equal(t, "light", mgr.Get().UI.Theme)
	case <-time.After(5 * time.Second):
		t.Fatal("config change was not observed")
	}
}

func TestWatch_IgnoresInvalidUpdate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ui:\n  theme: dark\n"), 0o644))

	mgr, err := Load(path)
	require.NoError(t, err)
	mgr.Watch()

	// An update that fails validation must leave the previous config active.
	require.NoError(t, os.WriteFile(path, []byte("ui:\n  theme: neon\n"), 0o644))
	time.Sleep(500 * time.Millisecond)

	assert.Equal(t, "dark", mgr.Get().UI.Theme)
}
