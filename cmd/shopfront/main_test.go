package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopfront/internal/config"
)

func resetGlobals(t *testing.T) {
	t.Helper()
	prevMgr, prevPath, prevURL := cfgMgr, configPath, apiURL
	cfgMgr = nil
	t.Cleanup(func() {
		cfgMgr, configPath, apiURL = prevMgr, prevPath, prevURL
	})
}

func TestLoadConfig_LoadsOnce(t *testing.T) {
	resetGlobals(t)
	configPath = filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("ui:\n  theme: dark\n"), 0o644))

	first, err := loadConfig()
	require.NoError(t, err)

	// The file changing between calls must not produce a second snapshot:
	// the logger and the UI share one Manager.
	require.NoError(t, os.WriteFile(configPath, []byte("ui:\n  theme: light\n"), 0o644))
	second, err := loadConfig()
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, "dark", second.Get().UI.Theme)
}

func TestResolveBaseURL_FlagWins(t *testing.T) {
	resetGlobals(t)
	cfg := config.Default()
	cfg.API.BaseURL = "http://file.example.com/api"

	apiURL = ""
	assert.Equal(t, "http://file.example.com/api", resolveBaseURL(cfg))

	apiURL = "http://flag.example.com/api"
	assert.Equal(t, "http://flag.example.com/api", resolveBaseURL(cfg))
	assert.Equal(t, "http://file.example.com/api", cfg.API.BaseURL,
		"the flag never mutates the shared snapshot")
}
