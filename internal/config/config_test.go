// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "engine.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_FileValuesAndRelativePaths(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := writeConfig(t, dir, `{
		"allowedDomains": ["edu.org"],
		"blockedDomains": ["paywalled.example"],
		"maxDownloadSizeMb": 5,
		"userAgent": "test-agent/1.0",
		"rateLimit": {"requestsPerDomainPerMinute": 60},
		"discovery": {"minScore": 7.5},
		"storage": {
			"databasePath": "db/resources.db",
			"rawHtmlDir": "raw/html",
			"rawPdfDir": "raw/pdf",
			"extractedTextDir": "text",
			"discoveryDir": "discovery",
			"blueprintDir": "blueprints"
		}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"edu.org"}, cfg.AllowedDomains)
	assert.Equal(t, []string{"paywalled.example"}, cfg.BlockedDomains)
	assert.Equal(t, 5, cfg.MaxDownloadSizeMB)
	assert.Equal(t, "test-agent/1.0", cfg.UserAgent)
	assert.Equal(t, 60, cfg.RateLimit.RequestsPerDomainPerMinute)
	assert.InDelta(t, 7.5, cfg.Discovery.MinScore, 1e-9)
	assert.Equal(t, 20, cfg.Discovery.MaxResults, "default max results")
	assert.Equal(t, "sqlite", cfg.Storage.Driver)

	// t.Chdir resolves symlinks differently on some platforms; compare
	// against the working directory Load actually used.
	cwd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cwd, "db/resources.db"), cfg.Storage.DatabasePath)
	assert.Equal(t, filepath.Join(cwd, "raw/html"), cfg.Storage.RawHTMLDir)

	for _, d := range []string{"db", "raw/html", "raw/pdf", "text", "discovery", "blueprints", "data"} {
		info, err := os.Stat(filepath.Join(cwd, d))
		require.NoError(t, err, d)
		assert.True(t, info.IsDir(), d)
	}
}

func TestLoad_MissingDefaultFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(DefaultPath)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.RateLimit.RequestsPerDomainPerMinute)
	assert.Equal(t, 50, cfg.MaxDownloadSizeMB)
	assert.Empty(t, cfg.AllowedDomains)
	assert.True(t, filepath.IsAbs(cfg.Storage.DatabasePath))
}

func TestLoad_MissingExplicitFileFails(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load("nope.json")
	assert.Error(t, err)
}

func TestLoad_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("CURRICULUM_ENGINE_USERAGENT", "env-agent/2.0")
	t.Setenv("CURRICULUM_ENGINE_RATELIMIT_REQUESTSPERDOMAINPERMINUTE", "12")

	cfg, err := Load(DefaultPath)
	require.NoError(t, err)
	assert.Equal(t, "env-agent/2.0", cfg.UserAgent)
	assert.Equal(t, 12, cfg.RateLimit.RequestsPerDomainPerMinute)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero rate", `{"rateLimit": {"requestsPerDomainPerMinute": 0}}`},
		{"negative size", `{"maxDownloadSizeMb": -1}`},
		{"score above ten", `{"discovery": {"minScore": 11}}`},
		{"unknown driver", `{"storage": {"driver": "postgres"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			t.Chdir(dir)
			_, err := Load(writeConfig(t, dir, tt.body))
			assert.ErrorContains(t, err, "invalid config")
		})
	}
}
