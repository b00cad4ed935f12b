package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FirstRunWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	info, err := os.Stat(path)
	require.NoError(t, err)
	if runtime.GOOS != "windows" {
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}
}

func TestLoad_NormalizesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: 0.0.0.0:9000\nweek_start: friday\ndata:\n  conferences: confs.yaml\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", cfg.Listen)
	assert.Equal(t, "sunday", cfg.WeekStart)
	assert.Equal(t, "confs.yaml", cfg.Data.Conferences)
	assert.Equal(t, "", cfg.Data.AcceptanceURL)
	assert.Equal(t, defaultRefresh, cfg.RefreshCron)
	assert.Equal(t, defaultSort, cfg.DefaultSort)
	assert.Nil(t, cfg.BasicAuth)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.WeekStart = "monday"
	cfg.BasicAuth = &BasicAuthConfig{Username: "u", Password: "p"}
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load("")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: [oops"), 0o600))
	_, err = Load(path)
	assert.Error(t, err)

	assert.Error(t, Save(path, nil))
}
