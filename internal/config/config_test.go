package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
	assert.Equal(t, 100000, Default().DispatchSafetyLimit)
	assert.Equal(t, ColorAuto, Default().Color)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wisecrack.yaml")
	yaml := "dispatch_safety_limit: 5000\nhistory_bounds_error: true\ncolor: never\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.DispatchSafetyLimit)
	assert.True(t, cfg.HistoryBoundsError)
	assert.Equal(t, ColorNever, cfg.Color)
	assert.Equal(t, 0, cfg.MaxDisplayWidth, "fields absent from the file keep their defaults")
}

func TestLoadRejectsInvalidSafetyLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wisecrack.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dispatch_safety_limit: 0\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsUnknownColor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wisecrack.yaml")
	require.NoError(t, os.WriteFile(path, []byte("color: chartreuse\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
