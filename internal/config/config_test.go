package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/armccomp/armcc/internal/config"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefault(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "armcc.yaml"))
	require.NoError(t, err)
	require.Equal(t, config.Default(), cfg)
}

func TestLoad_ParsesYAMLOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "armcc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("target: arm-eabi\nopt_disabled: false\nverbose: true\n"), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "arm-eabi", cfg.Target)
	require.False(t, cfg.OptDisabled)
	require.True(t, cfg.Verbose)
}

func TestLoad_MalformedYAMLErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "armcc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("target: [unterminated\n"), 0o644))

	_, err := config.Load(path)
	require.Error(t, err)
}
