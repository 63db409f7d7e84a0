package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/plus3/scenecs/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := config.Parse([]byte(`
[window]
width = 800
title = "demo"

[render]
post_enabled = true
tint = [1.0, 0.5, 0.5, 1.0]

[sim]
tick_rate = "10ms"

[logging]
level = "debug"
`))
	require.NoError(t, err)

	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height, "unset keys keep defaults")
	assert.Equal(t, "demo", cfg.Window.Title)
	assert.True(t, cfg.Render.PostEnabled)
	assert.Equal(t, [4]float32{1, 0.5, 0.5, 1}, cfg.Render.Tint)
	assert.Equal(t, 10*time.Millisecond, cfg.Sim.TickRate)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "scripts", cfg.Scripts.Dir)
}

func TestParseRejectsInvalidValues(t *testing.T) {
	_, err := config.Parse([]byte("[sim]\ntick_rate = \"0s\"\n"))
	assert.Error(t, err)

	_, err = config.Parse([]byte("[window]\nwidth = -1\n"))
	assert.Error(t, err)

	_, err = config.Parse([]byte("[window\n"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.toml")
	require.NoError(t, os.WriteFile(path, []byte("[scene]\nprefab = \"level1.yaml\"\n"), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "level1.yaml", cfg.Scene.Prefab)

	_, err = config.Load(filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewLogger(t *testing.T) {
	for _, cfg := range []config.LoggingConfig{
		{Level: "debug", Format: "console"},
		{Level: "warn", Format: "json"},
		{Level: "bogus"},
	} {
		log, err := config.NewLogger(cfg)
		require.NoError(t, err)
		require.NotNil(t, log)
	}

	log, err := config.NewLogger(config.LoggingConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(-1), "debug is disabled at warn level")
}
