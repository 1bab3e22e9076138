package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeClampsBadValues(t *testing.T) {
	cfg := &Config{
		TriggerTime:  "25:61",
		MosaicLevel:  400,
		DeliveryMode: "carrier-pigeon",
		LogLevel:     "loud",
		Render: RenderConfig{
			SendMode:  "telepathy",
			ImageType: "bmp",
			Quality:   5,
			TimeoutMS: -1,
		},
		Server: ServerConfig{Port: 99999},
	}
	cfg.Normalize()

	def := Default()
	assert.Equal(t, def.TriggerTime, cfg.TriggerTime)
	assert.Equal(t, def.MosaicLevel, cfg.MosaicLevel)
	assert.Equal(t, def.DeliveryMode, cfg.DeliveryMode)
	assert.Equal(t, def.LogLevel, cfg.LogLevel)
	assert.Equal(t, def.Render.SendMode, cfg.Render.SendMode)
	assert.Equal(t, def.Render.ImageType, cfg.Render.ImageType)
	assert.Equal(t, def.Render.Quality, cfg.Render.Quality)
	assert.Equal(t, def.Render.TimeoutMS, cfg.Render.TimeoutMS)
	assert.Equal(t, def.Server.Port, cfg.Server.Port)
	assert.NotNil(t, cfg.Sources)
}

func TestNormalizeKeepsGoodValues(t *testing.T) {
	cfg := &Config{
		TriggerTime:  "21:15",
		MosaicLevel:  0,
		DeliveryMode: "plain",
		CacheDir:     "/tmp/hd",
		LogLevel:     "debug",
		Render: RenderConfig{
			SendMode:  "file",
			ImageType: "jpeg",
			Quality:   60,
			TimeoutMS: 5000,
		},
		Database: DatabaseConfig{Path: "/tmp/hd.db"},
		Server:   ServerConfig{Port: 9999},
	}
	cfg.Normalize()

	assert.Equal(t, "21:15", cfg.TriggerTime)
	assert.Equal(t, 0, cfg.MosaicLevel, "level 0 is valid, not a zero-value to clamp")
	assert.Equal(t, "plain", cfg.DeliveryMode)
	assert.Equal(t, "jpeg", cfg.Render.ImageType)
	assert.Equal(t, 60, cfg.Render.Quality)
	assert.Equal(t, 9999, cfg.Server.Port)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
trigger_time: "08:45"
mosaic_level: 30
sources:
  enable_pornhub: true
  enable_eporner: true
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("HOTDAILY_DB_PATH", "/tmp/env.db")
	t.Setenv("HOTDAILY_PROXY", "http://127.0.0.1:7890")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "08:45", cfg.TriggerTime)
	assert.Equal(t, 30, cfg.MosaicLevel)
	assert.Equal(t, "/tmp/env.db", cfg.Database.Path)
	assert.Equal(t, "http://127.0.0.1:7890", cfg.Proxy)
	assert.True(t, cfg.SourceEnabled("pornhub"))
	assert.True(t, cfg.SourceEnabled("eporner"))
	assert.False(t, cfg.SourceEnabled("xvideos"), "sources default to off")
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}
