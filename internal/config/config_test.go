package config

import (
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/kromaflow/pkg/exporter"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1024, cfg.Render.MaxSize)
	assert.Equal(t, 60, cfg.Scheduler.FPS)
	assert.Equal(t, "Anton", cfg.Fonts.DefaultFamily)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"max size", func(c *Config) { c.Render.MaxSize = 0 }, "render.max_size"},
		{"font scale", func(c *Config) { c.Render.FontScale = 2 }, "render.font_scale"},
		{"text offset", func(c *Config) { c.Render.TextOffset = -0.1 }, "render.text_offset"},
		{"stroke divisor", func(c *Config) { c.Render.StrokeDivisor = 0 }, "render.stroke_divisor"},
		{"min stroke", func(c *Config) { c.Render.MinStroke = -1 }, "render.min_stroke"},
		{"stroke color", func(c *Config) { c.Render.StrokeColor = "black" }, "render.stroke_color"},
		{"resample", func(c *Config) { c.Render.Resample = "bicubic" }, "render.resample"},
		{"fps", func(c *Config) { c.Scheduler.FPS = 0 }, "scheduler.fps"},
		{"encoding", func(c *Config) { c.Export.Encoding = "gif" }, "export.encoding"},
		{"webp quality", func(c *Config) { c.Export.WebPQuality = 101 }, "export.webp_quality"},
		{"log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	for _, ext := range []string{".yaml", ".toml", ".json"} {
		t.Run(strings.TrimPrefix(ext, "."), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "config"+ext)

			cfg := Default()
			cfg.Render.MaxSize = 640
			cfg.Render.Resample = "catmullrom"
			cfg.Export.Encoding = "webp"
			cfg.Export.Dir = filepath.Join(t.TempDir(), "frames")
			cfg.Logging.JSONFormat = true
			require.NoError(t, cfg.SaveToFile(path))

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("render:\n  max_size: 512\nlogging:\n  level: debug\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 512, cfg.Render.MaxSize)
	assert.Equal(t, 0.1, cfg.Render.FontScale)
	assert.Equal(t, "png", cfg.Export.Encoding)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel())
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("KROMAFLOW_RENDER_MAX_SIZE", "2048")
	t.Setenv("KROMAFLOW_EXPORT_ENCODING", "webp")

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"render": {"max_size": 100}}`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2048, cfg.Render.MaxSize)
	assert.Equal(t, "webp", cfg.Export.Encoding)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scheduler:\n  fps: 0\n"), 0644))
	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scheduler.fps")
}

func TestConversions(t *testing.T) {
	cfg := Default()
	cfg.Render.MaxSize = 800
	cfg.Render.StrokeColor = "#112233"
	cfg.Render.Resample = "box"
	cfg.Export.Encoding = "webp"

	crop := cfg.CropConfig()
	assert.Equal(t, 800, crop.MaxSize)
	assert.Equal(t, imaging.Box.Support, crop.Filter.Support)

	comp, err := cfg.CompositorConfig()
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{0x11, 0x22, 0x33, 0xff}, comp.StrokeColor)
	assert.Equal(t, 150.0, comp.StrokeDivisor)

	exp, err := cfg.ExporterConfig()
	require.NoError(t, err)
	assert.Equal(t, exporter.WebP, exp.Encoding)
	assert.Equal(t, float32(75), exp.WebPQuality)

	reg, err := cfg.FontRegistry()
	require.NoError(t, err)
	assert.Equal(t, "Anton", reg.Resolve("no such family"))

	cfg.Fonts.DefaultFamily = "Comic Sans"
	_, err = cfg.FontRegistry()
	assert.Error(t, err)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := ExpandPath("~/frames")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "frames"), got)

	got, err = ExpandPath("relative/dir")
	require.NoError(t, err)
	assert.Equal(t, "relative/dir", got)
}

func TestGetConfigPath(t *testing.T) {
	path := GetConfigPath()
	assert.True(t, strings.HasSuffix(path, filepath.Join("kromaflow", "config.yaml")), path)
}
