package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/menta2k/kromaflow/pkg/compositor"
	"github.com/menta2k/kromaflow/pkg/cropper"
	"github.com/menta2k/kromaflow/pkg/exporter"
	"github.com/menta2k/kromaflow/pkg/fonts"
	"github.com/menta2k/kromaflow/pkg/settings"
)

// EnvPrefix prefixes environment overrides, e.g. KROMAFLOW_RENDER_MAX_SIZE
const EnvPrefix = "KROMAFLOW"

// Config holds the application configuration
type Config struct {
	Render    RenderConfig    `mapstructure:"render" json:"render" yaml:"render" toml:"render"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" json:"scheduler" yaml:"scheduler" toml:"scheduler"`
	Export    ExportConfig    `mapstructure:"export" json:"export" yaml:"export" toml:"export"`
	Fonts     FontsConfig     `mapstructure:"fonts" json:"fonts" yaml:"fonts" toml:"fonts"`
	Logging   LoggingConfig   `mapstructure:"logging" json:"logging" yaml:"logging" toml:"logging"`
}

// RenderConfig holds frame geometry and caption layout
type RenderConfig struct {
	MaxSize       int     `mapstructure:"max_size" json:"max_size" yaml:"max_size" toml:"max_size"`
	FontScale     float64 `mapstructure:"font_scale" json:"font_scale" yaml:"font_scale" toml:"font_scale"`
	TextOffset    float64 `mapstructure:"text_offset" json:"text_offset" yaml:"text_offset" toml:"text_offset"`
	StrokeDivisor float64 `mapstructure:"stroke_divisor" json:"stroke_divisor" yaml:"stroke_divisor" toml:"stroke_divisor"`
	MinStroke     float64 `mapstructure:"min_stroke" json:"min_stroke" yaml:"min_stroke" toml:"min_stroke"`
	StrokeColor   string  `mapstructure:"stroke_color" json:"stroke_color" yaml:"stroke_color" toml:"stroke_color"`
	Resample      string  `mapstructure:"resample" json:"resample" yaml:"resample" toml:"resample"`
}

// SchedulerConfig holds the frame loop rate
type SchedulerConfig struct {
	FPS int `mapstructure:"fps" json:"fps" yaml:"fps" toml:"fps"`
}

// ExportConfig holds configuration for output generation
type ExportConfig struct {
	Dir         string  `mapstructure:"dir" json:"dir" yaml:"dir" toml:"dir"`
	Encoding    string  `mapstructure:"encoding" json:"encoding" yaml:"encoding" toml:"encoding"`
	WebPQuality float64 `mapstructure:"webp_quality" json:"webp_quality" yaml:"webp_quality" toml:"webp_quality"`
	Prefix      string  `mapstructure:"prefix" json:"prefix" yaml:"prefix" toml:"prefix"`
}

// FontsConfig holds caption font sources
type FontsConfig struct {
	Dir           string `mapstructure:"dir" json:"dir" yaml:"dir" toml:"dir"`
	DefaultFamily string `mapstructure:"default_family" json:"default_family" yaml:"default_family" toml:"default_family"`
}

// LoggingConfig holds log output settings
type LoggingConfig struct {
	Level      string `mapstructure:"level" json:"level" yaml:"level" toml:"level"`
	JSONFormat bool   `mapstructure:"json_format" json:"json_format" yaml:"json_format" toml:"json_format"`
}

var resampleFilters = map[string]imaging.ResampleFilter{
	"lanczos":    imaging.Lanczos,
	"catmullrom": imaging.CatmullRom,
	"linear":     imaging.Linear,
	"box":        imaging.Box,
	"mitchell":   imaging.MitchellNetravali,
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			MaxSize:       cropper.DefaultMaxSize,
			FontScale:     0.1,
			TextOffset:    0.2,
			StrokeDivisor: 150,
			MinStroke:     2,
			StrokeColor:   "#000000",
			Resample:      "lanczos",
		},
		Scheduler: SchedulerConfig{
			FPS: 60,
		},
		Export: ExportConfig{
			Dir:         "./output",
			Encoding:    "png",
			WebPQuality: 75,
			Prefix:      "kromaflow",
		},
		Fonts: FontsConfig{
			Dir:           "",
			DefaultFamily: fonts.DefaultFamily,
		},
		Logging: LoggingConfig{
			Level:      "info",
			JSONFormat: false,
		},
	}
}

func newViper() *viper.Viper {
	v := viper.New()

	// Set defaults
	d := Default()
	v.SetDefault("render.max_size", d.Render.MaxSize)
	v.SetDefault("render.font_scale", d.Render.FontScale)
	v.SetDefault("render.text_offset", d.Render.TextOffset)
	v.SetDefault("render.stroke_divisor", d.Render.StrokeDivisor)
	v.SetDefault("render.min_stroke", d.Render.MinStroke)
	v.SetDefault("render.stroke_color", d.Render.StrokeColor)
	v.SetDefault("render.resample", d.Render.Resample)
	v.SetDefault("scheduler.fps", d.Scheduler.FPS)
	v.SetDefault("export.dir", d.Export.Dir)
	v.SetDefault("export.encoding", d.Export.Encoding)
	v.SetDefault("export.webp_quality", d.Export.WebPQuality)
	v.SetDefault("export.prefix", d.Export.Prefix)
	v.SetDefault("fonts.dir", d.Fonts.Dir)
	v.SetDefault("fonts.default_family", d.Fonts.DefaultFamily)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.json_format", d.Logging.JSONFormat)

	// Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads configuration from defaults, an optional config file and the
// environment. With an empty path the file is looked up as config.{yaml,
// toml,json} in the working directory and next to GetConfigPath; a missing
// file is not an error. An explicit path must exist.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return nil, err
		}
		v.SetConfigFile(expanded)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Dir(GetConfigPath()))
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			// Config file not found is OK, use env vars and defaults
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// LoadFromFile loads configuration from a JSON, YAML or TOML file
func LoadFromFile(filename string) (*Config, error) {
	return Load(filename)
}

// SaveToFile saves configuration to a file. The encoding follows the file
// extension; anything other than .yaml, .yml or .toml is written as JSON.
func (c *Config) SaveToFile(filename string) error {
	filename, err := ExpandPath(filename)
	if err != nil {
		return err
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var data []byte
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	case ".toml":
		data, err = toml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Render.MaxSize < 1 {
		return fmt.Errorf("render.max_size must be positive")
	}

	if c.Render.FontScale <= 0 || c.Render.FontScale > 1 {
		return fmt.Errorf("render.font_scale must be between 0 and 1")
	}

	if c.Render.TextOffset < 0 || c.Render.TextOffset > 1 {
		return fmt.Errorf("render.text_offset must be between 0 and 1")
	}

	if c.Render.StrokeDivisor <= 0 {
		return fmt.Errorf("render.stroke_divisor must be positive")
	}

	if c.Render.MinStroke < 0 {
		return fmt.Errorf("render.min_stroke cannot be negative")
	}

	if _, err := settings.ParseHexColor(c.Render.StrokeColor); err != nil {
		return fmt.Errorf("render.stroke_color: %w", err)
	}

	if _, ok := resampleFilters[strings.ToLower(c.Render.Resample)]; !ok {
		return fmt.Errorf("render.resample must be one of lanczos, catmullrom, mitchell, linear, box")
	}

	if c.Scheduler.FPS < 1 || c.Scheduler.FPS > 240 {
		return fmt.Errorf("scheduler.fps must be between 1 and 240")
	}

	if _, err := exporter.ParseEncoding(c.Export.Encoding); err != nil {
		return fmt.Errorf("export.encoding: %w", err)
	}

	if c.Export.WebPQuality < 0 || c.Export.WebPQuality > 100 {
		return fmt.Errorf("export.webp_quality must be between 0 and 100")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error")
	}

	return nil
}

// CropConfig returns the geometry resolver configuration
func (c *Config) CropConfig() cropper.CropConfig {
	return cropper.CropConfig{
		MaxSize: c.Render.MaxSize,
		Filter:  c.ResampleFilter(),
	}
}

// ResampleFilter returns the configured resampling filter, Lanczos when
// the name is unknown
func (c *Config) ResampleFilter() imaging.ResampleFilter {
	if f, ok := resampleFilters[strings.ToLower(c.Render.Resample)]; ok {
		return f
	}
	return imaging.Lanczos
}

// CompositorConfig returns the caption layout configuration
func (c *Config) CompositorConfig() (compositor.Config, error) {
	stroke, err := settings.ParseHexColor(c.Render.StrokeColor)
	if err != nil {
		return compositor.Config{}, fmt.Errorf("render.stroke_color: %w", err)
	}
	return compositor.Config{
		FontScale:     c.Render.FontScale,
		TextOffset:    c.Render.TextOffset,
		StrokeDivisor: c.Render.StrokeDivisor,
		MinStroke:     c.Render.MinStroke,
		StrokeColor:   stroke,
	}, nil
}

// ExporterConfig returns the exporter configuration
func (c *Config) ExporterConfig() (exporter.Config, error) {
	enc, err := exporter.ParseEncoding(c.Export.Encoding)
	if err != nil {
		return exporter.Config{}, err
	}
	return exporter.Config{
		Encoding:    enc,
		Dir:         c.Export.Dir,
		WebPQuality: float32(c.Export.WebPQuality),
		Prefix:      c.Export.Prefix,
	}, nil
}

// FontRegistry builds the caption font registry, loading the font
// directory when one is configured
func (c *Config) FontRegistry() (*fonts.Registry, error) {
	registry := fonts.NewRegistry()
	if c.Fonts.Dir != "" {
		if _, err := registry.LoadDir(c.Fonts.Dir); err != nil {
			return nil, err
		}
	}
	if c.Fonts.DefaultFamily != "" {
		if err := registry.SetFallback(c.Fonts.DefaultFamily); err != nil {
			return nil, fmt.Errorf("fonts.default_family: %w", err)
		}
	}
	return registry, nil
}

// LogLevel returns the slog level for logging.level
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Logging.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *Config) expandPaths() error {
	var err error
	if c.Export.Dir, err = ExpandPath(c.Export.Dir); err != nil {
		return err
	}
	if c.Fonts.Dir, err = ExpandPath(c.Fonts.Dir); err != nil {
		return err
	}
	return nil
}

// ExpandPath expands a leading ~ to the user's home directory
func ExpandPath(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("failed to expand path %q: %w", path, err)
	}
	return expanded, nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := homedir.Dir()
	if err != nil {
		return "./config.yaml"
	}
	return filepath.Join(home, ".config", "kromaflow", "config.yaml")
}
