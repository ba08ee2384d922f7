package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/menta2k/kromaflow"
	"github.com/menta2k/kromaflow/internal/config"
	"github.com/menta2k/kromaflow/pkg/canvas"
	"github.com/menta2k/kromaflow/pkg/compositor"
	"github.com/menta2k/kromaflow/pkg/cropper"
	"github.com/menta2k/kromaflow/pkg/exporter"
	"github.com/menta2k/kromaflow/pkg/loader"
	"github.com/menta2k/kromaflow/pkg/scheduler"
	"github.com/menta2k/kromaflow/pkg/settings"
	"github.com/menta2k/kromaflow/pkg/types"
)

// editFlags are the input, output and settings flags shared by render
// and watch
type editFlags struct {
	in           string
	out          string
	settingsPath string
	encoding     string
	fontsDir     string

	top        string
	bottom     string
	preset     string
	format     string
	font       string
	color      string
	brightness int
	contrast   int
	saturation int
	sepia      int
	grayscale  bool
}

func (f *editFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	d := settings.Default()

	flags.StringVar(&f.in, "in", "", "input image (jpg/png/gif/webp/bmp/tiff)")
	flags.StringVar(&f.out, "out", "", "output directory (default: export.dir from config)")
	flags.StringVar(&f.settingsPath, "settings", "", "settings document (.yaml, .toml or .json)")
	flags.StringVar(&f.encoding, "encoding", "", "output encoding: png|webp (default: export.encoding from config)")
	flags.StringVar(&f.fontsDir, "fonts-dir", "", "directory of extra .ttf/.otf caption fonts")

	flags.StringVar(&f.top, "top", "", "top caption")
	flags.StringVar(&f.bottom, "bottom", "", "bottom caption")
	flags.StringVar(&f.preset, "preset", "", "filter preset: cyberpunk|vintage|cinematic|normal")
	flags.StringVar(&f.format, "format", d.Format.String(), "output format: original|square|story")
	flags.StringVar(&f.font, "font", d.FontFamily, "caption font family")
	flags.StringVar(&f.color, "color", settings.FormatHexColor(d.TextColor), "caption color (#rgb, #rrggbb, #rrggbbaa)")
	flags.IntVar(&f.brightness, "brightness", d.Brightness, "brightness in percent")
	flags.IntVar(&f.contrast, "contrast", d.Contrast, "contrast in percent")
	flags.IntVar(&f.saturation, "saturation", d.Saturation, "saturation in percent")
	flags.IntVar(&f.sepia, "sepia", d.Sepia, "sepia in percent")
	flags.BoolVar(&f.grayscale, "grayscale", d.Grayscale, "full grayscale")

	_ = cmd.MarkFlagRequired("in")
}

// settings builds the settings value: defaults, then the settings document,
// then the preset flag, then every explicitly set flag
func (f *editFlags) settings(cmd *cobra.Command) (settings.Settings, error) {
	s := settings.Default()

	if f.settingsPath != "" {
		doc, err := settings.LoadDocument(f.settingsPath)
		if err != nil {
			return s, err
		}
		if s, err = doc.Apply(s); err != nil {
			return s, fmt.Errorf("%s: %w", f.settingsPath, err)
		}
	}

	if f.preset != "" {
		var err error
		if s, err = s.ApplyPreset(f.preset); err != nil {
			return s, fmt.Errorf("--preset: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("top") {
		s = s.WithTopText(f.top)
	}
	if flags.Changed("bottom") {
		s = s.WithBottomText(f.bottom)
	}
	if flags.Changed("brightness") {
		s = s.WithBrightness(f.brightness)
	}
	if flags.Changed("contrast") {
		s = s.WithContrast(f.contrast)
	}
	if flags.Changed("saturation") {
		s = s.WithSaturation(f.saturation)
	}
	if flags.Changed("sepia") {
		s = s.WithSepia(f.sepia)
	}
	if flags.Changed("grayscale") {
		s = s.WithGrayscale(f.grayscale)
	}
	if flags.Changed("font") {
		s = s.WithFontFamily(f.font)
	}
	if flags.Changed("color") {
		c, err := settings.ParseHexColor(f.color)
		if err != nil {
			return s, fmt.Errorf("--color: %w", err)
		}
		s = s.WithTextColor(c)
	}
	if flags.Changed("format") {
		format, err := types.ParseFormat(f.format)
		if err != nil {
			return s, fmt.Errorf("--format: %w", err)
		}
		s = s.WithFormat(format)
	}

	return s, nil
}

// exporterConfig applies the output flags over the configured exporter
func (f *editFlags) exporterConfig(cfg *config.Config) (exporter.Config, error) {
	ec, err := cfg.ExporterConfig()
	if err != nil {
		return ec, err
	}
	if f.out != "" {
		if ec.Dir, err = config.ExpandPath(f.out); err != nil {
			return ec, err
		}
	}
	if f.encoding != "" {
		if ec.Encoding, err = exporter.ParseEncoding(f.encoding); err != nil {
			return ec, fmt.Errorf("--encoding: %w", err)
		}
	}
	return ec, nil
}

// session is an editor wired from the config and flags
type session struct {
	editor   *kromaflow.Editor
	exporter *exporter.Exporter
	resolver *cropper.Resolver
}

func newSession(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, f *editFlags, frames scheduler.FrameHost, onFrame func(kromaflow.Frame) error) (*session, error) {
	s, err := f.settings(cmd)
	if err != nil {
		return nil, err
	}

	registry, err := cfg.FontRegistry()
	if err != nil {
		return nil, err
	}
	if f.fontsDir != "" {
		n, err := registry.LoadDir(f.fontsDir)
		if err != nil {
			return nil, err
		}
		logger.Debug("loaded caption fonts", "dir", f.fontsDir, "count", n)
	}
	if resolved := registry.Resolve(s.FontFamily); !strings.EqualFold(resolved, s.FontFamily) {
		logger.Warn("unknown font family, using fallback", "family", s.FontFamily, "fallback", resolved)
	}

	compCfg, err := cfg.CompositorConfig()
	if err != nil {
		return nil, err
	}
	expCfg, err := f.exporterConfig(cfg)
	if err != nil {
		return nil, err
	}

	resolver := cropper.NewWithConfig(cfg.CropConfig())
	exp := exporter.NewWithConfig(expCfg)

	editor := kromaflow.NewWithOptions(kromaflow.Options{
		Resolver:   resolver,
		Compositor: compositor.NewWithConfig(compCfg),
		Canvas: canvas.NewWithConfig(canvas.Config{
			Fonts:    registry,
			Resample: cfg.ResampleFilter(),
			Logger:   logger,
		}),
		Loader:   loader.New(),
		Exporter: exp,
		Frames:   frames,
		OnFrame:  onFrame,
		Settings: &s,
		Logger:   logger,
	})

	return &session{editor: editor, exporter: exp, resolver: resolver}, nil
}
