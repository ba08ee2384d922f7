// Package settings holds the editor settings value. A Settings is never
// mutated in place: every change returns a new value built from the old one.
package settings

import (
	"image/color"

	"github.com/menta2k/kromaflow/pkg/types"
)

// Default field values
const (
	DefaultBrightness = 100
	DefaultContrast   = 100
	DefaultSaturation = 100
	DefaultSepia      = 0
	DefaultFontFamily = "Anton"
)

// DefaultTextColor is opaque white
var DefaultTextColor = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// Settings is the full set of user-adjustable editor parameters.
// Filter amounts are percentages where 100 is identity (0 for sepia).
// Values are stored as given; range handling happens in the filter chain.
type Settings struct {
	TopText    string
	BottomText string

	Brightness int
	Contrast   int
	Saturation int
	Sepia      int
	Grayscale  bool

	FontFamily string
	TextColor  color.NRGBA
	Format     types.Format
}

// Default returns the settings of a freshly opened editor
func Default() Settings {
	return Settings{
		Brightness: DefaultBrightness,
		Contrast:   DefaultContrast,
		Saturation: DefaultSaturation,
		Sepia:      DefaultSepia,
		FontFamily: DefaultFontFamily,
		TextColor:  DefaultTextColor,
		Format:     types.Original,
	}
}

// Reset returns the defaults. The receiver is ignored; it exists so a reset
// reads like every other transition.
func (s Settings) Reset() Settings {
	return Default()
}

func (s Settings) WithTopText(text string) Settings {
	s.TopText = text
	return s
}

func (s Settings) WithBottomText(text string) Settings {
	s.BottomText = text
	return s
}

func (s Settings) WithBrightness(v int) Settings {
	s.Brightness = v
	return s
}

func (s Settings) WithContrast(v int) Settings {
	s.Contrast = v
	return s
}

func (s Settings) WithSaturation(v int) Settings {
	s.Saturation = v
	return s
}

func (s Settings) WithSepia(v int) Settings {
	s.Sepia = v
	return s
}

func (s Settings) WithGrayscale(on bool) Settings {
	s.Grayscale = on
	return s
}

func (s Settings) WithFontFamily(family string) Settings {
	s.FontFamily = family
	return s
}

func (s Settings) WithTextColor(c color.NRGBA) Settings {
	s.TextColor = c
	return s
}

func (s Settings) WithFormat(f types.Format) Settings {
	s.Format = f
	return s
}

// HasText reports whether either caption is non-empty
func (s Settings) HasText() bool {
	return s.TopText != "" || s.BottomText != ""
}

// Filters returns the filter fields as a preset-shaped value
func (s Settings) Filters() Preset {
	return Preset{
		Brightness: s.Brightness,
		Contrast:   s.Contrast,
		Saturation: s.Saturation,
		Sepia:      s.Sepia,
		Grayscale:  s.Grayscale,
	}
}
