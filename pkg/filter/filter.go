// Package filter builds and evaluates the color filter chain applied to the
// photo. A chain is an ordered list of stages; the order matters because the
// transforms do not commute.
package filter

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/menta2k/kromaflow/pkg/settings"
)

// Kind names a filter stage
type Kind string

const (
	Brightness Kind = "brightness"
	Contrast   Kind = "contrast"
	Saturate   Kind = "saturate"
	Sepia      Kind = "sepia"
	Grayscale  Kind = "grayscale"
)

// Stage is one filter function with an integer percent amount
type Stage struct {
	Kind   Kind
	Amount int
}

// String formats the stage in CSS filter function syntax, e.g. sepia(60%)
func (s Stage) String() string {
	return fmt.Sprintf("%s(%d%%)", s.Kind, s.Amount)
}

// Chain is an ordered sequence of stages
type Chain []Stage

// None is the empty chain
var None Chain

// FromSettings builds the chain brightness, contrast, saturate, sepia and,
// when grayscale is on, a full grayscale stage
func FromSettings(s settings.Settings) Chain {
	return FromValues(float64(s.Brightness), float64(s.Contrast), float64(s.Saturation), float64(s.Sepia), s.Grayscale)
}

// FromValues builds a chain from raw amounts. Each amount is rounded to an
// integer so the formatted chain never carries a decimal.
func FromValues(brightness, contrast, saturation, sepia float64, grayscale bool) Chain {
	chain := Chain{
		{Brightness, round(brightness)},
		{Contrast, round(contrast)},
		{Saturate, round(saturation)},
		{Sepia, round(sepia)},
	}
	if grayscale {
		chain = append(chain, Stage{Grayscale, 100})
	}
	return chain
}

func round(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Round(v))
}

// String renders the chain as a space separated filter list. The empty
// chain renders as "none".
func (c Chain) String() string {
	if len(c) == 0 {
		return "none"
	}
	parts := make([]string, len(c))
	for i, s := range c {
		parts[i] = s.String()
	}
	return strings.Join(parts, " ")
}

// IsIdentity reports whether the chain leaves every pixel unchanged
func (c Chain) IsIdentity() bool {
	for _, s := range c {
		switch s.Kind {
		case Brightness, Contrast, Saturate:
			if s.Amount != 100 {
				return false
			}
		case Sepia, Grayscale:
			if s.Amount > 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// Apply evaluates the chain over img and returns the filtered copy. Alpha
// is preserved; color values are clamped after every stage.
func (c Chain) Apply(img image.Image) *image.NRGBA {
	if c.IsIdentity() {
		return imaging.Clone(img)
	}
	ops := c.compile()
	return imaging.AdjustFunc(img, func(px color.NRGBA) color.NRGBA {
		rgb := [3]float64{
			float64(px.R) / 255,
			float64(px.G) / 255,
			float64(px.B) / 255,
		}
		for _, op := range ops {
			rgb = op.apply(rgb)
		}
		return color.NRGBA{
			R: to8(rgb[0]),
			G: to8(rgb[1]),
			B: to8(rgb[2]),
			A: px.A,
		}
	})
}

// ApplyColor evaluates the chain on a single color
func (c Chain) ApplyColor(px color.NRGBA) color.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, px)
	return c.Apply(img).NRGBAAt(0, 0)
}

func to8(v float64) uint8 {
	return uint8(math.Round(clamp01(v) * 255))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
