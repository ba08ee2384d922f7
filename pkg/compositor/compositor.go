// Package compositor draws one caption frame: the filtered, cropped photo
// followed by the stroked top and bottom captions.
package compositor

import (
	"image"
	"image/color"
	"math"

	"github.com/menta2k/kromaflow/pkg/cropper"
	"github.com/menta2k/kromaflow/pkg/filter"
	"github.com/menta2k/kromaflow/pkg/settings"
)

// Baseline selects which edge of the text the anchor y refers to
type Baseline int

const (
	// BaselineTop anchors the top of the em box
	BaselineTop Baseline = iota
	// BaselineBottom anchors the bottom of the em box
	BaselineBottom
)

func (b Baseline) String() string {
	if b == BaselineBottom {
		return "bottom"
	}
	return "top"
}

// TextOp describes a single centered text draw
type TextOp struct {
	Text string
	// X is the horizontal center, Y the baseline anchor
	X, Y      float64
	Baseline  Baseline
	Family    string
	Size      float64
	Color     color.Color
	LineWidth float64
}

// Canvas is the drawing surface a frame is rendered into.
//
// SetFilter applies to DrawImage calls until ResetFilter. Text calls are
// only issued after ResetFilter, so an implementation never has to scope
// the filter itself.
type Canvas interface {
	// Resize sets the surface size and clears it
	Resize(width, height int)
	SetFilter(chain filter.Chain)
	ResetFilter()
	// DrawImage draws the src rectangle of img scaled into dst
	DrawImage(img image.Image, src, dst image.Rectangle)
	StrokeText(op TextOp)
	FillText(op TextOp)
}

// Config holds the caption layout proportions
type Config struct {
	// FontScale is the font size as a fraction of the output width
	FontScale float64
	// TextOffset is the caption inset from the edge, as a fraction of the font size
	TextOffset float64
	// StrokeDivisor gives the stroke width as output width / StrokeDivisor
	StrokeDivisor float64
	// MinStroke is the minimum stroke width in pixels
	MinStroke float64
	// StrokeColor is drawn behind the caption fill
	StrokeColor color.Color
}

// DefaultConfig returns the standard caption layout
func DefaultConfig() Config {
	return Config{
		FontScale:     0.1,
		TextOffset:    0.2,
		StrokeDivisor: 150,
		MinStroke:     2,
		StrokeColor:   color.Black,
	}
}

// Compositor renders frames with a fixed layout configuration
type Compositor struct {
	config Config
}

// New creates a new Compositor with default configuration
func New() *Compositor {
	return &Compositor{config: DefaultConfig()}
}

// NewWithConfig creates a new Compositor with custom configuration.
// Zero fields take their default values.
func NewWithConfig(config Config) *Compositor {
	def := DefaultConfig()
	if config.FontScale <= 0 {
		config.FontScale = def.FontScale
	}
	if config.TextOffset <= 0 {
		config.TextOffset = def.TextOffset
	}
	if config.StrokeDivisor <= 0 {
		config.StrokeDivisor = def.StrokeDivisor
	}
	if config.MinStroke <= 0 {
		config.MinStroke = def.MinStroke
	}
	if config.StrokeColor == nil {
		config.StrokeColor = def.StrokeColor
	}
	return &Compositor{config: config}
}

// Config returns the layout configuration
func (c *Compositor) Config() Config {
	return c.config
}

// Layout is the caption placement derived from an output size
type Layout struct {
	FontSize  float64
	LineWidth float64
	Offset    float64
}

// Layout computes font size, stroke width and edge offset for an output
// width
func (c *Compositor) Layout(outputWidth int) Layout {
	size := math.Floor(float64(outputWidth) * c.config.FontScale)
	return Layout{
		FontSize:  size,
		LineWidth: math.Max(c.config.MinStroke, float64(outputWidth)/c.config.StrokeDivisor),
		Offset:    size * c.config.TextOffset,
	}
}

// Render draws img into cv using geometry g and settings s. A nil image is
// a no-op: there is nothing to draw yet.
func (c *Compositor) Render(cv Canvas, img image.Image, g cropper.Geometry, s settings.Settings) {
	if img == nil {
		return
	}

	cv.Resize(g.OutputWidth, g.OutputHeight)

	cv.SetFilter(filter.FromSettings(s))
	cv.DrawImage(img, g.Source, g.Dest)

	// text never passes through the color filter
	cv.ResetFilter()

	if !s.HasText() {
		return
	}

	l := c.Layout(g.OutputWidth)
	if l.FontSize <= 0 {
		return
	}

	base := TextOp{
		X:         float64(g.OutputWidth) / 2,
		Family:    s.FontFamily,
		Size:      l.FontSize,
		LineWidth: l.LineWidth,
	}

	if s.TopText != "" {
		op := base
		op.Text = s.TopText
		op.Y = l.Offset
		op.Baseline = BaselineTop
		c.drawCaption(cv, op, s.TextColor)
	}

	if s.BottomText != "" {
		op := base
		op.Text = s.BottomText
		op.Y = float64(g.OutputHeight) - l.Offset
		op.Baseline = BaselineBottom
		c.drawCaption(cv, op, s.TextColor)
	}
}

// drawCaption strokes first so the fill sits on top
func (c *Compositor) drawCaption(cv Canvas, op TextOp, fill color.Color) {
	stroke := op
	stroke.Color = c.config.StrokeColor
	cv.StrokeText(stroke)

	op.Color = fill
	cv.FillText(op)
}
