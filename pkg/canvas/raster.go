// Package canvas implements the compositor's Canvas over an in-memory
// premultiplied RGBA surface.
package canvas

import (
	"image"
	"log/slog"
	"math"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/menta2k/kromaflow/pkg/compositor"
	"github.com/menta2k/kromaflow/pkg/filter"
	"github.com/menta2k/kromaflow/pkg/fonts"
)

// Config holds configuration for a raster canvas
type Config struct {
	// Fonts resolves caption families; a fresh registry is used when nil
	Fonts *fonts.Registry
	// Resample is the filter used to scale the photo into place
	Resample imaging.ResampleFilter
	Logger   *slog.Logger
}

// Raster is a Canvas backed by an *image.RGBA
type Raster struct {
	fonts    *fonts.Registry
	resample imaging.ResampleFilter
	log      *slog.Logger

	surface *image.RGBA
	chain   filter.Chain
}

var _ compositor.Canvas = (*Raster)(nil)

// New creates a raster canvas with the built-in fonts and Lanczos resampling
func New() *Raster {
	return NewWithConfig(Config{})
}

// NewWithConfig creates a raster canvas with custom configuration
func NewWithConfig(config Config) *Raster {
	if config.Fonts == nil {
		config.Fonts = fonts.NewRegistry()
	}
	if config.Resample.Kernel == nil && config.Resample.Support == 0 {
		config.Resample = imaging.Lanczos
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Raster{
		fonts:    config.Fonts,
		resample: config.Resample,
		log:      config.Logger,
		surface:  image.NewRGBA(image.Rectangle{}),
	}
}

// Image returns the surface. It is replaced, not reused, on Resize.
func (r *Raster) Image() *image.RGBA {
	return r.surface
}

// Snapshot returns a copy of the surface
func (r *Raster) Snapshot() *image.RGBA {
	out := image.NewRGBA(r.surface.Bounds())
	copy(out.Pix, r.surface.Pix)
	return out
}

// Bounds returns the surface bounds
func (r *Raster) Bounds() image.Rectangle {
	return r.surface.Bounds()
}

// Resize allocates a new transparent surface
func (r *Raster) Resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	r.surface = image.NewRGBA(image.Rect(0, 0, width, height))
}

// SetFilter sets the chain applied to subsequent DrawImage calls
func (r *Raster) SetFilter(chain filter.Chain) {
	r.chain = chain
}

// ResetFilter returns to the identity filter
func (r *Raster) ResetFilter() {
	r.chain = filter.None
}

// Filter returns the active chain
func (r *Raster) Filter() filter.Chain {
	return r.chain
}

// DrawImage crops src from img, scales it to dst, runs the active filter
// over the scaled pixels and composites the result over the surface
func (r *Raster) DrawImage(img image.Image, src, dst image.Rectangle) {
	src = src.Intersect(img.Bounds())
	if src.Empty() || dst.Empty() {
		return
	}

	layer := imaging.Crop(img, src)
	if src.Dx() != dst.Dx() || src.Dy() != dst.Dy() {
		layer = imaging.Resize(layer, dst.Dx(), dst.Dy(), r.resample)
	}
	if !r.chain.IsIdentity() {
		layer = r.chain.Apply(layer)
	}

	draw.Draw(r.surface, dst, layer, image.Point{}, draw.Over)
}

// FillText draws op's glyphs in op.Color
func (r *Raster) FillText(op compositor.TextOp) {
	face, dot, ok := r.place(op)
	if !ok {
		return
	}
	d := &font.Drawer{
		Dst:  r.surface,
		Src:  image.NewUniform(op.Color),
		Face: face,
		Dot:  dot,
	}
	d.DrawString(op.Text)
}

// StrokeText draws the outline of op's glyphs, op.LineWidth wide and
// centered on the glyph edges
func (r *Raster) StrokeText(op compositor.TextOp) {
	face, dot, ok := r.place(op)
	if !ok {
		return
	}
	radius := op.LineWidth / 2
	pad := int(math.Ceil(radius)) + 1

	glyphs, _ := font.BoundString(face, op.Text)
	box := image.Rect(
		(dot.X+glyphs.Min.X).Floor()-pad,
		(dot.Y+glyphs.Min.Y).Floor()-pad,
		(dot.X+glyphs.Max.X).Ceil()+pad,
		(dot.Y+glyphs.Max.Y).Ceil()+pad,
	)
	clip := box.Intersect(r.surface.Bounds())
	if clip.Empty() {
		return
	}

	// coverage layer: white glyphs on opaque black, grown by dilation
	layer := image.NewRGBA(image.Rect(0, 0, box.Dx(), box.Dy()))
	draw.Draw(layer, layer.Bounds(), image.Black, image.Point{}, draw.Src)
	d := &font.Drawer{
		Dst:  layer,
		Src:  image.White,
		Face: face,
		Dot:  dot.Sub(fixed.P(box.Min.X, box.Min.Y)),
	}
	d.DrawString(op.Text)

	grown := layer
	if radius >= 1 {
		grown = effect.Dilate(layer, radius)
	}

	// the red channel of the grown layer is the stroke coverage
	mask := image.NewAlpha(layer.Bounds())
	w := min(mask.Rect.Dx(), grown.Rect.Dx())
	h := min(mask.Rect.Dy(), grown.Rect.Dy())
	for y := 0; y < h; y++ {
		row := grown.Pix[y*grown.Stride:]
		for x := 0; x < w; x++ {
			mask.Pix[y*mask.Stride+x] = row[x*4]
		}
	}

	draw.DrawMask(r.surface, clip, image.NewUniform(op.Color), image.Point{}, mask, clip.Min.Sub(box.Min), draw.Over)
}

// place resolves the face and the dot for a centered text op
func (r *Raster) place(op compositor.TextOp) (font.Face, fixed.Point26_6, bool) {
	if op.Text == "" || op.Size <= 0 || op.Color == nil {
		return nil, fixed.Point26_6{}, false
	}
	face, err := r.fonts.Face(op.Family, op.Size)
	if err != nil {
		r.log.Warn("caption font unavailable", "family", op.Family, "size", op.Size, "error", err)
		return nil, fixed.Point26_6{}, false
	}

	advance := font.MeasureString(face, op.Text)
	m := face.Metrics()

	y := toFixed(op.Y)
	switch op.Baseline {
	case compositor.BaselineTop:
		y += m.Ascent
	case compositor.BaselineBottom:
		y -= m.Descent
	}

	return face, fixed.Point26_6{X: toFixed(op.X) - advance/2, Y: y}, true
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}
