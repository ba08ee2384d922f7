package cropper

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/menta2k/kromaflow/pkg/types"
)

// DefaultMaxSize is the default cap on the longer image side, in pixels
const DefaultMaxSize = 1024

// ErrInvalidImageDimensions is returned for images with a zero or negative side
var ErrInvalidImageDimensions = errors.New("invalid image dimensions")

// Resolver computes crop geometry for the output formats
type Resolver struct {
	config CropConfig
}

// CropConfig holds configuration for geometry resolution
type CropConfig struct {
	// MaxSize caps the longer side before any crop math runs. 0 disables the cap.
	MaxSize int
	// Filter is the resampling filter used by CropImage
	Filter imaging.ResampleFilter
}

// Geometry is the result of resolving an image size against a format.
// Source is expressed in native image pixels, Dest in output pixels.
type Geometry struct {
	OutputWidth  int
	OutputHeight int
	Source       image.Rectangle
	Dest         image.Rectangle
	// Scale is the uniform factor applied by the size cap (1 when uncapped)
	Scale float64
}

// AspectRatio returns the output width divided by the output height
func (g Geometry) AspectRatio() float64 {
	return float64(g.OutputWidth) / float64(g.OutputHeight)
}

// Bounds returns the output canvas rectangle
func (g Geometry) Bounds() image.Rectangle {
	return image.Rect(0, 0, g.OutputWidth, g.OutputHeight)
}

// New creates a new Resolver with default configuration
func New() *Resolver {
	return &Resolver{
		config: CropConfig{
			MaxSize: DefaultMaxSize,
			Filter:  imaging.Lanczos,
		},
	}
}

// NewWithConfig creates a new Resolver with custom configuration
func NewWithConfig(config CropConfig) *Resolver {
	if config.Filter.Kernel == nil && config.Filter.Support == 0 {
		config.Filter = imaging.Lanczos
	}
	return &Resolver{config: config}
}

// MaxSize returns the configured size cap
func (r *Resolver) MaxSize() int {
	return r.config.MaxSize
}

// CapDimensions scales width and height down uniformly so the longer side
// equals the cap. Sizes already within the cap are returned unchanged.
func (r *Resolver) CapDimensions(width, height int) (int, int, float64) {
	return capDimensions(width, height, r.config.MaxSize)
}

func capDimensions(width, height, maxSize int) (int, int, float64) {
	if maxSize <= 0 || (width <= maxSize && height <= maxSize) {
		return width, height, 1
	}
	if width >= height {
		scale := float64(maxSize) / float64(width)
		return maxSize, scaleSide(height, scale), scale
	}
	scale := float64(maxSize) / float64(height)
	return scaleSide(width, scale), maxSize, scale
}

func scaleSide(side int, scale float64) int {
	return maxInt(1, int(math.Round(float64(side)*scale)))
}

// Resolve computes the output size and crop rectangles for an image of the
// given native size. Cropping always happens in the source rectangle, so the
// destination covers the whole canvas and there is no letterboxing.
func (r *Resolver) Resolve(width, height int, format types.Format) (Geometry, error) {
	if width <= 0 || height <= 0 {
		return Geometry{}, fmt.Errorf("%w: %dx%d", ErrInvalidImageDimensions, width, height)
	}

	cw, ch, scale := r.CapDimensions(width, height)

	var outW, outH int
	var src image.Rectangle

	switch format {
	case types.Original:
		outW, outH = cw, ch
		src = image.Rect(0, 0, width, height)

	case types.Square:
		outW = minInt(cw, ch)
		outH = outW
		src = centered(width, height, minInt(width, height), minInt(width, height))

	case types.Story:
		ratio := types.StoryRatio
		if cw*ratio.Height > ch*ratio.Width {
			// too wide: keep full height
			outH = ch
			outW = ratioSide(ch, ratio.Width, ratio.Height)
			src = centered(width, height, ratioSide(height, ratio.Width, ratio.Height), height)
		} else {
			// too tall: keep full width
			outW = cw
			outH = ratioSide(cw, ratio.Height, ratio.Width)
			src = centered(width, height, width, ratioSide(width, ratio.Height, ratio.Width))
		}

	default:
		return Geometry{}, fmt.Errorf("%w: %d", types.ErrUnknownFormat, int(format))
	}

	return Geometry{
		OutputWidth:  outW,
		OutputHeight: outH,
		Source:       src,
		Dest:         image.Rect(0, 0, outW, outH),
		Scale:        scale,
	}, nil
}

// ResolveImage resolves the geometry for img's bounds
func (r *Resolver) ResolveImage(img image.Image, format types.Format) (Geometry, error) {
	b := img.Bounds()
	g, err := r.Resolve(b.Dx(), b.Dy(), format)
	if err != nil {
		return Geometry{}, err
	}
	g.Source = g.Source.Add(b.Min)
	return g, nil
}

// CropImage crops img to the geometry's source rectangle and scales the
// result to the output size
func (r *Resolver) CropImage(img image.Image, g Geometry) (image.Image, error) {
	if g.OutputWidth <= 0 || g.OutputHeight <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidImageDimensions, g.OutputWidth, g.OutputHeight)
	}
	rect := g.Source.Intersect(img.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("empty crop rectangle")
	}
	cropped := imaging.Crop(img, rect)
	if rect.Dx() == g.OutputWidth && rect.Dy() == g.OutputHeight {
		return cropped, nil
	}
	return imaging.Resize(cropped, g.OutputWidth, g.OutputHeight, r.config.Filter), nil
}

// ratioSide returns side * num / den rounded to the nearest pixel (min 1)
func ratioSide(side, num, den int) int {
	return maxInt(1, int(math.Round(float64(side)*float64(num)/float64(den))))
}

// centered returns a w x h rectangle centered in a width x height frame
func centered(width, height, w, h int) image.Rectangle {
	w, h = minInt(w, width), minInt(h, height)
	x := (width - w) / 2
	y := (height - h) / 2
	return image.Rect(x, y, x+w, y+h)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
