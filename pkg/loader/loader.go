// Package loader decodes user-chosen image files into bitmaps the editor
// can draw.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedFormat is returned for input that is not a decodable image
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Loader decodes images
type Loader struct {
	config Config
}

// Config holds configuration for the loader
type Config struct {
	// SupportedFormats lists accepted file type extensions as reported by
	// content sniffing
	SupportedFormats []string
	// MinImageSize is the minimum accepted width and height
	MinImageSize int
	// AutoOrient applies the EXIF orientation tag on decode
	AutoOrient bool
}

// DefaultConfig returns the standard loader configuration
func DefaultConfig() Config {
	return Config{
		SupportedFormats: []string{"jpg", "png", "gif", "webp", "bmp", "tif"},
		MinImageSize:     1,
		AutoOrient:       true,
	}
}

// New creates a new Loader with default configuration
func New() *Loader {
	return &Loader{config: DefaultConfig()}
}

// NewWithConfig creates a new Loader with custom configuration
func NewWithConfig(config Config) *Loader {
	return &Loader{config: config}
}

// LoadImage loads an image from file
func (l *Loader) LoadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	img, err := l.LoadImageFromReader(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// LoadImageFromReader loads an image from an io.Reader
func (l *Loader) LoadImageFromReader(reader io.Reader) (image.Image, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	return l.Decode(data)
}

// Decode sniffs the content type of data and decodes it
func (l *Loader) Decode(data []byte) (image.Image, error) {
	kind, err := filetype.Match(data)
	if err != nil || !filetype.IsImage(data) {
		return nil, ErrUnsupportedFormat
	}
	if !l.isFormatSupported(kind.Extension) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, kind.MIME.Value)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(l.config.AutoOrient))
	if err != nil && kind.Extension == "webp" {
		// some encoder variants only decode through libwebp
		img, err = webp.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	if err := l.ValidateImage(img); err != nil {
		return nil, err
	}
	return img, nil
}

// ImageInfo contains basic image metadata
type ImageInfo struct {
	Width       int
	Height      int
	AspectRatio float64
	Area        int
}

// Info returns basic information about an image
func Info(img image.Image) ImageInfo {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	info := ImageInfo{
		Width:  width,
		Height: height,
		Area:   width * height,
	}
	if height > 0 {
		info.AspectRatio = float64(width) / float64(height)
	}
	return info
}

// ValidateImage checks if an image meets minimum requirements
func (l *Loader) ValidateImage(img image.Image) error {
	bounds := img.Bounds()
	if bounds.Dx() < l.config.MinImageSize || bounds.Dy() < l.config.MinImageSize {
		return fmt.Errorf("image too small: %dx%d (minimum: %d)",
			bounds.Dx(), bounds.Dy(), l.config.MinImageSize)
	}
	return nil
}

func (l *Loader) isFormatSupported(format string) bool {
	for _, supported := range l.config.SupportedFormats {
		if strings.EqualFold(format, supported) {
			return true
		}
	}
	return false
}
