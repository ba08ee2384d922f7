// Package exporter writes a rendered frame as a lossless image file.
package exporter

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"github.com/menta2k/kromaflow/internal/utils"
	"github.com/menta2k/kromaflow/pkg/types"
	"github.com/menta2k/kromaflow/pkg/usererr"
)

// ErrExportWithNoImage is returned when there is no frame to export
var ErrExportWithNoImage = usererr.New("export requested with no image loaded", "Load an image first!")

// Encoding is the output file encoding
type Encoding int

const (
	// PNG is the default encoding
	PNG Encoding = iota
	// WebP is lossless WebP
	WebP
)

func (e Encoding) String() string {
	switch e {
	case PNG:
		return "png"
	case WebP:
		return "webp"
	default:
		return fmt.Sprintf("encoding(%d)", int(e))
	}
}

// Extension returns the file extension without the dot
func (e Encoding) Extension() string {
	return e.String()
}

// ParseEncoding maps "png" or "webp" to an Encoding
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return PNG, nil
	case "webp":
		return WebP, nil
	default:
		return PNG, fmt.Errorf("unsupported export encoding: %q", s)
	}
}

// Config holds configuration for the exporter
type Config struct {
	Encoding Encoding
	// Dir is where Save writes files
	Dir string
	// WebPQuality trades encode time for size in lossless mode (0-100)
	WebPQuality float32
	// Prefix starts every exported file name
	Prefix string
}

// DefaultConfig returns the standard exporter configuration
func DefaultConfig() Config {
	return Config{
		Encoding:    PNG,
		Dir:         ".",
		WebPQuality: 75,
		Prefix:      "kromaflow",
	}
}

// Exporter encodes frames
type Exporter struct {
	config Config
}

// New creates a new Exporter with default configuration
func New() *Exporter {
	return &Exporter{config: DefaultConfig()}
}

// NewWithConfig creates a new Exporter with custom configuration
func NewWithConfig(config Config) *Exporter {
	if config.Prefix == "" {
		config.Prefix = DefaultConfig().Prefix
	}
	if config.Dir == "" {
		config.Dir = "."
	}
	return &Exporter{config: config}
}

// Config returns the exporter configuration
func (e *Exporter) Config() Config {
	return e.config
}

// Filename returns the export file name for a frame in format
func (e *Exporter) Filename(format types.Format) string {
	name := fmt.Sprintf("%s-%s.%s", e.config.Prefix, format, e.config.Encoding.Extension())
	return utils.SanitizeFilename(name)
}

// Encode writes img to w. Nothing is written when img is nil or empty.
func (e *Exporter) Encode(w io.Writer, img image.Image) error {
	if img == nil || img.Bounds().Empty() {
		return ErrExportWithNoImage
	}

	switch e.config.Encoding {
	case WebP:
		if err := webp.Encode(w, img, &webp.Options{Lossless: true, Quality: e.config.WebPQuality}); err != nil {
			return fmt.Errorf("failed to encode webp: %w", err)
		}
	case PNG:
		if err := imaging.Encode(w, img, imaging.PNG); err != nil {
			return fmt.Errorf("failed to encode png: %w", err)
		}
	default:
		return fmt.Errorf("unsupported export encoding: %s", e.config.Encoding)
	}
	return nil
}

// Save encodes img and writes it into the configured directory, returning
// the path written. The file is only created once encoding succeeded.
func (e *Exporter) Save(img image.Image, format types.Format) (string, error) {
	var buf bytes.Buffer
	if err := e.Encode(&buf, img); err != nil {
		return "", err
	}

	if err := utils.EnsureDir(e.config.Dir); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(e.config.Dir, e.Filename(format))
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}
