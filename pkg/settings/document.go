package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/menta2k/kromaflow/pkg/types"
)

// Document is the on-disk form of a set of overrides. Every field is
// optional; a named preset is applied before the individual fields.
type Document struct {
	Preset     string  `yaml:"preset,omitempty" toml:"preset,omitempty" json:"preset,omitempty"`
	TopText    *string `yaml:"top_text,omitempty" toml:"top_text,omitempty" json:"top_text,omitempty"`
	BottomText *string `yaml:"bottom_text,omitempty" toml:"bottom_text,omitempty" json:"bottom_text,omitempty"`
	Brightness *int    `yaml:"brightness,omitempty" toml:"brightness,omitempty" json:"brightness,omitempty"`
	Contrast   *int    `yaml:"contrast,omitempty" toml:"contrast,omitempty" json:"contrast,omitempty"`
	Saturation *int    `yaml:"saturation,omitempty" toml:"saturation,omitempty" json:"saturation,omitempty"`
	Sepia      *int    `yaml:"sepia,omitempty" toml:"sepia,omitempty" json:"sepia,omitempty"`
	Grayscale  *bool   `yaml:"grayscale,omitempty" toml:"grayscale,omitempty" json:"grayscale,omitempty"`
	FontFamily *string `yaml:"font_family,omitempty" toml:"font_family,omitempty" json:"font_family,omitempty"`
	TextColor  *string `yaml:"text_color,omitempty" toml:"text_color,omitempty" json:"text_color,omitempty"`
	Format     *string `yaml:"format,omitempty" toml:"format,omitempty" json:"format,omitempty"`
}

// LoadDocument reads a settings document. The decoder is picked from the
// file extension: .yaml/.yml, .toml or .json.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}
	doc, err := ParseDocument(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}
	return doc, nil
}

// ParseDocument decodes data according to ext (with or without the dot)
func ParseDocument(data []byte, ext string) (*Document, error) {
	var doc Document
	var err error

	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "yaml", "yml":
		err = yaml.Unmarshal(data, &doc)
	case "toml":
		err = toml.Unmarshal(data, &doc)
	case "json":
		err = json.Unmarshal(data, &doc)
	default:
		return nil, fmt.Errorf("unsupported settings format: %q", ext)
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Apply merges the document over s. s is returned unchanged when any field
// fails to parse.
func (d *Document) Apply(s Settings) (Settings, error) {
	out := s
	if d.Preset != "" {
		var err error
		if out, err = out.ApplyPreset(d.Preset); err != nil {
			return s, err
		}
	}
	if d.TopText != nil {
		out.TopText = *d.TopText
	}
	if d.BottomText != nil {
		out.BottomText = *d.BottomText
	}
	if d.Brightness != nil {
		out.Brightness = *d.Brightness
	}
	if d.Contrast != nil {
		out.Contrast = *d.Contrast
	}
	if d.Saturation != nil {
		out.Saturation = *d.Saturation
	}
	if d.Sepia != nil {
		out.Sepia = *d.Sepia
	}
	if d.Grayscale != nil {
		out.Grayscale = *d.Grayscale
	}
	if d.FontFamily != nil {
		out.FontFamily = *d.FontFamily
	}
	if d.TextColor != nil {
		c, err := ParseHexColor(*d.TextColor)
		if err != nil {
			return s, err
		}
		out.TextColor = c
	}
	if d.Format != nil {
		f, err := types.ParseFormat(*d.Format)
		if err != nil {
			return s, err
		}
		out.Format = f
	}
	return out, nil
}
