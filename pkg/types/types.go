package types

import (
	"errors"
	"fmt"
	"strings"
)

// Format is a named output aspect-ratio policy
type Format int

const (
	// Original keeps the image's own proportions
	Original Format = iota
	// Square crops to a centered 1:1 frame
	Square
	// Story crops to a centered 9:16 frame
	Story
)

// ErrUnknownFormat is returned when a format tag does not name a Format
var ErrUnknownFormat = errors.New("unknown format")

var formatNames = [...]string{
	Original: "original",
	Square:   "square",
	Story:    "story",
}

// String returns the format tag (original, square, story)
func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return fmt.Sprintf("format(%d)", int(f))
	}
	return formatNames[f]
}

// Valid reports whether f is one of the known formats
func (f Format) Valid() bool {
	return f >= 0 && int(f) < len(formatNames)
}

// ParseFormat maps a format tag to its Format. Matching ignores case and
// surrounding spaces.
func ParseFormat(tag string) (Format, error) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for i, name := range formatNames {
		if name == tag {
			return Format(i), nil
		}
	}
	return Original, fmt.Errorf("%w: %q", ErrUnknownFormat, tag)
}

// Formats returns every known format in declaration order
func Formats() []Format {
	return []Format{Original, Square, Story}
}

// MarshalText implements encoding.TextMarshaler
func (f Format) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, int(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (f *Format) UnmarshalText(text []byte) error {
	parsed, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// AspectRatio represents a width:height proportion
type AspectRatio struct {
	Width  int
	Height int
	Name   string
}

// Ratio returns the aspect ratio as width divided by height
func (a AspectRatio) Ratio() float64 {
	return float64(a.Width) / float64(a.Height)
}

// Common aspect ratios
var (
	SquareRatio = AspectRatio{1, 1, "square"}
	StoryRatio  = AspectRatio{9, 16, "story"}
)
