package settings

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownPreset is returned when a preset name is not registered
var ErrUnknownPreset = errors.New("unknown preset")

// Preset is a named bundle of filter values. Applying one replaces the
// five filter fields together and leaves text, font, color and format alone.
type Preset struct {
	Brightness int
	Contrast   int
	Saturation int
	Sepia      int
	Grayscale  bool
}

// Preset names
const (
	PresetCyberpunk = "cyberpunk"
	PresetVintage   = "vintage"
	PresetCinematic = "cinematic"
	PresetNormal    = "normal"
)

// Presets contains all the built-in presets
var Presets = map[string]Preset{
	PresetCyberpunk: {Brightness: 110, Contrast: 130, Saturation: 200, Sepia: 0},
	PresetVintage:   {Brightness: 90, Contrast: 80, Saturation: 80, Sepia: 60},
	PresetCinematic: {Brightness: 80, Contrast: 140, Saturation: 90, Sepia: 0},
	PresetNormal:    {Brightness: 100, Contrast: 100, Saturation: 100, Sepia: 0},
}

// LookupPreset returns the preset registered under name
func LookupPreset(name string) (Preset, error) {
	p, ok := Presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return p, nil
}

// ApplyPreset returns s with the named preset's filter values. On an
// unknown name s is returned unchanged together with ErrUnknownPreset.
func (s Settings) ApplyPreset(name string) (Settings, error) {
	p, err := LookupPreset(name)
	if err != nil {
		return s, err
	}
	return s.WithPreset(p), nil
}

// WithPreset merges p's filter values over s
func (s Settings) WithPreset(p Preset) Settings {
	s.Brightness = p.Brightness
	s.Contrast = p.Contrast
	s.Saturation = p.Saturation
	s.Sepia = p.Sepia
	s.Grayscale = p.Grayscale
	return s
}

// PresetNames returns the registered preset names, sorted
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
