package settings

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/kromaflow/pkg/types"
)

func TestDefault(t *testing.T) {
	s := Default()

	assert.Equal(t, "", s.TopText)
	assert.Equal(t, "", s.BottomText)
	assert.Equal(t, 100, s.Brightness)
	assert.Equal(t, 100, s.Contrast)
	assert.Equal(t, 100, s.Saturation)
	assert.Equal(t, 0, s.Sepia)
	assert.False(t, s.Grayscale)
	assert.Equal(t, "Anton", s.FontFamily)
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, s.TextColor)
	assert.Equal(t, types.Original, s.Format)
}

func TestWithLeavesReceiverUntouched(t *testing.T) {
	base := Default()
	next := base.WithTopText("hello").WithBrightness(150).WithFormat(types.Story)

	assert.Equal(t, Default(), base)
	assert.Equal(t, "hello", next.TopText)
	assert.Equal(t, 150, next.Brightness)
	assert.Equal(t, types.Story, next.Format)
	assert.True(t, next.HasText())
	assert.False(t, base.HasText())
}

func TestApplyPresetVintage(t *testing.T) {
	prior := Default().
		WithTopText("top").
		WithBottomText("bottom").
		WithFontFamily("Go Mono").
		WithTextColor(color.NRGBA{255, 0, 0, 255}).
		WithFormat(types.Square).
		WithGrayscale(true)

	got, err := prior.ApplyPreset(PresetVintage)
	require.NoError(t, err)

	want := prior
	want.Brightness = 90
	want.Contrast = 80
	want.Saturation = 80
	want.Sepia = 60
	want.Grayscale = false
	assert.Equal(t, want, got)
}

func TestApplyPresetTable(t *testing.T) {
	tests := []struct {
		name   string
		preset string
		want   Preset
	}{
		{"cyberpunk", PresetCyberpunk, Preset{110, 130, 200, 0, false}},
		{"vintage", PresetVintage, Preset{90, 80, 80, 60, false}},
		{"cinematic", PresetCinematic, Preset{80, 140, 90, 0, false}},
		{"normal", PresetNormal, Preset{100, 100, 100, 0, false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Default().WithSepia(33).ApplyPreset(tt.preset)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Filters())
		})
	}
}

func TestApplyUnknownPreset(t *testing.T) {
	prior := Default().WithBrightness(42)

	got, err := prior.ApplyPreset("sunset")
	assert.ErrorIs(t, err, ErrUnknownPreset)
	assert.Equal(t, prior, got)
}

func TestPresetNames(t *testing.T) {
	assert.Equal(t, []string{"cinematic", "cyberpunk", "normal", "vintage"}, PresetNames())
}

func TestReset(t *testing.T) {
	s := Default().WithTopText("x").WithContrast(10).WithFormat(types.Story).WithGrayscale(true)
	assert.Equal(t, Default(), s.Reset())
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		input   string
		want    color.NRGBA
		wantErr bool
	}{
		{"#ffffff", color.NRGBA{255, 255, 255, 255}, false},
		{"000000", color.NRGBA{0, 0, 0, 255}, false},
		{"#f80", color.NRGBA{0xff, 0x88, 0x00, 0xff}, false},
		{"#11223344", color.NRGBA{0x11, 0x22, 0x33, 0x44}, false},
		{"#12345", color.NRGBA{}, true},
		{"#gggggg", color.NRGBA{}, true},
		{"white", color.NRGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseHexColor(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidColor)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, "#ff8800", FormatHexColor(color.NRGBA{0xff, 0x88, 0x00, 0xff}))
	assert.Equal(t, "#11223344", FormatHexColor(color.NRGBA{0x11, 0x22, 0x33, 0x44}))
}

func TestParseDocument(t *testing.T) {
	yamlDoc := []byte(`
preset: cinematic
top_text: "ONE DOES NOT"
bottom_text: "SIMPLY"
sepia: 20
text_color: "#ffcc00"
format: story
`)
	tomlDoc := []byte(`
preset = "cinematic"
top_text = "ONE DOES NOT"
bottom_text = "SIMPLY"
sepia = 20
text_color = "#ffcc00"
format = "story"
`)
	jsonDoc := []byte(`{"preset":"cinematic","top_text":"ONE DOES NOT","bottom_text":"SIMPLY","sepia":20,"text_color":"#ffcc00","format":"story"}`)

	want := Default()
	want.TopText = "ONE DOES NOT"
	want.BottomText = "SIMPLY"
	want.Brightness = 80
	want.Contrast = 140
	want.Saturation = 90
	want.Sepia = 20
	want.TextColor = color.NRGBA{0xff, 0xcc, 0x00, 0xff}
	want.Format = types.Story

	for ext, data := range map[string][]byte{".yaml": yamlDoc, "toml": tomlDoc, ".JSON": jsonDoc} {
		t.Run(ext, func(t *testing.T) {
			doc, err := ParseDocument(data, ext)
			require.NoError(t, err)
			got, err := doc.Apply(Default())
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestDocumentApplyErrors(t *testing.T) {
	bad := "purple-ish"
	doc := &Document{TextColor: &bad}
	prior := Default().WithTopText("keep")

	got, err := doc.Apply(prior)
	assert.ErrorIs(t, err, ErrInvalidColor)
	assert.Equal(t, prior, got)

	format := "panorama"
	_, err = (&Document{Format: &format}).Apply(prior)
	assert.ErrorIs(t, err, types.ErrUnknownFormat)

	_, err = (&Document{Preset: "nope"}).Apply(prior)
	assert.ErrorIs(t, err, ErrUnknownPreset)

	_, err = ParseDocument([]byte("x"), ".ini")
	assert.Error(t, err)
}

func TestLoadDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "caption.yml")
	require.NoError(t, os.WriteFile(path, []byte("grayscale: true\nfont_family: Go\n"), 0o644))

	doc, err := LoadDocument(path)
	require.NoError(t, err)

	got, err := doc.Apply(Default())
	require.NoError(t, err)
	assert.True(t, got.Grayscale)
	assert.Equal(t, "Go", got.FontFamily)

	_, err = LoadDocument(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
