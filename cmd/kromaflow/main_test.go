package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.SetNRGBA(0, 0, color.NRGBA{0, 0, 0, 255})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	// an empty config file keeps the user's config out of the test
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("logging:\n  level: error\n"), 0644))

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--config", cfgPath))
	err := cmd.Execute()
	return out.String(), err
}

func TestRenderSquare(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "photo.png")
	writePNG(t, in, 300, 200)
	outDir := filepath.Join(dir, "frames")

	out, err := execute(t, "render", "--in", in, "--out", outDir,
		"--format", "square", "--top", "HELLO", "--preset", "vintage", "--debug")
	require.NoError(t, err)

	exported := filepath.Join(outDir, "kromaflow-square.png")
	assert.Contains(t, out, "wrote "+exported)

	f, err := os.Open(exported)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 200, 200), img.Bounds())

	assert.FileExists(t, filepath.Join(outDir, "photo-square-debug.png"))
}

func TestRenderBatch(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in")
	require.NoError(t, os.MkdirAll(in, 0755))
	writePNG(t, filepath.Join(in, "a.png"), 40, 30)
	writePNG(t, filepath.Join(in, "b.png"), 30, 40)
	outDir := filepath.Join(dir, "out")

	_, err := execute(t, "render", "--in", in, "--out", outDir, "--format", "story", "--encoding", "webp")
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(outDir, "a-story.webp"))
	assert.FileExists(t, filepath.Join(outDir, "b-story.webp"))
}

func TestRenderRejectsBadFlags(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "photo.png")
	writePNG(t, in, 10, 10)

	_, err := execute(t, "render", "--in", in, "--out", dir, "--preset", "noir")
	assert.Error(t, err)

	_, err = execute(t, "render", "--in", in, "--out", dir, "--format", "panorama")
	assert.Error(t, err)

	_, err = execute(t, "render", "--in", in, "--out", dir, "--color", "blue")
	assert.Error(t, err)

	_, err = execute(t, "render", "--out", dir)
	assert.Error(t, err, "--in is required")
}

func TestPresetsCommand(t *testing.T) {
	out, err := execute(t, "presets")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))
	assert.Contains(t, out, "vintage")
	assert.Contains(t, out, "60%")
}

func TestFontsCommand(t *testing.T) {
	out, err := execute(t, "fonts")
	require.NoError(t, err)
	assert.Contains(t, out, "Anton (default)")
	assert.Contains(t, out, "Latin Modern Sans")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "kromaflow "))
}
