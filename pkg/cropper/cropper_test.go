package cropper

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/menta2k/kromaflow/pkg/types"
)

// createTestImage creates a simple test image
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	// Create a pattern with a bright region in the center
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x > width/3 && x < 2*width/3 && y > height/3 && y < 2*height/3 {
				img.Set(x, y, color.RGBA{255, 255, 255, 255})
			} else {
				img.Set(x, y, color.RGBA{64, 64, 64, 255})
			}
		}
	}

	return img
}

var testSizes = [][2]int{
	{1, 1}, {1, 1000}, {1000, 1}, {400, 300}, {300, 400}, {1080, 1920},
	{1920, 1080}, {1024, 1024}, {1025, 3}, {2000, 1000}, {4032, 3024}, {777, 1313},
}

func TestNew(t *testing.T) {
	r := New()
	if r == nil {
		t.Fatal("New() returned nil")
	}
	if r.MaxSize() != DefaultMaxSize {
		t.Errorf("Expected default max size %d, got %d", DefaultMaxSize, r.MaxSize())
	}
}

func TestCapDimensions(t *testing.T) {
	r := NewWithConfig(CropConfig{MaxSize: 1024})

	tests := []struct {
		w, h         int
		wantW, wantH int
	}{
		{800, 600, 800, 600},
		{1024, 1024, 1024, 1024},
		{2000, 1000, 1024, 512},
		{1000, 2000, 512, 1024},
		{4032, 3024, 1024, 768},
		{3000, 1, 1024, 1},
	}

	for _, test := range tests {
		w, h, scale := r.CapDimensions(test.w, test.h)
		if w != test.wantW || h != test.wantH {
			t.Errorf("CapDimensions(%d, %d) = %dx%d, expected %dx%d", test.w, test.h, w, h, test.wantW, test.wantH)
		}
		if test.w <= 1024 && test.h <= 1024 && scale != 1 {
			t.Errorf("CapDimensions(%d, %d) scale = %f, expected 1", test.w, test.h, scale)
		}
	}

	uncapped := NewWithConfig(CropConfig{MaxSize: 0})
	if w, h, _ := uncapped.CapDimensions(5000, 4000); w != 5000 || h != 4000 {
		t.Errorf("Expected cap to be disabled, got %dx%d", w, h)
	}
}

func TestResolveOriginal(t *testing.T) {
	r := New()

	for _, sz := range testSizes {
		g, err := r.Resolve(sz[0], sz[1], types.Original)
		if err != nil {
			t.Fatalf("Resolve(%v) failed: %v", sz, err)
		}
		cw, ch, _ := r.CapDimensions(sz[0], sz[1])
		if g.OutputWidth != cw || g.OutputHeight != ch {
			t.Errorf("Resolve(%v) output %dx%d, expected %dx%d", sz, g.OutputWidth, g.OutputHeight, cw, ch)
		}
		if g.Source != image.Rect(0, 0, sz[0], sz[1]) {
			t.Errorf("Resolve(%v) source %v, expected whole image", sz, g.Source)
		}
		if g.Dest != g.Bounds() {
			t.Errorf("Resolve(%v) dest %v, expected whole canvas", sz, g.Dest)
		}
	}
}

func TestResolveSquare(t *testing.T) {
	r := New()

	for _, sz := range testSizes {
		g, err := r.Resolve(sz[0], sz[1], types.Square)
		if err != nil {
			t.Fatalf("Resolve(%v) failed: %v", sz, err)
		}
		cw, ch, _ := r.CapDimensions(sz[0], sz[1])
		side := minInt(cw, ch)
		if g.OutputWidth != side || g.OutputHeight != side {
			t.Errorf("Resolve(%v) output %dx%d, expected %dx%d", sz, g.OutputWidth, g.OutputHeight, side, side)
		}
		if g.Source.Dx() != g.Source.Dy() {
			t.Errorf("Resolve(%v) source %v is not square", sz, g.Source)
		}
		// centered within one pixel
		left, right := g.Source.Min.X, sz[0]-g.Source.Max.X
		top, bottom := g.Source.Min.Y, sz[1]-g.Source.Max.Y
		if abs(left-right) > 1 || abs(top-bottom) > 1 {
			t.Errorf("Resolve(%v) source %v is not centered", sz, g.Source)
		}
	}
}

func TestResolveStory(t *testing.T) {
	r := New()

	for _, sz := range testSizes {
		g, err := r.Resolve(sz[0], sz[1], types.Story)
		if err != nil {
			t.Fatalf("Resolve(%v) failed: %v", sz, err)
		}
		if g.OutputWidth < 1 || g.OutputHeight < 1 {
			t.Fatalf("Resolve(%v) produced empty output", sz)
		}
		// rounding to whole pixels bounds the error by half a pixel on one side
		tolerance := 1 / float64(minInt(g.OutputWidth, g.OutputHeight))
		if g.OutputHeight > 16 && math.Abs(g.AspectRatio()-9.0/16.0) > tolerance {
			t.Errorf("Resolve(%v) aspect %f, expected 9:16", sz, g.AspectRatio())
		}
		if !g.Source.In(image.Rect(0, 0, sz[0], sz[1])) {
			t.Errorf("Resolve(%v) source %v escapes the image", sz, g.Source)
		}
	}
}

func TestResolveStoryOrientation(t *testing.T) {
	r := New()

	// wide: full height kept, width cropped and centered
	g, err := r.Resolve(1600, 900, types.Story)
	if err != nil {
		t.Fatal(err)
	}
	if g.Source.Dy() != 900 || g.Source.Dx() != 506 {
		t.Errorf("Expected 506x900 source for wide image, got %v", g.Source)
	}
	if g.Source.Min.X != (1600-506)/2 || g.Source.Min.Y != 0 {
		t.Errorf("Expected horizontally centered source, got %v", g.Source)
	}

	// tall: full width kept, height cropped and centered
	g, err = r.Resolve(900, 2000, types.Story)
	if err != nil {
		t.Fatal(err)
	}
	if g.Source.Dx() != 900 || g.Source.Dy() != 1600 {
		t.Errorf("Expected 900x1600 source for tall image, got %v", g.Source)
	}
	if g.Source.Min.Y != 200 || g.Source.Min.X != 0 {
		t.Errorf("Expected vertically centered source, got %v", g.Source)
	}
	if g.OutputWidth != 461 || g.OutputHeight != 820 {
		t.Errorf("Expected capped 461x820 output, got %dx%d", g.OutputWidth, g.OutputHeight)
	}
}

func TestResolveCappedSquare(t *testing.T) {
	r := NewWithConfig(CropConfig{MaxSize: 1024})

	g, err := r.Resolve(2000, 1000, types.Square)
	if err != nil {
		t.Fatal(err)
	}
	if g.OutputWidth != 512 || g.OutputHeight != 512 {
		t.Errorf("Expected 512x512, got %dx%d", g.OutputWidth, g.OutputHeight)
	}
	if g.Source != image.Rect(500, 0, 1500, 1000) {
		t.Errorf("Expected centered 1000px source, got %v", g.Source)
	}
	if g.Scale != 0.512 {
		t.Errorf("Expected scale 0.512, got %f", g.Scale)
	}
}

func TestResolveInvalidDimensions(t *testing.T) {
	r := New()

	for _, sz := range [][2]int{{0, 100}, {100, 0}, {0, 0}, {-5, 10}} {
		_, err := r.Resolve(sz[0], sz[1], types.Original)
		if !errors.Is(err, ErrInvalidImageDimensions) {
			t.Errorf("Resolve(%v) error = %v, expected ErrInvalidImageDimensions", sz, err)
		}
	}

	if _, err := r.Resolve(10, 10, types.Format(9)); !errors.Is(err, types.ErrUnknownFormat) {
		t.Errorf("Expected ErrUnknownFormat, got %v", err)
	}
}

func TestResolveImageOffsetBounds(t *testing.T) {
	r := New()
	img := image.NewRGBA(image.Rect(10, 20, 410, 320))

	g, err := r.ResolveImage(img, types.Square)
	if err != nil {
		t.Fatal(err)
	}
	if g.Source != image.Rect(60, 20, 360, 320) {
		t.Errorf("Expected source shifted by bounds origin, got %v", g.Source)
	}
}

func TestCropImage(t *testing.T) {
	r := NewWithConfig(CropConfig{MaxSize: 200})
	img := createTestImage(400, 300)

	for _, f := range types.Formats() {
		g, err := r.ResolveImage(img, f)
		if err != nil {
			t.Fatal(err)
		}
		out, err := r.CropImage(img, g)
		if err != nil {
			t.Fatalf("CropImage(%v) failed: %v", f, err)
		}
		b := out.Bounds()
		if b.Dx() != g.OutputWidth || b.Dy() != g.OutputHeight {
			t.Errorf("CropImage(%v) gave %dx%d, expected %dx%d", f, b.Dx(), b.Dy(), g.OutputWidth, g.OutputHeight)
		}
	}
}

func TestDebugOverlay(t *testing.T) {
	img := createTestImage(400, 300)
	g, err := New().ResolveImage(img, types.Square)
	if err != nil {
		t.Fatal(err)
	}

	overlay := DebugOverlay(img, g)
	if overlay.Bounds() != img.Bounds() {
		t.Fatalf("Overlay bounds %v, expected %v", overlay.Bounds(), img.Bounds())
	}
	if got := overlay.NRGBAAt(g.Source.Min.X, 10); got != cropBoxColor {
		t.Errorf("Expected crop box color on the left edge, got %v", got)
	}
	if got := overlay.NRGBAAt(5, 5); got != (color.NRGBA{64, 64, 64, 255}) {
		t.Errorf("Expected untouched pixel outside the box, got %v", got)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func BenchmarkResolve(b *testing.B) {
	r := New()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Resolve(4032, 3024, types.Story)
	}
}
