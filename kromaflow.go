// Package kromaflow is a caption-and-filter image editor engine.
//
// An Editor holds one image and one immutable settings value. Every change
// to either requests a redraw; requests are coalesced by a scheduler so that
// a burst of edits costs a single render pass, and a pass always draws the
// settings current at its start.
//
// Basic usage:
//
//	package main
//
//	import (
//		"log"
//
//		"github.com/menta2k/kromaflow"
//		"github.com/menta2k/kromaflow/pkg/types"
//	)
//
//	func main() {
//		editor := kromaflow.New()
//
//		if err := editor.LoadImage("photo.jpg"); err != nil {
//			log.Fatal(err)
//		}
//		editor.SetTopText("WHEN THE BUILD")
//		editor.SetBottomText("PASSES FIRST TRY")
//		if err := editor.ApplyPreset("vintage"); err != nil {
//			log.Fatal(err)
//		}
//		if err := editor.SetFormat(types.Square); err != nil {
//			log.Fatal(err)
//		}
//
//		path, err := editor.Save()
//		if err != nil {
//			log.Fatal(err)
//		}
//		log.Printf("saved %s", path)
//	}
//
// The engine consists of these components:
//
//  1. Geometry resolver (pkg/cropper): output size and source crop per format
//  2. Filter chain (pkg/filter): CSS-style color filters
//  3. Frame compositor (pkg/compositor): draw order and caption layout
//  4. Raster canvas (pkg/canvas): the in-memory drawing surface
//  5. Redraw scheduler (pkg/scheduler): request coalescing
package kromaflow

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/menta2k/kromaflow/pkg/canvas"
	"github.com/menta2k/kromaflow/pkg/compositor"
	"github.com/menta2k/kromaflow/pkg/cropper"
	"github.com/menta2k/kromaflow/pkg/exporter"
	"github.com/menta2k/kromaflow/pkg/loader"
	"github.com/menta2k/kromaflow/pkg/scheduler"
	"github.com/menta2k/kromaflow/pkg/settings"
	"github.com/menta2k/kromaflow/pkg/types"
)

// Version of the kromaflow library
const Version = "1.0.0"

// Frame is the result of one render pass
type Frame struct {
	Image    *image.RGBA
	Settings settings.Settings
	Geometry cropper.Geometry
}

// Options configures an Editor. Nil fields get defaults.
type Options struct {
	Resolver   *cropper.Resolver
	Compositor *compositor.Compositor
	Canvas     *canvas.Raster
	Loader     *loader.Loader
	Exporter   *exporter.Exporter
	// Frames runs render passes. The default is a ManualFrames the caller
	// drives through Tick, or Draw can be called directly.
	Frames scheduler.FrameHost
	// OnFrame is called after every drawn frame, on the drawing goroutine.
	// The frame image must not be retained past the call, and the callback
	// must not call back into the Editor's drawing methods.
	OnFrame func(Frame) error
	// Settings is the initial value; Default() when nil
	Settings *settings.Settings
	Logger   *slog.Logger
}

type source struct {
	img image.Image
}

// Editor is an editing session
type Editor struct {
	resolver   *cropper.Resolver
	compositor *compositor.Compositor
	raster     *canvas.Raster
	loader     *loader.Loader
	exporter   *exporter.Exporter
	frames     scheduler.FrameHost
	scheduler  *scheduler.Scheduler
	onFrame    func(Frame) error
	log        *slog.Logger

	settings atomic.Pointer[settings.Settings]
	image    atomic.Pointer[source]

	// drawMu guards the raster and geometry
	drawMu   sync.Mutex
	geometry cropper.Geometry
	drawn    bool
}

// New creates an Editor with default components
func New() *Editor {
	return NewWithOptions(Options{})
}

// NewWithOptions creates an Editor with custom components
func NewWithOptions(opts Options) *Editor {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Resolver == nil {
		opts.Resolver = cropper.New()
	}
	if opts.Compositor == nil {
		opts.Compositor = compositor.New()
	}
	if opts.Canvas == nil {
		opts.Canvas = canvas.NewWithConfig(canvas.Config{Logger: opts.Logger})
	}
	if opts.Loader == nil {
		opts.Loader = loader.New()
	}
	if opts.Exporter == nil {
		opts.Exporter = exporter.New()
	}
	if opts.Frames == nil {
		opts.Frames = &scheduler.ManualFrames{}
	}

	e := &Editor{
		resolver:   opts.Resolver,
		compositor: opts.Compositor,
		raster:     opts.Canvas,
		loader:     opts.Loader,
		exporter:   opts.Exporter,
		frames:     opts.Frames,
		onFrame:    opts.OnFrame,
		log:        opts.Logger,
	}
	e.scheduler = scheduler.NewWithConfig(opts.Frames, e.pass, scheduler.Config{Logger: opts.Logger})

	initial := settings.Default()
	if opts.Settings != nil {
		initial = *opts.Settings
	}
	e.settings.Store(&initial)
	return e
}

// Settings returns the current settings
func (e *Editor) Settings() settings.Settings {
	return *e.settings.Load()
}

// Image returns the loaded image, or nil
func (e *Editor) Image() image.Image {
	if src := e.image.Load(); src != nil {
		return src.img
	}
	return nil
}

// HasImage reports whether an image is loaded
func (e *Editor) HasImage() bool {
	return e.Image() != nil
}

// Frames returns the frame host driving render passes
func (e *Editor) Frames() scheduler.FrameHost {
	return e.frames
}

// Scheduler returns the redraw scheduler
func (e *Editor) Scheduler() *scheduler.Scheduler {
	return e.scheduler
}

// RequestRedraw asks for a render pass at the next frame
func (e *Editor) RequestRedraw() {
	e.scheduler.RequestRedraw()
}

// Update replaces the settings with fn applied to the current value and
// requests a redraw. Concurrent updates never interleave partially.
func (e *Editor) Update(fn func(settings.Settings) settings.Settings) {
	for {
		old := e.settings.Load()
		next := fn(*old)
		if e.settings.CompareAndSwap(old, &next) {
			break
		}
	}
	e.RequestRedraw()
}

// update is Update for mutations that can fail. On error the settings are
// left unchanged and no redraw is requested.
func (e *Editor) update(fn func(settings.Settings) (settings.Settings, error)) error {
	for {
		old := e.settings.Load()
		next, err := fn(*old)
		if err != nil {
			return err
		}
		if e.settings.CompareAndSwap(old, &next) {
			break
		}
	}
	e.RequestRedraw()
	return nil
}

// SetTopText sets the top caption
func (e *Editor) SetTopText(text string) {
	e.Update(func(s settings.Settings) settings.Settings { return s.WithTopText(text) })
}

// SetBottomText sets the bottom caption
func (e *Editor) SetBottomText(text string) {
	e.Update(func(s settings.Settings) settings.Settings { return s.WithBottomText(text) })
}

// SetBrightness sets brightness in percent
func (e *Editor) SetBrightness(v int) {
	e.Update(func(s settings.Settings) settings.Settings { return s.WithBrightness(v) })
}

// SetContrast sets contrast in percent
func (e *Editor) SetContrast(v int) {
	e.Update(func(s settings.Settings) settings.Settings { return s.WithContrast(v) })
}

// SetSaturation sets saturation in percent
func (e *Editor) SetSaturation(v int) {
	e.Update(func(s settings.Settings) settings.Settings { return s.WithSaturation(v) })
}

// SetSepia sets sepia in percent
func (e *Editor) SetSepia(v int) {
	e.Update(func(s settings.Settings) settings.Settings { return s.WithSepia(v) })
}

// SetGrayscale toggles full grayscale
func (e *Editor) SetGrayscale(on bool) {
	e.Update(func(s settings.Settings) settings.Settings { return s.WithGrayscale(on) })
}

// SetFontFamily sets the caption font family. Unknown families render
// with the default family.
func (e *Editor) SetFontFamily(family string) {
	e.Update(func(s settings.Settings) settings.Settings { return s.WithFontFamily(family) })
}

// SetTextColor sets the caption fill color
func (e *Editor) SetTextColor(c color.Color) {
	nc := color.NRGBAModel.Convert(c).(color.NRGBA)
	e.Update(func(s settings.Settings) settings.Settings { return s.WithTextColor(nc) })
}

// SetTextColorHex sets the caption fill color from #rgb, #rrggbb or
// #rrggbbaa
func (e *Editor) SetTextColorHex(hex string) error {
	c, err := settings.ParseHexColor(hex)
	if err != nil {
		return err
	}
	e.SetTextColor(c)
	return nil
}

// SetFormat sets the output format
func (e *Editor) SetFormat(f types.Format) error {
	if !f.Valid() {
		return fmt.Errorf("%w: %s", types.ErrUnknownFormat, f)
	}
	e.Update(func(s settings.Settings) settings.Settings { return s.WithFormat(f) })
	return nil
}

// SetFormatTag sets the output format from original, square or story
func (e *Editor) SetFormatTag(tag string) error {
	f, err := types.ParseFormat(tag)
	if err != nil {
		return err
	}
	return e.SetFormat(f)
}

// ApplyPreset replaces the filter values with a named preset
func (e *Editor) ApplyPreset(name string) error {
	return e.update(func(s settings.Settings) (settings.Settings, error) {
		return s.ApplyPreset(name)
	})
}

// ApplyDocument applies a settings document on top of the current settings
func (e *Editor) ApplyDocument(doc *settings.Document) error {
	return e.update(doc.Apply)
}

// Reset restores every setting to its default. The loaded image is kept.
func (e *Editor) Reset() {
	e.Update(settings.Settings.Reset)
}

// LoadImage decodes the file at path and makes it the current image. On
// failure the current image is kept.
func (e *Editor) LoadImage(path string) error {
	img, err := e.loader.LoadImage(path)
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}
	e.SetImage(img)
	return nil
}

// LoadImageFromReader decodes r and makes it the current image
func (e *Editor) LoadImageFromReader(r io.Reader) error {
	img, err := e.loader.LoadImageFromReader(r)
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}
	e.SetImage(img)
	return nil
}

// SetImage makes img the current image. The editor never modifies it.
func (e *Editor) SetImage(img image.Image) {
	if img == nil {
		e.image.Store(nil)
	} else {
		e.image.Store(&source{img: img})
	}
	e.RequestRedraw()
}

// Draw renders the current image with the current settings. It is a no-op
// without an image.
func (e *Editor) Draw() error {
	_, err := e.draw(false)
	return err
}

// draw renders one frame. The returned frame is nil when there is no image;
// its Image is a copy of the surface only when snapshot is set.
func (e *Editor) draw(snapshot bool) (*Frame, error) {
	img := e.Image()
	if img == nil {
		return nil, nil
	}
	s := e.Settings()

	g, err := e.resolver.ResolveImage(img, s.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve geometry: %w", err)
	}

	e.drawMu.Lock()
	defer e.drawMu.Unlock()

	e.compositor.Render(e.raster, img, g, s)
	e.geometry = g
	e.drawn = true

	frame := &Frame{Image: e.raster.Image(), Settings: s, Geometry: g}
	if e.onFrame != nil {
		if err := e.onFrame(*frame); err != nil {
			return frame, fmt.Errorf("frame callback failed: %w", err)
		}
	}
	if snapshot {
		frame.Image = e.raster.Snapshot()
	}
	return frame, nil
}

// pass is the scheduler's render pass
func (e *Editor) pass() error {
	frame, err := e.draw(false)
	if err != nil {
		return err
	}
	if frame == nil {
		e.log.Debug("redraw skipped, no image loaded")
	}
	return nil
}

// render draws and returns a private copy of the frame
func (e *Editor) render() (*Frame, error) {
	frame, err := e.draw(true)
	if err != nil {
		return nil, err
	}
	if frame == nil {
		return nil, exporter.ErrExportWithNoImage
	}
	return frame, nil
}

// Geometry returns the geometry of the last drawn frame
func (e *Editor) Geometry() (cropper.Geometry, bool) {
	e.drawMu.Lock()
	defer e.drawMu.Unlock()
	return e.geometry, e.drawn
}

// Surface returns a copy of the last drawn frame, or nil before the first
// draw
func (e *Editor) Surface() *image.RGBA {
	e.drawMu.Lock()
	defer e.drawMu.Unlock()
	if !e.drawn {
		return nil
	}
	return e.raster.Snapshot()
}

// Export draws the current frame and encodes it to w
func (e *Editor) Export(w io.Writer) error {
	frame, err := e.render()
	if err != nil {
		return err
	}
	return e.exporter.Encode(w, frame.Image)
}

// Filename returns the export file name for the current format
func (e *Editor) Filename() string {
	return e.exporter.Filename(e.Settings().Format)
}

// Save draws the current frame and writes it to the exporter's directory,
// returning the path written
func (e *Editor) Save() (string, error) {
	frame, err := e.render()
	if err != nil {
		return "", err
	}
	path, err := e.exporter.Save(frame.Image, frame.Settings.Format)
	if err != nil {
		return "", err
	}
	e.log.Info("frame exported", "path", path, "format", frame.Settings.Format)
	return path, nil
}
