package cropper

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// Overlay colors
var (
	cropBoxColor    = color.NRGBA{255, 204, 0, 255} // gold
	cropCenterColor = color.NRGBA{255, 0, 0, 255}
	imgCenterColor  = color.NRGBA{0, 170, 255, 255}
)

// DebugOverlay returns a copy of img with the geometry's source rectangle
// outlined, its center marked, and the image center marked
func DebugOverlay(img image.Image, g Geometry) *image.NRGBA {
	nrgba := imaging.Clone(img)
	w := nrgba.Bounds().Dx()
	h := nrgba.Bounds().Dy()

	stroke := int(math.Max(2, 0.004*float64(minInt(w, h)))) // ~0.4% of min side
	cross := int(math.Max(4, 0.01*float64(minInt(w, h))))   // ~1% of min side

	// imaging.Clone rebases to the origin
	box := g.Source.Sub(img.Bounds().Min).Intersect(nrgba.Bounds())
	if !box.Empty() {
		drawBox(nrgba, box, cropBoxColor, stroke)
		cx, cy := box.Min.X+box.Dx()/2, box.Min.Y+box.Dy()/2
		drawHLine(nrgba, cy, cx-cross, cx+cross, cropCenterColor)
		drawVLine(nrgba, cx, cy-cross, cy+cross, cropCenterColor)
	}

	ix, iy := w/2, h/2
	drawHLine(nrgba, iy, ix-6, ix+6, imgCenterColor)
	drawVLine(nrgba, ix, iy-6, iy+6, imgCenterColor)

	return nrgba
}

func drawBox(img *image.NRGBA, r image.Rectangle, c color.NRGBA, stroke int) {
	for s := 0; s < stroke; s++ {
		drawHLine(img, r.Min.Y+s, r.Min.X, r.Max.X, c)
		drawHLine(img, r.Max.Y-1-s, r.Min.X, r.Max.X, c)
		drawVLine(img, r.Min.X+s, r.Min.Y, r.Max.Y, c)
		drawVLine(img, r.Max.X-1-s, r.Min.Y, r.Max.Y, c)
	}
}

func drawHLine(img *image.NRGBA, y, x0, x1 int, c color.NRGBA) {
	if y < 0 || y >= img.Bounds().Dy() {
		return
	}
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	x0 = maxInt(x0, 0)
	x1 = minInt(x1, img.Bounds().Dx())
	i := y*img.Stride + x0*4
	for x := x0; x < x1; x++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += 4
	}
}

func drawVLine(img *image.NRGBA, x, y0, y1 int, c color.NRGBA) {
	if x < 0 || x >= img.Bounds().Dx() {
		return
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	y0 = maxInt(y0, 0)
	y1 = minInt(y1, img.Bounds().Dy())
	i := y0*img.Stride + x*4
	for y := y0; y < y1; y++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += img.Stride
	}
}
