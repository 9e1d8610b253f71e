package srv

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/bitmapfont/v2"
	"github.com/jypelle/vekimatrix/internal/fonts"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Fonts used for frame composition. Every character of the large font is
// pixelsPerChar wide.
var (
	smallFont font.Face = fonts.Tiny
	largeFont font.Face = bitmapfont.Face
)

const pixelsPerChar = 6

var black = image.NewUniform(color.RGBA{0, 0, 0, 255})

func newFrame(bounds image.Rectangle) *image.RGBA {
	img := image.NewRGBA(bounds)
	draw.Draw(img, img.Bounds(), black, image.Point{}, draw.Src)
	return img
}

// AddLabel draws label with its baseline starting at (x, y).
func AddLabel(img *image.RGBA, face font.Face, x, y int, col color.Color, label string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(label)
}

func AddCenteredLabel(img *image.RGBA, face font.Face, y int, col color.Color, label string) {
	width := font.MeasureString(face, label).Round()
	AddLabel(img, face, img.Bounds().Min.X+(img.Bounds().Dx()-width)/2, y, col, label)
}

// AddImage copies src at the top left corner of img, clipped to img.
func AddImage(img *image.RGBA, src image.Image) {
	draw.Draw(img, img.Bounds(), src, src.Bounds().Min, draw.Src)
}
