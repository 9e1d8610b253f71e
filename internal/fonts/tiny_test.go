package fonts

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

func TestTinyGlyphs(t *testing.T) {
	narrow := map[rune]int{' ': 2, '.': 2, '/': 3}
	for _, g := range tinyGlyphs {
		want, ok := narrow[g.r]
		if !ok {
			want = tinyAdvance
		}
		_, _, _, advance, ok := Tiny.Glyph(fixed.P(0, 5), g.r)
		assert.True(t, ok, "glyph %q", g.r)
		assert.Equal(t, fixed.I(want), advance, "glyph %q", g.r)
		advance, _ = Tiny.GlyphAdvance(g.r)
		assert.Equal(t, fixed.I(want), advance, "glyph %q", g.r)
	}

	_, _, _, _, ok := Tiny.Glyph(fixed.P(0, 5), 'A')
	assert.False(t, ok)
}

func TestTinyDraw(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: Tiny,
		Dot:  fixed.P(0, tinyAscent),
	}
	d.DrawString("1-")

	lit := func(x, y int) bool {
		return img.RGBAAt(x, y).A != 0
	}

	// '1'
	assert.False(t, lit(0, 0))
	assert.True(t, lit(1, 0))
	assert.True(t, lit(0, 1))
	assert.True(t, lit(0, 4))
	assert.True(t, lit(2, 4))
	// spacing column
	for y := 0; y < 6; y++ {
		assert.False(t, lit(3, y))
	}
	// '-'
	assert.True(t, lit(4, 2))
	assert.True(t, lit(6, 2))
	assert.False(t, lit(5, 1))

	assert.Equal(t, fixed.I(8), font.MeasureString(Tiny, "1-"))
}

func TestTinyClockLineFits(t *testing.T) {
	assert.Equal(t, fixed.I(60), font.MeasureString(Tiny, "18.10.26 21/18/25"))
	assert.Equal(t, fixed.I(40), font.MeasureString(Tiny, "5.1.26 -/-/-"))
}

func TestTinyNarrowGlyphsDoNotOverlap(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 12, 6))
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: Tiny,
		Dot:  fixed.P(0, tinyAscent),
	}
	d.DrawString("1.1")

	lit := func(x, y int) bool {
		return img.RGBAAt(x, y).A != 0
	}

	// '1' is kept whole, the dot sits in column 4, the next '1' starts at 6
	assert.True(t, lit(2, 4))
	assert.True(t, lit(4, 4))
	assert.False(t, lit(5, 4))
	assert.True(t, lit(6, 4))
	assert.True(t, lit(7, 0))
	assert.Equal(t, fixed.I(10), d.Dot.X)
}
