// Package fonts holds the bitmap faces that are not provided by a library.
package fonts

import (
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// tinyGlyphs are at most 3x5 glyphs, one string per row, '#' is lit.
// Only the characters needed by the date and weather line are defined.
// Narrow glyphs advance by their width plus one blank column.
var tinyGlyphs = []struct {
	r    rune
	rows [5]string
}{
	{' ', [5]string{".", ".", ".", ".", "."}},
	{'-', [5]string{"...", "...", "###", "...", "..."}},
	{'.', [5]string{".", ".", ".", ".", "#"}},
	{'/', [5]string{".#", ".#", "#.", "#.", "#."}},
	{'0', [5]string{"###", "#.#", "#.#", "#.#", "###"}},
	{'1', [5]string{".#.", "##.", ".#.", ".#.", "###"}},
	{'2', [5]string{"###", "..#", "###", "#..", "###"}},
	{'3', [5]string{"###", "..#", ".##", "..#", "###"}},
	{'4', [5]string{"#.#", "#.#", "###", "..#", "..#"}},
	{'5', [5]string{"###", "#..", "###", "..#", "###"}},
	{'6', [5]string{"###", "#..", "###", "#.#", "###"}},
	{'7', [5]string{"###", "..#", "..#", ".#.", ".#."}},
	{'8', [5]string{"###", "#.#", "###", "#.#", "###"}},
	{'9', [5]string{"###", "#.#", "###", "..#", "###"}},
	{':', [5]string{"...", ".#.", "...", ".#.", "..."}},
}

const (
	tinyAdvance = 4
	tinyAscent  = 5
	tinyDescent = 1
)

// Tiny is a 6 pixel high face in the spirit of TomThumb. Digits take 4
// columns, so "18.10.26 21/18/25" fits in 60.
var Tiny font.Face = newTiny()

type tinyFace struct {
	*basicfont.Face
	advances map[rune]fixed.Int26_6
}

func (f *tinyFace) Glyph(dot fixed.Point26_6, r rune) (dr image.Rectangle, mask image.Image, maskp image.Point, advance fixed.Int26_6, ok bool) {
	dr, mask, maskp, advance, ok = f.Face.Glyph(dot, r)
	if ok {
		advance = f.advances[r]
	}
	return
}

func (f *tinyFace) GlyphBounds(r rune) (bounds fixed.Rectangle26_6, advance fixed.Int26_6, ok bool) {
	bounds, advance, ok = f.Face.GlyphBounds(r)
	if ok {
		advance = f.advances[r]
	}
	return
}

func (f *tinyFace) GlyphAdvance(r rune) (advance fixed.Int26_6, ok bool) {
	advance, ok = f.Face.GlyphAdvance(r)
	if ok {
		advance = f.advances[r]
	}
	return
}

func newTiny() *tinyFace {
	stride := tinyAscent + tinyDescent
	mask := image.NewAlpha(image.Rect(0, 0, tinyAdvance, stride*len(tinyGlyphs)))
	advances := make(map[rune]fixed.Int26_6, len(tinyGlyphs))
	for i, g := range tinyGlyphs {
		advances[g.r] = fixed.I(len(g.rows[0]) + 1)
		for y, row := range g.rows {
			for x, c := range row {
				if c == '#' {
					mask.Pix[mask.PixOffset(x, i*stride+y)] = 0xff
				}
			}
		}
	}

	face := &basicfont.Face{
		Advance: tinyAdvance,
		Width:   tinyAdvance,
		Height:  stride,
		Ascent:  tinyAscent,
		Descent: tinyDescent,
		Mask:    mask,
		Ranges: []basicfont.Range{
			{Low: ' ', High: ' ' + 1, Offset: 0},
			{Low: '-', High: ':' + 1, Offset: 1},
		},
	}
	return &tinyFace{Face: face, advances: advances}
}
