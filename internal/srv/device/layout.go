package device

import (
	"image"
)

// PixelLayout maps panel coordinates to the position of the LED on the strip.
// With Columns the strip runs top to bottom, column after column, otherwise
// row after row. With Zigzag every other line runs backwards.
type PixelLayout struct {
	Width   int
	Height  int
	Columns bool
	Zigzag  bool
}

func (l PixelLayout) Len() int {
	return l.Width * l.Height
}

func (l PixelLayout) Index(x, y int) int {
	if l.Columns {
		if l.Zigzag && x%2 == 1 {
			y = l.Height - 1 - y
		}
		return x*l.Height + y
	}
	if l.Zigzag && y%2 == 1 {
		x = l.Width - 1 - x
	}
	return y*l.Width + x
}

// Pack writes img as RGB triplets in strip order, dimmed to intensity/255.
// buf is reused when large enough.
func (l PixelLayout) Pack(buf []byte, img *image.RGBA, intensity uint8) []byte {
	if cap(buf) < l.Len()*3 {
		buf = make([]byte, l.Len()*3)
	}
	buf = buf[:l.Len()*3]
	for i := range buf {
		buf[i] = 0
	}

	bounds := img.Bounds()
	for y := 0; y < l.Height; y++ {
		for x := 0; x < l.Width; x++ {
			p := image.Pt(bounds.Min.X+x, bounds.Min.Y+y)
			if !p.In(bounds) {
				continue
			}
			c := dim(img.RGBAAt(p.X, p.Y), intensity)
			i := l.Index(x, y) * 3
			buf[i], buf[i+1], buf[i+2] = c.R, c.G, c.B
		}
	}
	return buf
}
