// Package images holds the bitmaps embedded in the binary.
package images

import (
	"bytes"
	_ "embed"
	"image"
	"image/png"

	"github.com/sirupsen/logrus"
)

//go:embed intro.png
var introPng []byte

// IntroImage is the splash frame shown while devices start.
var IntroImage = mustDecode("intro", introPng)

func mustDecode(name string, data []byte) image.Image {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		logrus.Panicf("Can't load %s image: %v", name, err)
	}
	return img
}
