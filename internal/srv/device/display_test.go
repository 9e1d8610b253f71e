package device

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/jypelle/vekimatrix/internal/srv/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

var testPanelParam = config.PanelParam{Width: 64, Height: 16, MaxBrightness: 64, Columns: true, Zigzag: true}

func waitDrawn(t *testing.T, p *fakePanel) {
	t.Helper()
	select {
	case <-p.drawn:
	case <-time.After(time.Second):
		t.Fatal("frame not drawn")
	}
}

func TestDisplayPushesFrames(t *testing.T) {
	defer goleak.VerifyNone(t)

	panel := newFakePanel()
	d := NewDisplayWithPanel(testPanelParam, panel)
	d.Start()

	img := image.NewRGBA(d.Bounds())
	d.ShowImage(img, 5)
	waitDrawn(t, panel)

	last, level := d.LastImage()
	assert.Same(t, img, last)
	assert.Equal(t, 5, level)

	// levels are clamped
	d.ShowImage(img, 12)
	waitDrawn(t, panel)
	_, level = d.LastImage()
	assert.Equal(t, MaxBrightnessLevel, level)

	d.Stop()
	assert.True(t, panel.closed)
}

func TestDisplayOffKeepsFrames(t *testing.T) {
	defer goleak.VerifyNone(t)

	panel := newFakePanel()
	d := NewDisplayWithPanel(testPanelParam, panel)
	d.Start()

	assert.False(t, d.Switch())
	assert.False(t, d.IsOn())
	assert.Equal(t, 1, panel.halts)

	img := image.NewRGBA(d.Bounds())
	d.ShowImage(img, 3)
	last, _ := d.LastImage()
	assert.Same(t, img, last)
	assert.Equal(t, 0, panel.drawCount())

	// switching on pushes the kept frame
	assert.True(t, d.Switch())
	waitDrawn(t, panel)
	assert.Equal(t, 1, panel.drawCount())

	d.Stop()
}

func TestIntensity(t *testing.T) {
	assert.Equal(t, uint8(0), Intensity(0, 64))
	assert.Equal(t, uint8(64), Intensity(9, 64))
	assert.Equal(t, uint8(35), Intensity(5, 64))
	assert.Equal(t, uint8(255), Intensity(9, 255))
	assert.Equal(t, uint8(64), Intensity(15, 64))
	assert.Equal(t, uint8(0), Intensity(5, 0))

	prev := uint8(0)
	for level := 0; level <= MaxBrightnessLevel; level++ {
		v := Intensity(level, 200)
		require.GreaterOrEqual(t, v, prev)
		prev = v
	}
}

func TestDim(t *testing.T) {
	c := dim(color.RGBA{R: 255, G: 128, B: 0, A: 255}, 128)
	assert.Equal(t, color.RGBA{R: 128, G: 64, B: 0, A: 255}, c)
	assert.Equal(t, color.RGBA{A: 255}, dim(color.RGBA{R: 255, G: 255, B: 255, A: 255}, 0))
}
