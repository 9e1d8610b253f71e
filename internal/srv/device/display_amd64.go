//go:build amd64 && cgo

package device

import (
	"image"
	"log"

	"gioui.org/app"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"golang.org/x/image/draw"
)

const simulationPixelSize = 8

type simulation struct {
	simulationWindow *app.Window
}

func (d *Display) startSimulation() {
	w := float32(d.panelParam.Width * simulationPixelSize)
	h := float32(d.panelParam.Height * simulationPixelSize)
	d.simulationWindow = app.NewWindow(
		app.Title("vekimatrix"),
		app.Size(unit.Px(w), unit.Px(h)),
		app.MinSize(unit.Px(w/4), unit.Px(h/4)),
	)
	go func() {
		if err := d.gioloop(); err != nil {
			log.Fatal(err)
		}
	}()
	go app.Main()
}

func (d *Display) invalidateSimulationWindow() {
	d.simulationWindow.Invalidate()
}

func (d *Display) closeSimulationWindow() {
	d.simulationWindow.Close()
}

// simulationImage renders the panel as the LEDs would show it, one block per pixel.
func (d *Display) simulationImage() image.Image {
	d.lock.RLock()
	lastImg, lastLevel, on := d.lastImg, d.lastLevel, d.on
	d.lock.RUnlock()

	bounds := d.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx()*simulationPixelSize, bounds.Dy()*simulationPixelSize))
	if lastImg == nil || !on {
		return dst
	}

	intensity := Intensity(lastLevel, 255)
	src := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			src.SetRGBA(x, y, dim(lastImg.RGBAAt(x, y), intensity))
		}
	}
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)
	return dst
}

func (d *Display) gioloop() error {
	var ops op.Ops
	for {
		e := <-d.simulationWindow.Events()
		switch e := e.(type) {
		case system.DestroyEvent:
			return e.Err
		case system.FrameEvent:
			gtx := layout.NewContext(&ops, e)

			img := widget.Image{Src: paint.NewImageOp(d.simulationImage()), Fit: widget.Contain}
			img.Layout(gtx)
			e.Frame(gtx.Ops)
		}
	}
}
