package device

import (
	"image"
	"image/color"
	_ "image/png"

	"github.com/jypelle/vekimatrix/internal/srv/config"
	"github.com/jypelle/vekimatrix/internal/syncutil"
	"github.com/sirupsen/logrus"
)

// MaxBrightnessLevel is the highest level accepted by ShowImage.
const MaxBrightnessLevel = 9

// Panel is a pixel surface. Draw receives the composed frame and a
// brightness level between 0 and MaxBrightnessLevel.
type Panel interface {
	Draw(img *image.RGBA, level int) error
	Halt() error
	Close() error
}

type frame struct {
	img   *image.RGBA
	level int
}

type Display struct {
	panelLock syncutil.Mutex
	panel     Panel

	lock           syncutil.RWMutex
	on             bool
	panelParam     config.PanelParam
	simulationMode bool
	terminalMode   bool
	lastImg        *image.RGBA
	lastLevel      int

	simulation

	askDone chan bool
	askImg  chan frame
	done    chan bool
}

func NewDisplay(panelParam config.PanelParam, simulationMode bool, terminalMode bool) *Display {
	return &Display{
		panelParam:     panelParam,
		simulationMode: simulationMode,
		terminalMode:   terminalMode,
		askDone:        make(chan bool),
		askImg:         make(chan frame),
		done:           make(chan bool),
	}
}

// NewDisplayWithPanel uses an already opened panel.
func NewDisplayWithPanel(panelParam config.PanelParam, panel Panel) *Display {
	d := NewDisplay(panelParam, false, false)
	d.panel = panel
	return d
}

func (d *Display) Start() {
	logrus.Infof("Start display device")

	d.on = true

	if d.simulationMode {
		d.startSimulation()
		return
	}

	if d.panel == nil {
		var err error
		switch {
		case d.terminalMode:
			d.panel, err = NewTermPanel(d.panelParam.Width, d.panelParam.Height)
		case d.panelParam.Driver == "nrz":
			d.panel, err = NewNrzPanel(d.panelParam)
		default:
			d.panel = nopPanel{}
		}
		if err != nil {
			logrus.Fatalf("Unable to initialize panel: %v\n", err)
		}
	}

	go func() {
		for loop := true; loop; {
			select {
			case <-d.askDone:
				loop = false
			case f := <-d.askImg:
				d.panelLock.Lock()
				if err := d.panel.Draw(f.img, f.level); err != nil {
					logrus.Warnf("Unable to draw frame: %v", err)
				}
				d.panelLock.Unlock()
			}
		}
		d.panelLock.Lock()
		if err := d.panel.Close(); err != nil {
			logrus.Warnf("Unable to close panel: %v", err)
		}
		d.panelLock.Unlock()
		d.done <- true
	}()
}

func (d *Display) Stop() {
	logrus.Infof("Stop display device")

	if d.simulationMode {
		d.closeSimulationWindow()
	} else {
		d.askDone <- true
		<-d.done
	}
}

func (d *Display) setOff() {
	d.on = false
	if d.simulationMode {
		d.invalidateSimulationWindow()
	} else {
		d.panelLock.Lock()
		if err := d.panel.Halt(); err != nil {
			logrus.Warnf("Unable to halt panel: %v", err)
		}
		d.panelLock.Unlock()
	}
}

func (d *Display) setOn() {
	d.on = true
	d.push()
}

// Switch toggles the panel and returns the new state.
func (d *Display) Switch() bool {
	d.lock.Lock()
	defer d.lock.Unlock()

	if d.on {
		d.setOff()
	} else {
		d.setOn()
	}

	return d.on
}

func (d *Display) IsOn() bool {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return d.on
}

// ShowImage keeps img as the current frame and pushes it when the panel is on.
func (d *Display) ShowImage(img *image.RGBA, level int) {
	if level < 0 {
		level = 0
	} else if level > MaxBrightnessLevel {
		level = MaxBrightnessLevel
	}

	d.lock.Lock()
	defer d.lock.Unlock()
	d.lastImg = img
	d.lastLevel = level
	if d.on {
		d.push()
	}
}

func (d *Display) push() {
	if d.lastImg == nil {
		return
	}
	if d.simulationMode {
		d.invalidateSimulationWindow()
	} else {
		d.askImg <- frame{img: d.lastImg, level: d.lastLevel}
	}
}

// LastImage returns the last frame given to ShowImage and its brightness level.
func (d *Display) LastImage() (*image.RGBA, int) {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return d.lastImg, d.lastLevel
}

func (d *Display) Bounds() image.Rectangle {
	return image.Rect(0, 0, d.panelParam.Width, d.panelParam.Height)
}

// Intensity maps a brightness level linearly onto 0..max.
func Intensity(level int, max int) uint8 {
	if level <= 0 || max <= 0 {
		return 0
	}
	if level > MaxBrightnessLevel {
		level = MaxBrightnessLevel
	}
	v := level * max / MaxBrightnessLevel
	if v > 255 {
		v = 255
	}
	return uint8(v)
}

// dim scales a color by intensity/255.
func dim(c color.RGBA, intensity uint8) color.RGBA {
	scale := func(v uint8) uint8 {
		return uint8(uint16(v) * uint16(intensity) / 255)
	}
	return color.RGBA{R: scale(c.R), G: scale(c.G), B: scale(c.B), A: 0xff}
}

type nopPanel struct{}

func (nopPanel) Draw(*image.RGBA, int) error { return nil }
func (nopPanel) Halt() error                 { return nil }
func (nopPanel) Close() error                { return nil }
