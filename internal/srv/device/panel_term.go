package device

import (
	"fmt"
	"image"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/sirupsen/logrus"
)

// TermPanel previews the matrix in a terminal, two pixels per cell.
// The terminal is in raw mode, so Ctrl-C and Escape are read as keys and
// turned into an interrupt.
type TermPanel struct {
	screen    tcell.Screen
	width     int
	height    int
	interrupt func()
	pollDone  chan bool
}

func NewTermPanel(width int, height int) (*TermPanel, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("unable to open terminal: %w", err)
	}
	return newTermPanelWithScreen(screen, width, height, func() {
		syscall.Kill(syscall.Getpid(), syscall.SIGINT)
	})
}

func newTermPanelWithScreen(screen tcell.Screen, width int, height int, interrupt func()) (*TermPanel, error) {
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("unable to init terminal: %w", err)
	}
	screen.HideCursor()
	screen.Clear()

	p := &TermPanel{
		screen:    screen,
		width:     width,
		height:    height,
		interrupt: interrupt,
		pollDone:  make(chan bool),
	}
	go p.pollKeys()
	return p, nil
}

// pollKeys returns once Fini has been called on the screen.
func (p *TermPanel) pollKeys() {
	defer close(p.pollDone)
	for {
		switch ev := p.screen.PollEvent().(type) {
		case nil:
			return
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyCtrlC || ev.Key() == tcell.KeyEscape {
				logrus.Debugf("Interrupt from terminal")
				p.interrupt()
			}
		case *tcell.EventResize:
			p.screen.Sync()
		}
	}
}

func (p *TermPanel) Draw(img *image.RGBA, level int) error {
	intensity := Intensity(level, 255)
	bounds := img.Bounds()
	pixel := func(x, y int) tcell.Color {
		pt := image.Pt(bounds.Min.X+x, bounds.Min.Y+y)
		if y >= p.height || !pt.In(bounds) {
			return tcell.NewRGBColor(0, 0, 0)
		}
		c := dim(img.RGBAAt(pt.X, pt.Y), intensity)
		return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
	}

	for y := 0; y < p.height; y += 2 {
		for x := 0; x < p.width; x++ {
			style := tcell.StyleDefault.Foreground(pixel(x, y)).Background(pixel(x, y+1))
			p.screen.SetContent(x, y/2, '▀', nil, style)
		}
	}
	p.screen.Show()
	return nil
}

func (p *TermPanel) Halt() error {
	p.screen.Clear()
	p.screen.Show()
	return nil
}

func (p *TermPanel) Close() error {
	p.screen.Fini()
	<-p.pollDone
	return nil
}
