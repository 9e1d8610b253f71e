package srv

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/jypelle/vekimatrix/internal/images"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/font"
)

// Baselines of the labels, in pixels from the top of the panel.
const (
	clockInfoX        = 4
	clockInfoBaseline = 6
	clockTimeBaseline = 15
	textBaseline      = 13
)

// refreshDisplay composes the frame of the current mode and pushes it.
func (s *ServerApp) refreshDisplay() {
	settings := s.DisplaySettings()
	col := s.palette[settings.ColorIndex]

	var imgToDisplay *image.RGBA

	switch s.currentMode {
	case UNDEFINED_MODE:
		imgToDisplay = s.refreshSplashDisplay()
	case CLOCK_MODE:
		imgToDisplay = s.refreshClockDisplay(col)
	case TEXT_MODE:
		imgToDisplay = s.refreshTextDisplay(col)
	case END_MODE:
		imgToDisplay = newFrame(s.displayDevice.Bounds())
		AddCenteredLabel(imgToDisplay, largeFont, textBaseline, col, "bye")
	}
	s.displayDevice.ShowImage(imgToDisplay, settings.BrightnessLevel)
}

func (s *ServerApp) refreshSplashDisplay() *image.RGBA {
	img := newFrame(s.displayDevice.Bounds())
	AddImage(img, images.IntroImage)
	return img
}

func (s *ServerApp) refreshClockDisplay(col color.Color) *image.RGBA {
	local, rule := s.timezone.ToLocal(s.clockDevice.NowUTC())
	logrus.Debugf("Display clock %s %s", local.Format("2006-01-02 15:04:05"), rule.Abbrev)

	img := newFrame(s.displayDevice.Bounds())
	info := formatDate(local) + " " + s.weatherDevice.Summary()
	AddLabel(img, smallFont, clockInfoStart(info, img.Bounds().Dx()), clockInfoBaseline, col, info)
	AddCenteredLabel(img, largeFont, clockTimeBaseline, col, formatTime(local))
	return img
}

func (s *ServerApp) refreshTextDisplay(col color.Color) *image.RGBA {
	img := newFrame(s.displayDevice.Bounds())
	AddLabel(img, largeFont, s.scroll.cursorX, textBaseline, col, s.scroll.text)
	return img
}

// clockInfoStart shifts a line too long for the panel to the left, down to
// the first column.
func clockInfoStart(info string, panelWidth int) int {
	x := clockInfoX
	if width := font.MeasureString(smallFont, info).Ceil(); x+width > panelWidth {
		x = panelWidth - width
	}
	if x < 0 {
		x = 0
	}
	return x
}

// formatDate returns D.M.YY
func formatDate(t time.Time) string {
	return fmt.Sprintf("%d.%d.%02d", t.Day(), int(t.Month()), t.Year()%100)
}

// formatTime returns HH:MM
func formatTime(t time.Time) string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}
