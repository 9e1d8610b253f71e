package srv

import (
	"runtime/debug"

	"github.com/sirupsen/logrus"
)

// tick runs one step of the scheduler: weather staleness check, mode
// decision, frame composition and push, then scroll advance.
func (s *ServerApp) tick() {
	defer func() {
		if rec := recover(); rec != nil {
			logrus.Errorf("Frame skipped, recovered from panic: [%v] - stack trace : \n [%s]", rec, debug.Stack())
		}
	}()

	s.weatherDevice.TriggerIfStale()

	// Splash and end screens are not driven by the scheduler
	if s.currentMode == UNDEFINED_MODE || s.currentMode == END_MODE {
		return
	}

	s.decideMode()
	s.refreshDisplay()

	if s.currentMode == TEXT_MODE && s.scroll.advance(s.DisplayParam.ScrollStep, s.PanelParam.Width) {
		if s.ClearOverrideText(s.scroll.generation) {
			logrus.Debugf("Text scrolled, back to clock")
		} else {
			logrus.Debugf("Text scrolled, a new one is waiting")
		}
	}
}

// decideMode selects the text mode while an override text is active. A text
// written since the scroll began restarts the scroll.
func (s *ServerApp) decideMode() {
	text, generation := s.OverrideText()
	if text == "" {
		if s.currentMode == TEXT_MODE {
			s.scroll.reset(s.PanelParam.Width)
		}
		s.currentMode = CLOCK_MODE
		return
	}

	if s.currentMode != TEXT_MODE || s.scroll.needsEntry(generation) {
		logrus.Debugf("Scroll text %q", text)
		s.scroll.enter(text, generation, s.PanelParam.Width)
	}
	s.currentMode = TEXT_MODE
}
