package srv

import (
	"syscall"
	"time"

	"github.com/jypelle/vekimatrix/apimodel"
	"github.com/jypelle/vekimatrix/internal/srv/config"
	"github.com/jypelle/vekimatrix/internal/srv/event"
	"github.com/sirupsen/logrus"
)

// Button press steps (one step every 160ms)
const (
	dismissTextStepCount = 5
	powerOffStepCount    = 20
)

func (s *ServerApp) eventLoop() {
	ticker := s.clock.NewTicker(s.DisplayParam.TickInterval)
	defer ticker.Stop()

	for loop := true; loop; {
		select {
		case <-ticker.Chan():
			s.tick()
		case ev := <-s.internalEventChannel:
			switch ev.Data.(type) {
			case event.InternalEventSplashHideData:
				if s.currentMode == UNDEFINED_MODE {
					logrus.Debugf("Hide splash screen")
					s.currentMode = CLOCK_MODE
					s.tick()
				}
			}
		case ev := <-s.controlDevice.EventChannel():
			s.applyControlEvent(ev)
		case ev := <-s.mqttControlDevice.EventChannel():
			s.applyControlEvent(ev)
		case ev := <-s.weatherDevice.EventChannel():
			switch data := ev.Data.(type) {
			case event.WeatherEventFetchedData:
				if data.Err != nil {
					logrus.Debugf("Keep weather %s", data.Summary)
				} else {
					logrus.Infof("Weather updated: %s", data.Summary)
				}
			}
		case ev := <-s.apiDevice.EventChannel():
			switch data := ev.Data.(type) {
			case event.ApiEventSettingData:
				s.applySetting(data.ColorIndex, data.BrightnessLevel)
				ev.Result <- nil
			case event.ApiEventTextData:
				s.applyText(data.Text)
				ev.Result <- nil
			case event.ApiEventDisplaySwitchData:
				s.switchDisplay()
				ev.Result <- nil
			case event.ApiEventStateData:
				data.State <- s.state()
				ev.Result <- nil
			}
		case ev := <-s.buttonsDevice.EventChannel():
			logrus.Debugf("Receive button event: %d, %d, %d", ev.ButtonId, ev.ButtonEventType, ev.PressStepCount)
			switch ev.ButtonId {
			case event.DISPLAY_BUTTON:
				if ev.ButtonEventType == event.RELEASE_EVENT_TYPE && ev.PressStepCount < dismissTextStepCount {
					logrus.Debugf("Switch display on/off")
					s.switchDisplay()
				} else if ev.ButtonEventType == event.PRESS_EVENT_TYPE {
					if ev.PressStepCount == dismissTextStepCount {
						s.dismissText()
					} else if ev.PressStepCount == powerOffStepCount {
						logrus.Debugf("See you!")
						syscall.Kill(syscall.Getpid(), syscall.SIGUSR1)
					}
				}
			}
		case <-s.eventLoopAskDone:
			loop = false
		}
	}
	s.eventLoopDone <- true
}

func (s *ServerApp) applyControlEvent(ev event.ControlEvent) {
	switch data := ev.Data.(type) {
	case event.ControlEventSettingData:
		logrus.Debugf("Receive setting from %s: color %d, brightness %d", ev.Source, data.ColorIndex, data.BrightnessLevel)
		s.applySetting(data.ColorIndex, data.BrightnessLevel)
	case event.ControlEventTextData:
		logrus.Debugf("Receive text from %s: %q", ev.Source, data.Text)
		s.applyText(data.Text)
	}
}

func (s *ServerApp) applySetting(colorIndex int, brightnessLevel int) {
	s.SetDisplaySettings(config.DisplaySettings{ColorIndex: colorIndex, BrightnessLevel: brightnessLevel})
}

func (s *ServerApp) applyText(text string) {
	generation := s.SetOverrideText(text)
	logrus.Debugf("Override text generation %d", generation)
}

func (s *ServerApp) dismissText() {
	text, generation := s.OverrideText()
	if text != "" && s.ClearOverrideText(generation) {
		logrus.Debugf("Text dismissed")
	}
}

func (s *ServerApp) switchDisplay() {
	s.SetDisplayOn(s.displayDevice.Switch())
}

func (s *ServerApp) state() apimodel.State {
	settings := s.DisplaySettings()
	text, _ := s.OverrideText()
	local, rule := s.timezone.ToLocal(s.clockDevice.NowUTC())

	return apimodel.State{
		ColorIndex:      settings.ColorIndex,
		BrightnessLevel: settings.BrightnessLevel,
		Text:            text,
		TextActive:      text != "",
		DisplayOn:       s.DisplayOn(),
		Mode:            s.currentMode.String(),
		Weather:         s.weatherDevice.Summary(),
		LocalTime:       local.Format(time.RFC3339),
		Timezone:        rule.Abbrev,
	}
}
