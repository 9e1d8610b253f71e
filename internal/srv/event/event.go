package event

import (
	"github.com/jypelle/vekimatrix/apimodel"
)

// Internal
type InternalEvent struct {
	Data interface{}
}

type InternalEventSplashHideData struct{}

// Control (UDP and MQTT)
type ControlEvent struct {
	Source string
	Data   interface{}
}

type ControlEventSettingData struct {
	ColorIndex      int
	BrightnessLevel int
}

type ControlEventTextData struct {
	Text string
}

// Weather
type WeatherEvent struct {
	Data interface{}
}

type WeatherEventFetchedData struct {
	Summary string
	Err     error
}

// Buttons
type ButtonId int

const (
	DISPLAY_BUTTON ButtonId = iota
)

type ButtonEventType int

const (
	PRESS_EVENT_TYPE ButtonEventType = iota
	RELEASE_EVENT_TYPE
)

type ButtonEvent struct {
	ButtonId        ButtonId
	ButtonEventType ButtonEventType
	PressStepCount  int64
}

// Api
type ApiEvent struct {
	Result chan error
	Data   interface{}
}

type ApiEventSettingData struct {
	ColorIndex      int
	BrightnessLevel int
}

type ApiEventTextData struct {
	Text string
}

type ApiEventDisplaySwitchData struct{}

type ApiEventStateData struct {
	State chan apimodel.State
}
