package device

import (
	"fmt"
	"time"

	"github.com/jypelle/vekimatrix/internal/srv/config"
	"github.com/jypelle/vekimatrix/internal/srv/event"
	"github.com/jypelle/vekimatrix/internal/syncutil"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

const buttonStepDuration = 160 * time.Millisecond

type Button struct {
	buttonId       event.ButtonId
	pin            gpio.PinIn
	isPressed      bool
	pressStepCount int64
	lastChange     time.Time
}

func NewButton(buttonId event.ButtonId, name string) (*Button, error) {
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("failed to find %s button", name)
	}
	return newButtonWithPin(buttonId, pin)
}

func newButtonWithPin(buttonId event.ButtonId, pin gpio.PinIn) (*Button, error) {
	// Set it as input, with an internal pull up resistor
	if err := pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("failed to setup %s button: %w", pin, err)
	}
	return &Button{buttonId: buttonId, pin: pin}, nil
}

func (b *Button) Refresh(buttonEventChannel chan event.ButtonEvent) {
	b.refresh(time.Now(), buttonEventChannel)
}

// refresh emits a press event every step while the button is held, and a
// release event carrying the number of steps.
func (b *Button) refresh(now time.Time, buttonEventChannel chan event.ButtonEvent) {
	wasPressed := b.isPressed
	b.isPressed = bool(!b.pin.Read())

	if !b.isPressed && wasPressed {
		b.lastChange = now
		buttonEventChannel <- event.ButtonEvent{ButtonId: b.buttonId, ButtonEventType: event.RELEASE_EVENT_TYPE, PressStepCount: b.pressStepCount}
		b.pressStepCount = 0
	} else if b.isPressed && b.lastChange.Add(buttonStepDuration).Before(now) {
		b.lastChange = now
		b.pressStepCount++
		buttonEventChannel <- event.ButtonEvent{ButtonId: b.buttonId, ButtonEventType: event.PRESS_EVENT_TYPE, PressStepCount: b.pressStepCount}
	}
}

type Buttons struct {
	lock         syncutil.RWMutex
	eventChannel chan event.ButtonEvent
	simulation   bool
	param        config.ButtonParam

	buttons []*Button

	checkTicker *time.Ticker

	askDone chan bool
	done    chan bool
}

func NewButtons(param config.ButtonParam, simulation bool) *Buttons {
	return &Buttons{
		eventChannel: make(chan event.ButtonEvent),
		simulation:   simulation,
		param:        param,
		askDone:      make(chan bool),
		done:         make(chan bool),
	}
}

func (d *Buttons) Start() {
	logrus.Infof("Start buttons device")

	d.lock.Lock()
	defer d.lock.Unlock()

	if d.param.Enabled && !d.simulation {
		if _, err := host.Init(); err != nil {
			logrus.Fatalf("Unable to init host: %v", err)
		}
		button, err := NewButton(event.DISPLAY_BUTTON, d.param.Pin)
		if err != nil {
			logrus.Fatalf("Unable to init button: %v", err)
		}
		d.buttons = append(d.buttons, button)
	}

	// Start periodic check
	d.checkTicker = time.NewTicker(5 * time.Millisecond)
	go func() {
		for loop := true; loop; {
			select {
			case <-d.checkTicker.C:
				for _, button := range d.buttons {
					button.Refresh(d.eventChannel)
				}
			case <-d.askDone:
				loop = false
			}
		}
		d.done <- true
	}()
}

func (d *Buttons) StopSendingEvent() {
	logrus.Infof("Stop buttons device")

	d.lock.Lock()
	defer d.lock.Unlock()

	d.checkTicker.Stop()
	d.askDone <- true
	<-d.done
}

func (d *Buttons) EventChannel() chan event.ButtonEvent {
	return d.eventChannel
}
