package srv

import (
	"fmt"
	"image/color"
	"os/exec"

	"github.com/jonboulle/clockwork"
	"github.com/jypelle/vekimatrix/internal/srv/config"
	"github.com/jypelle/vekimatrix/internal/srv/device"
	"github.com/jypelle/vekimatrix/internal/srv/event"
	"github.com/jypelle/vekimatrix/internal/tz"
	"github.com/jypelle/vekimatrix/internal/version"
	"github.com/sirupsen/logrus"
)

type ServerApp struct {
	*config.ServerConfig
	clock    clockwork.Clock
	timezone tz.Timezone
	palette  []color.RGBA

	displayDevice     *device.Display
	clockDevice       *device.Clock
	weatherDevice     *device.Weather
	controlDevice     *device.Control
	mqttControlDevice *device.MqttControl
	discoveryDevice   *device.Discovery
	buttonsDevice     *device.Buttons
	apiDevice         *device.Api

	currentMode Mode
	scroll      scrollState

	splashHideTimer clockwork.Timer

	internalEventChannel chan event.InternalEvent

	eventLoopAskDone chan bool
	eventLoopDone    chan bool
}

type Mode int64

const (
	UNDEFINED_MODE Mode = iota
	CLOCK_MODE
	TEXT_MODE
	END_MODE
)

func (m Mode) String() string {
	switch m {
	case CLOCK_MODE:
		return "clock"
	case TEXT_MODE:
		return "text"
	case END_MODE:
		return "end"
	default:
		return "undefined"
	}
}

func NewServerApp(serverConfig *config.ServerConfig, clock clockwork.Clock) (*ServerApp, error) {

	logrus.Debugf("Creation of vekimatrix server %s ...", version.AppVersion.String())

	timezone, err := serverConfig.TimeParam.Timezone()
	if err != nil {
		return nil, fmt.Errorf("invalid timezone rules: %w", err)
	}
	palette, err := serverConfig.PanelParam.Colors()
	if err != nil {
		return nil, err
	}

	app := &ServerApp{
		ServerConfig:         serverConfig,
		clock:                clock,
		timezone:             timezone,
		palette:              palette,
		currentMode:          UNDEFINED_MODE,
		internalEventChannel: make(chan event.InternalEvent, 1),
		eventLoopAskDone:     make(chan bool),
		eventLoopDone:        make(chan bool),
	}
	app.scroll.reset(serverConfig.PanelParam.Width)

	app.displayDevice = device.NewDisplay(app.PanelParam, app.SimulationMode, app.TerminalMode)
	app.clockDevice = device.NewClock(app.TimeParam)
	app.weatherDevice = device.NewWeather(app.WeatherParam, clock)
	app.controlDevice = device.NewControl(app.ControlParam)
	app.mqttControlDevice = device.NewMqttControl(app.MqttParam)
	app.discoveryDevice = device.NewDiscovery(app.ControlParam, app.PanelParam)
	app.buttonsDevice = device.NewButtons(app.ButtonParam, app.SimulationMode)
	app.apiDevice = device.NewApi(app.ServerConfig, app.weatherDevice)

	logrus.Debugln("Server created")

	return app, nil
}

func (s *ServerApp) Start() {
	logrus.Printf("Starting vekimatrix server ...")

	logrus.Printf("Starting devices ...")

	// Start display device
	s.displayDevice.Start()

	// Display startup screen until the splash timer fires
	s.refreshDisplay()
	s.splashHideTimer = s.clock.AfterFunc(s.DisplayParam.SplashDuration, func() {
		select {
		case s.internalEventChannel <- event.InternalEvent{Data: event.InternalEventSplashHideData{}}:
		default:
		}
	})

	// Start clock device
	s.clockDevice.Start()

	// Start weather device
	s.weatherDevice.Start()

	// Start control device
	if err := s.controlDevice.Start(); err != nil {
		logrus.Fatalf("Unable to listen on udp port %d: %v", s.ControlParam.UdpPort, err)
	}

	// Start mqtt control device
	if s.MqttParam.Enabled {
		if err := s.mqttControlDevice.Start(); err != nil {
			logrus.Warnf("Mqtt control disabled: %v", err)
		}
	}

	// Start discovery device
	if s.ControlParam.Mdns {
		s.discoveryDevice.Start()
	}

	// Start buttons device
	s.buttonsDevice.Start()

	// Start api device
	if s.ApiParam.Enabled {
		s.apiDevice.Start()
	}

	// Start event loop
	go s.eventLoop()
}

func (s *ServerApp) Stop(halt bool) {
	logrus.Printf("Stopping vekimatrix server ...")

	// Stop api
	if s.ApiParam.Enabled {
		s.apiDevice.StopSendingEvent()
	}

	// Stop buttons device
	s.buttonsDevice.StopSendingEvent()

	// Stop discovery device
	if s.ControlParam.Mdns {
		s.discoveryDevice.Stop()
	}

	// Stop mqtt control device
	s.mqttControlDevice.StopSendingEvent()

	// Stop control device
	s.controlDevice.StopSendingEvent()

	// Stop weather device
	s.weatherDevice.StopSendingEvent()

	// Stop clock device
	s.clockDevice.Stop()

	// Stop event loop
	logrus.Infof("Stop event loop")
	s.eventLoopAskDone <- true
	<-s.eventLoopDone

	if s.splashHideTimer != nil {
		s.splashHideTimer.Stop()
	}

	// Display end mode image
	s.currentMode = END_MODE
	s.refreshDisplay()

	// Stop display device
	s.displayDevice.Stop()

	logrus.Printf("Server stopped")

	if halt {
		logrus.Printf("System halt")
		haltCmd := exec.Command("sudo", "halt")
		err := haltCmd.Run()
		if err != nil {
			logrus.Panicf("Unable to halt the system: %v", err)
		}
	}
}
