package device

import (
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/jypelle/vekimatrix/internal/srv/config"
	"github.com/jypelle/vekimatrix/internal/srv/control"
	"github.com/jypelle/vekimatrix/internal/srv/event"
	"github.com/sirupsen/logrus"
)

const mqttSource = "mqtt"

type MqttClientFactory func(opts *mqtt.ClientOptions) mqtt.Client

// MqttControl subscribes to a topic whose messages use the datagram protocol.
type MqttControl struct {
	eventChannel  chan event.ControlEvent
	param         config.MqttParam
	client        mqtt.Client
	clientFactory MqttClientFactory
}

func NewMqttControl(param config.MqttParam) *MqttControl {
	return &MqttControl{
		eventChannel:  make(chan event.ControlEvent, 16),
		param:         param,
		clientFactory: mqtt.NewClient,
	}
}

func (d *MqttControl) newClientOptions() *mqtt.ClientOptions {
	broker := d.param.Broker
	useTls := false
	if scheme, rest, ok := strings.Cut(broker, "://"); ok {
		switch scheme {
		case "mqtts", "ssl":
			broker = "ssl://" + rest
			useTls = true
		default:
			broker = "tcp://" + rest
		}
	} else {
		broker = "tcp://" + broker
	}

	clientId := d.param.ClientId
	if clientId == "" {
		clientId = "vekimatrix-" + uuid.New().String()[:8]
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientId)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(false)
	opts.SetConnectTimeout(10 * time.Second)
	opts.SetOrderMatters(false)
	if d.param.Username != "" {
		opts.SetUsername(d.param.Username)
		opts.SetPassword(d.param.Password)
	}
	if useTls {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	return opts
}

func (d *MqttControl) Start() error {
	logrus.Infof("Start mqtt control device")

	opts := d.newClientOptions()
	opts.OnConnect = func(client mqtt.Client) {
		logrus.Infof("Connected to mqtt broker %s", d.param.Broker)
		// Subscribing on connect also restores the subscription after a reconnect
		token := client.Subscribe(d.param.Topic, 1, d.messageHandler)
		if token.Wait() && token.Error() != nil {
			logrus.Errorf("Unable to subscribe to %s: %v", d.param.Topic, token.Error())
		}
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		logrus.Warnf("Lost connection to mqtt broker: %v", err)
	}

	d.client = d.clientFactory(opts)
	token := d.client.Connect()
	if !token.WaitTimeout(5 * time.Second) {
		d.client.Disconnect(0)
		d.client = nil
		return errors.New("unable to connect to mqtt broker: connection timeout")
	}
	if err := token.Error(); err != nil {
		d.client.Disconnect(0)
		d.client = nil
		return fmt.Errorf("unable to connect to mqtt broker: %w", err)
	}
	return nil
}

func (d *MqttControl) StopSendingEvent() {
	logrus.Infof("Stop mqtt control device")
	if d.client != nil && d.client.IsConnected() {
		d.client.Disconnect(250)
	}
}

func (d *MqttControl) EventChannel() chan event.ControlEvent {
	return d.eventChannel
}

func (d *MqttControl) messageHandler(_ mqtt.Client, msg mqtt.Message) {
	ev, err := DecodeControlEvent(msg.Payload(), mqttSource)
	if err != nil {
		if errors.Is(err, control.ErrShortPacket) {
			logrus.Debugf("Ignored mqtt message on %s: %v", msg.Topic(), err)
		} else {
			logrus.Warnf("Rejected mqtt message on %s: %v", msg.Topic(), err)
		}
		return
	}

	select {
	case d.eventChannel <- ev:
	default:
		logrus.Warnf("Dropped mqtt message on %s: event loop busy", msg.Topic())
	}
}
