package device

import (
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/jypelle/vekimatrix/internal/srv/config"
	"github.com/jypelle/vekimatrix/internal/srv/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockMqttClient struct {
	opts            *mqtt.ClientOptions
	connectError    error
	topic           string
	handler         mqtt.MessageHandler
	connected       bool
	disconnectCalls int
}

func (m *mockMqttClient) IsConnected() bool      { return m.connected }
func (m *mockMqttClient) IsConnectionOpen() bool { return m.connected }

func (m *mockMqttClient) Connect() mqtt.Token {
	if m.connectError != nil {
		return &mockMqttToken{err: m.connectError, complete: true}
	}
	m.connected = true
	if m.opts.OnConnect != nil {
		m.opts.OnConnect(m)
	}
	return &mockMqttToken{complete: true}
}

func (m *mockMqttClient) Disconnect(uint) {
	m.connected = false
	m.disconnectCalls++
}

func (m *mockMqttClient) Publish(string, byte, bool, interface{}) mqtt.Token {
	return &mockMqttToken{complete: true}
}

func (m *mockMqttClient) Subscribe(topic string, _ byte, callback mqtt.MessageHandler) mqtt.Token {
	m.topic = topic
	m.handler = callback
	return &mockMqttToken{complete: true}
}

func (m *mockMqttClient) SubscribeMultiple(map[string]byte, mqtt.MessageHandler) mqtt.Token {
	return &mockMqttToken{complete: true}
}

func (m *mockMqttClient) Unsubscribe(...string) mqtt.Token {
	return &mockMqttToken{complete: true}
}

func (m *mockMqttClient) AddRoute(string, mqtt.MessageHandler) {}

func (m *mockMqttClient) OptionsReader() mqtt.ClientOptionsReader {
	return mqtt.ClientOptionsReader{}
}

type mockMqttToken struct {
	err      error
	complete bool
}

func (*mockMqttToken) Wait() bool                       { return true }
func (t *mockMqttToken) WaitTimeout(time.Duration) bool { return t.complete }
func (*mockMqttToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *mockMqttToken) Error() error { return t.err }

type mockMqttMessage struct {
	mqtt.Message
	payload []byte
}

func (m mockMqttMessage) Topic() string   { return "vekimatrix/control" }
func (m mockMqttMessage) Payload() []byte { return m.payload }

func newTestMqttControl(client *mockMqttClient) *MqttControl {
	d := NewMqttControl(config.MqttParam{Enabled: true, Broker: "localhost:1883", Topic: "vekimatrix/control"})
	d.clientFactory = func(opts *mqtt.ClientOptions) mqtt.Client {
		client.opts = opts
		return client
	}
	return d
}

func TestMqttControlMessages(t *testing.T) {
	client := &mockMqttClient{}
	d := newTestMqttControl(client)
	require.NoError(t, d.Start())
	assert.Equal(t, "vekimatrix/control", client.topic)
	require.NotNil(t, client.handler)

	client.handler(client, mockMqttMessage{payload: []byte("21")})
	ev := <-d.EventChannel()
	assert.Equal(t, "mqtt", ev.Source)
	assert.Equal(t, event.ControlEventSettingData{ColorIndex: 2, BrightnessLevel: 1}, ev.Data)

	client.handler(client, mockMqttMessage{payload: []byte("00Hi there")})
	ev = <-d.EventChannel()
	assert.Equal(t, event.ControlEventTextData{Text: "Hi there"}, ev.Data)

	client.handler(client, mockMqttMessage{payload: []byte("x")})
	client.handler(client, mockMqttMessage{payload: []byte("7a")})
	assert.Empty(t, d.EventChannel())

	d.StopSendingEvent()
	assert.Equal(t, 1, client.disconnectCalls)
}

func TestMqttControlConnectError(t *testing.T) {
	client := &mockMqttClient{connectError: errors.New("refused")}
	d := newTestMqttControl(client)
	assert.Error(t, d.Start())
	assert.Equal(t, 1, client.disconnectCalls)
}

func TestMqttClientOptions(t *testing.T) {
	d := NewMqttControl(config.MqttParam{Broker: "mqtts://broker.example:8883", ClientId: "panel", Username: "u", Password: "p"})
	opts := d.newClientOptions()
	require.Len(t, opts.Servers, 1)
	assert.Equal(t, "ssl", opts.Servers[0].Scheme)
	assert.Equal(t, "broker.example:8883", opts.Servers[0].Host)
	assert.Equal(t, "panel", opts.ClientID)
	assert.Equal(t, "u", opts.Username)
	assert.NotNil(t, opts.TLSConfig)

	d = NewMqttControl(config.MqttParam{Broker: "localhost:1883"})
	opts = d.newClientOptions()
	assert.Equal(t, "tcp", opts.Servers[0].Scheme)
	assert.Contains(t, opts.ClientID, "vekimatrix-")
}
