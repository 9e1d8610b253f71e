package config

import (
	_ "embed"
	"fmt"
	"image/color"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jypelle/vekimatrix/internal/tz"
	"github.com/lucasb-eyer/go-colorful"
)

//go:embed param_default.yaml
var ParamDefaultFile []byte

type ServerParam struct {
	PanelParam   PanelParam   `yaml:"panel"`
	ControlParam ControlParam `yaml:"control"`
	WeatherParam WeatherParam `yaml:"weather"`
	TimeParam    TimeParam    `yaml:"time"`
	DisplayParam DisplayParam `yaml:"display"`
	ApiParam     ApiParam     `yaml:"api"`
	MqttParam    MqttParam    `yaml:"mqtt"`
	ButtonParam  ButtonParam  `yaml:"button"`
}

type PanelParam struct {
	Width         int      `yaml:"width" validate:"min=8,max=256"`
	Height        int      `yaml:"height" validate:"min=8,max=64"`
	Driver        string   `yaml:"driver" validate:"oneof=nrz none"`
	SpiPort       string   `yaml:"spi_port"`
	FrequencyKhz  int64    `yaml:"frequency_khz" validate:"min=400,max=2000"`
	MaxBrightness int      `yaml:"max_brightness" validate:"min=0,max=255"`
	Palette       []string `yaml:"palette" validate:"len=4,dive,hexcolor"`
	Columns       bool     `yaml:"columns"`
	Zigzag        bool     `yaml:"zigzag"`
}

type ControlParam struct {
	UdpPort      int     `yaml:"udp_port" validate:"min=1,max=65535"`
	RateLimit    float64 `yaml:"rate_limit" validate:"gt=0"`
	Burst        int     `yaml:"burst" validate:"min=1"`
	Mdns         bool    `yaml:"mdns"`
	InstanceName string  `yaml:"instance_name" validate:"required_if=Mdns true"`
}

type WeatherParam struct {
	Enabled  bool          `yaml:"enabled"`
	BaseUrl  string        `yaml:"base_url" validate:"required_if=Enabled true,omitempty,url"`
	City     string        `yaml:"city" validate:"required_if=Enabled true"`
	Country  string        `yaml:"country"`
	ApiKey   string        `yaml:"api_key"`
	Interval time.Duration `yaml:"interval" validate:"min=1s"`
	Timeout  time.Duration `yaml:"timeout" validate:"min=100ms"`
}

type TimeParam struct {
	NtpServer    string        `yaml:"ntp_server"`
	SyncInterval time.Duration `yaml:"sync_interval" validate:"min=1s"`
	Dst          RuleParam     `yaml:"dst"`
	Std          RuleParam     `yaml:"std"`
}

type RuleParam struct {
	Abbrev  string `yaml:"abbrev" validate:"required"`
	Week    string `yaml:"week" validate:"required"`
	Weekday string `yaml:"weekday" validate:"required"`
	Month   string `yaml:"month" validate:"required"`
	Hour    int    `yaml:"hour" validate:"min=0,max=23"`
	Offset  int    `yaml:"offset" validate:"min=-720,max=840"`
}

type DisplayParam struct {
	TickInterval      time.Duration `yaml:"tick_interval" validate:"min=10ms"`
	ScrollStep        int           `yaml:"scroll_step" validate:"min=1,max=16"`
	DefaultColor      int           `yaml:"default_color" validate:"min=0,max=3"`
	DefaultBrightness int           `yaml:"default_brightness" validate:"min=0,max=9"`
	SplashDuration    time.Duration `yaml:"splash_duration"`
}

type ApiParam struct {
	Enabled bool   `yaml:"enabled"`
	SslPort int64  `yaml:"ssl_port" validate:"min=1,max=65535"`
	ApiKey  string `yaml:"api_key" validate:"required_if=Enabled true"`
}

type MqttParam struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker" validate:"required_if=Enabled true"`
	Topic    string `yaml:"topic" validate:"required_if=Enabled true"`
	ClientId string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type ButtonParam struct {
	Enabled bool   `yaml:"enabled"`
	Pin     string `yaml:"pin" validate:"required_if=Enabled true"`
}

var validate = validator.New()

func (p *ServerParam) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid param: %w", err)
	}
	if _, err := p.PanelParam.Colors(); err != nil {
		return err
	}
	if _, err := p.TimeParam.Timezone(); err != nil {
		return err
	}
	return nil
}

// Colors converts the hex palette to RGBA colors.
func (p PanelParam) Colors() ([]color.RGBA, error) {
	colors := make([]color.RGBA, 0, len(p.Palette))
	for _, hex := range p.Palette {
		c, err := colorful.Hex(hex)
		if err != nil {
			return nil, fmt.Errorf("invalid palette color %q: %w", hex, err)
		}
		r, g, b := c.RGB255()
		colors = append(colors, color.RGBA{R: r, G: g, B: b, A: 0xff})
	}
	return colors, nil
}

func (p TimeParam) Timezone() (tz.Timezone, error) {
	dst, err := p.Dst.Rule()
	if err != nil {
		return tz.Timezone{}, fmt.Errorf("dst rule: %w", err)
	}
	std, err := p.Std.Rule()
	if err != nil {
		return tz.Timezone{}, fmt.Errorf("std rule: %w", err)
	}
	return tz.New(dst, std), nil
}

func (p RuleParam) Rule() (tz.Rule, error) {
	week, err := tz.ParseWeek(p.Week)
	if err != nil {
		return tz.Rule{}, err
	}
	weekday, err := tz.ParseWeekday(p.Weekday)
	if err != nil {
		return tz.Rule{}, err
	}
	month, err := tz.ParseMonth(p.Month)
	if err != nil {
		return tz.Rule{}, err
	}
	return tz.Rule{
		Abbrev:  p.Abbrev,
		Week:    week,
		Weekday: weekday,
		Month:   month,
		Hour:    p.Hour,
		Offset:  p.Offset,
	}, nil
}

func (p WeatherParam) Url() string {
	return fmt.Sprintf("%s?q=%s,%s&appid=%s&units=metric",
		p.BaseUrl, url.QueryEscape(p.City), url.QueryEscape(p.Country), url.QueryEscape(p.ApiKey))
}
