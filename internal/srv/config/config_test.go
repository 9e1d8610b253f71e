package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServerConfigCreatesDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()

	sc, err := NewServerConfig(fs, "/etc/vekimatrix", false, false, false)
	require.NoError(t, err)

	exists, err := afero.Exists(fs, filepath.Join("/etc/vekimatrix", paramFilename))
	require.NoError(t, err)
	assert.True(t, exists)

	assert.Equal(t, 64, sc.PanelParam.Width)
	assert.Equal(t, 16, sc.PanelParam.Height)
	assert.Equal(t, 1234, sc.ControlParam.UdpPort)
	assert.Equal(t, 60*time.Second, sc.WeatherParam.Interval)
	assert.Equal(t, 10*time.Second, sc.WeatherParam.Timeout)
	assert.Equal(t, 50*time.Millisecond, sc.DisplayParam.TickInterval)
	assert.Equal(t, "pool.ntp.org", sc.TimeParam.NtpServer)

	assert.Equal(t, DisplaySettings{ColorIndex: 0, BrightnessLevel: 5}, sc.DisplaySettings())
	text, _ := sc.OverrideText()
	assert.Empty(t, text)
	assert.True(t, sc.DisplayOn())

	// the written file reads back to the same values
	again, err := NewServerConfig(fs, "/etc/vekimatrix", false, false, false)
	require.NoError(t, err)
	assert.Equal(t, sc.ServerParam, again.ServerParam)
}

func TestNewServerConfigPartialFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/cfg", 0770))
	require.NoError(t, afero.WriteFile(fs, "/cfg/param.yaml", []byte(`
panel:
  width: 32
  palette: ["#000000", "#101010", "#202020", "#303030"]
display:
  default_color: 2
  default_brightness: 9
weather:
  interval: 5m
`), 0660))

	sc, err := NewServerConfig(fs, "/cfg", false, false, false)
	require.NoError(t, err)

	assert.Equal(t, 32, sc.PanelParam.Width)
	assert.Equal(t, 16, sc.PanelParam.Height)
	assert.Equal(t, 5*time.Minute, sc.WeatherParam.Interval)
	assert.Equal(t, DisplaySettings{ColorIndex: 2, BrightnessLevel: 9}, sc.DisplaySettings())

	colors, err := sc.PanelParam.Colors()
	require.NoError(t, err)
	assert.Len(t, colors, 4)
	assert.Equal(t, uint8(0x30), colors[3].R)
}

func TestNewServerConfigInvalid(t *testing.T) {
	tests := []struct {
		name  string
		param string
	}{
		{"bad yaml", "panel: [\n"},
		{"short palette", "panel:\n  palette: [\"#ffffff\"]\n"},
		{"bad color", "panel:\n  palette: [\"#ffffff\", \"#ff0000\", \"#00ff00\", \"blue\"]\n"},
		{"brightness", "display:\n  default_brightness: 12\n"},
		{"port", "control:\n  udp_port: 0\n"},
		{"month", "time:\n  dst:\n    month: smarch\n"},
		{"api key", "api:\n  enabled: true\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, "/cfg/param.yaml", []byte(tt.param), 0660))

			_, err := NewServerConfig(fs, "/cfg", false, false, false)
			assert.Error(t, err)
		})
	}
}

func TestTimezoneFromParam(t *testing.T) {
	sc, err := NewServerConfig(afero.NewMemMapFs(), "/cfg", false, false, false)
	require.NoError(t, err)

	zone, err := sc.TimeParam.Timezone()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.March, 29, 1, 0, 0, 0, time.UTC), zone.DSTStart(2026))
	assert.Equal(t, "CET", zone.STD.Abbrev)
}

func TestWeatherUrl(t *testing.T) {
	p := WeatherParam{BaseUrl: "http://example.org/weather", City: "Freiburg", Country: "DE", ApiKey: "k"}
	assert.Equal(t, "http://example.org/weather?q=Freiburg,DE&appid=k&units=metric", p.Url())
}
