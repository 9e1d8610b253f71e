package apimodel

// State is the live panel state returned by GET /api/state.
type State struct {
	ColorIndex      int    `json:"color_index"`
	BrightnessLevel int    `json:"brightness_level"`
	Text            string `json:"text"`
	TextActive      bool   `json:"text_active"`
	DisplayOn       bool   `json:"display_on"`
	Mode            string `json:"mode"`
	Weather         string `json:"weather"`
	LocalTime       string `json:"local_time"`
	Timezone        string `json:"timezone"`
}

type TextRequest struct {
	Text string `json:"text"`
}

// WeatherRefresh is returned by POST /api/weather/refresh.
type WeatherRefresh struct {
	Weather string `json:"weather"`
}
