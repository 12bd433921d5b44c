package weather

// GeoLocation is the resolved top match for a free-text city search.
type GeoLocation struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	State   string  `json:"state,omitempty"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// WeatherSnapshot is the normalized view of current conditions at a point.
// Temperatures are whole degrees Celsius, wind speed is m/s, pressure is
// hPa, visibility is kilometres, sunrise/sunset are epoch seconds and
// TimezoneOffset is the location's offset from UTC in seconds.
type WeatherSnapshot struct {
	City           string  `json:"city"`
	Country        string  `json:"country"`
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	Temperature    int     `json:"temperature"`
	FeelsLike      int     `json:"feelsLike"`
	Condition      string  `json:"condition"`
	Description    string  `json:"description"`
	Icon           string  `json:"icon"`
	Humidity       int     `json:"humidity"`
	WindSpeed      float64 `json:"windSpeed"`
	Pressure       int     `json:"pressure"`
	Visibility     float64 `json:"visibility"`
	Sunrise        int64   `json:"sunrise"`
	Sunset         int64   `json:"sunset"`
	TimezoneOffset int     `json:"timezone"`
}

// ForecastDay summarizes one calendar date of the 5-day / 3-hour forecast.
// Pop is the probability of precipitation as an integer percentage.
type ForecastDay struct {
	Date          string  `json:"date"`
	DateTimestamp int64   `json:"dateTimestamp"`
	TempMin       int     `json:"tempMin"`
	TempMax       int     `json:"tempMax"`
	Condition     string  `json:"condition"`
	Description   string  `json:"description"`
	Icon          string  `json:"icon"`
	Humidity      int     `json:"humidity"`
	WindSpeed     float64 `json:"windSpeed"`
	Pop           int     `json:"pop"`
}

// PollutionComponents carries pollutant concentrations (µg/m³) exactly as
// reported by the provider.
type PollutionComponents struct {
	CO   float64 `json:"co"`
	NO   float64 `json:"no"`
	NO2  float64 `json:"no2"`
	O3   float64 `json:"o3"`
	SO2  float64 `json:"so2"`
	PM25 float64 `json:"pm2_5"`
	PM10 float64 `json:"pm10"`
	NH3  float64 `json:"nh3"`
}

// PollutionSnapshot is the air-quality reading with the AQI band resolved to
// its display label and color.
type PollutionSnapshot struct {
	AQI        int                 `json:"aqi"`
	AQILabel   string              `json:"aqiLabel"`
	AQIColor   string              `json:"aqiColor"`
	Components PollutionComponents `json:"components"`
}

// AQIInfo maps the provider's 1..5 air quality index onto its display label
// and color. Any value outside that band maps to Unknown/gray. The mapping
// is total: it never fails.
func AQIInfo(aqi int) (label, color string) {
	switch aqi {
	case 1:
		return "Good", "#22c55e"
	case 2:
		return "Fair", "#84cc16"
	case 3:
		return "Moderate", "#eab308"
	case 4:
		return "Poor", "#f97316"
	case 5:
		return "Very Poor", "#ef4444"
	default:
		return "Unknown", "#6b7280"
	}
}
