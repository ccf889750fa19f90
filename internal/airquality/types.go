package airquality

// Place is a geocoded location, resolved once per query.
type Place struct {
	Name        string  `json:"name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	CountryCode string  `json:"country_code"`
}

// WeatherSnapshot holds current conditions at a place. Optional: a report
// without one is still a valid report.
type WeatherSnapshot struct {
	Description  string  `json:"description"`
	TemperatureC float64 `json:"temperature_c"`
	HumidityPct  int     `json:"humidity_pct"`
	WindSpeedMs  float64 `json:"wind_speed_ms"`
}

// AqiReading is the WAQI observation a report is anchored on.
type AqiReading struct {
	Value             int    `json:"value"`
	DominantPollutant string `json:"dominant_pollutant,omitempty"`
	StationName       string `json:"station_name,omitempty"`
	ObservedAt        string `json:"observed_at,omitempty"`
	SourceURL         string `json:"source_url,omitempty"`
}

// PollutantConcentration is one measured parameter from the nearest
// ground station. A parameter the station does not report simply has no
// PollutantConcentration; absence means "not measured nearby", not zero.
type PollutantConcentration struct {
	Parameter string  `json:"parameter"`
	Value     float64 `json:"value"`
	Unit      string  `json:"unit"`
}

// PollutantStatus is a concentration judged against its regulatory limit.
type PollutantStatus struct {
	Parameter string  `json:"parameter"`
	Value     float64 `json:"value"`
	Unit      string  `json:"unit"`
	Limit     float64 `json:"limit"`
	Status    string  `json:"status"` // "safe" or "high"
}

// AqiSummary is the banded view of an AqiReading.
type AqiSummary struct {
	Value             int     `json:"value"`
	Band              string  `json:"band"`
	HealthImpact      string  `json:"health_impact"`
	Advisory          string  `json:"advisory"`
	GaugePercent      float64 `json:"gauge_percent"`
	GaugeColor        string  `json:"gauge_color"`
	DominantPollutant string  `json:"dominant_pollutant,omitempty"`
	StationName       string  `json:"station_name,omitempty"`
	ObservedAt        string  `json:"observed_at,omitempty"`
	SourceURL         string  `json:"source_url,omitempty"`
}

// Report is the merged result of one air-quality query. Weather and
// Pollutants are omitted entirely when their source was unavailable.
type Report struct {
	Place            Place             `json:"place"`
	AQI              AqiSummary        `json:"aqi"`
	Pollutants       []PollutantStatus `json:"pollutants,omitempty"`
	PollutantStation string            `json:"pollutant_station,omitempty"`
	Weather          *WeatherSnapshot  `json:"weather,omitempty"`
}
