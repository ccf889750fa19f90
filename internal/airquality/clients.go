package airquality

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

const httpTimeout = 10 * time.Second

// stationRadiusMeters is the fixed search radius for the nearest ground
// station.
const stationRadiusMeters = 40000

// stationParameters is the fixed set of pollutants requested from the
// ground-station provider.
var stationParameters = []string{"pm25", "pm10", "o3", "no2", "so2", "co", "nh3"}

// newHTTPClient returns an http.Client with a 10-second timeout.
func newHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// newBreaker returns a circuit breaker for one provider. A provider that
// keeps failing trips the breaker and is reported unavailable without
// hitting the network until the timeout elapses.
func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
	})
}

// doGet performs a GET through the client's circuit breaker and decodes the
// JSON response into dst. There are no retries: a single failure within the
// timeout is final for this query.
func doGet(ctx context.Context, client *http.Client, cb *gobreaker.CircuitBreaker, rawURL string, dst any) error {
	_, err := cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request for %s: %w", rawURL, err)
		}

		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("GET %s: %w", rawURL, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("GET %s returned status %d", rawURL, resp.StatusCode)
		}

		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			return nil, fmt.Errorf("decoding response from %s: %w", rawURL, err)
		}

		return nil, nil
	})
	return err
}

// ---- OpenWeatherMap geocoding ----

// GeocodeClient resolves free-text place names via the OpenWeatherMap direct
// geocoding endpoint.
type GeocodeClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

const owmGeoDefaultURL = "http://api.openweathermap.org/geo/1.0/direct"

// NewGeocodeClient constructs a GeocodeClient with the given API key.
func NewGeocodeClient(apiKey string) *GeocodeClient {
	return &GeocodeClient{apiKey: apiKey, baseURL: owmGeoDefaultURL, client: newHTTPClient(), breaker: newBreaker("geocode")}
}

// NewGeocodeClientWithURL constructs a GeocodeClient pointing at a custom base URL (for tests).
func NewGeocodeClientWithURL(baseURL, apiKey string) *GeocodeClient {
	return &GeocodeClient{apiKey: apiKey, baseURL: baseURL, client: newHTTPClient(), breaker: newBreaker("geocode")}
}

type owmGeoEntry struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
}

// Resolve returns the first candidate for the given place name, or nil when
// the provider has no match.
func (c *GeocodeClient) Resolve(ctx context.Context, place string) (*Place, error) {
	q := url.Values{}
	q.Set("q", place)
	q.Set("limit", "1")
	q.Set("appid", c.apiKey)

	var raw []owmGeoEntry
	if err := doGet(ctx, c.client, c.breaker, c.baseURL+"?"+q.Encode(), &raw); err != nil {
		return nil, fmt.Errorf("geocoding %q: %w", place, err)
	}

	if len(raw) == 0 {
		return nil, nil
	}

	return &Place{
		Name:        place,
		Latitude:    raw[0].Lat,
		Longitude:   raw[0].Lon,
		CountryCode: raw[0].Country,
	}, nil
}

// ---- OpenWeatherMap current weather ----

// WeatherClient fetches current conditions from OpenWeatherMap.
type WeatherClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

const owmWeatherDefaultURL = "https://api.openweathermap.org/data/2.5/weather"

// NewWeatherClient constructs a WeatherClient with the given API key.
func NewWeatherClient(apiKey string) *WeatherClient {
	return &WeatherClient{apiKey: apiKey, baseURL: owmWeatherDefaultURL, client: newHTTPClient(), breaker: newBreaker("weather")}
}

// NewWeatherClientWithURL constructs a WeatherClient pointing at a custom base URL (for tests).
func NewWeatherClientWithURL(baseURL, apiKey string) *WeatherClient {
	return &WeatherClient{apiKey: apiKey, baseURL: baseURL, client: newHTTPClient(), breaker: newBreaker("weather")}
}

type owmWeatherResponse struct {
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// Fetch retrieves current weather for the given coordinates.
func (c *WeatherClient) Fetch(ctx context.Context, lat, lon float64) (*WeatherSnapshot, error) {
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%f", lat))
	q.Set("lon", fmt.Sprintf("%f", lon))
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")

	var raw owmWeatherResponse
	if err := doGet(ctx, c.client, c.breaker, c.baseURL+"?"+q.Encode(), &raw); err != nil {
		return nil, fmt.Errorf("openweathermap fetch at %f,%f: %w", lat, lon, err)
	}

	description := ""
	if len(raw.Weather) > 0 {
		description = raw.Weather[0].Description
	}

	return &WeatherSnapshot{
		Description:  description,
		TemperatureC: raw.Main.Temp,
		HumidityPct:  raw.Main.Humidity,
		WindSpeedMs:  raw.Wind.Speed,
	}, nil
}

// ---- WAQI ----

// AQIClient fetches the air-quality index from the World Air Quality Index
// project feed.
type AQIClient struct {
	token   string
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

const waqiDefaultURL = "https://api.waqi.info"

// NewAQIClient constructs an AQIClient with the given token.
func NewAQIClient(token string) *AQIClient {
	return &AQIClient{token: token, baseURL: waqiDefaultURL, client: newHTTPClient(), breaker: newBreaker("aqi")}
}

// NewAQIClientWithURL constructs an AQIClient pointing at a custom base URL (for tests).
func NewAQIClientWithURL(baseURL, token string) *AQIClient {
	return &AQIClient{token: token, baseURL: baseURL, client: newHTTPClient(), breaker: newBreaker("aqi")}
}

type waqiResponse struct {
	Status string `json:"status"`
	Data   struct {
		Aqi         float64 `json:"aqi"`
		DominentPol string  `json:"dominentpol"`
		City        struct {
			Name string `json:"name"`
			URL  string `json:"url"`
		} `json:"city"`
		Time struct {
			S string `json:"s"`
		} `json:"time"`
	} `json:"data"`
}

// Fetch retrieves the AQI reading nearest the given coordinates. A
// provider-reported non-ok status is an error like any transport failure.
func (c *AQIClient) Fetch(ctx context.Context, lat, lon float64) (*AqiReading, error) {
	endpoint := fmt.Sprintf("%s/feed/geo:%f;%f/?token=%s", c.baseURL, lat, lon, url.QueryEscape(c.token))

	var raw waqiResponse
	if err := doGet(ctx, c.client, c.breaker, endpoint, &raw); err != nil {
		return nil, fmt.Errorf("waqi fetch at %f,%f: %w", lat, lon, err)
	}

	if raw.Status != "ok" {
		return nil, fmt.Errorf("waqi returned status %q", raw.Status)
	}

	return &AqiReading{
		Value:             int(raw.Data.Aqi),
		DominantPollutant: raw.Data.DominentPol,
		StationName:       raw.Data.City.Name,
		ObservedAt:        raw.Data.Time.S,
		SourceURL:         raw.Data.City.URL,
	}, nil
}

// ---- OpenAQ ----

// StationResult holds the nearest ground station's measurements.
type StationResult struct {
	Location     string
	LastUpdated  string
	Measurements []PollutantConcentration
}

// StationClient fetches pollutant concentrations from OpenAQ ground
// stations (no API key required).
type StationClient struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

const openaqDefaultURL = "https://api.openaq.org/v2/latest"

// NewStationClient constructs a StationClient.
func NewStationClient() *StationClient {
	return &StationClient{baseURL: openaqDefaultURL, client: newHTTPClient(), breaker: newBreaker("stations")}
}

// NewStationClientWithURL constructs a StationClient pointing at a custom base URL (for tests).
func NewStationClientWithURL(baseURL string) *StationClient {
	return &StationClient{baseURL: baseURL, client: newHTTPClient(), breaker: newBreaker("stations")}
}

type openaqResponse struct {
	Results []struct {
		Location     string `json:"location"`
		Measurements []struct {
			Parameter   string  `json:"parameter"`
			Value       float64 `json:"value"`
			Unit        string  `json:"unit"`
			LastUpdated string  `json:"lastUpdated"`
		} `json:"measurements"`
	} `json:"results"`
}

// Fetch retrieves the single nearest station within the fixed 40 km radius
// and extracts the requested parameters it reports. A parameter the station
// does not report is simply absent from the result. Returns nil when no
// station is within range.
func (c *StationClient) Fetch(ctx context.Context, lat, lon float64) (*StationResult, error) {
	q := url.Values{}
	q.Set("coordinates", fmt.Sprintf("%f,%f", lat, lon))
	q.Set("radius", fmt.Sprintf("%d", stationRadiusMeters))
	q.Set("parameter", strings.Join(stationParameters, ","))
	q.Set("order_by", "distance")
	q.Set("limit", "1")

	var raw openaqResponse
	if err := doGet(ctx, c.client, c.breaker, c.baseURL+"?"+q.Encode(), &raw); err != nil {
		return nil, fmt.Errorf("openaq fetch at %f,%f: %w", lat, lon, err)
	}

	if len(raw.Results) == 0 {
		return nil, nil
	}

	res := raw.Results[0]
	out := &StationResult{Location: res.Location}
	for i, m := range res.Measurements {
		if i == 0 {
			out.LastUpdated = m.LastUpdated
		}
		out.Measurements = append(out.Measurements, PollutantConcentration{
			Parameter: m.Parameter,
			Value:     m.Value,
			Unit:      m.Unit,
		})
	}

	return out, nil
}
