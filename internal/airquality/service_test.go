package airquality_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/envsense/envsense/internal/airquality"
)

// ---- fakes ----

// memCache is an in-memory Cache; TTLs are recorded but never enforced.
type memCache struct {
	entries map[string][]byte
	ttls    map[string]time.Duration
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (c *memCache) Get(_ context.Context, key string, dst any) (bool, error) {
	b, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *memCache) Set(_ context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.entries[key] = b
	c.ttls[key] = ttl
	return nil
}

type mockGeocoder struct {
	calls int
	fn    func(place string) (*airquality.Place, error)
}

func (m *mockGeocoder) Resolve(_ context.Context, place string) (*airquality.Place, error) {
	m.calls++
	return m.fn(place)
}

type mockWeather struct {
	fn func() (*airquality.WeatherSnapshot, error)
}

func (m *mockWeather) Fetch(_ context.Context, _, _ float64) (*airquality.WeatherSnapshot, error) {
	return m.fn()
}

type mockAQI struct {
	calls int
	fn    func() (*airquality.AqiReading, error)
}

func (m *mockAQI) Fetch(_ context.Context, _, _ float64) (*airquality.AqiReading, error) {
	m.calls++
	return m.fn()
}

type mockStations struct {
	fn func() (*airquality.StationResult, error)
}

func (m *mockStations) Fetch(_ context.Context, _, _ float64) (*airquality.StationResult, error) {
	return m.fn()
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mumbai() *airquality.Place {
	return &airquality.Place{Name: "mumbai", Latitude: 19.076, Longitude: 72.8777, CountryCode: "IN"}
}

func healthyMocks() (*mockGeocoder, *mockWeather, *mockAQI, *mockStations) {
	g := &mockGeocoder{fn: func(string) (*airquality.Place, error) { return mumbai(), nil }}
	w := &mockWeather{fn: func() (*airquality.WeatherSnapshot, error) {
		return &airquality.WeatherSnapshot{Description: "haze", TemperatureC: 31.2, HumidityPct: 58, WindSpeedMs: 2.1}, nil
	}}
	a := &mockAQI{fn: func() (*airquality.AqiReading, error) {
		return &airquality.AqiReading{Value: 75, DominantPollutant: "pm25", StationName: "Bandra"}, nil
	}}
	s := &mockStations{fn: func() (*airquality.StationResult, error) {
		return &airquality.StationResult{
			Location: "Bandra Kurla Complex",
			Measurements: []airquality.PollutantConcentration{
				{Parameter: "pm25", Value: 80, Unit: "µg/m³"},
				{Parameter: "no2", Value: 32.5, Unit: "µg/m³"},
				{Parameter: "bc", Value: 4.2, Unit: "µg/m³"}, // no regulatory limit
			},
		}, nil
	}}
	return g, w, a, s
}

// ---- tests ----

func TestReport_FullMerge(t *testing.T) {
	g, w, a, s := healthyMocks()
	svc := airquality.NewServiceWithClients(g, w, a, s, newMemCache(), testLogger())

	report, err := svc.Report(context.Background(), "Mumbai")
	require.NoError(t, err)

	assert.Equal(t, "IN", report.Place.CountryCode)
	assert.Equal(t, 75, report.AQI.Value)
	assert.Equal(t, "Satisfactory", report.AQI.Band)
	assert.Equal(t, "Minor breathing discomfort", report.AQI.HealthImpact)
	assert.Equal(t, 15.0, report.AQI.GaugePercent)
	assert.Equal(t, "#FFEB3B", report.AQI.GaugeColor)

	require.NotNil(t, report.Weather)
	assert.Equal(t, "haze", report.Weather.Description)

	// pm25 over its limit of 60, no2 under 80; bc has no limit so no verdict.
	require.Len(t, report.Pollutants, 2)
	assert.Equal(t, "pm25", report.Pollutants[0].Parameter)
	assert.Equal(t, "high", report.Pollutants[0].Status)
	assert.Equal(t, 60.0, report.Pollutants[0].Limit)
	assert.Equal(t, "no2", report.Pollutants[1].Parameter)
	assert.Equal(t, "safe", report.Pollutants[1].Status)
	assert.Equal(t, "Bandra Kurla Complex", report.PollutantStation)
}

func TestReport_AQIUnavailableIsFatal(t *testing.T) {
	g, w, _, s := healthyMocks()
	a := &mockAQI{fn: func() (*airquality.AqiReading, error) { return nil, fmt.Errorf("waqi down") }}
	svc := airquality.NewServiceWithClients(g, w, a, s, newMemCache(), testLogger())

	report, err := svc.Report(context.Background(), "Mumbai")
	require.ErrorIs(t, err, airquality.ErrAQIUnavailable)
	assert.Nil(t, report, "no partial report without the AQI anchor")
}

func TestReport_WeatherDegradesByOmission(t *testing.T) {
	g, _, a, s := healthyMocks()
	w := &mockWeather{fn: func() (*airquality.WeatherSnapshot, error) { return nil, fmt.Errorf("owm down") }}
	svc := airquality.NewServiceWithClients(g, w, a, s, newMemCache(), testLogger())

	report, err := svc.Report(context.Background(), "Mumbai")
	require.NoError(t, err)
	assert.Nil(t, report.Weather)
	assert.NotEmpty(t, report.Pollutants, "other sections are unaffected")
}

func TestReport_StationsDegradeByOmission(t *testing.T) {
	g, w, a, _ := healthyMocks()
	s := &mockStations{fn: func() (*airquality.StationResult, error) { return nil, nil }}
	svc := airquality.NewServiceWithClients(g, w, a, s, newMemCache(), testLogger())

	report, err := svc.Report(context.Background(), "Mumbai")
	require.NoError(t, err)
	assert.Empty(t, report.Pollutants, "no station in range means no pollutant section, not unknowns")
	assert.Empty(t, report.PollutantStation)
}

func TestReport_PlaceNotFound(t *testing.T) {
	_, w, a, s := healthyMocks()
	g := &mockGeocoder{fn: func(string) (*airquality.Place, error) { return nil, nil }}
	svc := airquality.NewServiceWithClients(g, w, a, s, newMemCache(), testLogger())

	_, err := svc.Report(context.Background(), "Atlantis")
	require.ErrorIs(t, err, airquality.ErrPlaceNotFound)
}

func TestReport_GeocodeErrorLooksLikeNotFound(t *testing.T) {
	_, w, a, s := healthyMocks()
	g := &mockGeocoder{fn: func(string) (*airquality.Place, error) { return nil, fmt.Errorf("provider down") }}
	svc := airquality.NewServiceWithClients(g, w, a, s, newMemCache(), testLogger())

	_, err := svc.Report(context.Background(), "Mumbai")
	require.ErrorIs(t, err, airquality.ErrPlaceNotFound)
}

func TestReport_EmptyPlace(t *testing.T) {
	g, w, a, s := healthyMocks()
	svc := airquality.NewServiceWithClients(g, w, a, s, newMemCache(), testLogger())

	_, err := svc.Report(context.Background(), "   ")
	require.ErrorIs(t, err, airquality.ErrPlaceNotFound)
	assert.Zero(t, g.calls, "blank input never reaches the provider")
}

func TestReport_GeocodeMemoizedAcrossCasing(t *testing.T) {
	g, w, a, s := healthyMocks()
	svc := airquality.NewServiceWithClients(g, w, a, s, newMemCache(), testLogger())

	_, err := svc.Report(context.Background(), "Mumbai")
	require.NoError(t, err)
	_, err = svc.Report(context.Background(), "  MUMBAI ")
	require.NoError(t, err)

	assert.Equal(t, 1, g.calls, "normalized names share one cache entry")
}

func TestReport_NotFoundIsMemoized(t *testing.T) {
	_, w, a, s := healthyMocks()
	g := &mockGeocoder{fn: func(string) (*airquality.Place, error) { return nil, nil }}
	svc := airquality.NewServiceWithClients(g, w, a, s, newMemCache(), testLogger())

	for i := 0; i < 3; i++ {
		_, err := svc.Report(context.Background(), "Atlantis")
		require.ErrorIs(t, err, airquality.ErrPlaceNotFound)
	}
	assert.Equal(t, 1, g.calls, "empty geocoder results are cached too")
}

func TestReport_AQICachedBetweenQueries(t *testing.T) {
	g, w, a, s := healthyMocks()
	svc := airquality.NewServiceWithClients(g, w, a, s, newMemCache(), testLogger())

	_, err := svc.Report(context.Background(), "Mumbai")
	require.NoError(t, err)
	_, err = svc.Report(context.Background(), "Mumbai")
	require.NoError(t, err)

	assert.Equal(t, 1, a.calls, "second query is served from the AQI cache")
}

func TestReport_CacheTTLsPerSource(t *testing.T) {
	g, w, a, s := healthyMocks()
	cache := newMemCache()
	svc := airquality.NewServiceWithClients(g, w, a, s, cache, testLogger())

	_, err := svc.Report(context.Background(), "Mumbai")
	require.NoError(t, err)

	assert.Equal(t, 900*time.Second, cache.ttls["geo:mumbai"])
	assert.Equal(t, 600*time.Second, cache.ttls["weather:19.0760,72.8777"])
	assert.Equal(t, 300*time.Second, cache.ttls["aqi:19.0760,72.8777"])
	assert.Equal(t, 600*time.Second, cache.ttls["conc:19.0760,72.8777"])
}
