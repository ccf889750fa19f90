package airquality

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/envsense/envsense/internal/metrics"
)

// ErrPlaceNotFound covers both an unknown place and a geocoding provider
// failure; callers cannot and must not distinguish the two.
var ErrPlaceNotFound = errors.New("place not found")

// ErrAQIUnavailable means the AQI source failed. The AQI value anchors the
// report, so no report is produced at all.
var ErrAQIUnavailable = errors.New("aqi data unavailable")

// Per-source cache TTLs.
const (
	geocodeTTL       = 900 * time.Second
	weatherTTL       = 600 * time.Second
	aqiTTL           = 300 * time.Second
	concentrationTTL = 600 * time.Second
)

// Cache is the TTL-keyed memoization used by the service. A miss is
// (false, nil), never an error.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
}

// geocodeResolver is the interface satisfied by GeocodeClient.
type geocodeResolver interface {
	Resolve(ctx context.Context, place string) (*Place, error)
}

// weatherFetcher is the interface satisfied by WeatherClient.
type weatherFetcher interface {
	Fetch(ctx context.Context, lat, lon float64) (*WeatherSnapshot, error)
}

// aqiFetcher is the interface satisfied by AQIClient.
type aqiFetcher interface {
	Fetch(ctx context.Context, lat, lon float64) (*AqiReading, error)
}

// stationFetcher is the interface satisfied by StationClient.
type stationFetcher interface {
	Fetch(ctx context.Context, lat, lon float64) (*StationResult, error)
}

// Service resolves a place name and aggregates the three air-quality
// sources into a single report.
type Service struct {
	geocode  geocodeResolver
	weather  weatherFetcher
	aqi      aqiFetcher
	stations stationFetcher
	cache    Cache
	log      *slog.Logger
}

// NewService constructs a Service with production clients.
func NewService(owmKey, waqiToken string, cache Cache, log *slog.Logger) *Service {
	return &Service{
		geocode:  NewGeocodeClient(owmKey),
		weather:  NewWeatherClient(owmKey),
		aqi:      NewAQIClient(waqiToken),
		stations: NewStationClient(),
		cache:    cache,
		log:      log,
	}
}

// NewServiceWithClients constructs a Service with injectable clients (used in tests).
func NewServiceWithClients(g geocodeResolver, w weatherFetcher, a aqiFetcher, s stationFetcher, cache Cache, log *slog.Logger) *Service {
	return &Service{geocode: g, weather: w, aqi: a, stations: s, cache: cache, log: log}
}

// normalizePlace canonicalizes a place name for cache keying: lowercase,
// trimmed, inner whitespace collapsed. "Mumbai" and " mumbai " share one
// cache entry and one geocoder query.
func normalizePlace(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// coordKey rounds coordinates to four decimals (~11 m) so nearby float
// noise shares a cache entry.
func coordKey(prefix string, lat, lon float64) string {
	return fmt.Sprintf("%s:%.4f,%.4f", prefix, lat, lon)
}

// geoCacheEntry memoizes both found and not-found geocoding outcomes.
type geoCacheEntry struct {
	Found bool  `json:"found"`
	Place Place `json:"place"`
}

// Report runs the full pipeline for a place name: resolve, fan out to the
// three sources, band, and merge. Weather and concentrations degrade by
// omission; a missing AQI reading aborts with ErrAQIUnavailable.
func (s *Service) Report(ctx context.Context, place string) (*Report, error) {
	pl, err := s.resolve(ctx, place)
	if err != nil {
		return nil, err
	}

	g, gCtx := errgroup.WithContext(ctx)

	var weather *WeatherSnapshot
	var reading *AqiReading
	var station *StationResult

	g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("weather fetch panicked", "recover", r)
				err = fmt.Errorf("weather fetch panicked: %v", r)
			}
		}()
		weather = s.fetchWeather(gCtx, pl.Latitude, pl.Longitude)
		return nil
	})

	g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("aqi fetch panicked", "recover", r)
				err = fmt.Errorf("aqi fetch panicked: %v", r)
			}
		}()
		reading = s.fetchAQI(gCtx, pl.Latitude, pl.Longitude)
		return nil
	})

	g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("station fetch panicked", "recover", r)
				err = fmt.Errorf("station fetch panicked: %v", r)
			}
		}()
		station = s.fetchStation(gCtx, pl.Latitude, pl.Longitude)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetching air-quality data for %q: %w", place, err)
	}

	if reading == nil {
		return nil, ErrAQIUnavailable
	}

	band := BandFor(reading.Value)
	report := &Report{
		Place: *pl,
		AQI: AqiSummary{
			Value:             reading.Value,
			Band:              band.String(),
			HealthImpact:      band.HealthImpact(),
			Advisory:          band.Advisory(),
			GaugePercent:      GaugePercent(reading.Value),
			GaugeColor:        band.Color(),
			DominantPollutant: reading.DominantPollutant,
			StationName:       reading.StationName,
			ObservedAt:        reading.ObservedAt,
			SourceURL:         reading.SourceURL,
		},
		Weather: weather,
	}

	if station != nil {
		report.Pollutants = judgePollutants(station.Measurements)
		report.PollutantStation = station.Location
	}

	return report, nil
}

// resolve geocodes a place name through the 900-second cache. Both found
// and empty outcomes are memoized; a provider error is reported as not
// found without caching, so a recovered provider is retried next query.
func (s *Service) resolve(ctx context.Context, place string) (*Place, error) {
	norm := normalizePlace(place)
	if norm == "" {
		return nil, ErrPlaceNotFound
	}
	key := "geo:" + norm

	var cached geoCacheEntry
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.Warn("geocode cache get failed", "place", norm, "err", err)
	}
	if hit {
		metrics.CacheLookupsTotal.WithLabelValues("geocode", "hit").Inc()
		if !cached.Found {
			return nil, ErrPlaceNotFound
		}
		return &cached.Place, nil
	}
	metrics.CacheLookupsTotal.WithLabelValues("geocode", "miss").Inc()

	pl, err := s.geocode.Resolve(ctx, norm)
	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues("geocode", "error").Inc()
		s.log.Warn("geocode failed", "place", norm, "err", err)
		return nil, ErrPlaceNotFound
	}
	metrics.ProviderRequestsTotal.WithLabelValues("geocode", "ok").Inc()

	entry := geoCacheEntry{}
	if pl != nil {
		entry = geoCacheEntry{Found: true, Place: *pl}
	}
	if err := s.cache.Set(ctx, key, entry, geocodeTTL); err != nil {
		s.log.Warn("geocode cache set failed", "place", norm, "err", err)
	}

	if pl == nil {
		return nil, ErrPlaceNotFound
	}
	return pl, nil
}

// fetchWeather returns current conditions or nil. Failures are logged and
// swallowed: weather is optional.
func (s *Service) fetchWeather(ctx context.Context, lat, lon float64) *WeatherSnapshot {
	key := coordKey("weather", lat, lon)

	var cached WeatherSnapshot
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.Warn("weather cache get failed", "key", key, "err", err)
	}
	if hit {
		metrics.CacheLookupsTotal.WithLabelValues("weather", "hit").Inc()
		return &cached
	}
	metrics.CacheLookupsTotal.WithLabelValues("weather", "miss").Inc()

	snap, err := s.weather.Fetch(ctx, lat, lon)
	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues("weather", "error").Inc()
		s.log.Warn("weather fetch failed", "key", key, "err", err)
		return nil
	}
	metrics.ProviderRequestsTotal.WithLabelValues("weather", "ok").Inc()

	if err := s.cache.Set(ctx, key, snap, weatherTTL); err != nil {
		s.log.Warn("weather cache set failed", "key", key, "err", err)
	}
	return snap
}

// fetchAQI returns the AQI reading or nil. The caller decides that nil is
// fatal; this method treats the source like any other.
func (s *Service) fetchAQI(ctx context.Context, lat, lon float64) *AqiReading {
	key := coordKey("aqi", lat, lon)

	var cached AqiReading
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.Warn("aqi cache get failed", "key", key, "err", err)
	}
	if hit {
		metrics.CacheLookupsTotal.WithLabelValues("aqi", "hit").Inc()
		return &cached
	}
	metrics.CacheLookupsTotal.WithLabelValues("aqi", "miss").Inc()

	reading, err := s.aqi.Fetch(ctx, lat, lon)
	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues("aqi", "error").Inc()
		s.log.Warn("aqi fetch failed", "key", key, "err", err)
		return nil
	}
	metrics.ProviderRequestsTotal.WithLabelValues("aqi", "ok").Inc()

	if err := s.cache.Set(ctx, key, reading, aqiTTL); err != nil {
		s.log.Warn("aqi cache set failed", "key", key, "err", err)
	}
	return reading
}

// fetchStation returns the nearest station's measurements or nil. Like
// weather, a missing station section degrades the report by omission.
func (s *Service) fetchStation(ctx context.Context, lat, lon float64) *StationResult {
	key := coordKey("conc", lat, lon)

	var cached StationResult
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.Warn("station cache get failed", "key", key, "err", err)
	}
	if hit {
		metrics.CacheLookupsTotal.WithLabelValues("concentration", "hit").Inc()
		return &cached
	}
	metrics.CacheLookupsTotal.WithLabelValues("concentration", "miss").Inc()

	result, err := s.stations.Fetch(ctx, lat, lon)
	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues("concentration", "error").Inc()
		s.log.Warn("station fetch failed", "key", key, "err", err)
		return nil
	}
	metrics.ProviderRequestsTotal.WithLabelValues("concentration", "ok").Inc()

	if result == nil {
		return nil
	}

	if err := s.cache.Set(ctx, key, result, concentrationTTL); err != nil {
		s.log.Warn("station cache set failed", "key", key, "err", err)
	}
	return result
}
