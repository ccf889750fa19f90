package airquality_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/envsense/envsense/internal/airquality"
)

func TestBandFor_Boundaries(t *testing.T) {
	tests := []struct {
		aqi  int
		want string
	}{
		{0, "Good"},
		{50, "Good"},
		{51, "Satisfactory"},
		{100, "Satisfactory"},
		{101, "Moderate"},
		{200, "Moderate"},
		{201, "Poor"},
		{300, "Poor"},
		{301, "Very Poor"},
		{400, "Very Poor"},
		{401, "Severe"},
		{999, "Severe"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, airquality.BandFor(tt.aqi).String(), "aqi %d", tt.aqi)
	}
}

func TestBandFor_NoGaps(t *testing.T) {
	// Every non-negative value maps to exactly one tier, and adjacent
	// values never skip a tier.
	prev := airquality.BandFor(0)
	for aqi := 1; aqi <= 600; aqi++ {
		b := airquality.BandFor(aqi)
		assert.True(t, b == prev || b == prev+1, "aqi %d jumped from %v to %v", aqi, prev, b)
		prev = b
	}
}

func TestBand_PhrasesAreFixed(t *testing.T) {
	assert.Equal(t, "Minimal impact", airquality.BandGood.HealthImpact())
	assert.Equal(t, "Serious impact even on healthy people", airquality.BandSevere.HealthImpact())
	assert.Equal(t, "Limit outdoor activity; wear a mask if sensitive.", airquality.BandModerate.Advisory())
	assert.Equal(t, "#4CAF50", airquality.BandGood.Color())
	assert.Equal(t, "#000000", airquality.BandSevere.Color())
}

func TestGaugePercent_MonotonicAndClamped(t *testing.T) {
	assert.Equal(t, 0.0, airquality.GaugePercent(0))
	assert.Equal(t, 15.0, airquality.GaugePercent(75))
	assert.Equal(t, 100.0, airquality.GaugePercent(500))
	assert.Equal(t, 100.0, airquality.GaugePercent(650), "values above 500 clamp to 100%")

	prev := airquality.GaugePercent(0)
	for aqi := 1; aqi <= 700; aqi++ {
		cur := airquality.GaugePercent(aqi)
		assert.GreaterOrEqual(t, cur, prev, "gauge must be monotonic at aqi %d", aqi)
		prev = cur
	}
}
