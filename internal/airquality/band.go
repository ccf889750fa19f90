package airquality

// Band is one of the six CPCB health-severity tiers. The tiers partition the
// non-negative integers: each upper bound is inclusive, the next tier starts
// one above it.
type Band int

const (
	BandGood Band = iota
	BandSatisfactory
	BandModerate
	BandPoor
	BandVeryPoor
	BandSevere
)

// BandFor maps an AQI value to its tier. Negative values are treated as 0.
func BandFor(aqi int) Band {
	switch {
	case aqi <= 50:
		return BandGood
	case aqi <= 100:
		return BandSatisfactory
	case aqi <= 200:
		return BandModerate
	case aqi <= 300:
		return BandPoor
	case aqi <= 400:
		return BandVeryPoor
	default:
		return BandSevere
	}
}

func (b Band) String() string {
	switch b {
	case BandGood:
		return "Good"
	case BandSatisfactory:
		return "Satisfactory"
	case BandModerate:
		return "Moderate"
	case BandPoor:
		return "Poor"
	case BandVeryPoor:
		return "Very Poor"
	default:
		return "Severe"
	}
}

// HealthImpact returns the fixed CPCB health-impact phrase for the tier.
func (b Band) HealthImpact() string {
	switch b {
	case BandGood:
		return "Minimal impact"
	case BandSatisfactory:
		return "Minor breathing discomfort"
	case BandModerate:
		return "Discomfort to sensitive groups"
	case BandPoor:
		return "Discomfort to most on prolonged exposure"
	case BandVeryPoor:
		return "Respiratory illness likely"
	default:
		return "Serious impact even on healthy people"
	}
}

// Advisory returns the fixed advisory phrase for the tier.
func (b Band) Advisory() string {
	switch b {
	case BandGood:
		return "Enjoy the fresh air! Perfect for outdoor activities."
	case BandSatisfactory:
		return "Air is satisfactory. Sensitive people should stay alert."
	case BandModerate:
		return "Limit outdoor activity; wear a mask if sensitive."
	case BandPoor:
		return "Avoid outdoor exercise. Keep windows closed."
	case BandVeryPoor:
		return "Stay indoors; wear N95 if you must go out."
	default:
		return "Avoid outdoor activity completely. Use air purifier."
	}
}

// Color returns the hex color used for the tier's gauge marker.
func (b Band) Color() string {
	switch b {
	case BandGood:
		return "#4CAF50"
	case BandSatisfactory:
		return "#FFEB3B"
	case BandModerate:
		return "#FF9800"
	case BandPoor:
		return "#F44336"
	case BandVeryPoor:
		return "#9C27B0"
	default:
		return "#000000"
	}
}

// GaugePercent positions an AQI value on the fixed 0-500 visual scale,
// clamped so values above 500 do not overflow.
func GaugePercent(aqi int) float64 {
	if aqi < 0 {
		aqi = 0
	}
	if aqi > 500 {
		aqi = 500
	}
	return float64(aqi) / 5
}

// regulatoryLimits holds the CPCB 24-hour limits in µg/m³ (CO in mg/m³
// expressed as 2000 µg/m³, matching the station feed's units).
var regulatoryLimits = map[string]float64{
	"pm25": 60,
	"pm10": 100,
	"so2":  80,
	"no2":  80,
	"o3":   100,
	"co":   2000,
	"nh3":  400,
}

// judgePollutants resolves each measured concentration against the limit
// table. Parameters without a table entry get no verdict at all.
func judgePollutants(concs []PollutantConcentration) []PollutantStatus {
	var out []PollutantStatus
	for _, c := range concs {
		limit, ok := regulatoryLimits[c.Parameter]
		if !ok {
			continue
		}
		status := "safe"
		if c.Value > limit {
			status = "high"
		}
		out = append(out, PollutantStatus{
			Parameter: c.Parameter,
			Value:     c.Value,
			Unit:      c.Unit,
			Limit:     limit,
			Status:    status,
		})
	}
	return out
}
