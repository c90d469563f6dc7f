package traffic

import "math"

// Marker radius ranges in pixels. Filtered views use a larger range so that
// the smaller hourly counts stay visible.
const (
	allDayRadiusMin   = 0
	allDayRadiusMax   = 25
	filteredRadiusMin = 3
	filteredRadiusMax = 50
)

// RadiusScale is a square-root scale from traffic counts to marker radii,
// so that marker area is proportional to traffic.
type RadiusScale struct {
	Domain   float64
	RangeMin float64
	RangeMax float64
}

// NewRadiusScale returns the scale for minute with maxTraffic as the top of
// the domain
func NewRadiusScale(maxTraffic, minute int) RadiusScale {
	if minute == AnyTime {
		return RadiusScale{Domain: float64(maxTraffic), RangeMin: allDayRadiusMin, RangeMax: allDayRadiusMax}
	}
	return RadiusScale{Domain: float64(maxTraffic), RangeMin: filteredRadiusMin, RangeMax: filteredRadiusMax}
}

// Radius maps traffic onto the scale's range
func (s RadiusScale) Radius(traffic int) float64 {
	if s.Domain <= 0 || traffic <= 0 {
		return s.RangeMin
	}
	return s.RangeMin + math.Sqrt(float64(traffic)/s.Domain)*(s.RangeMax-s.RangeMin)
}
