// README: Pure fare estimator (great-circle distance, duration, fare).
package fare

import (
	"math"

	"cabcab/internal/types"
)

const earthRadiusKm = 6371.0

// Estimate is the projected cost of a ride between two points.
type Estimate struct {
	DistanceKm  float64     `json:"distance_km"`
	DurationMin int         `json:"duration_min"`
	Fare        types.Money `json:"fare"`
}

// Estimator computes ride estimates from a Pricing configuration. It has no
// side effects and is safe for concurrent use.
type Estimator struct {
	pricing Pricing
}

func NewEstimator(p Pricing) *Estimator {
	return &Estimator{pricing: p}
}

// Estimate returns distance, duration and fare for a trip from pickup to
// dropoff. Duration is floored whole minutes at the configured average speed;
// the floored value feeds the fare term, the returned value is clamped to a
// one-minute minimum. The fare is clamped to the configured minimum.
func (e *Estimator) Estimate(pickup, dropoff types.Point) Estimate {
	distance := HaversineKm(pickup, dropoff)
	duration := int(distance * 60 / e.pricing.AvgSpeedKmh)

	cents := e.pricing.Base.Amount +
		int64(math.Round(distance*float64(e.pricing.PerKm.Amount))) +
		int64(duration)*e.pricing.PerMinute.Amount
	if cents < e.pricing.Minimum.Amount {
		cents = e.pricing.Minimum.Amount
	}

	if duration < 1 {
		duration = 1
	}
	return Estimate{
		DistanceKm:  math.Round(distance*100) / 100,
		DurationMin: duration,
		Fare:        types.Cents(cents),
	}
}

// HaversineKm returns the great-circle distance in kilometres between two
// points specified in decimal degrees.
func HaversineKm(a, b types.Point) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	rLat1 := degreesToRadians(a.Lat)
	rLat2 := degreesToRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
