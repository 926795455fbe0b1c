// README: Driver profile subset consumed by matching and rating.
package driver

import "cabcab/internal/types"

// Profile is the slice of a driver record this engine reads and updates.
// The banned flag is read-only here; ban administration lives elsewhere.
type Profile struct {
	ID          types.ID `json:"id"`
	Rating      float64  `json:"rating"`
	RatingCount int      `json:"rating_count"`
	Verified    bool     `json:"is_verified"`
	Available   bool     `json:"is_available"`
	Banned      bool     `json:"is_banned"`
}

// Eligible reports whether the driver may be matched to rides.
func (p *Profile) Eligible() bool {
	return p.Verified && p.Available
}
