// README: Commission setting (platform operator's cut of each fare).
package commission

import (
	"time"

	"cabcab/internal/types"
)

// Setting is the platform operator's commission configuration. One setting
// exists per admin; at most one active setting is honoured at settlement time.
type Setting struct {
	ID              types.ID  `json:"id"`
	AdminID         types.ID  `json:"admin_id"`
	PaymentMethodID types.ID  `json:"payment_method_id"`
	Percentage      float64   `json:"percentage"`
	Active          bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Statistics summarise commission earnings to date.
type Statistics struct {
	TotalEarned types.Money `json:"total_earned"`
	RideCount   int         `json:"ride_count"`
}
