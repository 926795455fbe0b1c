// README: Location snapshot owned by the ride that references it.
package location

import (
	"time"

	"cabcab/internal/types"
)

// Location is an immutable address + coordinate snapshot. Each ride owns its
// own pickup and dropoff records; they are never shared across rides.
type Location struct {
	ID         types.ID    `json:"id"`
	UserID     types.ID    `json:"user_id"`
	Position   types.Point `json:"position"`
	Street     string      `json:"street"`
	City       string      `json:"city"`
	State      string      `json:"state"`
	PostalCode string      `json:"postal_code"`
	Country    string      `json:"country"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Address is the free-text input a snapshot is built from.
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

func (a Address) String() string {
	return a.Street + ", " + a.City + ", " + a.State + " " + a.PostalCode + ", " + a.Country
}
