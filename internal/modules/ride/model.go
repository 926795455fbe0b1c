// README: Ride aggregate and status definitions.
package ride

import (
	"time"

	"cabcab/internal/types"
)

type Status string

const (
	StatusRequested      Status = "REQUESTED"
	StatusDriverAssigned Status = "DRIVER_ASSIGNED"
	StatusDriverEnRoute  Status = "DRIVER_EN_ROUTE"
	StatusDriverArrived  Status = "DRIVER_ARRIVED"
	StatusInProgress     Status = "IN_PROGRESS"
	StatusCompleted      Status = "COMPLETED"
	StatusCancelled      Status = "CANCELLED"
)

type Ride struct {
	ID                types.ID     `json:"id"`
	RiderID           types.ID     `json:"user_id"`
	DriverID          *types.ID    `json:"driver_id,omitempty"`
	PickupLocationID  types.ID     `json:"pickup_location_id"`
	DropoffLocationID types.ID     `json:"dropoff_location_id"`
	Status            Status       `json:"status"`
	EstimatedFare     types.Money  `json:"estimated_fare"`
	ActualFare        *types.Money `json:"actual_fare,omitempty"`
	DistanceKm        float64      `json:"distance"`
	DurationMin       int          `json:"duration"`
	RequestTime       time.Time    `json:"request_time"`
	StartTime         *time.Time   `json:"start_time,omitempty"`
	EndTime           *time.Time   `json:"end_time,omitempty"`
	PaymentID         *types.ID    `json:"payment_id,omitempty"`
	Rating            *int         `json:"rating,omitempty"`
	Feedback          *string      `json:"feedback,omitempty"`
}

// Event records one state transition for audit.
type Event struct {
	ID         int64      `json:"id"`
	RideID     types.ID   `json:"ride_id"`
	FromStatus Status     `json:"from_status"`
	ToStatus   Status     `json:"to_status"`
	ActorType  string     `json:"actor_type"`
	ActorID    *types.ID  `json:"actor_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// AllowedTransitions is the ride state flow as code. DRIVER_EN_ROUTE and
// DRIVER_ARRIVED are reserved statuses with no transition rules yet.
var AllowedTransitions = map[Status][]Status{
	StatusRequested:      {StatusDriverAssigned, StatusCancelled},
	StatusDriverAssigned: {StatusInProgress, StatusCancelled},
	StatusInProgress:     {StatusCompleted},
}

func CanTransition(from, to Status) bool {
	for _, s := range AllowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
