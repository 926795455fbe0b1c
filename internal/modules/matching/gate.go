// README: Driver matching gate: eligibility plus at-most-one assignment.
package matching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cabcab/internal/events"
	"cabcab/internal/modules/driver"
	"cabcab/internal/modules/location"
	"cabcab/internal/modules/ride"
	"cabcab/internal/types"
)

var (
	ErrNotEligible     = errors.New("driver not eligible")
	ErrAlreadyAssigned = errors.New("ride already assigned")
)

// Gate admits eligible drivers to open ride requests and guarantees at most
// one driver is ever assigned to a ride, even under concurrent accepts.
type Gate struct {
	rides     ride.Store
	locations location.Store
	drivers   driver.Store
	publisher events.Publisher
	logger    *slog.Logger
}

func NewGate(rides ride.Store, locations location.Store, drivers driver.Store, publisher events.Publisher, logger *slog.Logger) *Gate {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		rides:     rides,
		locations: locations,
		drivers:   drivers,
		publisher: publisher,
		logger:    logger,
	}
}

// Accept assigns the driver to a REQUESTED ride. The assignment is a single
// conditional update; losing the race yields ErrAlreadyAssigned, never a
// second winner.
func (g *Gate) Accept(ctx context.Context, rideID, driverID types.ID) (*ride.Ride, error) {
	if err := g.checkEligibility(ctx, driverID); err != nil {
		return nil, err
	}

	ok, err := g.rides.AssignDriver(ctx, rideID, driverID)
	if err != nil {
		return nil, err
	}
	if !ok {
		current, gerr := g.rides.Get(ctx, rideID)
		if gerr != nil {
			return nil, gerr
		}
		if current.DriverID != nil && current.Status == ride.StatusDriverAssigned {
			return nil, fmt.Errorf("%w: this ride has already been accepted by another driver", ErrAlreadyAssigned)
		}
		return nil, fmt.Errorf("%w: cannot accept ride with status %s", ErrAlreadyAssigned, current.Status)
	}

	now := time.Now().UTC()
	if err := g.rides.AppendEvent(ctx, &ride.Event{
		RideID:     rideID,
		FromStatus: ride.StatusRequested,
		ToStatus:   ride.StatusDriverAssigned,
		ActorType:  "driver",
		ActorID:    &driverID,
		CreatedAt:  now,
	}); err != nil {
		g.logger.Warn("ride audit event append failed", "ride_id", rideID, "error", err)
	}
	if err := g.publisher.Publish(ctx, events.RideEvent{
		RideID:     string(rideID),
		FromStatus: string(ride.StatusRequested),
		ToStatus:   string(ride.StatusDriverAssigned),
		ActorType:  "driver",
		ActorID:    string(driverID),
		OccurredAt: now,
	}); err != nil {
		g.logger.Warn("ride event publish failed", "ride_id", rideID, "error", err)
	}

	return g.rides.Get(ctx, rideID)
}

// ListOpenRequests returns REQUESTED rides oldest-first, enriched with
// location detail. Rides whose locations cannot be resolved are skipped
// rather than failing the whole listing.
func (g *Gate) ListOpenRequests(ctx context.Context, driverID types.ID) ([]*ride.Detail, error) {
	if err := g.checkEligibility(ctx, driverID); err != nil {
		return nil, err
	}

	open, err := g.rides.ListByStatus(ctx, ride.StatusRequested)
	if err != nil {
		return nil, err
	}

	out := make([]*ride.Detail, 0, len(open))
	for _, r := range open {
		pickup, err := g.locations.Get(ctx, r.PickupLocationID)
		if err != nil {
			g.logger.Debug("skipping ride with unresolvable pickup", "ride_id", r.ID, "error", err)
			continue
		}
		dropoff, err := g.locations.Get(ctx, r.DropoffLocationID)
		if err != nil {
			g.logger.Debug("skipping ride with unresolvable dropoff", "ride_id", r.ID, "error", err)
			continue
		}
		out = append(out, &ride.Detail{Ride: r, Pickup: pickup, Dropoff: dropoff})
	}
	return out, nil
}

func (g *Gate) checkEligibility(ctx context.Context, driverID types.ID) error {
	p, err := g.drivers.Get(ctx, driverID)
	if err != nil {
		return err
	}
	if p.Banned {
		return fmt.Errorf("%w: driver is banned", ErrNotEligible)
	}
	if !p.Verified {
		return fmt.Errorf("%w: driver is not verified", ErrNotEligible)
	}
	if !p.Available {
		return fmt.Errorf("%w: driver is not available", ErrNotEligible)
	}
	return nil
}
