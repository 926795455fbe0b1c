// README: Ride lifecycle controller: request, cancel, start, rate, queries.
package ride

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cabcab/internal/events"
	"cabcab/internal/fare"
	"cabcab/internal/modules/location"
	"cabcab/internal/types"
)

var (
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid ride state transition")
	ErrInvalidOperation  = errors.New("invalid operation")
	ErrBadRequest        = errors.New("bad request")
)

// BanChecker reports whether an account is banned. Ban administration is
// outside this engine; only the boolean is consumed here.
type BanChecker interface {
	IsBanned(ctx context.Context, userID types.ID) (bool, error)
}

// RatingSink folds a ride rating into the driver's running average.
type RatingSink interface {
	ApplyRating(ctx context.Context, driverID types.ID, rating int) error
}

type Service struct {
	store     Store
	locations location.Store
	geocoder  location.Geocoder
	estimator *fare.Estimator
	bans      BanChecker
	ratings   RatingSink
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(
	store Store,
	locations location.Store,
	geocoder location.Geocoder,
	estimator *fare.Estimator,
	bans BanChecker,
	ratings RatingSink,
	publisher events.Publisher,
	logger *slog.Logger,
) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:     store,
		locations: locations,
		geocoder:  geocoder,
		estimator: estimator,
		bans:      bans,
		ratings:   ratings,
		publisher: publisher,
		logger:    logger,
	}
}

// Detail is a ride enriched with its location snapshots. A nil location means
// the snapshot could not be resolved; callers decide whether that matters.
type Detail struct {
	Ride    *Ride              `json:"ride"`
	Pickup  *location.Location `json:"pickup_location,omitempty"`
	Dropoff *location.Location `json:"dropoff_location,omitempty"`
}

type CreateCommand struct {
	RiderID        types.ID
	PickupAddress  location.Address
	DropoffAddress location.Address
	// Optional pre-resolved coordinates; when set the geocoder is skipped.
	Pickup  *types.Point
	Dropoff *types.Point
}

type CancelCommand struct {
	RideID  types.ID
	ActorID types.ID
}

type StartCommand struct {
	RideID   types.ID
	DriverID types.ID
}

type RateCommand struct {
	RideID   types.ID
	RaterID  types.ID
	Rating   int
	Feedback string
}

// CreateRequest estimates and persists a new ride in REQUESTED. Banned
// requesters are rejected before anything is written.
func (s *Service) CreateRequest(ctx context.Context, cmd CreateCommand) (*Detail, error) {
	if cmd.RiderID == "" {
		return nil, fmt.Errorf("%w: missing rider id", ErrBadRequest)
	}
	banned, err := s.bans.IsBanned(ctx, cmd.RiderID)
	if err != nil {
		return nil, fmt.Errorf("ban check: %w", err)
	}
	if banned {
		return nil, fmt.Errorf("%w: account is banned from requesting rides", ErrForbidden)
	}

	now := time.Now().UTC()
	pickup, err := s.snapshotLocation(ctx, cmd.RiderID, cmd.PickupAddress, cmd.Pickup, now)
	if err != nil {
		return nil, err
	}
	dropoff, err := s.snapshotLocation(ctx, cmd.RiderID, cmd.DropoffAddress, cmd.Dropoff, now)
	if err != nil {
		return nil, err
	}

	est := s.estimator.Estimate(pickup.Position, dropoff.Position)
	r := &Ride{
		ID:                types.NewID(),
		RiderID:           cmd.RiderID,
		PickupLocationID:  pickup.ID,
		DropoffLocationID: dropoff.ID,
		Status:            StatusRequested,
		EstimatedFare:     est.Fare,
		DistanceKm:        est.DistanceKm,
		DurationMin:       est.DurationMin,
		RequestTime:       now,
	}
	if err := s.store.Create(ctx, r); err != nil {
		return nil, err
	}
	s.recordTransition(ctx, r.ID, "", StatusRequested, "passenger", &cmd.RiderID)

	return &Detail{Ride: r, Pickup: pickup, Dropoff: dropoff}, nil
}

func (s *Service) snapshotLocation(ctx context.Context, userID types.ID, addr location.Address, point *types.Point, now time.Time) (*location.Location, error) {
	var pos types.Point
	if point != nil {
		pos = *point
	} else {
		var err error
		pos, err = s.geocoder.Geocode(ctx, addr)
		if err != nil {
			return nil, fmt.Errorf("%w: could not resolve address %q", ErrBadRequest, addr.Street)
		}
	}
	l := &location.Location{
		ID:         types.NewID(),
		UserID:     userID,
		Position:   pos,
		Street:     addr.Street,
		City:       addr.City,
		State:      addr.State,
		PostalCode: addr.PostalCode,
		Country:    addr.Country,
		CreatedAt:  now,
	}
	if err := s.locations.Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// Cancel moves a ride to CANCELLED. Only the requester may cancel, and only
// from REQUESTED or DRIVER_ASSIGNED. An assigned driver id stays on the
// record for audit.
func (s *Service) Cancel(ctx context.Context, cmd CancelCommand) (*Ride, error) {
	r, err := s.store.Get(ctx, cmd.RideID)
	if err != nil {
		return nil, err
	}
	if r.RiderID != cmd.ActorID {
		return nil, fmt.Errorf("%w: only the requester may cancel this ride", ErrForbidden)
	}
	if !CanTransition(r.Status, StatusCancelled) {
		return nil, fmt.Errorf("%w: cannot cancel ride with status %s", ErrInvalidTransition, r.Status)
	}

	ok, err := s.store.Cancel(ctx, cmd.RideID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the race; report whatever status won.
		current, gerr := s.store.Get(ctx, cmd.RideID)
		if gerr != nil {
			return nil, gerr
		}
		return nil, fmt.Errorf("%w: cannot cancel ride with status %s", ErrInvalidTransition, current.Status)
	}
	s.recordTransition(ctx, r.ID, r.Status, StatusCancelled, "passenger", &cmd.ActorID)

	return s.store.Get(ctx, cmd.RideID)
}

// Start moves a ride from DRIVER_ASSIGNED to IN_PROGRESS; only the assigned
// driver may start it.
func (s *Service) Start(ctx context.Context, cmd StartCommand) (*Ride, error) {
	r, err := s.store.Get(ctx, cmd.RideID)
	if err != nil {
		return nil, err
	}
	if r.DriverID == nil || *r.DriverID != cmd.DriverID {
		return nil, fmt.Errorf("%w: ride is not assigned to this driver", ErrForbidden)
	}
	if !CanTransition(r.Status, StatusInProgress) {
		return nil, fmt.Errorf("%w: cannot start ride with status %s", ErrInvalidTransition, r.Status)
	}

	ok, err := s.store.Start(ctx, cmd.RideID, cmd.DriverID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if !ok {
		current, gerr := s.store.Get(ctx, cmd.RideID)
		if gerr != nil {
			return nil, gerr
		}
		return nil, fmt.Errorf("%w: cannot start ride with status %s", ErrInvalidTransition, current.Status)
	}
	s.recordTransition(ctx, r.ID, StatusDriverAssigned, StatusInProgress, "driver", &cmd.DriverID)

	return s.store.Get(ctx, cmd.RideID)
}

// RateRide stores the passenger's rating on a completed ride, then folds it
// into the driver's running average. The aggregate update is best-effort: the
// rating of record lives on the ride, so a failure there is logged, not
// propagated.
func (s *Service) RateRide(ctx context.Context, cmd RateCommand) (*Ride, error) {
	if cmd.Rating < 1 || cmd.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrBadRequest)
	}
	r, err := s.store.Get(ctx, cmd.RideID)
	if err != nil {
		return nil, err
	}
	if r.RiderID != cmd.RaterID {
		return nil, fmt.Errorf("%w: you can only rate your own rides", ErrInvalidOperation)
	}
	if r.Status != StatusCompleted {
		return nil, fmt.Errorf("%w: only completed rides can be rated", ErrInvalidOperation)
	}
	if r.Rating != nil {
		return nil, fmt.Errorf("%w: this ride has already been rated", ErrInvalidOperation)
	}

	ok, err := s.store.SetRating(ctx, cmd.RideID, cmd.Rating, cmd.Feedback)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: this ride has already been rated", ErrInvalidOperation)
	}

	if r.DriverID != nil && s.ratings != nil {
		if err := s.ratings.ApplyRating(ctx, *r.DriverID, cmd.Rating); err != nil {
			s.logger.Warn("driver rating aggregate update failed",
				"ride_id", r.ID, "driver_id", *r.DriverID, "error", err)
		}
	}

	return s.store.Get(ctx, cmd.RideID)
}

// Get returns a ride enriched with its location snapshots. Missing snapshots
// are tolerated; the ride itself must exist.
func (s *Service) Get(ctx context.Context, id types.ID) (*Detail, error) {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	d := &Detail{Ride: r}
	if l, err := s.locations.Get(ctx, r.PickupLocationID); err == nil {
		d.Pickup = l
	}
	if l, err := s.locations.Get(ctx, r.DropoffLocationID); err == nil {
		d.Dropoff = l
	}
	return d, nil
}

// ListByRider returns the requester's rides newest-first.
func (s *Service) ListByRider(ctx context.Context, riderID types.ID, status Status) ([]*Ride, error) {
	return s.store.ListByRider(ctx, riderID, status)
}

// ListByDriver returns a driver's assigned rides newest-first.
func (s *Service) ListByDriver(ctx context.Context, driverID types.ID, status Status) ([]*Ride, error) {
	return s.store.ListByDriver(ctx, driverID, status)
}

func (s *Service) recordTransition(ctx context.Context, rideID types.ID, from, to Status, actorType string, actorID *types.ID) {
	now := time.Now().UTC()
	if err := s.store.AppendEvent(ctx, &Event{
		RideID:     rideID,
		FromStatus: from,
		ToStatus:   to,
		ActorType:  actorType,
		ActorID:    actorID,
		CreatedAt:  now,
	}); err != nil {
		s.logger.Warn("ride audit event append failed", "ride_id", rideID, "error", err)
	}

	ev := events.RideEvent{
		RideID:     string(rideID),
		FromStatus: string(from),
		ToStatus:   string(to),
		ActorType:  actorType,
		OccurredAt: now,
	}
	if actorID != nil {
		ev.ActorID = string(*actorID)
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn("ride event publish failed", "ride_id", rideID, "error", err)
	}
}
