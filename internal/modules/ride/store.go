// README: Ride store backed by PostgreSQL; all transitions are conditional updates.
package ride

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cabcab/internal/types"
)

var ErrNotFound = errors.New("ride not found")

// Store persists rides. Mutations that guard a lifecycle invariant return
// (false, nil) when the precondition no longer holds, so two concurrent
// callers can never both win.
type Store interface {
	Create(ctx context.Context, r *Ride) error
	Get(ctx context.Context, id types.ID) (*Ride, error)
	// ListByStatus returns rides oldest-first (first-come-first-served).
	ListByStatus(ctx context.Context, status Status) ([]*Ride, error)
	// ListByRider / ListByDriver return rides newest-first; empty status
	// means no filter.
	ListByRider(ctx context.Context, riderID types.ID, status Status) ([]*Ride, error)
	ListByDriver(ctx context.Context, driverID types.ID, status Status) ([]*Ride, error)

	// AssignDriver succeeds only while the ride is REQUESTED with no driver.
	AssignDriver(ctx context.Context, id, driverID types.ID) (bool, error)
	// Cancel succeeds only from REQUESTED or DRIVER_ASSIGNED; any assigned
	// driver id is retained for audit.
	Cancel(ctx context.Context, id types.ID) (bool, error)
	// Start succeeds only while DRIVER_ASSIGNED to the given driver.
	Start(ctx context.Context, id, driverID types.ID, at time.Time) (bool, error)
	// SetRating succeeds only on a COMPLETED ride that has no rating yet.
	SetRating(ctx context.Context, id types.ID, rating int, feedback string) (bool, error)

	AppendEvent(ctx context.Context, e *Event) error
}

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

const rideColumns = `id, user_id, driver_id, pickup_location_id, dropoff_location_id,
	status, estimated_fare, actual_fare, distance_km, duration_min,
	request_time, start_time, end_time, payment_id, rating, feedback`

func (s *PostgresStore) Create(ctx context.Context, r *Ride) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO rides (`+rideColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		string(r.ID), string(r.RiderID), idPtr(r.DriverID),
		string(r.PickupLocationID), string(r.DropoffLocationID),
		string(r.Status), r.EstimatedFare.Amount, moneyPtr(r.ActualFare),
		r.DistanceKm, r.DurationMin,
		r.RequestTime, r.StartTime, r.EndTime,
		idPtr(r.PaymentID), r.Rating, r.Feedback,
	)
	if err != nil {
		return fmt.Errorf("insert ride: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id types.ID) (*Ride, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+rideColumns+` FROM rides WHERE id = $1`, string(id))
	r, err := scanRide(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select ride: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) ListByStatus(ctx context.Context, status Status) ([]*Ride, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+rideColumns+` FROM rides
		WHERE status = $1
		ORDER BY request_time ASC`, string(status))
	if err != nil {
		return nil, fmt.Errorf("list rides by status: %w", err)
	}
	defer rows.Close()
	return collectRides(rows)
}

func (s *PostgresStore) ListByRider(ctx context.Context, riderID types.ID, status Status) ([]*Ride, error) {
	return s.listByOwner(ctx, "user_id", riderID, status)
}

func (s *PostgresStore) ListByDriver(ctx context.Context, driverID types.ID, status Status) ([]*Ride, error) {
	return s.listByOwner(ctx, "driver_id", driverID, status)
}

func (s *PostgresStore) listByOwner(ctx context.Context, column string, owner types.ID, status Status) ([]*Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE ` + column + ` = $1`
	args := []any{string(owner)}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, string(status))
	}
	query += ` ORDER BY request_time DESC`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list rides: %w", err)
	}
	defer rows.Close()
	return collectRides(rows)
}

func (s *PostgresStore) AssignDriver(ctx context.Context, id, driverID types.ID) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE rides
		SET driver_id = $1, status = $2
		WHERE id = $3 AND status = $4 AND driver_id IS NULL`,
		string(driverID), string(StatusDriverAssigned),
		string(id), string(StatusRequested),
	)
	if err != nil {
		return false, fmt.Errorf("assign driver: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PostgresStore) Cancel(ctx context.Context, id types.ID) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE rides
		SET status = $1
		WHERE id = $2 AND status IN ($3, $4)`,
		string(StatusCancelled), string(id),
		string(StatusRequested), string(StatusDriverAssigned),
	)
	if err != nil {
		return false, fmt.Errorf("cancel ride: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PostgresStore) Start(ctx context.Context, id, driverID types.ID, at time.Time) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE rides
		SET status = $1, start_time = $2
		WHERE id = $3 AND status = $4 AND driver_id = $5`,
		string(StatusInProgress), at,
		string(id), string(StatusDriverAssigned), string(driverID),
	)
	if err != nil {
		return false, fmt.Errorf("start ride: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PostgresStore) SetRating(ctx context.Context, id types.ID, rating int, feedback string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE rides
		SET rating = $1, feedback = $2
		WHERE id = $3 AND status = $4 AND rating IS NULL`,
		rating, feedback, string(id), string(StatusCompleted),
	)
	if err != nil {
		return false, fmt.Errorf("set rating: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PostgresStore) AppendEvent(ctx context.Context, e *Event) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO ride_events (ride_id, from_status, to_status, actor_type, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		string(e.RideID), string(e.FromStatus), string(e.ToStatus),
		e.ActorType, idPtr(e.ActorID), e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ride event: %w", err)
	}
	return nil
}

func scanRide(row pgx.Row) (*Ride, error) {
	var (
		r          Ride
		driverID   *string
		actualFare *int64
		paymentID  *string
	)
	err := row.Scan(
		&r.ID, &r.RiderID, &driverID, &r.PickupLocationID, &r.DropoffLocationID,
		&r.Status, &r.EstimatedFare.Amount, &actualFare, &r.DistanceKm, &r.DurationMin,
		&r.RequestTime, &r.StartTime, &r.EndTime, &paymentID, &r.Rating, &r.Feedback,
	)
	if err != nil {
		return nil, err
	}
	r.EstimatedFare.Currency = types.DefaultCurrency
	if driverID != nil {
		d := types.ID(*driverID)
		r.DriverID = &d
	}
	if actualFare != nil {
		m := types.Cents(*actualFare)
		r.ActualFare = &m
	}
	if paymentID != nil {
		p := types.ID(*paymentID)
		r.PaymentID = &p
	}
	return &r, nil
}

func collectRides(rows pgx.Rows) ([]*Ride, error) {
	var out []*Ride
	for rows.Next() {
		r, err := scanRide(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ride: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rides: %w", err)
	}
	return out, nil
}

func idPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

func moneyPtr(v *types.Money) *int64 {
	if v == nil {
		return nil
	}
	n := v.Amount
	return &n
}
