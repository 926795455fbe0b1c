// README: Driver profile store backed by PostgreSQL.
package driver

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cabcab/internal/types"
)

var ErrNotFound = errors.New("driver not found")

type Store interface {
	Get(ctx context.Context, id types.ID) (*Profile, error)
	// ApplyRating folds one ride rating into the running average as a single
	// atomic update.
	ApplyRating(ctx context.Context, id types.ID, rating int) error
	SetAvailability(ctx context.Context, id types.ID, available bool) error
}

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, id types.ID) (*Profile, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, rating, rating_count, is_verified, is_available, is_banned
		FROM drivers WHERE id = $1`, string(id),
	)
	var p Profile
	err := row.Scan(&p.ID, &p.Rating, &p.RatingCount, &p.Verified, &p.Available, &p.Banned)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select driver: %w", err)
	}
	return &p, nil
}

// Two-argument round() only exists for numeric in PostgreSQL; the double
// precision average must be cast before rounding.
const applyRatingSQL = `
	UPDATE drivers
	SET rating = ROUND((((rating * rating_count) + $1) / (rating_count + 1))::numeric, 2),
	    rating_count = rating_count + 1
	WHERE id = $2`

func (s *PostgresStore) ApplyRating(ctx context.Context, id types.ID, rating int) error {
	tag, err := s.db.Exec(ctx, applyRatingSQL, rating, string(id))
	if err != nil {
		return fmt.Errorf("apply rating: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) SetAvailability(ctx context.Context, id types.ID, available bool) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE drivers SET is_available = $1 WHERE id = $2`,
		available, string(id),
	)
	if err != nil {
		return fmt.Errorf("set availability: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return ErrNotFound
	}
	return nil
}
