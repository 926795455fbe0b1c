// README: Location store backed by PostgreSQL.
package location

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cabcab/internal/types"
)

var ErrNotFound = errors.New("location not found")

// Store persists location snapshots. Snapshots are write-once.
type Store interface {
	Create(ctx context.Context, l *Location) error
	Get(ctx context.Context, id types.ID) (*Location, error)
}

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, l *Location) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO locations (
			id, user_id, latitude, longitude,
			street, city, state, postal_code, country, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		string(l.ID), string(l.UserID), l.Position.Lat, l.Position.Lng,
		l.Street, l.City, l.State, l.PostalCode, l.Country, l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert location: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id types.ID) (*Location, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, latitude, longitude,
		       street, city, state, postal_code, country, created_at
		FROM locations WHERE id = $1`, string(id),
	)

	var l Location
	err := row.Scan(
		&l.ID, &l.UserID, &l.Position.Lat, &l.Position.Lng,
		&l.Street, &l.City, &l.State, &l.PostalCode, &l.Country, &l.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select location: %w", err)
	}
	return &l, nil
}
