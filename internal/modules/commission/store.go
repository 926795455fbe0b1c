// README: Commission setting store backed by PostgreSQL.
package commission

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cabcab/internal/types"
)

var ErrNotFound = errors.New("commission setting not found")

type Store interface {
	// GetActive returns the single honoured setting; ErrNotFound when
	// commission collection is off everywhere.
	GetActive(ctx context.Context) (*Setting, error)
	GetByAdmin(ctx context.Context, adminID types.ID) (*Setting, error)
	Create(ctx context.Context, s *Setting) error
	Update(ctx context.Context, s *Setting) error
}

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

const settingColumns = `id, admin_id, payment_method_id, percentage, is_active, created_at, updated_at`

func (s *PostgresStore) GetActive(ctx context.Context) (*Setting, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+settingColumns+`
		FROM commission_settings
		WHERE is_active
		ORDER BY updated_at DESC
		LIMIT 1`,
	)
	return scanSetting(row)
}

func (s *PostgresStore) GetByAdmin(ctx context.Context, adminID types.ID) (*Setting, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+settingColumns+`
		FROM commission_settings WHERE admin_id = $1`, string(adminID),
	)
	return scanSetting(row)
}

func (s *PostgresStore) Create(ctx context.Context, c *Setting) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO commission_settings (`+settingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		string(c.ID), string(c.AdminID), string(c.PaymentMethodID),
		c.Percentage, c.Active, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert commission setting: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, c *Setting) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE commission_settings
		SET payment_method_id = $1, percentage = $2, is_active = $3, updated_at = $4
		WHERE id = $5`,
		string(c.PaymentMethodID), c.Percentage, c.Active, c.UpdatedAt, string(c.ID),
	)
	if err != nil {
		return fmt.Errorf("update commission setting: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return ErrNotFound
	}
	return nil
}

func scanSetting(row pgx.Row) (*Setting, error) {
	var c Setting
	err := row.Scan(&c.ID, &c.AdminID, &c.PaymentMethodID, &c.Percentage,
		&c.Active, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select commission setting: %w", err)
	}
	return &c, nil
}
