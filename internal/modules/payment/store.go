// README: Payment store backed by PostgreSQL; settlement writes are one transaction.
package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cabcab/internal/modules/ride"
	"cabcab/internal/types"
)

var ErrNotFound = errors.New("payment not found")

// Store persists payments. CreateSettlement is the only write path: it
// atomically marks the ride COMPLETED and inserts the payment rows, or does
// nothing at all.
type Store interface {
	// CreateSettlement returns false when the ride's settlement precondition
	// (IN_PROGRESS, no payment attached) no longer holds; nothing is written
	// in that case.
	CreateSettlement(ctx context.Context, rideID types.ID, actualFare types.Money, endTime time.Time, payments []*Payment) (bool, error)
	Get(ctx context.Context, id types.ID) (*Payment, error)
	GetByRide(ctx context.Context, rideID types.ID) ([]*Payment, error)
	ListByRecipient(ctx context.Context, recipientID types.ID) ([]*Payment, error)
	CommissionTotals(ctx context.Context, adminID types.ID) (types.Money, int, error)
}

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

const paymentColumns = `id, ride_id, payer_id, recipient_id, payment_method_id,
	amount, status, transaction_id, is_commission, original_payment_id, created_at`

func (s *PostgresStore) CreateSettlement(ctx context.Context, rideID types.ID, actualFare types.Money, endTime time.Time, payments []*Payment) (bool, error) {
	if len(payments) == 0 {
		return false, fmt.Errorf("settlement requires at least one payment")
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, fmt.Errorf("begin settlement: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE rides
		SET status = $1, actual_fare = $2, end_time = $3, payment_id = $4
		WHERE id = $5 AND status = $6 AND payment_id IS NULL`,
		string(ride.StatusCompleted), actualFare.Amount, endTime,
		string(payments[0].ID), string(rideID), string(ride.StatusInProgress),
	)
	if err != nil {
		return false, fmt.Errorf("complete ride: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return false, nil
	}

	for _, p := range payments {
		_, err := tx.Exec(ctx, `
			INSERT INTO payments (`+paymentColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			string(p.ID), string(p.RideID), string(p.PayerID), string(p.RecipientID),
			nullableID(p.PaymentMethodID), p.Amount.Amount, string(p.Status),
			p.TransactionID, p.IsCommission, idPtr(p.OriginalPaymentID), p.CreatedAt,
		)
		if err != nil {
			return false, fmt.Errorf("insert payment: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit settlement: %w", err)
	}
	return true, nil
}

func (s *PostgresStore) Get(ctx context.Context, id types.ID) (*Payment, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = $1`, string(id))
	p, err := scanPayment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select payment: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) GetByRide(ctx context.Context, rideID types.ID) ([]*Payment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+paymentColumns+` FROM payments
		WHERE ride_id = $1
		ORDER BY is_commission ASC`, string(rideID))
	if err != nil {
		return nil, fmt.Errorf("list ride payments: %w", err)
	}
	defer rows.Close()
	return collectPayments(rows)
}

func (s *PostgresStore) ListByRecipient(ctx context.Context, recipientID types.ID) ([]*Payment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+paymentColumns+` FROM payments
		WHERE recipient_id = $1
		ORDER BY created_at DESC`, string(recipientID))
	if err != nil {
		return nil, fmt.Errorf("list recipient payments: %w", err)
	}
	defer rows.Close()
	return collectPayments(rows)
}

func (s *PostgresStore) CommissionTotals(ctx context.Context, adminID types.ID) (types.Money, int, error) {
	row := s.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0), COUNT(*)
		FROM payments
		WHERE recipient_id = $1 AND is_commission`, string(adminID))
	var total int64
	var count int
	if err := row.Scan(&total, &count); err != nil {
		return types.Money{}, 0, fmt.Errorf("commission totals: %w", err)
	}
	return types.Cents(total), count, nil
}

func scanPayment(row pgx.Row) (*Payment, error) {
	var (
		p          Payment
		methodID   *string
		originalID *string
	)
	err := row.Scan(
		&p.ID, &p.RideID, &p.PayerID, &p.RecipientID, &methodID,
		&p.Amount.Amount, &p.Status, &p.TransactionID, &p.IsCommission,
		&originalID, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Amount.Currency = types.DefaultCurrency
	if methodID != nil {
		p.PaymentMethodID = types.ID(*methodID)
	}
	if originalID != nil {
		o := types.ID(*originalID)
		p.OriginalPaymentID = &o
	}
	return &p, nil
}

func collectPayments(rows pgx.Rows) ([]*Payment, error) {
	var out []*Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payments: %w", err)
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

func nullableID(v types.ID) *string {
	if v == "" {
		return nil
	}
	s := string(v)
	return &s
}
