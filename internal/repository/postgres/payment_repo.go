// internal/repository/postgres/payment_repository.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"carecycle-service/internal/domain/payment"
	xerrors "carecycle-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create records a new payment
func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	query := `
		INSERT INTO payments (
			reference, user_id, booking_id, subscription_id,
			amount_cents, currency, method, status, external_ref
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		p.Reference, p.UserID, p.BookingID, p.SubscriptionID,
		p.AmountCents, p.Currency, p.Method, p.Status, p.ExternalRef,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

// FindByID retrieves a payment by ID
func (r *PaymentRepository) FindByID(ctx context.Context, id int64) (*payment.Payment, error) {
	query := `
		SELECT id, reference, user_id, booking_id, subscription_id,
		       amount_cents, currency, method, status, external_ref,
		       created_at, updated_at
		FROM payments
		WHERE id = $1
	`

	var p payment.Payment
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Reference, &p.UserID, &p.BookingID, &p.SubscriptionID,
		&p.AmountCents, &p.Currency, &p.Method, &p.Status, &p.ExternalRef,
		&p.CreatedAt, &p.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}

	return &p, nil
}

// FindByReference retrieves a payment by its public reference
func (r *PaymentRepository) FindByReference(ctx context.Context, reference string) (*payment.Payment, error) {
	query := `
		SELECT id, reference, user_id, booking_id, subscription_id,
		       amount_cents, currency, method, status, external_ref,
		       created_at, updated_at
		FROM payments
		WHERE reference = $1
	`

	var p payment.Payment
	err := r.db.QueryRow(ctx, query, reference).Scan(
		&p.ID, &p.Reference, &p.UserID, &p.BookingID, &p.SubscriptionID,
		&p.AmountCents, &p.Currency, &p.Method, &p.Status, &p.ExternalRef,
		&p.CreatedAt, &p.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}

	return &p, nil
}

// List returns payments matching the filter, newest first
func (r *PaymentRepository) List(ctx context.Context, filter *payment.ListFilter) ([]payment.Payment, int64, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argPos := 1

	if filter.UserID != 0 {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argPos))
		args = append(args, filter.UserID)
		argPos++
	}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, filter.Status)
		argPos++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM payments WHERE %s", whereClause)
	var total int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	limit := filter.Limit
	if limit < 1 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`
		SELECT id, reference, user_id, booking_id, subscription_id,
		       amount_cents, currency, method, status, external_ref,
		       created_at, updated_at
		FROM payments
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []payment.Payment
	for rows.Next() {
		var p payment.Payment
		if err := rows.Scan(
			&p.ID, &p.Reference, &p.UserID, &p.BookingID, &p.SubscriptionID,
			&p.AmountCents, &p.Currency, &p.Method, &p.Status, &p.ExternalRef,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}

	return payments, total, rows.Err()
}

// UpdateStatus moves a payment through its lifecycle
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE payments SET status = $1, updated_at = NOW() WHERE id = $2`

	tag, err := r.db.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}
