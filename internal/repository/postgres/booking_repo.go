// internal/repository/postgres/booking_repository.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"carecycle-service/internal/domain/booking"
	xerrors "carecycle-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create inserts a booking inside the reservation transaction
func (r *BookingRepository) Create(ctx context.Context, tx pgx.Tx, b *booking.Booking) error {
	query := `
		INSERT INTO bookings (reference, user_id, slot_id, service, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := tx.QueryRow(
		ctx, query,
		b.Reference, b.UserID, b.SlotID, b.Service, b.Status, b.Notes,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

// FindByID retrieves a booking by ID
func (r *BookingRepository) FindByID(ctx context.Context, id int64) (*booking.Booking, error) {
	query := `
		SELECT id, reference, user_id, slot_id, service, status, notes, created_at, updated_at
		FROM bookings
		WHERE id = $1
	`

	var b booking.Booking
	err := r.db.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.Reference, &b.UserID, &b.SlotID, &b.Service, &b.Status, &b.Notes,
		&b.CreatedAt, &b.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &b, nil
}

// FindByReference retrieves a booking by its public reference
func (r *BookingRepository) FindByReference(ctx context.Context, reference string) (*booking.Booking, error) {
	query := `
		SELECT id, reference, user_id, slot_id, service, status, notes, created_at, updated_at
		FROM bookings
		WHERE reference = $1
	`

	var b booking.Booking
	err := r.db.QueryRow(ctx, query, reference).Scan(
		&b.ID, &b.Reference, &b.UserID, &b.SlotID, &b.Service, &b.Status, &b.Notes,
		&b.CreatedAt, &b.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &b, nil
}

// List returns bookings matching the filter, newest first
func (r *BookingRepository) List(ctx context.Context, filter *booking.ListFilter) ([]booking.Booking, int64, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argPos := 1

	if filter.UserID != 0 {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argPos))
		args = append(args, filter.UserID)
		argPos++
	}

	if filter.SlotID != 0 {
		conditions = append(conditions, fmt.Sprintf("slot_id = $%d", argPos))
		args = append(args, filter.SlotID)
		argPos++
	}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, filter.Status)
		argPos++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM bookings WHERE %s", whereClause)
	var total int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
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
		SELECT id, reference, user_id, slot_id, service, status, notes, created_at, updated_at
		FROM bookings
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []booking.Booking
	for rows.Next() {
		var b booking.Booking
		if err := rows.Scan(
			&b.ID, &b.Reference, &b.UserID, &b.SlotID, &b.Service, &b.Status, &b.Notes,
			&b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}

	return bookings, total, rows.Err()
}

// UpdateStatus moves a booking through its lifecycle
func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = $2`

	tag, err := r.db.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// UpdateStatusTx is UpdateStatus inside a seat-release transaction
func (r *BookingRepository) UpdateStatusTx(ctx context.Context, tx pgx.Tx, id int64, status string) error {
	query := `UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = $2`

	tag, err := tx.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}
