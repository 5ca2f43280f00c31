// internal/repository/postgres/schedule_repository.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"carecycle-service/internal/domain/schedule"
	xerrors "carecycle-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ScheduleRepository struct {
	db *pgxpool.Pool
}

func NewScheduleRepository(db *pgxpool.Pool) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// Create opens a new availability slot
func (r *ScheduleRepository) Create(ctx context.Context, s *schedule.Slot) error {
	query := `
		INSERT INTO schedule_slots (consultant_id, starts_at, ends_at, capacity, booked, status, notes)
		VALUES ($1, $2, $3, $4, 0, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		s.ConsultantID, s.StartsAt, s.EndsAt, s.Capacity, s.Status, s.Notes,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create slot: %w", err)
	}

	return nil
}

// FindByID retrieves a slot by ID
func (r *ScheduleRepository) FindByID(ctx context.Context, id int64) (*schedule.Slot, error) {
	query := `
		SELECT id, consultant_id, starts_at, ends_at, capacity, booked, status, notes,
		       created_at, updated_at
		FROM schedule_slots
		WHERE id = $1
	`

	var s schedule.Slot
	err := r.db.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.ConsultantID, &s.StartsAt, &s.EndsAt, &s.Capacity, &s.Booked,
		&s.Status, &s.Notes, &s.CreatedAt, &s.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find slot: %w", err)
	}

	return &s, nil
}

// FindByIDForUpdate locks the slot row inside a booking transaction
func (r *ScheduleRepository) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*schedule.Slot, error) {
	query := `
		SELECT id, consultant_id, starts_at, ends_at, capacity, booked, status, notes,
		       created_at, updated_at
		FROM schedule_slots
		WHERE id = $1
		FOR UPDATE
	`

	var s schedule.Slot
	err := tx.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.ConsultantID, &s.StartsAt, &s.EndsAt, &s.Capacity, &s.Booked,
		&s.Status, &s.Notes, &s.CreatedAt, &s.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock slot: %w", err)
	}

	return &s, nil
}

// HasConflict reports whether the consultant already has a slot overlapping the window
func (r *ScheduleRepository) HasConflict(ctx context.Context, consultantID int64, startsAt, endsAt time.Time, excludeID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM schedule_slots
			WHERE consultant_id = $1
			  AND status <> 'cancelled'
			  AND id <> $4
			  AND starts_at < $3
			  AND ends_at > $2
		)
	`

	var conflict bool
	if err := r.db.QueryRow(ctx, query, consultantID, startsAt, endsAt, excludeID).Scan(&conflict); err != nil {
		return false, fmt.Errorf("failed to check slot conflict: %w", err)
	}

	return conflict, nil
}

// List returns slots matching the filter ordered by start time
func (r *ScheduleRepository) List(ctx context.Context, filter *schedule.ListFilter) ([]schedule.Slot, int64, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argPos := 1

	if filter.ConsultantID != 0 {
		conditions = append(conditions, fmt.Sprintf("consultant_id = $%d", argPos))
		args = append(args, filter.ConsultantID)
		argPos++
	}

	if !filter.From.IsZero() {
		conditions = append(conditions, fmt.Sprintf("starts_at >= $%d", argPos))
		args = append(args, filter.From)
		argPos++
	}

	if !filter.To.IsZero() {
		conditions = append(conditions, fmt.Sprintf("starts_at < $%d", argPos))
		args = append(args, filter.To)
		argPos++
	}

	if filter.OpenOnly {
		conditions = append(conditions, "status = 'open' AND booked < capacity")
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM schedule_slots WHERE %s", whereClause)
	var total int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count slots: %w", err)
	}

	limit := filter.Limit
	if limit < 1 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`
		SELECT id, consultant_id, starts_at, ends_at, capacity, booked, status, notes,
		       created_at, updated_at
		FROM schedule_slots
		WHERE %s
		ORDER BY starts_at ASC
		LIMIT $%d OFFSET $%d
	`, whereClause, argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list slots: %w", err)
	}
	defer rows.Close()

	var slots []schedule.Slot
	for rows.Next() {
		var s schedule.Slot
		if err := rows.Scan(
			&s.ID, &s.ConsultantID, &s.StartsAt, &s.EndsAt, &s.Capacity, &s.Booked,
			&s.Status, &s.Notes, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan slot: %w", err)
		}
		slots = append(slots, s)
	}

	return slots, total, rows.Err()
}

// Update persists edits to an existing slot
func (r *ScheduleRepository) Update(ctx context.Context, s *schedule.Slot) error {
	query := `
		UPDATE schedule_slots
		SET starts_at = $1, ends_at = $2, capacity = $3, status = $4, notes = $5, updated_at = NOW()
		WHERE id = $6
	`

	tag, err := r.db.Exec(ctx, query, s.StartsAt, s.EndsAt, s.Capacity, s.Status, s.Notes, s.ID)
	if err != nil {
		return fmt.Errorf("failed to update slot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// ReserveSeat increments the booked counter inside a booking transaction.
// Fails with ErrSlotUnavailable when the slot is closed or full.
func (r *ScheduleRepository) ReserveSeat(ctx context.Context, tx pgx.Tx, slotID int64) error {
	query := `
		UPDATE schedule_slots
		SET booked = booked + 1, updated_at = NOW()
		WHERE id = $1 AND status = 'open' AND booked < capacity
	`

	tag, err := tx.Exec(ctx, query, slotID)
	if err != nil {
		return fmt.Errorf("failed to reserve seat: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrSlotUnavailable
	}

	return nil
}

// ReleaseSeat decrements the booked counter when a booking is cancelled
func (r *ScheduleRepository) ReleaseSeat(ctx context.Context, tx pgx.Tx, slotID int64) error {
	query := `
		UPDATE schedule_slots
		SET booked = GREATEST(booked - 1, 0), updated_at = NOW()
		WHERE id = $1
	`

	if _, err := tx.Exec(ctx, query, slotID); err != nil {
		return fmt.Errorf("failed to release seat: %w", err)
	}

	return nil
}
