// internal/repository/postgres/cycle_repository.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"carecycle-service/internal/domain/cycle"
	xerrors "carecycle-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CycleRepository struct {
	db *pgxpool.Pool
}

func NewCycleRepository(db *pgxpool.Pool) *CycleRepository {
	return &CycleRepository{db: db}
}

// Create logs a new cycle entry
func (r *CycleRepository) Create(ctx context.Context, e *cycle.Entry) error {
	query := `
		INSERT INTO cycle_entries (user_id, start_date, end_date, symptoms, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		e.UserID, e.StartDate, e.EndDate, e.Symptoms, e.Notes,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create cycle entry: %w", err)
	}

	return nil
}

// FindByID retrieves one entry, scoped to its owner
func (r *CycleRepository) FindByID(ctx context.Context, id, userID int64) (*cycle.Entry, error) {
	query := `
		SELECT id, user_id, start_date, end_date, symptoms, notes, created_at, updated_at
		FROM cycle_entries
		WHERE id = $1 AND user_id = $2
	`

	var e cycle.Entry
	err := r.db.QueryRow(ctx, query, id, userID).Scan(
		&e.ID, &e.UserID, &e.StartDate, &e.EndDate, &e.Symptoms, &e.Notes,
		&e.CreatedAt, &e.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find cycle entry: %w", err)
	}

	return &e, nil
}

// ListByUser returns the user's entries, most recent start date first
func (r *CycleRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]cycle.Entry, error) {
	if limit < 1 {
		limit = 12
	}

	query := `
		SELECT id, user_id, start_date, end_date, symptoms, notes, created_at, updated_at
		FROM cycle_entries
		WHERE user_id = $1
		ORDER BY start_date DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list cycle entries: %w", err)
	}
	defer rows.Close()

	var entries []cycle.Entry
	for rows.Next() {
		var e cycle.Entry
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.StartDate, &e.EndDate, &e.Symptoms, &e.Notes,
			&e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan cycle entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Update persists edits to an entry, scoped to its owner
func (r *CycleRepository) Update(ctx context.Context, e *cycle.Entry) error {
	query := `
		UPDATE cycle_entries
		SET start_date = $1, end_date = $2, symptoms = $3, notes = $4, updated_at = NOW()
		WHERE id = $5 AND user_id = $6
	`

	tag, err := r.db.Exec(
		ctx, query,
		e.StartDate, e.EndDate, e.Symptoms, e.Notes, e.ID, e.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update cycle entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// Delete removes an entry, scoped to its owner
func (r *CycleRepository) Delete(ctx context.Context, id, userID int64) error {
	query := `DELETE FROM cycle_entries WHERE id = $1 AND user_id = $2`

	tag, err := r.db.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete cycle entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}
