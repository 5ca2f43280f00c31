// internal/repository/postgres/subscription_repository.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"carecycle-service/internal/domain/subscription"
	xerrors "carecycle-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SubscriptionRepository struct {
	db *pgxpool.Pool
}

func NewSubscriptionRepository(db *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// ========== Plan Methods ==========

// CreatePlan inserts a new care plan
func (r *SubscriptionRepository) CreatePlan(ctx context.Context, p *subscription.Plan) error {
	query := `
		INSERT INTO subscription_plans (code, name, description, price_cents, currency, duration_days, features, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		p.Code, p.Name, p.Description, p.PriceCents, p.Currency, p.DurationDays, p.Features, p.IsActive,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create plan: %w", err)
	}

	return nil
}

// FindPlanByCode retrieves a plan by its public code
func (r *SubscriptionRepository) FindPlanByCode(ctx context.Context, code string) (*subscription.Plan, error) {
	query := `
		SELECT id, code, name, description, price_cents, currency, duration_days, features, is_active,
		       created_at, updated_at
		FROM subscription_plans
		WHERE code = $1
	`

	var p subscription.Plan
	err := r.db.QueryRow(ctx, query, code).Scan(
		&p.ID, &p.Code, &p.Name, &p.Description, &p.PriceCents, &p.Currency,
		&p.DurationDays, &p.Features, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find plan: %w", err)
	}

	return &p, nil
}

// FindPlanByID retrieves a plan by ID
func (r *SubscriptionRepository) FindPlanByID(ctx context.Context, id int64) (*subscription.Plan, error) {
	query := `
		SELECT id, code, name, description, price_cents, currency, duration_days, features, is_active,
		       created_at, updated_at
		FROM subscription_plans
		WHERE id = $1
	`

	var p subscription.Plan
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Code, &p.Name, &p.Description, &p.PriceCents, &p.Currency,
		&p.DurationDays, &p.Features, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find plan: %w", err)
	}

	return &p, nil
}

// ListPlans returns plans, optionally only active ones
func (r *SubscriptionRepository) ListPlans(ctx context.Context, activeOnly bool) ([]subscription.Plan, error) {
	query := `
		SELECT id, code, name, description, price_cents, currency, duration_days, features, is_active,
		       created_at, updated_at
		FROM subscription_plans
	`
	if activeOnly {
		query += " WHERE is_active = TRUE"
	}
	query += " ORDER BY price_cents ASC"

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	var plans []subscription.Plan
	for rows.Next() {
		var p subscription.Plan
		if err := rows.Scan(
			&p.ID, &p.Code, &p.Name, &p.Description, &p.PriceCents, &p.Currency,
			&p.DurationDays, &p.Features, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		plans = append(plans, p)
	}

	return plans, rows.Err()
}

// UpdatePlan persists edits to an existing plan
func (r *SubscriptionRepository) UpdatePlan(ctx context.Context, p *subscription.Plan) error {
	query := `
		UPDATE subscription_plans
		SET name = $1, description = $2, price_cents = $3, duration_days = $4,
		    features = $5, is_active = $6, updated_at = NOW()
		WHERE id = $7
	`

	tag, err := r.db.Exec(
		ctx, query,
		p.Name, p.Description, p.PriceCents, p.DurationDays, p.Features, p.IsActive, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// ========== Subscription Methods ==========

// CreateSubscription enrolls a user in a plan
func (r *SubscriptionRepository) CreateSubscription(ctx context.Context, s *subscription.Subscription) error {
	query := `
		INSERT INTO subscriptions (user_id, plan_id, status, starts_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		s.UserID, s.PlanID, s.Status, s.StartsAt, s.ExpiresAt,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	return nil
}

// FindActiveByUser returns the user's current active subscription
func (r *SubscriptionRepository) FindActiveByUser(ctx context.Context, userID int64) (*subscription.Subscription, error) {
	query := `
		SELECT id, user_id, plan_id, status, starts_at, expires_at, cancelled_at,
		       created_at, updated_at
		FROM subscriptions
		WHERE user_id = $1 AND status = 'active' AND expires_at > NOW()
		ORDER BY expires_at DESC
		LIMIT 1
	`

	var s subscription.Subscription
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&s.ID, &s.UserID, &s.PlanID, &s.Status, &s.StartsAt, &s.ExpiresAt,
		&s.CancelledAt, &s.CreatedAt, &s.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find subscription: %w", err)
	}

	return &s, nil
}

// ListByUser returns the user's subscription history, newest first
func (r *SubscriptionRepository) ListByUser(ctx context.Context, userID int64) ([]subscription.Subscription, error) {
	query := `
		SELECT id, user_id, plan_id, status, starts_at, expires_at, cancelled_at,
		       created_at, updated_at
		FROM subscriptions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []subscription.Subscription
	for rows.Next() {
		var s subscription.Subscription
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.PlanID, &s.Status, &s.StartsAt, &s.ExpiresAt,
			&s.CancelledAt, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, s)
	}

	return subs, rows.Err()
}

// Cancel marks a subscription cancelled
func (r *SubscriptionRepository) Cancel(ctx context.Context, id int64) error {
	query := `
		UPDATE subscriptions
		SET status = 'cancelled', cancelled_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'active'
	`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to cancel subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// ExpireDue flips past-due active subscriptions to expired and reports how many changed
func (r *SubscriptionRepository) ExpireDue(ctx context.Context) (int64, error) {
	query := `
		UPDATE subscriptions
		SET status = 'expired', updated_at = NOW()
		WHERE status = 'active' AND expires_at <= NOW()
	`

	tag, err := r.db.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to expire subscriptions: %w", err)
	}

	return tag.RowsAffected(), nil
}
