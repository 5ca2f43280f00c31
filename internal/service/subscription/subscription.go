// internal/service/subscription/subscription.go
package subscription

import (
	"context"
	"database/sql"
	"time"

	"carecycle-service/internal/domain/subscription"
	xerrors "carecycle-service/internal/pkg/errors"
	"carecycle-service/internal/repository/postgres"

	"go.uber.org/zap"
)

type SubscriptionService struct {
	subRepo *postgres.SubscriptionRepository
	logger  *zap.Logger
}

func NewSubscriptionService(subRepo *postgres.SubscriptionRepository, logger *zap.Logger) *SubscriptionService {
	return &SubscriptionService{subRepo: subRepo, logger: logger}
}

// ========== Plans ==========

// CreatePlan adds a purchasable care package
func (s *SubscriptionService) CreatePlan(ctx context.Context, req *subscription.CreatePlanRequest) (*subscription.Plan, error) {
	if _, err := s.subRepo.FindPlanByCode(ctx, req.Code); err == nil {
		return nil, xerrors.ErrDuplicateEntry
	} else if !xerrors.Is(err, xerrors.ErrNotFound) {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = "KES"
	}

	plan := &subscription.Plan{
		Code:         req.Code,
		Name:         req.Name,
		Description:  sql.NullString{String: req.Description, Valid: req.Description != ""},
		PriceCents:   req.PriceCents,
		Currency:     currency,
		DurationDays: req.DurationDays,
		Features:     req.Features,
		IsActive:     true,
	}

	if err := s.subRepo.CreatePlan(ctx, plan); err != nil {
		return nil, err
	}

	s.logger.Info("plan created", zap.String("code", plan.Code), zap.Int64("price_cents", plan.PriceCents))

	return plan, nil
}

// ListPlans returns plans, public callers see active only
func (s *SubscriptionService) ListPlans(ctx context.Context, activeOnly bool) ([]subscription.Plan, error) {
	return s.subRepo.ListPlans(ctx, activeOnly)
}

// UpdatePlan applies partial edits to a plan
func (s *SubscriptionService) UpdatePlan(ctx context.Context, id int64, req *subscription.UpdatePlanRequest) (*subscription.Plan, error) {
	plan, err := s.subRepo.FindPlanByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		plan.Name = *req.Name
	}
	if req.Description != nil {
		plan.Description = sql.NullString{String: *req.Description, Valid: *req.Description != ""}
	}
	if req.PriceCents != nil {
		plan.PriceCents = *req.PriceCents
	}
	if req.DurationDays != nil {
		plan.DurationDays = *req.DurationDays
	}
	if req.Features != nil {
		plan.Features = req.Features
	}
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}

	if err := s.subRepo.UpdatePlan(ctx, plan); err != nil {
		return nil, err
	}

	return plan, nil
}

// ========== Subscriptions ==========

// Subscribe enrolls a user in a plan. An existing active subscription blocks
// a second enrollment.
func (s *SubscriptionService) Subscribe(ctx context.Context, userID int64, req *subscription.SubscribeRequest) (*subscription.Subscription, error) {
	plan, err := s.subRepo.FindPlanByCode(ctx, req.PlanCode)
	if err != nil {
		return nil, err
	}
	if !plan.IsActive {
		return nil, xerrors.ErrNotFound
	}

	if _, err := s.subRepo.FindActiveByUser(ctx, userID); err == nil {
		return nil, xerrors.ErrConflict
	} else if !xerrors.Is(err, xerrors.ErrNotFound) {
		return nil, err
	}

	now := time.Now()
	sub := &subscription.Subscription{
		UserID:    userID,
		PlanID:    plan.ID,
		Status:    subscription.StatusActive,
		StartsAt:  now,
		ExpiresAt: now.AddDate(0, 0, plan.DurationDays),
	}

	if err := s.subRepo.CreateSubscription(ctx, sub); err != nil {
		return nil, err
	}

	s.logger.Info("subscription created",
		zap.Int64("user_id", userID),
		zap.String("plan", plan.Code),
		zap.Time("expires_at", sub.ExpiresAt),
	)

	return sub, nil
}

// GetActive returns the caller's current subscription
func (s *SubscriptionService) GetActive(ctx context.Context, userID int64) (*subscription.Subscription, error) {
	return s.subRepo.FindActiveByUser(ctx, userID)
}

// History returns all of the caller's subscriptions
func (s *SubscriptionService) History(ctx context.Context, userID int64) ([]subscription.Subscription, error) {
	return s.subRepo.ListByUser(ctx, userID)
}

// Cancel stops the caller's active subscription
func (s *SubscriptionService) Cancel(ctx context.Context, userID int64) error {
	sub, err := s.subRepo.FindActiveByUser(ctx, userID)
	if err != nil {
		return err
	}
	return s.subRepo.Cancel(ctx, sub.ID)
}

// ExpireDue sweeps past-due subscriptions; called periodically from the server loop
func (s *SubscriptionService) ExpireDue(ctx context.Context) {
	n, err := s.subRepo.ExpireDue(ctx)
	if err != nil {
		s.logger.Error("subscription expiry sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("subscriptions expired", zap.Int64("count", n))
	}
}
