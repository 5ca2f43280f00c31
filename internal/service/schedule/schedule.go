// internal/service/schedule/schedule.go
package schedule

import (
	"context"
	"database/sql"

	"carecycle-service/internal/domain/schedule"
	xerrors "carecycle-service/internal/pkg/errors"
	"carecycle-service/internal/repository/postgres"

	"go.uber.org/zap"
)

type ScheduleService struct {
	scheduleRepo *postgres.ScheduleRepository
	logger       *zap.Logger
}

func NewScheduleService(scheduleRepo *postgres.ScheduleRepository, logger *zap.Logger) *ScheduleService {
	return &ScheduleService{scheduleRepo: scheduleRepo, logger: logger}
}

// CreateSlot opens a new availability window for a consultant
func (s *ScheduleService) CreateSlot(ctx context.Context, consultantID int64, req *schedule.CreateSlotRequest) (*schedule.Slot, error) {
	if !req.EndsAt.After(req.StartsAt) {
		return nil, xerrors.ErrInvalidInput
	}

	conflict, err := s.scheduleRepo.HasConflict(ctx, consultantID, req.StartsAt, req.EndsAt, 0)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, xerrors.ErrScheduleConflict
	}

	slot := &schedule.Slot{
		ConsultantID: consultantID,
		StartsAt:     req.StartsAt,
		EndsAt:       req.EndsAt,
		Capacity:     req.Capacity,
		Status:       "open",
		Notes:        sql.NullString{String: req.Notes, Valid: req.Notes != ""},
	}

	if err := s.scheduleRepo.Create(ctx, slot); err != nil {
		return nil, err
	}

	s.logger.Info("schedule slot created",
		zap.Int64("slot_id", slot.ID),
		zap.Int64("consultant_id", consultantID),
		zap.Time("starts_at", slot.StartsAt),
	)

	return slot, nil
}

// GetSlot returns one slot by ID
func (s *ScheduleService) GetSlot(ctx context.Context, id int64) (*schedule.Slot, error) {
	return s.scheduleRepo.FindByID(ctx, id)
}

// ListSlots returns slots matching the filter
func (s *ScheduleService) ListSlots(ctx context.Context, filter *schedule.ListFilter) ([]schedule.Slot, int64, error) {
	return s.scheduleRepo.List(ctx, filter)
}

// UpdateSlot applies partial edits to a slot. Only the owning consultant
// may edit it; admins pass ownerID 0 to skip the check.
func (s *ScheduleService) UpdateSlot(ctx context.Context, id, ownerID int64, req *schedule.UpdateSlotRequest) (*schedule.Slot, error) {
	slot, err := s.scheduleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ownerID != 0 && slot.ConsultantID != ownerID {
		return nil, xerrors.ErrForbidden
	}

	if req.StartsAt != nil {
		slot.StartsAt = *req.StartsAt
	}
	if req.EndsAt != nil {
		slot.EndsAt = *req.EndsAt
	}
	if !slot.EndsAt.After(slot.StartsAt) {
		return nil, xerrors.ErrInvalidInput
	}
	if req.Capacity != nil {
		if *req.Capacity < slot.Booked {
			return nil, xerrors.ErrInvalidInput
		}
		slot.Capacity = *req.Capacity
	}
	if req.Status != nil {
		slot.Status = *req.Status
	}
	if req.Notes != nil {
		slot.Notes = sql.NullString{String: *req.Notes, Valid: *req.Notes != ""}
	}

	if req.StartsAt != nil || req.EndsAt != nil {
		conflict, err := s.scheduleRepo.HasConflict(ctx, slot.ConsultantID, slot.StartsAt, slot.EndsAt, slot.ID)
		if err != nil {
			return nil, err
		}
		if conflict {
			return nil, xerrors.ErrScheduleConflict
		}
	}

	if err := s.scheduleRepo.Update(ctx, slot); err != nil {
		return nil, err
	}

	return slot, nil
}

// CancelSlot closes a window to further bookings
func (s *ScheduleService) CancelSlot(ctx context.Context, id, ownerID int64) error {
	slot, err := s.scheduleRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if ownerID != 0 && slot.ConsultantID != ownerID {
		return xerrors.ErrForbidden
	}

	slot.Status = "cancelled"
	return s.scheduleRepo.Update(ctx, slot)
}
