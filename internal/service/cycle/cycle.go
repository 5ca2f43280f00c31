// internal/service/cycle/cycle.go
package cycle

import (
	"context"
	"database/sql"
	"time"

	"carecycle-service/internal/domain/cycle"
	xerrors "carecycle-service/internal/pkg/errors"
	"carecycle-service/internal/repository/postgres"

	"go.uber.org/zap"
)

// predictionWindow is how many recent entries feed the estimate.
const predictionWindow = 6

type CycleService struct {
	cycleRepo *postgres.CycleRepository
	logger    *zap.Logger
}

func NewCycleService(cycleRepo *postgres.CycleRepository, logger *zap.Logger) *CycleService {
	return &CycleService{cycleRepo: cycleRepo, logger: logger}
}

// LogEntry records a cycle for the caller
func (s *CycleService) LogEntry(ctx context.Context, userID int64, req *cycle.LogEntryRequest) (*cycle.Entry, error) {
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, xerrors.ErrInvalidInput
	}

	entry := &cycle.Entry{
		UserID:    userID,
		StartDate: start,
		Symptoms:  req.Symptoms,
		Notes:     sql.NullString{String: req.Notes, Valid: req.Notes != ""},
	}

	if req.EndDate != "" {
		end, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil || end.Before(start) {
			return nil, xerrors.ErrInvalidInput
		}
		entry.EndDate = sql.NullTime{Time: end, Valid: true}
	}

	if err := s.cycleRepo.Create(ctx, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

// History returns the caller's recent entries
func (s *CycleService) History(ctx context.Context, userID int64, limit int) ([]cycle.Entry, error) {
	return s.cycleRepo.ListByUser(ctx, userID, limit)
}

// UpdateEntry applies edits to one of the caller's entries
func (s *CycleService) UpdateEntry(ctx context.Context, id, userID int64, req *cycle.LogEntryRequest) (*cycle.Entry, error) {
	entry, err := s.cycleRepo.FindByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.StartDate != "" {
		start, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			return nil, xerrors.ErrInvalidInput
		}
		entry.StartDate = start
	}
	if req.EndDate != "" {
		end, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil || end.Before(entry.StartDate) {
			return nil, xerrors.ErrInvalidInput
		}
		entry.EndDate = sql.NullTime{Time: end, Valid: true}
	}
	if req.Symptoms != nil {
		entry.Symptoms = req.Symptoms
	}
	if req.Notes != "" {
		entry.Notes = sql.NullString{String: req.Notes, Valid: true}
	}

	if err := s.cycleRepo.Update(ctx, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

// DeleteEntry removes one of the caller's entries
func (s *CycleService) DeleteEntry(ctx context.Context, id, userID int64) error {
	return s.cycleRepo.Delete(ctx, id, userID)
}

// Predict estimates the next cycle start from the average gap between
// recent entries. At least two entries are required.
func (s *CycleService) Predict(ctx context.Context, userID int64) (*cycle.Prediction, error) {
	entries, err := s.cycleRepo.ListByUser(ctx, userID, predictionWindow)
	if err != nil {
		return nil, err
	}
	if len(entries) < 2 {
		return nil, xerrors.ErrNotFound
	}

	// Entries come newest first; gaps are between consecutive start dates.
	totalDays := 0
	for i := 0; i < len(entries)-1; i++ {
		gap := entries[i].StartDate.Sub(entries[i+1].StartDate)
		totalDays += int(gap.Hours() / 24)
	}
	avg := totalDays / (len(entries) - 1)
	if avg < 1 {
		return nil, xerrors.ErrInvalidInput
	}

	return &cycle.Prediction{
		NextStart:        entries[0].StartDate.AddDate(0, 0, avg),
		AverageCycleDays: avg,
		SampleSize:       len(entries),
	}, nil
}
