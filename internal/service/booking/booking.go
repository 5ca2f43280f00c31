// internal/service/booking/booking.go
package booking

import (
	"context"
	"database/sql"
	"fmt"

	"carecycle-service/internal/domain/booking"
	xerrors "carecycle-service/internal/pkg/errors"
	"carecycle-service/internal/repository/postgres"
	"carecycle-service/internal/service/email"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

type BookingService struct {
	db           *postgres.DB
	bookingRepo  *postgres.BookingRepository
	scheduleRepo *postgres.ScheduleRepository
	authRepo     *postgres.AuthRepository
	emailSender  *email.EmailSender
	logger       *zap.Logger
}

func NewBookingService(
	db *postgres.DB,
	bookingRepo *postgres.BookingRepository,
	scheduleRepo *postgres.ScheduleRepository,
	authRepo *postgres.AuthRepository,
	emailSender *email.EmailSender,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		db:           db,
		bookingRepo:  bookingRepo,
		scheduleRepo: scheduleRepo,
		authRepo:     authRepo,
		emailSender:  emailSender,
		logger:       logger,
	}
}

// CreateBooking books a customer into a slot. The seat reservation and the
// booking row commit in one transaction so a full slot can never oversell.
func (s *BookingService) CreateBooking(ctx context.Context, userID int64, req *booking.CreateBookingRequest) (*booking.Booking, error) {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	slot, err := s.scheduleRepo.FindByIDForUpdate(ctx, tx, req.SlotID)
	if err != nil {
		return nil, err
	}
	if !slot.HasRoom() {
		return nil, xerrors.ErrSlotUnavailable
	}

	if err := s.scheduleRepo.ReserveSeat(ctx, tx, slot.ID); err != nil {
		return nil, err
	}

	b := &booking.Booking{
		Reference: "BKG-" + ulid.Make().String(),
		UserID:    userID,
		SlotID:    slot.ID,
		Service:   req.Service,
		Status:    booking.StatusConfirmed,
		Notes:     sql.NullString{String: req.Notes, Valid: req.Notes != ""},
	}

	if err := s.bookingRepo.Create(ctx, tx, b); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit booking: %w", err)
	}

	s.logger.Info("booking created",
		zap.String("reference", b.Reference),
		zap.Int64("user_id", userID),
		zap.Int64("slot_id", slot.ID),
	)

	if user, err := s.authRepo.FindByID(ctx, userID); err == nil {
		when := slot.StartsAt.Format("Mon, 02 Jan 2006 at 15:04")
		if err := s.emailSender.SendBookingConfirmation(user.Email, user.FullName, b.Reference, b.Service, when); err != nil {
			s.logger.Error("failed to send booking confirmation", zap.Error(err))
		}
	}

	return b, nil
}

// GetBooking returns one booking, restricted to its owner unless staff
func (s *BookingService) GetBooking(ctx context.Context, id, callerID int64, staff bool) (*booking.Booking, error) {
	b, err := s.bookingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !staff && b.UserID != callerID {
		return nil, xerrors.ErrForbidden
	}
	return b, nil
}

// ListBookings returns bookings matching the filter
func (s *BookingService) ListBookings(ctx context.Context, filter *booking.ListFilter) ([]booking.Booking, int64, error) {
	return s.bookingRepo.List(ctx, filter)
}

// CancelBooking cancels a booking and releases its seat
func (s *BookingService) CancelBooking(ctx context.Context, id, callerID int64, staff bool) error {
	b, err := s.bookingRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !staff && b.UserID != callerID {
		return xerrors.ErrForbidden
	}
	if !b.CanCancel() {
		return xerrors.ErrConflict
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.bookingRepo.UpdateStatusTx(ctx, tx, b.ID, booking.StatusCancelled); err != nil {
		return err
	}
	if err := s.scheduleRepo.ReleaseSeat(ctx, tx, b.SlotID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit cancellation: %w", err)
	}

	s.logger.Info("booking cancelled",
		zap.String("reference", b.Reference),
		zap.Int64("user_id", b.UserID),
	)

	return nil
}

// CompleteBooking marks a visit as done, back office only
func (s *BookingService) CompleteBooking(ctx context.Context, id int64) error {
	b, err := s.bookingRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if b.Status != booking.StatusConfirmed {
		return xerrors.ErrConflict
	}
	return s.bookingRepo.UpdateStatus(ctx, id, booking.StatusCompleted)
}
