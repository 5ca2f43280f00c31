// internal/service/payment/payment.go
package payment

import (
	"context"
	"database/sql"

	"carecycle-service/internal/domain/payment"
	xerrors "carecycle-service/internal/pkg/errors"
	"carecycle-service/internal/repository/postgres"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

type PaymentService struct {
	paymentRepo *postgres.PaymentRepository
	logger      *zap.Logger
}

func NewPaymentService(paymentRepo *postgres.PaymentRepository, logger *zap.Logger) *PaymentService {
	return &PaymentService{paymentRepo: paymentRepo, logger: logger}
}

// validTransitions defines the payment lifecycle
var validTransitions = map[string][]string{
	payment.StatusPending: {payment.StatusPaid, payment.StatusFailed},
	payment.StatusPaid:    {payment.StatusRefunded},
}

// RecordPayment captures a charge against a booking or subscription
func (s *PaymentService) RecordPayment(ctx context.Context, userID int64, req *payment.RecordPaymentRequest) (*payment.Payment, error) {
	if req.BookingID == 0 && req.SubscriptionID == 0 {
		return nil, xerrors.ErrInvalidInput
	}

	currency := req.Currency
	if currency == "" {
		currency = "KES"
	}

	p := &payment.Payment{
		Reference:      "PAY-" + ulid.Make().String(),
		UserID:         userID,
		BookingID:      sql.NullInt64{Int64: req.BookingID, Valid: req.BookingID != 0},
		SubscriptionID: sql.NullInt64{Int64: req.SubscriptionID, Valid: req.SubscriptionID != 0},
		AmountCents:    req.AmountCents,
		Currency:       currency,
		Method:         req.Method,
		Status:         payment.StatusPending,
		ExternalRef:    sql.NullString{String: req.ExternalRef, Valid: req.ExternalRef != ""},
	}

	if err := s.paymentRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("payment recorded",
		zap.String("reference", p.Reference),
		zap.Int64("user_id", userID),
		zap.Int64("amount_cents", p.AmountCents),
	)

	return p, nil
}

// GetPayment returns one payment, restricted to its owner unless staff
func (s *PaymentService) GetPayment(ctx context.Context, id, callerID int64, staff bool) (*payment.Payment, error) {
	p, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !staff && p.UserID != callerID {
		return nil, xerrors.ErrForbidden
	}
	return p, nil
}

// ListPayments returns payments matching the filter
func (s *PaymentService) ListPayments(ctx context.Context, filter *payment.ListFilter) ([]payment.Payment, int64, error) {
	return s.paymentRepo.List(ctx, filter)
}

// UpdateStatus moves a payment through its lifecycle, back office only
func (s *PaymentService) UpdateStatus(ctx context.Context, id int64, status string) error {
	p, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	allowed := false
	for _, next := range validTransitions[p.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return xerrors.ErrConflict
	}

	if err := s.paymentRepo.UpdateStatus(ctx, id, status); err != nil {
		return err
	}

	s.logger.Info("payment status updated",
		zap.String("reference", p.Reference),
		zap.String("from", p.Status),
		zap.String("to", status),
	)

	return nil
}
