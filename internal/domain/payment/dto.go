// internal/domain/payment/dto.go
package payment

// RecordPaymentRequest captures a completed or pending charge
type RecordPaymentRequest struct {
	BookingID      int64  `json:"booking_id"`
	SubscriptionID int64  `json:"subscription_id"`
	AmountCents    int64  `json:"amount_cents" binding:"required,min=1"`
	Currency       string `json:"currency"`
	Method         string `json:"method" binding:"required"`
	ExternalRef    string `json:"external_ref"`
}

// UpdateStatusRequest moves a payment through its lifecycle
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ListFilter narrows payment listings
type ListFilter struct {
	UserID int64
	Status string
	Limit  int
	Offset int
}
