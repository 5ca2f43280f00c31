// internal/domain/booking/dto.go
package booking

// CreateBookingRequest books a customer into a slot
type CreateBookingRequest struct {
	SlotID  int64  `json:"slot_id" binding:"required"`
	Service string `json:"service" binding:"required"`
	Notes   string `json:"notes"`
}

// ListFilter narrows booking listings
type ListFilter struct {
	UserID int64
	SlotID int64
	Status string
	Limit  int
	Offset int
}
