// internal/domain/schedule/dto.go
package schedule

import "time"

// CreateSlotRequest opens a new availability window
type CreateSlotRequest struct {
	StartsAt time.Time `json:"starts_at" binding:"required"`
	EndsAt   time.Time `json:"ends_at" binding:"required"`
	Capacity int       `json:"capacity" binding:"required,min=1"`
	Notes    string    `json:"notes"`
}

// UpdateSlotRequest adjusts an existing window
type UpdateSlotRequest struct {
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
	Capacity *int       `json:"capacity"`
	Status   *string    `json:"status"`
	Notes    *string    `json:"notes"`
}

// ListFilter narrows slot listings
type ListFilter struct {
	ConsultantID int64
	From         time.Time
	To           time.Time
	OpenOnly     bool
	Limit        int
	Offset       int
}
