// internal/domain/cycle/dto.go
package cycle

import "time"

// LogEntryRequest records a cycle
type LogEntryRequest struct {
	StartDate string   `json:"start_date" binding:"required"` // YYYY-MM-DD
	EndDate   string   `json:"end_date"`
	Symptoms  []string `json:"symptoms"`
	Notes     string   `json:"notes"`
}

// Prediction estimates the next cycle window from recent history.
type Prediction struct {
	NextStart        time.Time `json:"next_start"`
	AverageCycleDays int       `json:"average_cycle_days"`
	SampleSize       int       `json:"sample_size"`
}
