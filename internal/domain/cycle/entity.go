// internal/domain/cycle/entity.go
package cycle

import (
	"database/sql"
	"time"
)

// Entry is one logged menstrual cycle: the bleed window plus any symptoms.
type Entry struct {
	ID        int64          `json:"id" db:"id"`
	UserID    int64          `json:"user_id" db:"user_id"`
	StartDate time.Time      `json:"start_date" db:"start_date"`
	EndDate   sql.NullTime   `json:"end_date" db:"end_date"`
	Symptoms  []string       `json:"symptoms" db:"symptoms"`
	Notes     sql.NullString `json:"notes" db:"notes"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
}
