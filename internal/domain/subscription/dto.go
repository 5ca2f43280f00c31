// internal/domain/subscription/dto.go
package subscription

// SubscribeRequest enrolls the caller in a plan
type SubscribeRequest struct {
	PlanCode string `json:"plan_code" binding:"required"`
}

// CreatePlanRequest for back-office plan management
type CreatePlanRequest struct {
	Code         string   `json:"code" binding:"required"`
	Name         string   `json:"name" binding:"required"`
	Description  string   `json:"description"`
	PriceCents   int64    `json:"price_cents" binding:"required,min=0"`
	Currency     string   `json:"currency"`
	DurationDays int      `json:"duration_days" binding:"required,min=1"`
	Features     []string `json:"features"`
}

// UpdatePlanRequest edits an existing plan
type UpdatePlanRequest struct {
	Name         *string  `json:"name"`
	Description  *string  `json:"description"`
	PriceCents   *int64   `json:"price_cents"`
	DurationDays *int     `json:"duration_days"`
	Features     []string `json:"features"`
	IsActive     *bool    `json:"is_active"`
}
