// internal/pkg/session/types.go
package session

import (
	"strings"
	"time"
)

// Roles recognised by the platform. Anything other than RoleUser counts as
// privileged back-office staff and is kept on the short timeout.
const (
	RoleUser       = "user"
	RoleConsultant = "consultant"
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleStaff      = "staff"
)

// Timeout policy. The 30-minute/24-hour split is a deliberate risk tradeoff:
// elevated roles can mutate other users' data and get a short leash, ordinary
// customers get a convenience-oriented long one. Do not tune these casually.
const (
	PrivilegedTTL = 30 * time.Minute
	StandardTTL   = 24 * time.Hour

	// ExpiryWarning is the window before expiry during which clients are
	// warned that their session is about to end.
	ExpiryWarning = 5 * time.Minute
)

// UserInfo is the user blob stored alongside a session. Beyond the role it is
// opaque to the session layer; extra fields ride in Metadata.
type UserInfo struct {
	ID       int64                  `json:"id"`
	Role     string                 `json:"role"`
	FullName string                 `json:"full_name"`
	Email    string                 `json:"email"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Record is the persisted bundle of token + user + expiry metadata that
// represents one authenticated visit.
type Record struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	User         UserInfo  `json:"user"`
	LoginTime    time.Time `json:"login_time"`
	ExpiryTime   time.Time `json:"expiry_time"`

	// Role and Privileged are derived from User.Role at save time, cached
	// redundantly for fast checks. They are always written together.
	Role       string `json:"role"`
	Privileged bool   `json:"is_privileged_role"`
}

// NormalizeRole lowercases and trims a raw role value.
func NormalizeRole(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// IsPrivilegedRole reports whether a normalized role is subject to the short
// back-office timeout.
func IsPrivilegedRole(role string) bool {
	switch role {
	case RoleAdmin, RoleConsultant, RoleManager, RoleStaff:
		return true
	}
	return false
}

// TTLForRole returns the session lifetime for a normalized role.
func TTLForRole(role string) time.Duration {
	if IsPrivilegedRole(role) {
		return PrivilegedTTL
	}
	return StandardTTL
}
