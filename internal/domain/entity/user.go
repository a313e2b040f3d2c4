package entity

import (
	"fmt"
	"time"
)

// User represents a portal account. Staff users carry the elevated capability
// checked by the HTTP layer before a decision reaches the engine.
type User struct {
	ID                int64      `json:"id"`
	Email             string     `json:"email"`
	FullName          string     `json:"full_name"`
	Phone             string     `json:"phone,omitempty"`
	IsStaff           bool       `json:"is_staff"`
	IsActive          bool       `json:"is_active"`
	MustResetPassword bool       `json:"must_reset_password"`
	PasswordHash      string     `json:"-"`
	AnonymizedAt      *time.Time `json:"anonymized_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// AnonymizedEmail returns the deterministic placeholder address used by the
// erasure handler. Deriving it from the id keeps referential integrity while
// removing personal data.
func AnonymizedEmail(userID int64) string {
	return fmt.Sprintf("deleted-user-%d@anonymized.invalid", userID)
}

// AnonymizedName returns the deterministic placeholder display name for an
// erased account.
func AnonymizedName(userID int64) string {
	return fmt.Sprintf("Deleted User %d", userID)
}
