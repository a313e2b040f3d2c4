package entity

import "time"

// MemberInvitation is a staff-gated invitation to join the portal. Approval
// promotes it to READY_FOR_ACCEPTANCE and pushes the expiry out.
type MemberInvitation struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	Role        string     `json:"role,omitempty"`
	Status      string     `json:"status"`
	ExpiresAt   time.Time  `json:"expires_at"`
	RequestedBy *int64     `json:"requested_by,omitempty"`
	DecidedBy   *int64     `json:"decided_by,omitempty"`
	DecidedAt   *time.Time `json:"decided_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ArrangerProfile holds the public-facing fields an arranger may request
// changes to. Changes apply only through an approved ticket.
type ArrangerProfile struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	FirmName    string    `json:"firm_name"`
	Bio         string    `json:"bio,omitempty"`
	Website     string    `json:"website,omitempty"`
	ContactLine string    `json:"contact_line,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
