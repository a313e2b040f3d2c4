package entity

import "time"

// Deal is an investment opportunity published on the portal.
type Deal struct {
	ID               int64      `json:"id"`
	Name             string     `json:"name"`
	DefaultFeePlanID *int64     `json:"default_fee_plan_id,omitempty"`
	Status           string     `json:"status"`
	DecidedBy        *int64     `json:"decided_by,omitempty"`
	DecidedAt        *time.Time `json:"decided_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// DealInterest records an investor's expression of interest in a deal. The
// NDA variant additionally drives document generation and paired signature
// requests on approval.
type DealInterest struct {
	ID         int64      `json:"id"`
	InvestorID int64      `json:"investor_id"`
	DealID     int64      `json:"deal_id"`
	Status     string     `json:"status"`
	DecidedBy  *int64     `json:"decided_by,omitempty"`
	DecidedAt  *time.Time `json:"decided_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// DataRoomAccess grants a user time-boxed access to a deal's data room.
// Extensions are granted relative to the current expiry, never to the
// approval time.
type DataRoomAccess struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	DealID    int64     `json:"deal_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WireInstruction holds payment routing details awaiting verification.
type WireInstruction struct {
	ID        int64      `json:"id"`
	DealID    int64      `json:"deal_id"`
	Status    string     `json:"status"`
	DecidedBy *int64     `json:"decided_by,omitempty"`
	DecidedAt *time.Time `json:"decided_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// SaleRequest is a secondary-sale request on an existing position.
type SaleRequest struct {
	ID         int64      `json:"id"`
	InvestorID int64      `json:"investor_id"`
	DealID     int64      `json:"deal_id"`
	Shares     float64    `json:"shares"`
	Status     string     `json:"status"`
	DecidedBy  *int64     `json:"decided_by,omitempty"`
	DecidedAt  *time.Time `json:"decided_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
