package entity

import "time"

// Investor is the KYC-bearing counterpart of a portal user.
type Investor struct {
	ID           int64      `json:"id"`
	UserID       *int64     `json:"user_id,omitempty"`
	Email        string     `json:"email"`
	LegalName    string     `json:"legal_name"`
	KYCStatus    string     `json:"kyc_status"`
	KYCApprovedBy *int64    `json:"kyc_approved_by,omitempty"`
	KYCApprovedAt *time.Time `json:"kyc_approved_at,omitempty"`
	AnonymizedAt *time.Time `json:"anonymized_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Allocation is a share allocation awaiting staff sign-off.
type Allocation struct {
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
