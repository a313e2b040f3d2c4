package entity

import "time"

// FeePlan is a published fee structure attached to a deal. The free-text
// Structure field may embed a price-per-share figure; percentages are the
// authoritative numeric terms.
type FeePlan struct {
	ID                   int64     `json:"id"`
	DealID               int64     `json:"deal_id"`
	Name                 string    `json:"name"`
	Structure            string    `json:"structure,omitempty"`
	SetupFeePercent      float64   `json:"setup_fee_percent"`
	ManagementFeePercent float64   `json:"management_fee_percent"`
	CarryPercent         float64   `json:"carry_percent"`
	CreatedAt            time.Time `json:"created_at"`
}

// Valuation is a point-in-time price per share for a deal.
type Valuation struct {
	ID            int64     `json:"id"`
	DealID        int64     `json:"deal_id"`
	PricePerShare float64   `json:"price_per_share"`
	EffectiveAt   time.Time `json:"effective_at"`
}

// DealSubmission is the investor-facing subscription request an approval
// ticket points at; approving it materializes a Subscription.
type DealSubmission struct {
	ID         int64      `json:"id"`
	InvestorID int64      `json:"investor_id"`
	DealID     int64      `json:"deal_id"`
	Amount     float64    `json:"amount"`
	Status     string     `json:"status"`
	DecidedBy  *int64     `json:"decided_by,omitempty"`
	DecidedAt  *time.Time `json:"decided_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Subscription is the formal record created on submission approval. Fee
// percentages are copied from the fee plan at approval time so later plan
// edits never change historical fee events.
type Subscription struct {
	ID                   int64      `json:"id"`
	InvestorID           int64      `json:"investor_id"`
	DealID               int64      `json:"deal_id"`
	VehicleID            int64      `json:"vehicle_id"`
	SubmissionID         int64      `json:"submission_id"`
	FeePlanID            *int64     `json:"fee_plan_id,omitempty"`
	SetupFeePercent      float64    `json:"setup_fee_percent"`
	ManagementFeePercent float64    `json:"management_fee_percent"`
	CarryPercent         float64    `json:"carry_percent"`
	PricePerShare        float64    `json:"price_per_share"`
	DraftShares          float64    `json:"draft_shares"`
	Amount               float64    `json:"amount"`
	FundingDeadline      *time.Time `json:"funding_deadline,omitempty"`
	IntroducerUserID     *int64     `json:"introducer_user_id,omitempty"`
	Status               string     `json:"status"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// SignatureRequest is one party's side of a countersigned document.
type SignatureRequest struct {
	ID         int64     `json:"id"`
	DocumentID int64     `json:"document_id"`
	UserID     int64     `json:"user_id"`
	Role       string    `json:"role"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ReferralLink ties an introducer to an investor for fee-sharing purposes.
type ReferralLink struct {
	ID               int64     `json:"id"`
	IntroducerUserID int64     `json:"introducer_user_id"`
	InvestorID       int64     `json:"investor_id"`
	Active           bool      `json:"active"`
	CreatedAt        time.Time `json:"created_at"`
}
