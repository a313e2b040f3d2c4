package entity

import "time"

// Document is a stored file registered against a deal, subscription or
// interest record. Generated drafts arrive through the workflow gateway.
type Document struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	StoragePath    string     `json:"storage_path"`
	ContentType    string     `json:"content_type,omitempty"`
	SizeBytes      int64      `json:"size_bytes"`
	SubscriptionID *int64     `json:"subscription_id,omitempty"`
	InterestID     *int64     `json:"interest_id,omitempty"`
	Status         string     `json:"status"`
	DecidedBy      *int64     `json:"decided_by,omitempty"`
	DecidedAt      *time.Time `json:"decided_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
