package entity

import "time"

// Notification is a user-facing inbox record inserted by the engine after a
// decision lands. Delivery is fire-and-forget.
type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Metadata  string    `json:"metadata,omitempty"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
