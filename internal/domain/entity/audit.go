package entity

import "time"

// Audit action constants written by the decision engine.
const (
	AuditActionApproved       = "TICKET_APPROVED"
	AuditActionRejected       = "TICKET_REJECTED"
	AuditActionRolledBack     = "TICKET_ROLLED_BACK"
	AuditActionRollbackFailed = "TICKET_ROLLBACK_FAILED"
	AuditActionErasure        = "GDPR_ERASURE_APPLIED"
	AuditActionSoftDeleted    = "TICKET_SOFT_DELETED"
)

// Audit severity constants.
const (
	AuditSeverityInfo     = "INFO"
	AuditSeverityWarning  = "WARNING"
	AuditSeverityCritical = "CRITICAL"
)

// AuditEntry is an append-only record of a significant state change.
type AuditEntry struct {
	ID          int64     `json:"id"`
	ActorUserID *int64    `json:"actor_user_id,omitempty"`
	Action      string    `json:"action"`
	Entity      string    `json:"entity"`
	EntityID    int64     `json:"entity_id"`
	Severity    string    `json:"severity"`
	Metadata    string    `json:"metadata,omitempty"`
	Anonymized  bool      `json:"anonymized"`
	CreatedAt   time.Time `json:"created_at"`
}
