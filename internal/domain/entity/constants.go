package entity

// Status constants shared by approvable domain records. Each record carries a
// free-text status column; the engine only ever writes these values.
const (
	RecordStatusPending  = "PENDING"
	RecordStatusApproved = "APPROVED"
	RecordStatusRejected = "REJECTED"
)

// KYC status constants for Investor.
const (
	KYCStatusPending  = "PENDING"
	KYCStatusApproved = "APPROVED"
	KYCStatusRejected = "REJECTED"
)

// Subscription status constants.
const (
	SubscriptionStatusDraft     = "DRAFT"
	SubscriptionStatusActive    = "ACTIVE"
	SubscriptionStatusCancelled = "CANCELLED"
)

// Signature request status constants.
const (
	SignatureStatusRequested = "REQUESTED"
	SignatureStatusSigned    = "SIGNED"
	SignatureStatusDeclined  = "DECLINED"
)

// Signature request party roles.
const (
	SignerRoleInvestor      = "INVESTOR"
	SignerRoleCounterSigner = "COUNTER_SIGNER"
)

// Invitation status constants.
const (
	InvitationStatusRequested = "REQUESTED"
	InvitationStatusReady     = "READY_FOR_ACCEPTANCE"
	InvitationStatusDeclined  = "DECLINED"
	InvitationStatusAccepted  = "ACCEPTED"
)

// Document status constants.
const (
	DocumentStatusDraft    = "DRAFT"
	DocumentStatusApproved = "APPROVED"
	DocumentStatusRejected = "REJECTED"
)

// Notification type constants.
const (
	NotificationTypeApprovalOutcome = "APPROVAL_OUTCOME"
	NotificationTypeInvitation      = "INVITATION"
)
