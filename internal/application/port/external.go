package port

import "context"

// WorkflowTrigger describes an external job submission. EntityType/EntityID
// identify the record the run concerns so the automation side can correlate.
type WorkflowTrigger struct {
	WorkflowKey string
	Payload     map[string]interface{}
	EntityType  string
	EntityID    int64
	UserID      int64
}

// WorkflowResult is the gateway's normalized response. Document bytes, when
// present, have already been decoded from whatever wire shape the upstream
// returned and verified against the expected file signature.
type WorkflowResult struct {
	Success       bool
	RunID         string
	Error         string
	documentBytes []byte
	FileReference string
}

// NewWorkflowResult builds a successful result carrying optional normalized
// document bytes and an optional generated-file reference.
func NewWorkflowResult(runID string, docBytes []byte, fileRef string) *WorkflowResult {
	return &WorkflowResult{
		Success:       true,
		RunID:         runID,
		documentBytes: docBytes,
		FileReference: fileRef,
	}
}

// DocumentBytes returns the normalized binary payload, if the run produced
// one.
func (r *WorkflowResult) DocumentBytes() ([]byte, bool) {
	if len(r.documentBytes) == 0 {
		return nil, false
	}
	return r.documentBytes, true
}

// WorkflowGateway submits named external jobs (document generation, NDA
// preparation) and returns their normalized result.
type WorkflowGateway interface {
	Trigger(ctx context.Context, req WorkflowTrigger) (*WorkflowResult, error)
}

// EmailSender delivers transactional emails. Failures degrade: the engine
// logs them and moves on.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}
