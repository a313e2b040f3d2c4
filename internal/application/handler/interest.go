package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/crestbridge/ir-portal/internal/application/dispatcher"
	"github.com/crestbridge/ir-portal/internal/application/port"
	"github.com/crestbridge/ir-portal/internal/domain/entity"
)

// InterestHandler approves deal interest records. The NDA variant triggers
// the external NDA document workflow and, when a document comes back,
// creates the paired investor and counter-signer signature requests.
type InterestHandler struct {
	withNDA       bool
	interestRepo  port.InterestRepository
	investorRepo  port.InvestorRepository
	documentRepo  port.DocumentRepository
	signatureRepo port.SignatureRequestRepository
	gateway       port.WorkflowGateway
	files         port.FileStorage
	logger        Logger
}

// NewInterestHandler creates the deal_interest handler. Pass withNDA for the
// deal_interest_nda variant.
func NewInterestHandler(
	withNDA bool,
	interestRepo port.InterestRepository,
	investorRepo port.InvestorRepository,
	documentRepo port.DocumentRepository,
	signatureRepo port.SignatureRequestRepository,
	gateway port.WorkflowGateway,
	files port.FileStorage,
	logger Logger,
) *InterestHandler {
	return &InterestHandler{
		withNDA:       withNDA,
		interestRepo:  interestRepo,
		investorRepo:  investorRepo,
		documentRepo:  documentRepo,
		signatureRepo: signatureRepo,
		gateway:       gateway,
		files:         files,
		logger:        logger,
	}
}

// Approve approves the interest record; the NDA variant then runs document
// orchestration, which degrades on failure.
func (h *InterestHandler) Approve(ctx context.Context, ticket *entity.ApprovalTicket, actor *entity.User) (*dispatcher.Outcome, error) {
	interest, err := h.interestRepo.GetByID(ctx, ticket.EntityID)
	if err != nil {
		return nil, fmt.Errorf("load interest %d: %w", ticket.EntityID, err)
	}
	if interest == nil {
		return nil, fmt.Errorf("interest %d not found", ticket.EntityID)
	}

	upd := port.StatusUpdate{Status: entity.RecordStatusApproved, ActorID: actor.ID, At: time.Now()}
	if err := h.interestRepo.SetStatus(ctx, interest.ID, upd); err != nil {
		return nil, fmt.Errorf("approve interest %d: %w", interest.ID, err)
	}

	data := map[string]interface{}{
		"interest_id": interest.ID,
		"deal_id":     interest.DealID,
	}

	if h.withNDA {
		if docID := h.prepareNDA(ctx, interest, actor); docID != 0 {
			data["nda_document_id"] = docID
		}
	}

	return &dispatcher.Outcome{NotificationData: data}, nil
}

// prepareNDA runs the NDA workflow, persists the generated document and
// creates both signature requests. Returns the document id, or zero when any
// step degrades.
func (h *InterestHandler) prepareNDA(ctx context.Context, interest *entity.DealInterest, actor *entity.User) int64 {
	result, err := h.gateway.Trigger(ctx, port.WorkflowTrigger{
		WorkflowKey: "nda_document",
		Payload: map[string]interface{}{
			"interest_id": interest.ID,
			"investor_id": interest.InvestorID,
			"deal_id":     interest.DealID,
		},
		EntityType: string(entity.EntityDealInterestNDA),
		EntityID:   interest.ID,
		UserID:     actor.ID,
	})
	if err != nil {
		h.logger.Error("NDA workflow trigger failed", "interest_id", interest.ID, "error", err)
		return 0
	}
	if !result.Success {
		h.logger.Error("NDA workflow reported failure", "interest_id", interest.ID, "error", result.Error)
		return 0
	}

	docBytes, hasBytes := result.DocumentBytes()
	if !hasBytes && result.FileReference == "" {
		h.logger.Error("NDA workflow returned no document", "interest_id", interest.ID, "run_id", result.RunID)
		return 0
	}

	path := result.FileReference
	if hasBytes {
		path = fmt.Sprintf("interests/%d/nda.docx", interest.ID)
		if err := h.files.Save(ctx, path, docBytes); err != nil {
			h.logger.Error("Failed to persist NDA document", "interest_id", interest.ID, "error", err)
			return 0
		}
	}

	doc := &entity.Document{
		Name:        fmt.Sprintf("NDA for interest #%d", interest.ID),
		StoragePath: path,
		ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		SizeBytes:   int64(len(docBytes)),
		InterestID:  &interest.ID,
		Status:      entity.DocumentStatusDraft,
	}
	if err := h.documentRepo.Create(ctx, doc); err != nil {
		h.logger.Error("Failed to register NDA document", "interest_id", interest.ID, "error", err)
		return 0
	}

	investor, err := h.investorRepo.GetByID(ctx, interest.InvestorID)
	if err != nil || investor == nil || investor.UserID == nil {
		h.logger.Error("Cannot resolve investor account for NDA signature",
			"interest_id", interest.ID, "investor_id", interest.InvestorID, "error", err)
		return doc.ID
	}

	pairs := []struct {
		userID int64
		role   string
	}{
		{*investor.UserID, entity.SignerRoleInvestor},
		{actor.ID, entity.SignerRoleCounterSigner},
	}
	for _, p := range pairs {
		req := &entity.SignatureRequest{
			DocumentID: doc.ID,
			UserID:     p.userID,
			Role:       p.role,
			Status:     entity.SignatureStatusRequested,
		}
		if err := h.signatureRepo.Create(ctx, req); err != nil {
			h.logger.Error("Failed to create signature request",
				"document_id", doc.ID, "role", p.role, "error", err)
		}
	}

	h.logger.Info("NDA prepared", "interest_id", interest.ID, "document_id", doc.ID, "run_id", result.RunID)
	return doc.ID
}

// Reject marks the interest rejected.
func (h *InterestHandler) Reject(ctx context.Context, ticket *entity.ApprovalTicket, actor *entity.User) error {
	upd := port.StatusUpdate{
		Status:  entity.RecordStatusRejected,
		ActorID: actor.ID,
		At:      time.Now(),
	}
	if err := h.interestRepo.SetStatus(ctx, ticket.EntityID, upd); err != nil {
		return fmt.Errorf("reject interest %d: %w", ticket.EntityID, err)
	}
	return nil
}

// Irreversible reports false.
func (h *InterestHandler) Irreversible() bool { return false }
