package handler

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/crestbridge/ir-portal/internal/application/dispatcher"
	"github.com/crestbridge/ir-portal/internal/application/port"
	"github.com/crestbridge/ir-portal/internal/domain/entity"
	"github.com/crestbridge/ir-portal/pkg/utils"
)

// fundingWindow is how long a newly created subscription has to fund.
const fundingWindow = 14 * 24 * time.Hour

// pricePerShareRe matches an embedded price-per-share figure in free-text fee
// structures, e.g. "Price per share: $12.50".
var pricePerShareRe = regexp.MustCompile(`(?i)price\s+per\s+share[:\s]+\$?\s*([0-9]+(?:\.[0-9]+)?)`)

// SubscriptionHandler approves deal subscription submissions and materializes
// the formal subscription record. Fee percentages are snapshotted from the
// deal's default fee plan at approval time; the price per share comes from
// the fee structure text when stated, else the latest valuation. Document
// generation runs after the subscription exists and degrades on failure.
type SubscriptionHandler struct {
	submissionRepo   port.SubmissionRepository
	subscriptionRepo port.SubscriptionRepository
	dealRepo         port.DealRepository
	feePlanRepo      port.FeePlanRepository
	valuationRepo    port.ValuationRepository
	referralRepo     port.ReferralRepository
	documentRepo     port.DocumentRepository
	gateway          port.WorkflowGateway
	files            port.FileStorage
	logger           Logger
}

// NewSubscriptionHandler creates the deal_subscription handler.
func NewSubscriptionHandler(
	submissionRepo port.SubmissionRepository,
	subscriptionRepo port.SubscriptionRepository,
	dealRepo port.DealRepository,
	feePlanRepo port.FeePlanRepository,
	valuationRepo port.ValuationRepository,
	referralRepo port.ReferralRepository,
	documentRepo port.DocumentRepository,
	gateway port.WorkflowGateway,
	files port.FileStorage,
	logger Logger,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		submissionRepo:   submissionRepo,
		subscriptionRepo: subscriptionRepo,
		dealRepo:         dealRepo,
		feePlanRepo:      feePlanRepo,
		valuationRepo:    valuationRepo,
		referralRepo:     referralRepo,
		documentRepo:     documentRepo,
		gateway:          gateway,
		files:            files,
		logger:           logger,
	}
}

// Approve approves the submission and finds-or-creates the subscription.
func (h *SubscriptionHandler) Approve(ctx context.Context, ticket *entity.ApprovalTicket, actor *entity.User) (*dispatcher.Outcome, error) {
	payload, err := entity.DecodePayload(ticket.EntityType, ticket.EntityMetadata)
	if err != nil {
		return nil, err
	}

	submission, err := h.submissionRepo.GetByID(ctx, ticket.EntityID)
	if err != nil {
		return nil, fmt.Errorf("load submission %d: %w", ticket.EntityID, err)
	}
	if submission == nil {
		return nil, fmt.Errorf("submission %d not found", ticket.EntityID)
	}

	now := time.Now()
	upd := port.StatusUpdate{Status: entity.RecordStatusApproved, ActorID: actor.ID, At: now}
	if err := h.submissionRepo.SetStatus(ctx, submission.ID, upd); err != nil {
		return nil, fmt.Errorf("approve submission %d: %w", submission.ID, err)
	}

	draft, err := h.buildDraft(ctx, submission, payload, now)
	if err != nil {
		return nil, err
	}

	sub, created, err := h.subscriptionRepo.FindOrCreate(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("find or create subscription: %w", err)
	}

	if created {
		// Downstream orchestration: failure here never fails the approval.
		h.generateAgreement(ctx, sub, actor)
	} else {
		h.logger.Info("Reusing existing subscription",
			"subscription_id", sub.ID,
			"investor_id", sub.InvestorID,
			"deal_id", sub.DealID,
		)
	}

	return &dispatcher.Outcome{
		NotificationData: map[string]interface{}{
			"subscription_id": sub.ID,
			"created":         created,
			"price_per_share": sub.PricePerShare,
			"draft_shares":    sub.DraftShares,
		},
	}, nil
}

// buildDraft assembles the subscription row from the fee plan snapshot,
// pricing and referral resolution.
func (h *SubscriptionHandler) buildDraft(ctx context.Context, submission *entity.DealSubmission, payload *entity.TicketPayload, now time.Time) (*entity.Subscription, error) {
	deal, err := h.dealRepo.GetByID(ctx, submission.DealID)
	if err != nil {
		return nil, fmt.Errorf("load deal %d: %w", submission.DealID, err)
	}
	if deal == nil {
		return nil, fmt.Errorf("deal %d not found", submission.DealID)
	}

	if err := utils.ValidateAmount(submission.Amount); err != nil {
		return nil, fmt.Errorf("submission %d: %w", submission.ID, err)
	}

	draft := &entity.Subscription{
		InvestorID:   submission.InvestorID,
		DealID:       submission.DealID,
		SubmissionID: submission.ID,
		Amount:       submission.Amount,
		Status:       entity.SubscriptionStatusDraft,
	}
	if payload.Subscription != nil {
		draft.VehicleID = payload.Subscription.VehicleID
	}

	var feePlan *entity.FeePlan
	if deal.DefaultFeePlanID != nil {
		feePlan, err = h.feePlanRepo.GetByID(ctx, *deal.DefaultFeePlanID)
		if err != nil {
			return nil, fmt.Errorf("load fee plan %d: %w", *deal.DefaultFeePlanID, err)
		}
	}
	if feePlan != nil {
		draft.FeePlanID = &feePlan.ID
		draft.SetupFeePercent = feePlan.SetupFeePercent
		draft.ManagementFeePercent = feePlan.ManagementFeePercent
		draft.CarryPercent = feePlan.CarryPercent
	}

	pps, err := h.resolvePricePerShare(ctx, deal.ID, feePlan)
	if err != nil {
		return nil, err
	}
	draft.PricePerShare = pps
	if pps > 0 {
		draft.DraftShares = submission.Amount / pps
	}

	deadline := now.Add(fundingWindow)
	draft.FundingDeadline = &deadline

	introducer, err := h.resolveIntroducer(ctx, submission.InvestorID, payload)
	if err != nil {
		return nil, err
	}
	draft.IntroducerUserID = introducer

	return draft, nil
}

// resolvePricePerShare parses the fee structure text, falling back to the
// latest valuation when no figure is stated.
func (h *SubscriptionHandler) resolvePricePerShare(ctx context.Context, dealID int64, feePlan *entity.FeePlan) (float64, error) {
	if feePlan != nil {
		if m := pricePerShareRe.FindStringSubmatch(feePlan.Structure); m != nil {
			if pps, err := strconv.ParseFloat(m[1], 64); err == nil && pps > 0 {
				return pps, nil
			}
		}
	}

	valuation, err := h.valuationRepo.LatestForDeal(ctx, dealID)
	if err != nil {
		return 0, fmt.Errorf("load latest valuation for deal %d: %w", dealID, err)
	}
	if valuation == nil {
		return 0, fmt.Errorf("no price per share available for deal %d", dealID)
	}
	return valuation.PricePerShare, nil
}

// resolveIntroducer prefers the payload hint, else the active referral link.
func (h *SubscriptionHandler) resolveIntroducer(ctx context.Context, investorID int64, payload *entity.TicketPayload) (*int64, error) {
	if payload.Subscription != nil && payload.Subscription.IntroducerUserID != nil {
		return payload.Subscription.IntroducerUserID, nil
	}

	introducer, err := h.referralRepo.ActiveIntroducerForInvestor(ctx, investorID)
	if err != nil {
		return nil, fmt.Errorf("resolve introducer for investor %d: %w", investorID, err)
	}
	return introducer, nil
}

// generateAgreement triggers the external document workflow and registers the
// generated draft. Every failure downgrades to a warning.
func (h *SubscriptionHandler) generateAgreement(ctx context.Context, sub *entity.Subscription, actor *entity.User) {
	result, err := h.gateway.Trigger(ctx, port.WorkflowTrigger{
		WorkflowKey: "subscription_agreement",
		Payload: map[string]interface{}{
			"subscription_id": sub.ID,
			"investor_id":     sub.InvestorID,
			"deal_id":         sub.DealID,
			"amount":          sub.Amount,
		},
		EntityType: string(entity.EntityDealSubscription),
		EntityID:   sub.ID,
		UserID:     actor.ID,
	})
	if err != nil {
		h.logger.Error("Agreement workflow trigger failed", "subscription_id", sub.ID, "error", err)
		return
	}
	if !result.Success {
		h.logger.Error("Agreement workflow reported failure", "subscription_id", sub.ID, "error", result.Error)
		return
	}

	docBytes, ok := result.DocumentBytes()
	if !ok {
		h.logger.Error("Agreement workflow returned no document", "subscription_id", sub.ID, "run_id", result.RunID)
		return
	}

	path := fmt.Sprintf("subscriptions/%d/agreement-draft.docx", sub.ID)
	if err := h.files.Save(ctx, path, docBytes); err != nil {
		h.logger.Error("Failed to persist generated agreement", "subscription_id", sub.ID, "error", err)
		return
	}

	doc := &entity.Document{
		Name:           fmt.Sprintf("Subscription Agreement Draft #%d", sub.ID),
		StoragePath:    path,
		ContentType:    "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		SizeBytes:      int64(len(docBytes)),
		SubscriptionID: &sub.ID,
		Status:         entity.DocumentStatusDraft,
	}
	if err := h.documentRepo.Create(ctx, doc); err != nil {
		h.logger.Error("Failed to register generated agreement", "subscription_id", sub.ID, "error", err)
		return
	}

	h.logger.Info("Agreement draft generated",
		"subscription_id", sub.ID,
		"document_id", doc.ID,
		"run_id", result.RunID,
	)
}

// Reject marks the submission rejected.
func (h *SubscriptionHandler) Reject(ctx context.Context, ticket *entity.ApprovalTicket, actor *entity.User) error {
	upd := port.StatusUpdate{
		Status:  entity.RecordStatusRejected,
		ActorID: actor.ID,
		At:      time.Now(),
	}
	if err := h.submissionRepo.SetStatus(ctx, ticket.EntityID, upd); err != nil {
		return fmt.Errorf("reject submission %d: %w", ticket.EntityID, err)
	}
	return nil
}

// Irreversible reports false.
func (h *SubscriptionHandler) Irreversible() bool { return false }
