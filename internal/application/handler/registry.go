package handler

import (
	"fmt"

	"github.com/crestbridge/ir-portal/internal/application/dispatcher"
	"github.com/crestbridge/ir-portal/internal/application/port"
	"github.com/crestbridge/ir-portal/internal/domain/entity"
)

// Deps bundles everything the handler set needs.
type Deps struct {
	Tickets       port.TicketRepository
	Allocations   port.AllocationRepository
	Deals         port.DealRepository
	Interests     port.InterestRepository
	Access        port.AccessRepository
	Submissions   port.SubmissionRepository
	Subscriptions port.SubscriptionRepository
	FeePlans      port.FeePlanRepository
	Valuations    port.ValuationRepository
	Referrals     port.ReferralRepository
	Signatures    port.SignatureRequestRepository
	Documents     port.DocumentRepository
	Wires         port.WireInstructionRepository
	Sales         port.SaleRequestRepository
	Investors     port.InvestorRepository
	Users         port.UserRepository
	Invitations   port.InvitationRepository
	Profiles      port.ProfileRepository
	Notifications port.NotificationRepository
	Audit         port.AuditRepository
	TxManager     port.TransactionManager
	Gateway       port.WorkflowGateway
	Files         port.FileStorage
	Mailer        port.EmailSender
}

// BuildRegistry constructs the closed handler registry covering every ticket
// entity type. It fails if any type is left uncovered, which makes a missing
// handler a startup error instead of a silent no-op.
func BuildRegistry(deps Deps, logger Logger) (dispatcher.Registry, error) {
	registry := dispatcher.NewRegistry(dispatcher.WithLogger(logger))

	bindings := []struct {
		entityType entity.EntityType
		name       string
		handler    dispatcher.Handler
	}{
		{entity.EntityAllocation, "allocation", NewStatusHandler("allocation", deps.Allocations, logger)},
		{entity.EntityDeal, "deal", NewStatusHandler("deal", deps.Deals, logger)},
		{entity.EntityDocument, "document", NewStatusHandler("document", deps.Documents, logger)},
		{entity.EntityWireInstruction, "wire_instruction", NewStatusHandler("wire_instruction", deps.Wires, logger)},
		{entity.EntitySaleRequest, "sale_request", NewStatusHandler("sale_request", deps.Sales, logger)},
		{entity.EntityInvestorOnboarding, "investor_onboarding", NewOnboardingHandler(deps.Investors, deps.Users, deps.TxManager, logger)},
		{entity.EntityDataRoomAccessExtension, "data_room_access_extension", NewAccessExtensionHandler(deps.Access, logger)},
		{entity.EntityDealSubscription, "deal_subscription", NewSubscriptionHandler(
			deps.Submissions, deps.Subscriptions, deps.Deals, deps.FeePlans, deps.Valuations,
			deps.Referrals, deps.Documents, deps.Gateway, deps.Files, logger)},
		{entity.EntityDealInterest, "deal_interest", NewInterestHandler(
			false, deps.Interests, deps.Investors, deps.Documents, deps.Signatures, deps.Gateway, deps.Files, logger)},
		{entity.EntityDealInterestNDA, "deal_interest_nda", NewInterestHandler(
			true, deps.Interests, deps.Investors, deps.Documents, deps.Signatures, deps.Gateway, deps.Files, logger)},
		{entity.EntityGDPRDeletionRequest, "gdpr_deletion_request", NewGDPRHandler(
			deps.Users, deps.Investors, deps.Notifications, deps.Audit, deps.TxManager, logger)},
		{entity.EntityArrangerProfileUpdate, "arranger_profile_update", NewProfileUpdateHandler(deps.Profiles, logger)},
		{entity.EntityMemberInvitation, "member_invitation", NewInvitationHandler(deps.Invitations, deps.Mailer, logger)},
	}

	for _, b := range bindings {
		if err := registry.Register(b.entityType, b.name, b.handler); err != nil {
			return nil, fmt.Errorf("register %s: %w", b.name, err)
		}
	}

	if err := registry.Complete(); err != nil {
		return nil, err
	}
	return registry, nil
}
