package handler

import (
	"context"
	"time"

	"github.com/crestbridge/ir-portal/internal/application/port"
	"github.com/crestbridge/ir-portal/internal/domain/entity"
)

// Shared hand-rolled mocks for the handler tests. Each method falls back to
// a benign default when its func field is nil.

type noopLogger struct{}

func (noopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (noopLogger) Error(msg string, keysAndValues ...interface{}) {}

type mockTxManager struct {
	err error
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.err != nil {
		return m.err
	}
	return fn(ctx)
}

type mockAccessRepo struct {
	getByIDFunc func(ctx context.Context, id int64) (*entity.DataRoomAccess, error)

	setExpiryID int64
	setExpiryAt time.Time
	setExpiryN  int
}

func (m *mockAccessRepo) GetByID(ctx context.Context, id int64) (*entity.DataRoomAccess, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockAccessRepo) SetExpiry(ctx context.Context, id int64, expiresAt time.Time) error {
	m.setExpiryID = id
	m.setExpiryAt = expiresAt
	m.setExpiryN++
	return nil
}

type statusCall struct {
	id  int64
	upd port.StatusUpdate
}

type mockSubmissionRepo struct {
	getByIDFunc func(ctx context.Context, id int64) (*entity.DealSubmission, error)

	statusCalls []statusCall
}

func (m *mockSubmissionRepo) GetByID(ctx context.Context, id int64) (*entity.DealSubmission, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockSubmissionRepo) SetStatus(ctx context.Context, id int64, upd port.StatusUpdate) error {
	m.statusCalls = append(m.statusCalls, statusCall{id: id, upd: upd})
	return nil
}

type mockSubscriptionRepo struct {
	findOrCreateFunc func(ctx context.Context, sub *entity.Subscription) (*entity.Subscription, bool, error)

	drafts []*entity.Subscription
}

func (m *mockSubscriptionRepo) FindOrCreate(ctx context.Context, sub *entity.Subscription) (*entity.Subscription, bool, error) {
	m.drafts = append(m.drafts, sub)
	if m.findOrCreateFunc != nil {
		return m.findOrCreateFunc(ctx, sub)
	}
	created := *sub
	created.ID = 1
	return &created, true, nil
}

func (m *mockSubscriptionRepo) GetByID(ctx context.Context, id int64) (*entity.Subscription, error) {
	return nil, nil
}

type mockDealRepo struct {
	getByIDFunc func(ctx context.Context, id int64) (*entity.Deal, error)
}

func (m *mockDealRepo) GetByID(ctx context.Context, id int64) (*entity.Deal, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockDealRepo) SetStatus(ctx context.Context, id int64, upd port.StatusUpdate) error {
	return nil
}

type mockFeePlanRepo struct {
	getByIDFunc func(ctx context.Context, id int64) (*entity.FeePlan, error)
}

func (m *mockFeePlanRepo) GetByID(ctx context.Context, id int64) (*entity.FeePlan, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

type mockValuationRepo struct {
	latestForDealFunc func(ctx context.Context, dealID int64) (*entity.Valuation, error)
}

func (m *mockValuationRepo) LatestForDeal(ctx context.Context, dealID int64) (*entity.Valuation, error) {
	if m.latestForDealFunc != nil {
		return m.latestForDealFunc(ctx, dealID)
	}
	return nil, nil
}

type mockReferralRepo struct {
	activeIntroducerFunc func(ctx context.Context, investorID int64) (*int64, error)
}

func (m *mockReferralRepo) ActiveIntroducerForInvestor(ctx context.Context, investorID int64) (*int64, error) {
	if m.activeIntroducerFunc != nil {
		return m.activeIntroducerFunc(ctx, investorID)
	}
	return nil, nil
}

type mockDocumentRepo struct {
	created []*entity.Document
}

func (m *mockDocumentRepo) GetByID(ctx context.Context, id int64) (*entity.Document, error) {
	return nil, nil
}

func (m *mockDocumentRepo) Create(ctx context.Context, doc *entity.Document) error {
	doc.ID = int64(len(m.created) + 1)
	m.created = append(m.created, doc)
	return nil
}

func (m *mockDocumentRepo) SetStatus(ctx context.Context, id int64, upd port.StatusUpdate) error {
	return nil
}

type mockGateway struct {
	triggerFunc func(ctx context.Context, req port.WorkflowTrigger) (*port.WorkflowResult, error)

	triggers []port.WorkflowTrigger
}

func (m *mockGateway) Trigger(ctx context.Context, req port.WorkflowTrigger) (*port.WorkflowResult, error) {
	m.triggers = append(m.triggers, req)
	if m.triggerFunc != nil {
		return m.triggerFunc(ctx, req)
	}
	return port.NewWorkflowResult("run-1", nil, ""), nil
}

type mockFileStorage struct {
	saved map[string][]byte
}

func (m *mockFileStorage) Save(ctx context.Context, path string, content []byte) error {
	if m.saved == nil {
		m.saved = make(map[string][]byte)
	}
	m.saved[path] = content
	return nil
}

func (m *mockFileStorage) Read(ctx context.Context, path string) ([]byte, error) {
	return m.saved[path], nil
}

func (m *mockFileStorage) Exists(ctx context.Context, path string) bool {
	_, ok := m.saved[path]
	return ok
}

func (m *mockFileStorage) Delete(ctx context.Context, path string) error {
	delete(m.saved, path)
	return nil
}

func (m *mockFileStorage) GetFullPath(relativePath string) string { return relativePath }

type anonymizeCall struct {
	id    int64
	email string
	name  string
}

type mockUserRepo struct {
	getByIDFunc    func(ctx context.Context, id int64) (*entity.User, error)
	getByEmailFunc func(ctx context.Context, email string) (*entity.User, error)
	createFunc     func(ctx context.Context, user *entity.User) error

	created    []*entity.User
	anonymized []anonymizeCall
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	if m.getByEmailFunc != nil {
		return m.getByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *entity.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	user.ID = int64(len(m.created) + 1000)
	m.created = append(m.created, user)
	return nil
}

func (m *mockUserRepo) Anonymize(ctx context.Context, id int64, email, fullName string, at time.Time) error {
	m.anonymized = append(m.anonymized, anonymizeCall{id: id, email: email, name: fullName})
	return nil
}

type linkCall struct {
	investorID int64
	userID     int64
}

type mockInvestorRepo struct {
	getByIDFunc     func(ctx context.Context, id int64) (*entity.Investor, error)
	getByUserIDFunc func(ctx context.Context, userID int64) (*entity.Investor, error)

	kycCalls   []statusCall
	links      []linkCall
	anonymized []anonymizeCall
}

func (m *mockInvestorRepo) GetByID(ctx context.Context, id int64) (*entity.Investor, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockInvestorRepo) GetByUserID(ctx context.Context, userID int64) (*entity.Investor, error) {
	if m.getByUserIDFunc != nil {
		return m.getByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockInvestorRepo) SetKYCStatus(ctx context.Context, id int64, upd port.StatusUpdate) error {
	m.kycCalls = append(m.kycCalls, statusCall{id: id, upd: upd})
	return nil
}

func (m *mockInvestorRepo) LinkUser(ctx context.Context, investorID, userID int64) error {
	m.links = append(m.links, linkCall{investorID: investorID, userID: userID})
	return nil
}

func (m *mockInvestorRepo) Anonymize(ctx context.Context, id int64, email, legalName string, at time.Time) error {
	m.anonymized = append(m.anonymized, anonymizeCall{id: id, email: email, name: legalName})
	return nil
}

type mockNotificationRepo struct {
	purgeForUserFunc func(ctx context.Context, userID int64) (int64, error)

	purgedUserIDs []int64
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	return nil
}

func (m *mockNotificationRepo) PurgeForUser(ctx context.Context, userID int64) (int64, error) {
	m.purgedUserIDs = append(m.purgedUserIDs, userID)
	if m.purgeForUserFunc != nil {
		return m.purgeForUserFunc(ctx, userID)
	}
	return 0, nil
}

type mockAuditRepo struct {
	markedActorIDs []int64
}

func (m *mockAuditRepo) Create(ctx context.Context, e *entity.AuditEntry) error {
	return nil
}

func (m *mockAuditRepo) MarkAnonymizedForActor(ctx context.Context, actorUserID int64) (int64, error) {
	m.markedActorIDs = append(m.markedActorIDs, actorUserID)
	return 1, nil
}
