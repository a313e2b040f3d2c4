package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crestbridge/ir-portal/internal/application/service"
	"github.com/crestbridge/ir-portal/internal/domain/approval"
	"github.com/crestbridge/ir-portal/internal/domain/entity"
)

type mockDecisionService struct {
	decideFunc     func(ctx context.Context, req service.DecideRequest) (*service.DecideResult, error)
	softDeleteFunc func(ctx context.Context, ticketID int64, actor *entity.User) error
	listFunc       func(ctx context.Context, status string, limit, offset int) ([]*entity.ApprovalTicket, error)
}

func (m *mockDecisionService) Decide(ctx context.Context, req service.DecideRequest) (*service.DecideResult, error) {
	if m.decideFunc != nil {
		return m.decideFunc(ctx, req)
	}
	return &service.DecideResult{Success: true}, nil
}

func (m *mockDecisionService) SoftDelete(ctx context.Context, ticketID int64, actor *entity.User) error {
	if m.softDeleteFunc != nil {
		return m.softDeleteFunc(ctx, ticketID, actor)
	}
	return nil
}

func (m *mockDecisionService) ListTickets(ctx context.Context, status string, limit, offset int) ([]*entity.ApprovalTicket, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, status, limit, offset)
	}
	return nil, nil
}

type testLogger struct{}

func (testLogger) Info(msg string, keysAndValues ...interface{})  {}
func (testLogger) Error(msg string, keysAndValues ...interface{}) {}

func newDecisionRouter(svc *mockDecisionService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandlers(svc, nil, testLogger{})
	r := gin.New()
	r.POST("/api/tickets/:id/decision", func(c *gin.Context) {
		c.Set(actorContextKey, &entity.User{ID: 2, IsStaff: true, IsActive: true})
		h.DecideTicket(c)
	})
	return r
}

func postDecision(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestDecideTicket_StatusMapping(t *testing.T) {
	handlerFailed := &approval.HandlerFailedError{
		EntityType: "allocation", TicketID: 1, Retryable: true,
		Err: errors.New("allocation record missing"),
	}
	irreversibleFailed := &approval.HandlerFailedError{
		EntityType: "gdpr_deletion_request", TicketID: 1, Retryable: false,
		Err: errors.New("purge failed midway"),
	}
	rollbackFailed := &approval.RollbackFailedError{
		TicketID:    1,
		HandlerErr:  errors.New("allocation record missing"),
		RollbackErr: errors.New("database is locked"),
	}

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid action", approval.ErrInvalidAction, http.StatusBadRequest},
		{"not found", approval.ErrTicketNotFound, http.StatusNotFound},
		{"conflict", approval.ErrConflict, http.StatusConflict},
		{"already processed", approval.ErrAlreadyProcessed, http.StatusConflict},
		{"retryable handler failure", handlerFailed, http.StatusUnprocessableEntity},
		{"irreversible handler failure", irreversibleFailed, http.StatusInternalServerError},
		{"rollback failure", rollbackFailed, http.StatusInternalServerError},
		{"unknown failure", errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockDecisionService{
				decideFunc: func(ctx context.Context, req service.DecideRequest) (*service.DecideResult, error) {
					return nil, tt.err
				},
			}
			w := postDecision(newDecisionRouter(svc), "/api/tickets/1/decision", `{"action": "approve"}`)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestDecideTicket_RollbackFailureBodyCarriesBothErrors(t *testing.T) {
	svc := &mockDecisionService{
		decideFunc: func(ctx context.Context, req service.DecideRequest) (*service.DecideResult, error) {
			return nil, &approval.RollbackFailedError{
				TicketID:    1,
				HandlerErr:  errors.New("allocation record missing"),
				RollbackErr: errors.New("database is locked"),
			}
		},
	}
	w := postDecision(newDecisionRouter(svc), "/api/tickets/1/decision", `{"action": "approve"}`)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "allocation record missing")
	assert.Contains(t, body, "database is locked")
}

func TestDecideTicket_Success(t *testing.T) {
	var got service.DecideRequest
	svc := &mockDecisionService{
		decideFunc: func(ctx context.Context, req service.DecideRequest) (*service.DecideResult, error) {
			got = req
			return &service.DecideResult{
				Success:          true,
				Message:          "ticket 7 approved",
				NotificationData: map[string]interface{}{"allocation_id": 100},
			}, nil
		},
	}
	w := postDecision(newDecisionRouter(svc), "/api/tickets/7/decision", `{"action": "approve", "notes": "ok"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(7), got.TicketID)
	assert.Equal(t, "approve", got.Action)
	assert.Equal(t, "ok", got.Notes)
	require.NotNil(t, got.Actor)
	assert.Equal(t, int64(2), got.Actor.ID)
	assert.Contains(t, w.Body.String(), "allocation_id")
}

func TestDecideTicket_BadInput(t *testing.T) {
	r := newDecisionRouter(&mockDecisionService{})

	tests := []struct {
		name string
		path string
		body string
	}{
		{"non-numeric id", "/api/tickets/abc/decision", `{"action": "approve"}`},
		{"zero id", "/api/tickets/0/decision", `{"action": "approve"}`},
		{"missing action", "/api/tickets/1/decision", `{"notes": "x"}`},
		{"malformed body", "/api/tickets/1/decision", `{"action": `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postDecision(r, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestListTickets_InvalidStatusFilter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandlers(&mockDecisionService{}, nil, testLogger{})
	r := gin.New()
	r.GET("/api/tickets", h.ListTickets)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tickets?status=resolved", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListTickets_ClampsLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var gotLimit int
	svc := &mockDecisionService{
		listFunc: func(ctx context.Context, status string, limit, offset int) ([]*entity.ApprovalTicket, error) {
			gotLimit = limit
			return nil, nil
		},
	}
	h := NewHandlers(svc, nil, testLogger{})
	r := gin.New()
	r.GET("/api/tickets", h.ListTickets)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tickets?limit=5000", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 20, gotLimit)
}

func signedToken(t *testing.T, secret string, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

type mockUserStore struct {
	users map[int64]*entity.User
}

func (m *mockUserStore) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	return m.users[id], nil
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return nil, nil
}

func (m *mockUserStore) Create(ctx context.Context, user *entity.User) error { return nil }

func (m *mockUserStore) Anonymize(ctx context.Context, id int64, email, fullName string, at time.Time) error {
	return nil
}

func TestStaffAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	const secret = "test-secret"
	users := &mockUserStore{users: map[int64]*entity.User{
		1: {ID: 1, IsStaff: true, IsActive: true},
		2: {ID: 2, IsStaff: false, IsActive: true},
		3: {ID: 3, IsStaff: true, IsActive: false},
	}}

	r := gin.New()
	r.GET("/protected", StaffAuth(secret, users, testLogger{}), func(c *gin.Context) {
		c.JSON(http.StatusOK, Response{Success: true})
	})

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"staff user", "Bearer " + signedToken(t, secret, "1"), http.StatusOK},
		{"non-staff user", "Bearer " + signedToken(t, secret, "2"), http.StatusForbidden},
		{"inactive user", "Bearer " + signedToken(t, secret, "3"), http.StatusUnauthorized},
		{"unknown user", "Bearer " + signedToken(t, secret, "99"), http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signedToken(t, "other-secret", "1"), http.StatusUnauthorized},
		{"no header", "", http.StatusUnauthorized},
		{"not a bearer token", "Basic abc", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
