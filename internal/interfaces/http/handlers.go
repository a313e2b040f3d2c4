package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/crestbridge/ir-portal/internal/application/service"
	"github.com/crestbridge/ir-portal/internal/domain/approval"
	"github.com/crestbridge/ir-portal/internal/domain/entity"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	decisionService service.DecisionService
	reportService   service.ReportService
	logger          Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	decisionService service.DecisionService,
	reportService service.ReportService,
	logger Logger,
) *Handlers {
	return &Handlers{
		decisionService: decisionService,
		reportService:   reportService,
		logger:          logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// DecideTicketRequest is the decision body for a pending ticket.
type DecideTicketRequest struct {
	Action          string `json:"action" binding:"required"`
	Notes           string `json:"notes"`
	RejectionReason string `json:"rejection_reason"`
}

// DecideTicketResponse mirrors the engine's structured result.
type DecideTicketResponse struct {
	Success          bool                   `json:"success"`
	Message          string                 `json:"message,omitempty"`
	Error            string                 `json:"error,omitempty"`
	NotificationData map[string]interface{} `json:"notification_data,omitempty"`
}

// ListTicketsRequest represents query parameters for listing tickets
type ListTicketsRequest struct {
	Status string `form:"status"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// DecideTicket handles POST /api/tickets/:id/decision.
//
// The engine's error taxonomy maps onto status codes: invalid input 400,
// unknown ticket 404, lost race or already-resolved 409, handler failure
// with the ticket back in pending 422, and rollback failure 500 with an
// operator-facing message carrying both errors.
func (h *Handlers) DecideTicket(c *gin.Context) {
	ticketID, ok := h.ticketIDParam(c)
	if !ok {
		return
	}

	var req DecideTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	result, err := h.decisionService.Decide(c.Request.Context(), service.DecideRequest{
		TicketID:        ticketID,
		Action:          req.Action,
		Notes:           req.Notes,
		RejectionReason: req.RejectionReason,
		Actor:           actorFrom(c),
	})
	if err != nil {
		h.respondDecisionError(c, ticketID, err)
		return
	}

	c.JSON(http.StatusOK, DecideTicketResponse{
		Success:          result.Success,
		Message:          result.Message,
		NotificationData: result.NotificationData,
	})
}

// respondDecisionError translates an engine error into a status code.
func (h *Handlers) respondDecisionError(c *gin.Context, ticketID int64, err error) {
	var handlerErr *approval.HandlerFailedError
	var rollbackErr *approval.RollbackFailedError

	switch {
	case errors.Is(err, approval.ErrInvalidAction):
		c.JSON(http.StatusBadRequest, DecideTicketResponse{Error: err.Error()})

	case errors.Is(err, approval.ErrTicketNotFound):
		c.JSON(http.StatusNotFound, DecideTicketResponse{Error: "ticket not found"})

	case errors.Is(err, approval.ErrConflict), errors.Is(err, approval.ErrAlreadyProcessed):
		c.JSON(http.StatusConflict, DecideTicketResponse{Error: err.Error()})

	case errors.As(err, &rollbackErr):
		h.logger.Error("Decision left ticket in inconsistent state",
			"ticket_id", ticketID,
			"handler_error", rollbackErr.HandlerErr.Error(),
			"rollback_error", rollbackErr.RollbackErr.Error())
		c.JSON(http.StatusInternalServerError, DecideTicketResponse{Error: rollbackErr.Error()})

	case errors.As(err, &handlerErr):
		status := http.StatusUnprocessableEntity
		if !handlerErr.Retryable {
			status = http.StatusInternalServerError
		}
		c.JSON(status, DecideTicketResponse{Error: handlerErr.Error()})

	default:
		h.logger.Error("Decision failed", "ticket_id", ticketID, "error", err)
		c.JSON(http.StatusInternalServerError, DecideTicketResponse{Error: "internal error"})
	}
}

// DeleteTicket handles DELETE /api/tickets/:id. Soft delete only; it is
// unrelated to the decision state machine.
func (h *Handlers) DeleteTicket(c *gin.Context) {
	ticketID, ok := h.ticketIDParam(c)
	if !ok {
		return
	}

	if err := h.decisionService.SoftDelete(c.Request.Context(), ticketID, actorFrom(c)); err != nil {
		if errors.Is(err, approval.ErrTicketNotFound) {
			c.JSON(http.StatusNotFound, Response{Success: false, Error: "ticket not found"})
			return
		}
		h.logger.Error("Failed to delete ticket", "ticket_id", ticketID, "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to delete ticket"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// ListTickets handles GET /api/tickets
func (h *Handlers) ListTickets(c *gin.Context) {
	var req ListTicketsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid query parameters",
		})
		return
	}

	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}
	if req.Offset < 0 {
		req.Offset = 0
	}
	if req.Status != "" &&
		req.Status != entity.TicketStatusPending &&
		req.Status != entity.TicketStatusApproved &&
		req.Status != entity.TicketStatusRejected {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid status filter",
		})
		return
	}

	tickets, err := h.decisionService.ListTickets(c.Request.Context(), req.Status, req.Limit, req.Offset)
	if err != nil {
		h.logger.Error("Failed to list tickets", "error", err)
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to retrieve tickets",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    tickets,
	})
}

// ApprovalReport handles GET /api/reports/approvals.xlsx. Optional from/to
// query parameters are RFC 3339; the default window is the last 30 days.
func (h *Handlers) ApprovalReport(c *gin.Context) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -30)

	if v := c.Query("from"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid from parameter"})
			return
		}
		from = parsed
	}
	if v := c.Query("to"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid to parameter"})
			return
		}
		to = parsed
	}
	if !from.Before(to) {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "from must precede to"})
		return
	}

	content, err := h.reportService.ApprovalActivityReport(c.Request.Context(), from, to)
	if err != nil {
		h.logger.Error("Failed to build approval report", "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to build report"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="approvals.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", content)
}

// ticketIDParam parses the :id path parameter, writing a 400 on failure.
func (h *Handlers) ticketIDParam(c *gin.Context) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid ticket ID",
		})
		return 0, false
	}
	return id, true
}
