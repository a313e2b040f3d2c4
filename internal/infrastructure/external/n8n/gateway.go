package n8n

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/crestbridge/ir-portal/internal/application/port"
	"go.uber.org/zap"
)

// maxResponseBytes caps how much of a workflow response we read. Generated
// agreements are single documents, well under this.
const maxResponseBytes = 32 << 20

// Config holds the workflow engine connection settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Gateway implements port.WorkflowGateway against an n8n instance. Each
// workflow is exposed as a webhook named by its key.
type Gateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

// NewGateway creates a workflow gateway adapter
func NewGateway(cfg Config, logger *zap.Logger) *Gateway {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Gateway{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type triggerRequest struct {
	Payload    map[string]interface{} `json:"payload,omitempty"`
	EntityType string                 `json:"entity_type"`
	EntityID   int64                  `json:"entity_id"`
	UserID     int64                  `json:"user_id"`
}

type triggerResponse struct {
	Success       bool            `json:"success"`
	WorkflowRunID string          `json:"workflow_run_id"`
	Error         string          `json:"error"`
	Document      json.RawMessage `json:"document"`
	FileReference string          `json:"file_reference"`
}

// Trigger submits a named workflow run and returns its normalized result.
// Document bytes in the response are decoded from whatever encoding the
// workflow produced and checked against the DOCX signature before being
// passed on; a payload that fails either step is dropped, not fatal.
func (g *Gateway) Trigger(ctx context.Context, req port.WorkflowTrigger) (*port.WorkflowResult, error) {
	body, err := json.Marshal(triggerRequest{
		Payload:    req.Payload,
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		UserID:     req.UserID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal trigger request: %w", err)
	}

	url := fmt.Sprintf("%s/webhook/%s", g.baseURL, req.WorkflowKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build trigger request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("workflow request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("workflow %s returned status %d", req.WorkflowKey, resp.StatusCode)
	}

	var out triggerResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("failed to decode workflow response: %w", err)
	}

	if !out.Success {
		errMsg := out.Error
		if errMsg == "" {
			errMsg = "workflow reported failure"
		}
		g.logger.Warn("Workflow run failed",
			zap.String("workflow_key", req.WorkflowKey),
			zap.String("run_id", out.WorkflowRunID),
			zap.String("error", errMsg))
		return &port.WorkflowResult{
			RunID: out.WorkflowRunID,
			Error: errMsg,
		}, nil
	}

	var docBytes []byte
	if len(out.Document) > 0 {
		decoded, err := normalizeDocument(out.Document)
		if err != nil {
			g.logger.Warn("Failed to decode workflow document payload",
				zap.String("workflow_key", req.WorkflowKey),
				zap.String("run_id", out.WorkflowRunID),
				zap.Error(err))
		} else if decoded != nil && !hasDOCXSignature(decoded) {
			g.logger.Warn("Workflow document payload failed signature check",
				zap.String("workflow_key", req.WorkflowKey),
				zap.String("run_id", out.WorkflowRunID),
				zap.Int("size", len(decoded)))
		} else {
			docBytes = decoded
		}
	}

	return port.NewWorkflowResult(out.WorkflowRunID, docBytes, out.FileReference), nil
}

// Verify interface compliance
var _ port.WorkflowGateway = (*Gateway)(nil)
