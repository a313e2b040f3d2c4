package service

import (
	"context"
	"encoding/json"

	"github.com/crestbridge/ir-portal/internal/application/port"
	"github.com/crestbridge/ir-portal/internal/domain/entity"
)

// NotificationService inserts user-facing notification records. Delivery is
// fire-and-forget from the engine's perspective.
type NotificationService interface {
	Notify(ctx context.Context, userID int64, title, message, notifType string, metadata map[string]interface{})
}

type notificationServiceImpl struct {
	repo   port.NotificationRepository
	logger Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(repo port.NotificationRepository, logger Logger) NotificationService {
	return &notificationServiceImpl{
		repo:   repo,
		logger: logger,
	}
}

func (s *notificationServiceImpl) Notify(ctx context.Context, userID int64, title, message, notifType string, metadata map[string]interface{}) {
	n := &entity.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    notifType,
	}
	if len(metadata) > 0 {
		if raw, err := json.Marshal(metadata); err == nil {
			n.Metadata = string(raw)
		}
	}

	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error("Notification insert failed",
			"user_id", userID,
			"type", notifType,
			"error", err,
		)
		return
	}

	s.logger.Info("Notification queued", "user_id", userID, "type", notifType)
}
