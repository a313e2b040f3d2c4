package handler

import (
	"context"
	"testing"
	"time"

	"github.com/crestbridge/ir-portal/internal/domain/entity"
)

func TestAccessExtension_ExtendsFromCurrentExpiry(t *testing.T) {
	// Grant that still has five days left. The extension window is added to
	// that expiry, not to the approval time.
	currentExpiry := time.Now().Add(5 * 24 * time.Hour).Truncate(time.Second)
	accessRepo := &mockAccessRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.DataRoomAccess, error) {
			return &entity.DataRoomAccess{ID: id, UserID: 3, DealID: 9, ExpiresAt: currentExpiry}, nil
		},
	}
	h := NewAccessExtensionHandler(accessRepo, noopLogger{})

	ticket := &entity.ApprovalTicket{ID: 1, EntityType: entity.EntityDataRoomAccessExtension, EntityID: 12}
	outcome, err := h.Approve(context.Background(), ticket, &entity.User{ID: 2})
	if err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	want := currentExpiry.Add(extensionWindow)
	if !accessRepo.setExpiryAt.Equal(want) {
		t.Errorf("new expiry = %v, want %v", accessRepo.setExpiryAt, want)
	}
	if outcome.NotificationData["access_id"] != int64(12) {
		t.Errorf("outcome access_id = %v", outcome.NotificationData["access_id"])
	}
}

func TestAccessExtension_ExpiredGrantStillExtendsFromExpiry(t *testing.T) {
	// An already-lapsed grant extends from its old expiry; a week-old lapse
	// yields an expiry in the near past, which staff can re-extend.
	lapsed := time.Now().Add(-10 * 24 * time.Hour).Truncate(time.Second)
	accessRepo := &mockAccessRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.DataRoomAccess, error) {
			return &entity.DataRoomAccess{ID: id, ExpiresAt: lapsed}, nil
		},
	}
	h := NewAccessExtensionHandler(accessRepo, noopLogger{})

	ticket := &entity.ApprovalTicket{ID: 1, EntityType: entity.EntityDataRoomAccessExtension, EntityID: 12}
	if _, err := h.Approve(context.Background(), ticket, &entity.User{ID: 2}); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if want := lapsed.Add(extensionWindow); !accessRepo.setExpiryAt.Equal(want) {
		t.Errorf("new expiry = %v, want %v", accessRepo.setExpiryAt, want)
	}
}

func TestAccessExtension_MissingGrant(t *testing.T) {
	h := NewAccessExtensionHandler(&mockAccessRepo{}, noopLogger{})

	ticket := &entity.ApprovalTicket{ID: 1, EntityType: entity.EntityDataRoomAccessExtension, EntityID: 99}
	if _, err := h.Approve(context.Background(), ticket, &entity.User{ID: 2}); err == nil {
		t.Fatal("Approve() = nil for missing grant")
	}
}

func TestAccessExtension_RejectIsNoOp(t *testing.T) {
	accessRepo := &mockAccessRepo{}
	h := NewAccessExtensionHandler(accessRepo, noopLogger{})

	ticket := &entity.ApprovalTicket{ID: 1, EntityType: entity.EntityDataRoomAccessExtension, EntityID: 12}
	if err := h.Reject(context.Background(), ticket, &entity.User{ID: 2}); err != nil {
		t.Fatalf("Reject() error = %v", err)
	}
	if accessRepo.setExpiryN != 0 {
		t.Error("Reject() must not touch the grant")
	}
}
