package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-social/internal/domain/entity"
)

// NotificationRepository is the Notification Store.
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	// ListByRecipient returns notifications addressed to userID, newest first.
	ListByRecipient(ctx context.Context, userID string) ([]*entity.Notification, error)
	// MarkRead flags the given notifications of userID as read and returns how many changed.
	MarkRead(ctx context.Context, userID string, ids []string) (int64, error)
	// DeleteByRecipient removes every notification addressed to userID.
	DeleteByRecipient(ctx context.Context, userID string) (int64, error)
}
