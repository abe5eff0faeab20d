package application

import (
	"context"

	"github.com/sirupsen/logrus"

	repo "github.com/oksasatya/go-ddd-social/internal/domain/repository"
	"github.com/oksasatya/go-ddd-social/pkg/helpers"
)

type NotificationService struct {
	Notifications repo.NotificationRepository
	Users         repo.UserRepository
	Logger        *logrus.Logger
}

func NewNotificationService(notifications repo.NotificationRepository, users repo.UserRepository, logger *logrus.Logger) *NotificationService {
	if logger == nil {
		logger = helpers.NewNopLogger()
	}
	return &NotificationService{Notifications: notifications, Users: users, Logger: logger}
}

// ListAndMarkRead returns the recipient's notifications as they were before
// this call, then marks exactly those as read. Reading acknowledges.
func (s *NotificationService) ListAndMarkRead(ctx context.Context, recipientID string) ([]NotificationView, error) {
	items, err := s.Notifications.ListByRecipient(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []NotificationView{}, nil
	}

	fromIDs := newIDSet()
	unread := make([]string, 0, len(items))
	for _, n := range items {
		fromIDs.add(n.From)
		if !n.Read {
			unread = append(unread, n.ID)
		}
	}
	actors, err := s.Users.GetByIDs(ctx, fromIDs.order)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*NotificationUser, len(actors))
	for _, u := range actors {
		byID[u.ID] = &NotificationUser{ID: u.ID, Username: u.Username, ProfileImg: u.ProfileImg}
	}

	out := make([]NotificationView, 0, len(items))
	for _, n := range items {
		out = append(out, NotificationView{
			ID:        n.ID,
			Type:      string(n.Type),
			From:      byID[n.From],
			To:        n.To,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}

	if len(unread) > 0 {
		changed, err := s.Notifications.MarkRead(ctx, recipientID, unread)
		if err != nil {
			return nil, err
		}
		s.Logger.WithFields(logrus.Fields{"user_id": recipientID, "marked": changed}).Debug("notifications marked read")
	}
	return out, nil
}

// ClearAll deletes every notification addressed to the recipient. Clearing an
// empty inbox is a no-op.
func (s *NotificationService) ClearAll(ctx context.Context, recipientID string) (int64, error) {
	return s.Notifications.DeleteByRecipient(ctx, recipientID)
}
