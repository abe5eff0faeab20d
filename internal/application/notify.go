package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-social/internal/domain/entity"
	"github.com/oksasatya/go-ddd-social/internal/domain/errs"
	repo "github.com/oksasatya/go-ddd-social/internal/domain/repository"
	"github.com/oksasatya/go-ddd-social/pkg/metrics"
)

// emitNotification records a Follow or Like notification. The edge writes
// that precede it are already committed, so a failure here is logged with
// enough context for the caller to retry the notification alone.
func emitNotification(ctx context.Context, store repo.NotificationRepository, logger *logrus.Logger, typ entity.NotificationType, from, to string) error {
	n := &entity.Notification{Type: typ, From: from, To: to}
	if err := store.Create(ctx, n); err != nil {
		logger.WithError(err).WithFields(logrus.Fields{"type": typ, "from": from, "to": to}).Error("create notification failed")
		return errs.Store(err, "create notification")
	}
	metrics.NotificationsEmitted.WithLabelValues(string(typ)).Inc()
	return nil
}
