package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-ddd-social/internal/domain/entity"
	"github.com/oksasatya/go-ddd-social/internal/domain/errs"
	"github.com/oksasatya/go-ddd-social/internal/domain/repository"
)

type NotificationRepository struct {
	mu    sync.RWMutex
	seq   int64
	items map[string]*storedNotification
}

type storedNotification struct {
	seq int64
	n   entity.Notification
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{items: make(map[string]*storedNotification)}
}

func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	if err := ctx.Err(); err != nil {
		return errs.Store(err, "create notification")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	n.CreatedAt, n.UpdatedAt = now, now
	r.seq++
	r.items[n.ID] = &storedNotification{seq: r.seq, n: *n}
	return nil
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, userID string) ([]*entity.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matched := make([]*storedNotification, 0)
	for _, sn := range r.items {
		if sn.n.To == userID {
			matched = append(matched, sn)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].seq > matched[j].seq })
	out := make([]*entity.Notification, 0, len(matched))
	for _, sn := range matched {
		n := sn.n
		out = append(out, &n)
	}
	return out, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, userID string, ids []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var changed int64
	for _, sn := range r.items {
		if sn.n.To != userID || sn.n.Read || !slices.Contains(ids, sn.n.ID) {
			continue
		}
		sn.n.Read = true
		sn.n.UpdatedAt = time.Now().UTC()
		changed++
	}
	return changed, nil
}

func (r *NotificationRepository) DeleteByRecipient(ctx context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, sn := range r.items {
		if sn.n.To == userID {
			delete(r.items, id)
			n++
		}
	}
	return n, nil
}

var _ repository.NotificationRepository = (*NotificationRepository)(nil)
