package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-ddd-social/internal/domain/entity"
	"github.com/oksasatya/go-ddd-social/internal/domain/errs"
	"github.com/oksasatya/go-ddd-social/internal/domain/repository"
)

type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	if !isUUID(n.From) || !isUUID(n.To) {
		return errs.NotFound("user not found")
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO notifications (type, from_user, to_user)
		VALUES ($1, $2, $3)
		RETURNING id::text, read, created_at, updated_at
	`, string(n.Type), n.From, n.To)
	return mapErr(row.Scan(&n.ID, &n.Read, &n.CreatedAt, &n.UpdatedAt), "notification")
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, userID string) ([]*entity.Notification, error) {
	if !isUUID(userID) {
		return []*entity.Notification{}, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, type, from_user::text, to_user::text, read, created_at, updated_at
		FROM notifications
		WHERE to_user = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, mapErr(err, "notifications")
	}
	defer rows.Close()

	out := make([]*entity.Notification, 0)
	for rows.Next() {
		n := &entity.Notification{}
		var typ string
		if err := rows.Scan(&n.ID, &typ, &n.From, &n.To, &n.Read, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, mapErr(err, "notifications")
		}
		n.Type = entity.NotificationType(typ)
		out = append(out, n)
	}
	return out, mapErr(rows.Err(), "notifications")
}

func (r *NotificationRepository) MarkRead(ctx context.Context, userID string, ids []string) (int64, error) {
	ids = onlyUUIDs(ids)
	if !isUUID(userID) || len(ids) == 0 {
		return 0, nil
	}
	res, err := r.pool.Exec(ctx, `
		UPDATE notifications SET read = TRUE, updated_at = now()
		WHERE to_user = $1 AND id = ANY($2::uuid[]) AND NOT read
	`, userID, ids)
	if err != nil {
		return 0, mapErr(err, "notifications")
	}
	return res.RowsAffected(), nil
}

func (r *NotificationRepository) DeleteByRecipient(ctx context.Context, userID string) (int64, error) {
	if !isUUID(userID) {
		return 0, nil
	}
	res, err := r.pool.Exec(ctx, `DELETE FROM notifications WHERE to_user = $1`, userID)
	if err != nil {
		return 0, mapErr(err, "notifications")
	}
	return res.RowsAffected(), nil
}

var _ repository.NotificationRepository = (*NotificationRepository)(nil)
