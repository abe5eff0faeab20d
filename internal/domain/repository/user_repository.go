package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-social/internal/domain/entity"
)

// UserRepository is the Identity Store.
//
// AddToSet and RemoveFromSet are single atomic, idempotent membership
// mutations on one record. Update only writes profile fields and the
// credential; it never rewrites a relationship set.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error

	AddToSet(ctx context.Context, userID string, field entity.UserSetField, value string) error
	RemoveFromSet(ctx context.Context, userID string, field entity.UserSetField, value string) error

	// Sample returns up to n users chosen uniformly at random, excluding excludeID.
	Sample(ctx context.Context, excludeID string, n int) ([]*entity.User, error)
	// ListPage returns up to limit users with id > afterID in id order.
	ListPage(ctx context.Context, afterID string, limit int) ([]*entity.User, error)
}
