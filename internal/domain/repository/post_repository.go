package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-social/internal/domain/entity"
)

// PostFilter selects posts. A nil slice means "no constraint"; callers
// short-circuit empty constraint sets themselves.
type PostFilter struct {
	AuthorIDs []string
	IDs       []string
	// NewestFirst sorts by creation time descending; otherwise the store's
	// natural (insertion) order is kept.
	NewestFirst bool
}

// PostRepository is the Content Store.
type PostRepository interface {
	Create(ctx context.Context, p *entity.Post) error
	GetByID(ctx context.Context, id string) (*entity.Post, error)
	GetByIDs(ctx context.Context, ids []string) ([]*entity.Post, error)
	Find(ctx context.Context, f PostFilter) ([]*entity.Post, error)
	Delete(ctx context.Context, id string) error

	// AddLike and RemoveLike atomically mutate the like set and return its resulting contents.
	AddLike(ctx context.Context, postID, userID string) ([]string, error)
	RemoveLike(ctx context.Context, postID, userID string) ([]string, error)

	// AppendComment atomically appends to the stored comment sequence.
	AppendComment(ctx context.Context, postID string, c entity.Comment) error

	// ListPage returns up to limit posts with id > afterID in id order.
	ListPage(ctx context.Context, afterID string, limit int) ([]*entity.Post, error)
}
