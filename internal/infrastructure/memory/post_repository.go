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

type storedPost struct {
	seq  int64
	post *entity.Post
}

type PostRepository struct {
	mu    sync.RWMutex
	seq   int64
	posts map[string]*storedPost
	// now is swappable so tests can control creation order.
	now func() time.Time
}

func NewPostRepository() *PostRepository {
	return &PostRepository{posts: make(map[string]*storedPost), now: func() time.Time { return time.Now().UTC() }}
}

// WithClock replaces the timestamp source.
func (r *PostRepository) WithClock(now func() time.Time) *PostRepository {
	r.now = now
	return r
}

func clonePost(p *entity.Post) *entity.Post {
	c := *p
	c.Likes = slices.Clone(p.Likes)
	c.Comments = slices.Clone(p.Comments)
	return &c
}

func (r *PostRepository) Create(ctx context.Context, p *entity.Post) error {
	if err := ctx.Err(); err != nil {
		return errs.Store(err, "create post")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := r.now()
	p.CreatedAt, p.UpdatedAt = now, now
	if p.Likes == nil {
		p.Likes = []string{}
	}
	if p.Comments == nil {
		p.Comments = []entity.Comment{}
	}
	r.seq++
	r.posts[p.ID] = &storedPost{seq: r.seq, post: clonePost(p)}
	return nil
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*entity.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sp, ok := r.posts[id]
	if !ok {
		return nil, errs.NotFound("post not found")
	}
	return clonePost(sp.post), nil
}

// sortedLocked returns stored posts matching keep, in insertion order.
func (r *PostRepository) sortedLocked(keep func(*entity.Post) bool) []*storedPost {
	out := make([]*storedPost, 0, len(r.posts))
	for _, sp := range r.posts {
		if keep(sp.post) {
			out = append(out, sp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

func (r *PostRepository) GetByIDs(ctx context.Context, ids []string) ([]*entity.Post, error) {
	return r.Find(ctx, repository.PostFilter{IDs: ids})
}

func (r *PostRepository) Find(ctx context.Context, f repository.PostFilter) ([]*entity.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.Store(err, "find posts")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	matched := r.sortedLocked(func(p *entity.Post) bool {
		if f.AuthorIDs != nil && !slices.Contains(f.AuthorIDs, p.UserID) {
			return false
		}
		if f.IDs != nil && !slices.Contains(f.IDs, p.ID) {
			return false
		}
		return true
	})
	if f.NewestFirst {
		sort.SliceStable(matched, func(i, j int) bool {
			a, b := matched[i], matched[j]
			if !a.post.CreatedAt.Equal(b.post.CreatedAt) {
				return a.post.CreatedAt.After(b.post.CreatedAt)
			}
			return a.seq > b.seq
		})
	}
	out := make([]*entity.Post, 0, len(matched))
	for _, sp := range matched {
		out = append(out, clonePost(sp.post))
	}
	return out, nil
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return errs.NotFound("post not found")
	}
	delete(r.posts, id)
	return nil
}

func (r *PostRepository) AddLike(ctx context.Context, postID, userID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.Store(err, "add like")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	sp, ok := r.posts[postID]
	if !ok {
		return nil, errs.NotFound("post not found")
	}
	if !slices.Contains(sp.post.Likes, userID) {
		sp.post.Likes = append(sp.post.Likes, userID)
	}
	return slices.Clone(sp.post.Likes), nil
}

func (r *PostRepository) RemoveLike(ctx context.Context, postID, userID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.Store(err, "remove like")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	sp, ok := r.posts[postID]
	if !ok {
		return nil, errs.NotFound("post not found")
	}
	sp.post.Likes = slices.DeleteFunc(sp.post.Likes, func(v string) bool { return v == userID })
	return slices.Clone(sp.post.Likes), nil
}

func (r *PostRepository) AppendComment(ctx context.Context, postID string, c entity.Comment) error {
	if err := ctx.Err(); err != nil {
		return errs.Store(err, "append comment")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	sp, ok := r.posts[postID]
	if !ok {
		return errs.NotFound("post not found")
	}
	sp.post.Comments = append(sp.post.Comments, c)
	sp.post.UpdatedAt = r.now()
	return nil
}

func (r *PostRepository) ListPage(ctx context.Context, afterID string, limit int) ([]*entity.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.posts))
	for id := range r.posts {
		if id > afterID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]*entity.Post, 0, len(ids))
	for _, id := range ids {
		out = append(out, clonePost(r.posts[id].post))
	}
	return out, nil
}

var _ repository.PostRepository = (*PostRepository)(nil)
