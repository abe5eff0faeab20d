package application

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/oksasatya/go-ddd-social/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-social/internal/domain/repository"
)

// Hydrator resolves the id references of stored posts into response views.
// Quotes resolve one level deep; missing referents resolve to nil.
type Hydrator struct {
	Users repo.UserRepository
	Posts repo.PostRepository
}

func NewHydrator(users repo.UserRepository, posts repo.PostRepository) *Hydrator {
	return &Hydrator{Users: users, Posts: posts}
}

type idSet struct {
	order []string
	seen  map[string]struct{}
}

func newIDSet() *idSet { return &idSet{seen: make(map[string]struct{})} }

func (s *idSet) add(id string) {
	if id == "" {
		return
	}
	if _, ok := s.seen[id]; ok {
		return
	}
	s.seen[id] = struct{}{}
	s.order = append(s.order, id)
}

func (h *Hydrator) HydratePosts(ctx context.Context, posts []*entity.Post) ([]PostView, error) {
	if len(posts) == 0 {
		return []PostView{}, nil
	}

	authors := newIDSet()
	quoted := newIDSet()
	for _, p := range posts {
		authors.add(p.UserID)
		for _, c := range p.Comments {
			authors.add(c.UserID)
		}
		quoted.add(p.QuotedPostID)
	}

	var (
		users       []*entity.User
		quotedPosts []*entity.Post
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = h.Users.GetByIDs(gctx, authors.order)
		return err
	})
	if len(quoted.order) > 0 {
		g.Go(func() error {
			var err error
			quotedPosts, err = h.Posts.GetByIDs(gctx, quoted.order)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	userByID := make(map[string]*entity.User, len(users))
	for _, u := range users {
		userByID[u.ID] = u
	}
	quotedByID := make(map[string]*entity.Post, len(quotedPosts))
	missing := newIDSet()
	for _, qp := range quotedPosts {
		quotedByID[qp.ID] = qp
		if _, ok := userByID[qp.UserID]; !ok {
			missing.add(qp.UserID)
		}
	}
	if len(missing.order) > 0 {
		extra, err := h.Users.GetByIDs(ctx, missing.order)
		if err != nil {
			return nil, err
		}
		for _, u := range extra {
			userByID[u.ID] = u
		}
	}

	out := make([]PostView, 0, len(posts))
	for _, p := range posts {
		out = append(out, buildPostView(p, userByID, quotedByID))
	}
	return out, nil
}

func (h *Hydrator) HydratePost(ctx context.Context, p *entity.Post) (*PostView, error) {
	views, err := h.HydratePosts(ctx, []*entity.Post{p})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func buildPostView(p *entity.Post, users map[string]*entity.User, quoted map[string]*entity.Post) PostView {
	v := PostView{
		ID:        p.ID,
		Text:      p.Text,
		Img:       p.Img,
		Likes:     nonNil(p.Likes),
		Comments:  make([]CommentView, 0, len(p.Comments)),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if u, ok := users[p.UserID]; ok {
		uv := NewUserView(u)
		v.User = &uv
	}
	for _, c := range p.Comments {
		v.Comments = append(v.Comments, CommentView{
			ID:        c.ID,
			Text:      c.Text,
			User:      newUserSummary(users[c.UserID]),
			CreatedAt: c.CreatedAt,
		})
	}
	if qp, ok := quoted[p.QuotedPostID]; ok {
		v.QuotedPost = &QuotedPostView{
			ID:        qp.ID,
			User:      newUserSummary(users[qp.UserID]),
			Text:      qp.Text,
			Img:       qp.Img,
			Likes:     nonNil(qp.Likes),
			CreatedAt: qp.CreatedAt,
		}
	}
	return v
}
