// Package memory implements the stores in process. Every method is atomic
// with respect to the others, matching the single-statement guarantees of
// the postgres implementation.
package memory

import (
	"context"
	"math/rand/v2"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-ddd-social/internal/domain/entity"
	"github.com/oksasatya/go-ddd-social/internal/domain/errs"
	"github.com/oksasatya/go-ddd-social/internal/domain/repository"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*entity.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*entity.User)}
}

func cloneUser(u *entity.User) *entity.User {
	c := *u
	c.Followers = slices.Clone(u.Followers)
	c.Following = slices.Clone(u.Following)
	c.LikedPosts = slices.Clone(u.LikedPosts)
	return &c
}

func (r *UserRepository) uniqueLocked(id, username, email string) error {
	for _, u := range r.users {
		if u.ID == id {
			continue
		}
		if strings.EqualFold(u.Username, username) {
			return errs.Conflict("username is already taken")
		}
		if strings.EqualFold(u.Email, email) {
			return errs.Conflict("email is already taken")
		}
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	if err := ctx.Err(); err != nil {
		return errs.Store(err, "create user")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.uniqueLocked("", u.Username, u.Email); err != nil {
		return err
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	if u.Followers == nil {
		u.Followers = []string{}
	}
	if u.Following == nil {
		u.Following = []string{}
	}
	if u.LikedPosts == nil {
		u.LikedPosts = []string{}
	}
	r.users[u.ID] = cloneUser(u)
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, errs.NotFound("user not found")
	}
	return cloneUser(u), nil
}

func (r *UserRepository) GetByIDs(ctx context.Context, ids []string) ([]*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.User, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if u, ok := r.users[id]; ok {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

func (r *UserRepository) findLocked(match func(*entity.User) bool) (*entity.User, error) {
	for _, u := range r.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, errs.NotFound("user not found")
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.findLocked(func(u *entity.User) bool { return strings.EqualFold(u.Username, username) })
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.findLocked(func(u *entity.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.users[u.ID]
	if !ok {
		return errs.NotFound("user not found")
	}
	if err := r.uniqueLocked(u.ID, u.Username, u.Email); err != nil {
		return err
	}
	u.UpdatedAt = time.Now().UTC()
	cur.Username = u.Username
	cur.Email = u.Email
	cur.Password = u.Password
	cur.FullName = u.FullName
	cur.Bio = u.Bio
	cur.Link = u.Link
	cur.ProfileImg = u.ProfileImg
	cur.CoverImg = u.CoverImg
	cur.UpdatedAt = u.UpdatedAt
	return nil
}

func (r *UserRepository) setPtr(u *entity.User, field entity.UserSetField) *[]string {
	switch field {
	case entity.UserFollowers:
		return &u.Followers
	case entity.UserFollowing:
		return &u.Following
	case entity.UserLikedPosts:
		return &u.LikedPosts
	}
	return nil
}

func (r *UserRepository) AddToSet(ctx context.Context, userID string, field entity.UserSetField, value string) error {
	if err := ctx.Err(); err != nil {
		return errs.Store(err, "add to %s", field)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return errs.NotFound("user not found")
	}
	set := r.setPtr(u, field)
	if set == nil {
		return errs.Validation("unknown set field %q", field)
	}
	if !slices.Contains(*set, value) {
		*set = append(*set, value)
	}
	return nil
}

func (r *UserRepository) RemoveFromSet(ctx context.Context, userID string, field entity.UserSetField, value string) error {
	if err := ctx.Err(); err != nil {
		return errs.Store(err, "remove from %s", field)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return errs.NotFound("user not found")
	}
	set := r.setPtr(u, field)
	if set == nil {
		return errs.Validation("unknown set field %q", field)
	}
	*set = slices.DeleteFunc(*set, func(v string) bool { return v == value })
	return nil
}

func (r *UserRepository) Sample(ctx context.Context, excludeID string, n int) ([]*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	eligible := make([]*entity.User, 0, len(r.users))
	for id, u := range r.users {
		if id != excludeID {
			eligible = append(eligible, u)
		}
	}
	rand.Shuffle(len(eligible), func(i, j int) { eligible[i], eligible[j] = eligible[j], eligible[i] })
	if n < len(eligible) {
		eligible = eligible[:n]
	}
	out := make([]*entity.User, 0, len(eligible))
	for _, u := range eligible {
		out = append(out, cloneUser(u))
	}
	return out, nil
}

func (r *UserRepository) ListPage(ctx context.Context, afterID string, limit int) ([]*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.users))
	for id := range r.users {
		if id > afterID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]*entity.User, 0, len(ids))
	for _, id := range ids {
		out = append(out, cloneUser(r.users[id]))
	}
	return out, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
