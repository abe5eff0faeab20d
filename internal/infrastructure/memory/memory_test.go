package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-social/internal/domain/entity"
	"github.com/oksasatya/go-ddd-social/internal/domain/errs"
	"github.com/oksasatya/go-ddd-social/internal/domain/repository"
)

func newUser(t *testing.T, r *UserRepository, username string) *entity.User {
	t.Helper()
	u := &entity.User{Username: username, Email: username + "@example.com", FullName: username, Password: "x"}
	require.NoError(t, r.Create(context.Background(), u))
	return u
}

func TestUserRepository_CreateUniqueness(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()
	newUser(t, r, "alice")

	tests := []struct {
		name     string
		username string
		email    string
	}{
		{"same username", "alice", "other@example.com"},
		{"username differs in case", "ALICE", "other@example.com"},
		{"same email different case", "bob", "Alice@Example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Create(ctx, &entity.User{Username: tt.username, Email: tt.email})
			assert.ErrorIs(t, err, errs.ErrConflict)
		})
	}
}

func TestUserRepository_GetByUsernameIgnoresCase(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()
	alice := newUser(t, r, "alice")

	for _, name := range []string{"alice", "Alice", "ALICE"} {
		got, err := r.GetByUsername(ctx, name)
		require.NoError(t, err, name)
		assert.Equal(t, alice.ID, got.ID)
	}
	_, err := r.GetByUsername(ctx, "alicia")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUserRepository_GetReturnsCopies(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()
	u := newUser(t, r, "alice")

	got, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	got.Followers = append(got.Followers, "intruder")

	again, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, again.Followers)

	_, err = r.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUserRepository_SetMutationsAreIdempotent(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()
	u := newUser(t, r, "alice")

	require.NoError(t, r.AddToSet(ctx, u.ID, entity.UserFollowers, "b"))
	require.NoError(t, r.AddToSet(ctx, u.ID, entity.UserFollowers, "b"))
	got, _ := r.GetByID(ctx, u.ID)
	assert.Equal(t, []string{"b"}, got.Followers)

	require.NoError(t, r.RemoveFromSet(ctx, u.ID, entity.UserFollowers, "b"))
	require.NoError(t, r.RemoveFromSet(ctx, u.ID, entity.UserFollowers, "b"))
	got, _ = r.GetByID(ctx, u.ID)
	assert.Empty(t, got.Followers)

	assert.ErrorIs(t, r.AddToSet(ctx, "missing", entity.UserFollowing, "x"), errs.ErrNotFound)
	assert.ErrorIs(t, r.AddToSet(ctx, u.ID, entity.UserSetField("bogus"), "x"), errs.ErrValidation)
}

func TestUserRepository_ConcurrentAddToSet(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()
	u := newUser(t, r, "alice")

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = r.AddToSet(ctx, u.ID, entity.UserFollowers, fmt.Sprintf("f-%d", i))
		}(i)
		go func() {
			defer wg.Done()
			_ = r.AddToSet(ctx, u.ID, entity.UserFollowers, "same")
		}()
	}
	wg.Wait()

	got, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, got.Followers, n+1)
}

func TestUserRepository_UpdateKeepsSets(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()
	u := newUser(t, r, "alice")
	require.NoError(t, r.AddToSet(ctx, u.ID, entity.UserFollowing, "b"))

	// a stale copy without the follow edge must not wipe it
	u.Following = nil
	u.Bio = "hello"
	require.NoError(t, r.Update(ctx, u))

	got, _ := r.GetByID(ctx, u.ID)
	assert.Equal(t, "hello", got.Bio)
	assert.Equal(t, []string{"b"}, got.Following)
}

func TestUserRepository_SampleExcludes(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()
	me := newUser(t, r, "me")
	for i := 0; i < 5; i++ {
		newUser(t, r, fmt.Sprintf("u%d", i))
	}

	got, err := r.Sample(ctx, me.ID, 3)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	for _, u := range got {
		assert.NotEqual(t, me.ID, u.ID)
	}

	all, err := r.Sample(ctx, me.ID, 100)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestUserRepository_ListPage(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()
	for i := 0; i < 5; i++ {
		newUser(t, r, fmt.Sprintf("u%d", i))
	}
	seen := map[string]bool{}
	after := ""
	for {
		page, err := r.ListPage(ctx, after, 2)
		require.NoError(t, err)
		if len(page) == 0 {
			break
		}
		for _, u := range page {
			assert.False(t, seen[u.ID])
			seen[u.ID] = true
		}
		after = page[len(page)-1].ID
	}
	assert.Len(t, seen, 5)
}

func TestPostRepository_FindOrdering(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	r := NewPostRepository().WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})

	var ids []string
	for i, author := range []string{"a", "b", "a"} {
		p := &entity.Post{UserID: author, Text: fmt.Sprintf("p%d", i)}
		require.NoError(t, r.Create(ctx, p))
		ids = append(ids, p.ID)
	}

	newest, err := r.Find(ctx, repository.PostFilter{NewestFirst: true})
	require.NoError(t, err)
	require.Len(t, newest, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{newest[0].ID, newest[1].ID, newest[2].ID})

	byA, err := r.Find(ctx, repository.PostFilter{AuthorIDs: []string{"a"}, NewestFirst: true})
	require.NoError(t, err)
	require.Len(t, byA, 2)
	assert.Equal(t, ids[2], byA[0].ID)

	natural, err := r.Find(ctx, repository.PostFilter{IDs: []string{ids[2], ids[0]}})
	require.NoError(t, err)
	require.Len(t, natural, 2)
	assert.Equal(t, ids[0], natural[0].ID)

	none, err := r.Find(ctx, repository.PostFilter{AuthorIDs: []string{}})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPostRepository_ConcurrentComments(t *testing.T) {
	ctx := context.Background()
	r := NewPostRepository()
	p := &entity.Post{UserID: "a", Text: "hi"}
	require.NoError(t, r.Create(ctx, p))

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := r.AppendComment(ctx, p.ID, entity.Comment{ID: fmt.Sprintf("c%d", i), UserID: "u", Text: "x"})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := r.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, got.Comments, n)

	assert.ErrorIs(t, r.AppendComment(ctx, "missing", entity.Comment{}), errs.ErrNotFound)
}

func TestPostRepository_LikesReturnResultingSet(t *testing.T) {
	ctx := context.Background()
	r := NewPostRepository()
	p := &entity.Post{UserID: "a", Text: "hi"}
	require.NoError(t, r.Create(ctx, p))

	likes, err := r.AddLike(ctx, p.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, likes)

	likes, err = r.AddLike(ctx, p.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, likes)

	likes, err = r.RemoveLike(ctx, p.ID, "u1")
	require.NoError(t, err)
	assert.Empty(t, likes)

	require.NoError(t, r.Delete(ctx, p.ID))
	_, err = r.AddLike(ctx, p.ID, "u1")
	assert.ErrorIs(t, err, errs.ErrNotFound)
	assert.ErrorIs(t, r.Delete(ctx, p.ID), errs.ErrNotFound)
}

func TestNotificationRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	r := NewNotificationRepository()
	for i := 0; i < 3; i++ {
		require.NoError(t, r.Create(ctx, &entity.Notification{Type: entity.NotificationFollow, From: fmt.Sprintf("f%d", i), To: "me"}))
	}
	require.NoError(t, r.Create(ctx, &entity.Notification{Type: entity.NotificationLike, From: "x", To: "other"}))

	list, err := r.ListByRecipient(ctx, "me")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "f2", list[0].From, "newest first")

	changed, err := r.MarkRead(ctx, "me", []string{list[0].ID, list[1].ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, changed)

	changed, err = r.MarkRead(ctx, "other", []string{list[2].ID})
	require.NoError(t, err)
	assert.Zero(t, changed, "cannot mark someone else's notification")

	deleted, err := r.DeleteByRecipient(ctx, "me")
	require.NoError(t, err)
	assert.EqualValues(t, 3, deleted)

	deleted, err = r.DeleteByRecipient(ctx, "me")
	require.NoError(t, err)
	assert.Zero(t, deleted)

	rest, _ := r.ListByRecipient(ctx, "other")
	assert.Len(t, rest, 1)
}
