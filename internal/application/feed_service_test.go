package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "github.com/oksasatya/go-ddd-social/internal/application"
	"github.com/oksasatya/go-ddd-social/internal/domain/errs"
)

func ids(views []app.PostView) []string {
	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.ID)
	}
	return out
}

func TestFeeds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	f.posts.WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	})

	alice, bob, carol := f.user(t, "alice"), f.user(t, "bob"), f.user(t, "carol")
	a1 := f.post(t, alice, "a1")
	b1 := f.post(t, bob, "b1")
	c1 := f.post(t, carol, "c1")
	a2 := f.post(t, alice, "a2")

	t.Run("global newest first", func(t *testing.T) {
		got, err := f.feeds.GlobalFeed(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{a2.ID, c1.ID, b1.ID, a1.ID}, ids(got))
		require.NotNil(t, got[0].User)
		assert.Equal(t, "alice", got[0].User.Username)
	})

	t.Run("author", func(t *testing.T) {
		got, err := f.feeds.AuthorFeed(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, []string{a2.ID, a1.ID}, ids(got))

		_, err = f.feeds.AuthorFeed(ctx, "nobody")
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})

	t.Run("following empty", func(t *testing.T) {
		got, err := f.feeds.FollowingFeed(ctx, carol.ID)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("following", func(t *testing.T) {
		_, err := f.graph.FollowOrUnfollow(ctx, carol.ID, alice.ID)
		require.NoError(t, err)
		_, err = f.graph.FollowOrUnfollow(ctx, carol.ID, bob.ID)
		require.NoError(t, err)

		got, err := f.feeds.FollowingFeed(ctx, carol.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{a2.ID, b1.ID, a1.ID}, ids(got), "own posts are excluded")
	})

	t.Run("liked", func(t *testing.T) {
		for _, id := range []string{c1.ID, a1.ID} {
			_, err := f.interactions.ToggleLike(ctx, bob.ID, id)
			require.NoError(t, err)
		}
		got, err := f.feeds.LikedFeed(ctx, bob.ID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{a1.ID, c1.ID}, ids(got))

		none, err := f.feeds.LikedFeed(ctx, alice.ID)
		require.NoError(t, err)
		assert.Empty(t, none)

		_, err = f.feeds.LikedFeed(ctx, "nobody")
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})

	t.Run("empty store", func(t *testing.T) {
		empty := newFixture(t)
		got, err := empty.feeds.GlobalFeed(ctx)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}
