package application_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-social/internal/domain/entity"
	"github.com/oksasatya/go-ddd-social/internal/domain/errs"
)

func TestFollowOrUnfollow_Toggles(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice, bob := f.user(t, "alice"), f.user(t, "bob")

	res, err := f.graph.FollowOrUnfollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, res.Following)
	assert.Equal(t, "User followed successfully", res.Message)
	assert.Equal(t, []string{bob.ID}, f.reload(t, alice.ID).Following)
	assert.Equal(t, []string{alice.ID}, f.reload(t, bob.ID).Followers)

	inbox := f.inboxOf(t, bob.ID)
	require.Len(t, inbox, 1)
	assert.Equal(t, entity.NotificationFollow, inbox[0].Type)
	assert.Equal(t, alice.ID, inbox[0].From)
	assert.False(t, inbox[0].Read)

	res, err = f.graph.FollowOrUnfollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, res.Following)
	assert.Equal(t, "User unfollowed successfully", res.Message)
	assert.Empty(t, f.reload(t, alice.ID).Following)
	assert.Empty(t, f.reload(t, bob.ID).Followers)
	assert.Len(t, f.inboxOf(t, bob.ID), 1, "unfollow does not notify")
}

func TestFollowOrUnfollow_Rejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.user(t, "alice")

	t.Run("self", func(t *testing.T) {
		_, err := f.graph.FollowOrUnfollow(ctx, alice.ID, alice.ID)
		assert.ErrorIs(t, err, errs.ErrSelfReference)
		u := f.reload(t, alice.ID)
		assert.Empty(t, u.Following)
		assert.Empty(t, u.Followers)
		assert.Empty(t, f.inboxOf(t, alice.ID))
	})

	t.Run("missing target", func(t *testing.T) {
		_, err := f.graph.FollowOrUnfollow(ctx, alice.ID, "nobody")
		assert.ErrorIs(t, err, errs.ErrNotFound)
		assert.Empty(t, f.reload(t, alice.ID).Following)
	})

	t.Run("missing actor", func(t *testing.T) {
		_, err := f.graph.FollowOrUnfollow(ctx, "nobody", alice.ID)
		assert.ErrorIs(t, err, errs.ErrNotFound)
		assert.Empty(t, f.reload(t, alice.ID).Followers)
	})
}

func TestFollowOrUnfollow_RepeatedFollowKeepsSingleEdge(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice, bob := f.user(t, "alice"), f.user(t, "bob")

	// simulate an interrupted follow: only the follower side was written
	require.NoError(t, f.users.AddToSet(ctx, bob.ID, entity.UserFollowers, alice.ID))

	res, err := f.graph.FollowOrUnfollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, res.Following)
	assert.Equal(t, []string{alice.ID}, f.reload(t, bob.ID).Followers)
	assert.Equal(t, []string{bob.ID}, f.reload(t, alice.ID).Following)
}

func TestSuggestUsers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	me := f.user(t, "me")
	others := make([]*entity.User, 0, 6)
	for i := 0; i < 6; i++ {
		others = append(others, f.user(t, fmt.Sprintf("u%d", i)))
	}
	for _, u := range others[:3] {
		_, err := f.graph.FollowOrUnfollow(ctx, me.ID, u.ID)
		require.NoError(t, err)
	}

	got, err := f.graph.SuggestUsers(ctx, me.ID)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(got), f.graph.SuggestLimit)
	followed := map[string]bool{others[0].ID: true, others[1].ID: true, others[2].ID: true}
	for _, v := range got {
		assert.NotEqual(t, me.ID, v.ID)
		assert.False(t, followed[v.ID], "already followed user suggested")
	}

	f.graph.SampleSize = 100
	got, err = f.graph.SuggestUsers(ctx, me.ID)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	_, err = f.graph.SuggestUsers(ctx, "nobody")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
