package application_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-social/config"
	app "github.com/oksasatya/go-ddd-social/internal/application"
	"github.com/oksasatya/go-ddd-social/internal/domain/errs"
	"github.com/oksasatya/go-ddd-social/internal/infrastructure/media"
	"github.com/oksasatya/go-ddd-social/internal/infrastructure/memory"
	"github.com/oksasatya/go-ddd-social/pkg/helpers"
	"github.com/oksasatya/go-ddd-social/pkg/mailer"
	tpl "github.com/oksasatya/go-ddd-social/pkg/mailer/templates"
)

type recordingJobs struct {
	mu   sync.Mutex
	jobs []mailer.EmailJob
}

func (r *recordingJobs) PublishJSON(_ context.Context, body any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, body.(mailer.EmailJob))
	return nil
}

type userFixture struct {
	repo  *memory.UserRepository
	media *flakyMedia
	jobs  *recordingJobs
	svc   *app.UserService
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	f := &userFixture{
		repo:  memory.NewUserRepository(),
		media: &flakyMedia{MemoryStore: media.NewMemoryStore("")},
		jobs:  &recordingJobs{},
	}
	cfg := &config.Config{AppName: "social", AppURL: "https://social.test", MailSendEnabled: true}
	jwt := helpers.NewJWTManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	f.svc = app.NewUserService(f.repo, jwt, nil, f.media, nil, f.jobs, cfg, nil)
	return f
}

func (f *userFixture) signup(t *testing.T, username string) string {
	t.Helper()
	u, err := f.svc.Signup(context.Background(), app.SignupInput{
		FullName: "User " + username,
		Username: username,
		Email:    username + "@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	return u.ID
}

func TestSignup(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture(t)
	f.signup(t, "alice")

	stored, err := f.repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.Password)
	assert.True(t, helpers.CompareHashAndPassword(stored.Password, "secret1"))
	assert.Empty(t, stored.Followers)
	assert.Empty(t, stored.Following)

	require.Len(t, f.jobs.jobs, 1)
	assert.Equal(t, tpl.Welcome, f.jobs.jobs[0].Template)
	assert.Equal(t, "alice@example.com", f.jobs.jobs[0].To)

	tests := []struct {
		name string
		in   app.SignupInput
		kind error
	}{
		{"missing username", app.SignupInput{FullName: "B", Email: "b@example.com", Password: "secret1"}, errs.ErrValidation},
		{"missing full name", app.SignupInput{Username: "b", Email: "b@example.com", Password: "secret1"}, errs.ErrValidation},
		{"bad email", app.SignupInput{FullName: "B", Username: "b", Email: "not-an-email", Password: "secret1"}, errs.ErrValidation},
		{"short password", app.SignupInput{FullName: "B", Username: "b", Email: "b@example.com", Password: "12345"}, errs.ErrValidation},
		{"username taken", app.SignupInput{FullName: "B", Username: "alice", Email: "b@example.com", Password: "secret1"}, errs.ErrConflict},
		{"email taken", app.SignupInput{FullName: "B", Username: "b", Email: "alice@example.com", Password: "secret1"}, errs.ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Signup(ctx, tt.in)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
	_, err = f.repo.GetByUsername(ctx, "b")
	assert.ErrorIs(t, err, errs.ErrNotFound, "rejected signups create nothing")
}

func TestSignupEmailShape(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture(t)

	tests := []struct {
		email string
		ok    bool
	}{
		{"carol@example.com", true},
		{"dave.d+tag@mail.example.org", true},
		{"Erin <erin@example.com>", false},
		{"@example.com", false},
		{"frank@", false},
		{"a@b@example.com", false},
		{"gail @example.com", false},
	}
	for i, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			_, err := f.svc.Signup(ctx, app.SignupInput{
				FullName: "User",
				Username: fmt.Sprintf("user%d", i),
				Email:    tt.email,
				Password: "secret1",
			})
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, errs.ErrValidation)
			}
		})
	}
}

func TestLoginAndTokens(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture(t)
	id := f.signup(t, "alice")

	_, err := f.svc.Authenticate(ctx, "alice", "wrong-pass")
	assert.ErrorIs(t, err, app.ErrInvalidCredentials)
	_, err = f.svc.Authenticate(ctx, "nobody", "secret1")
	assert.ErrorIs(t, err, app.ErrInvalidCredentials)

	u, pair, err := f.svc.Login(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.True(t, pair.RefreshTokenExpiry.After(pair.AccessTokenExpiry))

	claims, err := f.svc.JWT.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.NotEmpty(t, claims.SessionID)

	refreshed, uid, err := f.svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, id, uid)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, _, err = f.svc.Refresh(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, app.ErrInvalidCredentials, "access token is not a refresh token")
}

func TestProfileViews(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture(t)
	id := f.signup(t, "alice")

	me, err := f.svc.Me(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Username)

	p, err := f.svc.GetProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, id, p.ID)

	_, err = f.svc.GetProfile(ctx, "nobody")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("fields and email", func(t *testing.T) {
		f := newUserFixture(t)
		id := f.signup(t, "alice")
		v, err := f.svc.UpdateProfile(ctx, id, app.UpdateProfileInput{Bio: "hi", Link: "https://a.test", Email: "new@example.com"})
		require.NoError(t, err)
		assert.Equal(t, "hi", v.Bio)
		assert.Equal(t, "https://a.test", v.Link)
		assert.Equal(t, "new@example.com", v.Email)
		assert.Equal(t, "User alice", v.FullName, "empty fields keep their value")

		require.Len(t, f.jobs.jobs, 2)
		assert.Equal(t, tpl.ProfileUpdated, f.jobs.jobs[1].Template)
	})

	t.Run("password pair", func(t *testing.T) {
		f := newUserFixture(t)
		id := f.signup(t, "alice")

		_, err := f.svc.UpdateProfile(ctx, id, app.UpdateProfileInput{NewPassword: "another1"})
		assert.ErrorIs(t, err, errs.ErrValidation)
		_, err = f.svc.UpdateProfile(ctx, id, app.UpdateProfileInput{CurrentPassword: "wrong", NewPassword: "another1"})
		assert.ErrorIs(t, err, errs.ErrValidation)
		_, err = f.svc.UpdateProfile(ctx, id, app.UpdateProfileInput{CurrentPassword: "secret1", NewPassword: "abc"})
		assert.ErrorIs(t, err, errs.ErrValidation)

		_, err = f.svc.UpdateProfile(ctx, id, app.UpdateProfileInput{CurrentPassword: "secret1", NewPassword: "another1"})
		require.NoError(t, err)
		_, err = f.svc.Authenticate(ctx, "alice", "another1")
		assert.NoError(t, err)
	})

	t.Run("username conflict", func(t *testing.T) {
		f := newUserFixture(t)
		id := f.signup(t, "alice")
		f.signup(t, "bob")
		_, err := f.svc.UpdateProfile(ctx, id, app.UpdateProfileInput{Username: "bob"})
		assert.ErrorIs(t, err, errs.ErrConflict)
	})

	t.Run("image replacement", func(t *testing.T) {
		f := newUserFixture(t)
		id := f.signup(t, "alice")
		img := &app.ImageUpload{Data: pngBytes, ContentType: "image/png"}

		first, err := f.svc.UpdateProfile(ctx, id, app.UpdateProfileInput{ProfileImg: img})
		require.NoError(t, err)
		require.NotEmpty(t, first.ProfileImg)
		assert.True(t, f.media.Has(first.ProfileImg))

		second, err := f.svc.UpdateProfile(ctx, id, app.UpdateProfileInput{ProfileImg: img, CoverImg: img})
		require.NoError(t, err)
		assert.NotEqual(t, first.ProfileImg, second.ProfileImg)
		assert.NotEmpty(t, second.CoverImg)
		assert.Equal(t, []string{first.ProfileImg}, f.media.deleted)
		assert.False(t, f.media.Has(first.ProfileImg))
		assert.Equal(t, 2, f.media.Len())
	})

	t.Run("upload failure aborts", func(t *testing.T) {
		f := newUserFixture(t)
		id := f.signup(t, "alice")
		f.media.failUpload = true
		_, err := f.svc.UpdateProfile(ctx, id, app.UpdateProfileInput{
			Bio:        "changed",
			ProfileImg: &app.ImageUpload{Data: pngBytes, ContentType: "image/png"},
		})
		assert.ErrorIs(t, err, errs.ErrMediaStore)

		u, err := f.repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, u.Bio)
		assert.Empty(t, u.ProfileImg)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newUserFixture(t)
		_, err := f.svc.UpdateProfile(ctx, "missing", app.UpdateProfileInput{Bio: "x"})
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})
}

func TestSearchUsersWithoutIndex(t *testing.T) {
	f := newUserFixture(t)
	got, err := f.svc.SearchUsers(context.Background(), "alice", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}
