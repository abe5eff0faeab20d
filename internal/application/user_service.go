package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-social/config"
	"github.com/oksasatya/go-ddd-social/internal/domain/entity"
	"github.com/oksasatya/go-ddd-social/internal/domain/errs"
	repo "github.com/oksasatya/go-ddd-social/internal/domain/repository"
	"github.com/oksasatya/go-ddd-social/pkg/helpers"
	"github.com/oksasatya/go-ddd-social/pkg/mailer"
	tpl "github.com/oksasatya/go-ddd-social/pkg/mailer/templates"
	"github.com/oksasatya/go-ddd-social/pkg/validation"
)

const MinPasswordLength = 6

// publishTimeout bounds the broker confirm wait on the request path.
const publishTimeout = 3 * time.Second

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserService covers accounts: signup, login, sessions and profile edits.
// It never touches relationship sets.
type UserService struct {
	Repo   repo.UserRepository
	JWT    *helpers.JWTManager
	Redis  *redis.Client
	Media  MediaStore
	Index  UserIndexer
	Jobs   JobPublisher
	Cfg    *config.Config
	Logger *logrus.Logger
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func NewUserService(users repo.UserRepository, jwt *helpers.JWTManager, rdb *redis.Client, media MediaStore, index UserIndexer, jobs JobPublisher, cfg *config.Config, logger *logrus.Logger) *UserService {
	if logger == nil {
		logger = helpers.NewNopLogger()
	}
	return &UserService{Repo: users, JWT: jwt, Redis: rdb, Media: media, Index: index, Jobs: jobs, Cfg: cfg, Logger: logger}
}

type SignupInput struct {
	FullName string
	Username string
	Email    string
	Password string
}

func hashPassword(plain string) (string, error) {
	hash, err := helpers.HashPassword(plain)
	if errors.Is(err, helpers.ErrPasswordTooLong) {
		return "", errs.Validation("password must be at most 72 bytes long")
	}
	if err != nil {
		return "", errs.Store(err, "hash password")
	}
	return hash, nil
}

// Signup creates an account. It does not issue tokens; callers follow with IssueTokens.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*entity.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)
	if in.Username == "" || in.FullName == "" {
		return nil, errs.Validation("full name and username are required")
	}
	if !validation.Email(in.Email) {
		return nil, errs.Validation("invalid email format")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, errs.Validation("password must be at least %d characters long", MinPasswordLength)
	}
	if _, err := s.Repo.GetByUsername(ctx, in.Username); err == nil {
		return nil, errs.Conflict("username is already taken")
	} else if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}
	if _, err := s.Repo.GetByEmail(ctx, in.Email); err == nil {
		return nil, errs.Conflict("email is already taken")
	} else if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{Username: in.Username, Email: in.Email, FullName: in.FullName, Password: hash}
	// the unique constraints still arbitrate concurrent signups
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.indexUser(ctx, u)
	s.enqueueWelcome(ctx, u)
	return u, nil
}

// Authenticate validates username/password and returns the user without issuing tokens.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*entity.User, error) {
	u, err := s.Repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil || u == nil {
		return nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// IssueTokens generates access/refresh tokens and records a session in Redis.
func (s *UserService) IssueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID, sid)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID, sid)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate refresh token failed")
		return TokenPair{}, err
	}

	if s.Redis != nil {
		fields := map[string]any{
			"user_id":     u.ID,
			"username":    u.Username,
			"email":       u.Email,
			"full_name":   u.FullName,
			"profile_img": u.ProfileImg,
			"sid":         sid,
			"logged_in":   true,
			"created_at":  nowRFC3339(),
		}
		if rErr := helpers.SaveSession(ctx, s.Redis, helpers.SessionKey(u.ID), fields, s.JWT.RefreshTTL); rErr != nil {
			s.Logger.WithError(rErr).WithField("user_id", u.ID).Warn("session write failed")
		}
	}

	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

func (s *UserService) Login(ctx context.Context, username, password string) (*entity.User, TokenPair, error) {
	u, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

func (s *UserService) Refresh(ctx context.Context, refreshToken string) (TokenPair, string, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, "", ErrInvalidCredentials
	}
	u, err := s.Repo.GetByID(ctx, claims.UserID)
	if err != nil || u == nil {
		return TokenPair{}, "", ErrInvalidCredentials
	}
	// the token's sid must match the live session
	if s.Redis != nil {
		data, rErr := helpers.LoadSession(ctx, s.Redis, helpers.SessionKey(u.ID))
		if rErr != nil || data["sid"] != claims.SessionID {
			return TokenPair{}, "", ErrInvalidCredentials
		}
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return TokenPair{}, "", err
	}
	return pair, u.ID, nil
}

// Logout drops the Redis session so outstanding access tokens stop working.
func (s *UserService) Logout(ctx context.Context, userID string) {
	if s.Redis == nil || userID == "" {
		return
	}
	if err := helpers.RedisDel(ctx, s.Redis, helpers.SessionKey(userID)); err != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("session delete failed")
	}
}

func (s *UserService) Me(ctx context.Context, userID string) (*UserView, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	v := NewUserView(u)
	return &v, nil
}

// GetProfile looks a user up by username.
func (s *UserService) GetProfile(ctx context.Context, username string) (*UserView, error) {
	u, err := s.Repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	v := NewUserView(u)
	return &v, nil
}

type UpdateProfileInput struct {
	FullName        string
	Email           string
	Username        string
	Bio             string
	Link            string
	CurrentPassword string
	NewPassword     string
	ProfileImg      *ImageUpload
	CoverImg        *ImageUpload
}

// UpdateProfile edits profile fields and the credential. Empty fields keep
// their current value. New images are uploaded before anything is written;
// replaced images are removed from the media store afterwards.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*UserView, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if (in.NewPassword == "") != (in.CurrentPassword == "") {
		return nil, errs.Validation("please provide both current password and new password")
	}
	changes := map[string]string{}
	if in.NewPassword != "" {
		if !helpers.CompareHashAndPassword(u.Password, in.CurrentPassword) {
			return nil, errs.Validation("current password is incorrect")
		}
		if len(in.NewPassword) < MinPasswordLength {
			return nil, errs.Validation("password must be at least %d characters long", MinPasswordLength)
		}
		hash, err := hashPassword(in.NewPassword)
		if err != nil {
			return nil, err
		}
		u.Password = hash
		changes["password"] = "changed"
	}
	if email := strings.TrimSpace(in.Email); email != "" {
		if !validation.Email(email) {
			return nil, errs.Validation("invalid email format")
		}
		if email != u.Email {
			changes["email"] = email
		}
		u.Email = email
	}

	var replaced, uploaded []string
	upload := func(img *ImageUpload, folder string, field *string) error {
		if img == nil || len(img.Data) == 0 {
			return nil
		}
		if s.Media == nil {
			return errs.MediaStore(nil, "media store not configured")
		}
		url, err := s.Media.Upload(ctx, folder+"/"+userID, *img)
		if err != nil {
			return errs.MediaStore(err, "image upload failed")
		}
		uploaded = append(uploaded, url)
		if *field != "" {
			replaced = append(replaced, *field)
		}
		*field = url
		return nil
	}
	if in.ProfileImg != nil && len(in.ProfileImg.Data) > 0 {
		changes["profile image"] = "updated"
	}
	if err := upload(in.ProfileImg, "avatars", &u.ProfileImg); err != nil {
		return nil, err
	}
	if err := upload(in.CoverImg, "covers", &u.CoverImg); err != nil {
		s.discard(ctx, uploaded)
		return nil, err
	}

	if v := strings.TrimSpace(in.FullName); v != "" {
		u.FullName = v
	}
	if v := strings.TrimSpace(in.Username); v != "" {
		if v != u.Username {
			changes["username"] = v
		}
		u.Username = v
	}
	if v := strings.TrimSpace(in.Bio); v != "" {
		u.Bio = v
	}
	if v := strings.TrimSpace(in.Link); v != "" {
		u.Link = v
	}

	if err := s.Repo.Update(ctx, u); err != nil {
		s.discard(ctx, uploaded)
		return nil, err
	}

	s.discard(ctx, replaced)
	s.refreshSession(ctx, u)
	s.indexUser(ctx, u)
	if len(changes) > 0 && s.Cfg != nil {
		s.enqueueEmail(ctx, u, tpl.ProfileUpdated, tpl.NewProfileUpdatedData(s.Cfg, u.FullName, u.Email, u.Username, changes, tpl.WithTime(time.Now())))
	}
	v := NewUserView(u)
	return &v, nil
}

// discard deletes images best-effort.
func (s *UserService) discard(ctx context.Context, urls []string) {
	for _, url := range urls {
		if err := s.Media.Delete(ctx, url); err != nil {
			s.Logger.WithError(err).WithField("url", url).Warn("image delete failed")
		}
	}
}

// refreshSession keeps cached profile fields in the session hash current, preserving its TTL.
func (s *UserService) refreshSession(ctx context.Context, u *entity.User) {
	if s.Redis == nil {
		return
	}
	err := helpers.TouchSession(ctx, s.Redis, helpers.SessionKey(u.ID), map[string]any{
		"username":    u.Username,
		"email":       u.Email,
		"full_name":   u.FullName,
		"profile_img": u.ProfileImg,
		"updated_at":  nowRFC3339(),
	})
	if err != nil && !errors.Is(err, helpers.ErrNoSession) {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("session refresh failed")
	}
}

func (s *UserService) indexUser(ctx context.Context, u *entity.User) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, u); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("search index failed")
	}
}

func (s *UserService) enqueueWelcome(ctx context.Context, u *entity.User) {
	if s.Cfg == nil {
		return
	}
	s.enqueueEmail(ctx, u, tpl.Welcome, tpl.NewWelcomeData(s.Cfg, u.FullName, u.Email, u.Username, tpl.WithTime(time.Now())))
}

// enqueueEmail publishes a templated email job; failures are logged only.
func (s *UserService) enqueueEmail(ctx context.Context, u *entity.User, template string, data map[string]any) {
	if s.Jobs == nil || s.Cfg == nil || !s.Cfg.MailSendEnabled {
		return
	}
	job := mailer.EmailJob{To: u.Email, Template: template, Data: data}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := s.Jobs.PublishJSON(ctx, job); err != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{"user_id": u.ID, "template": template}).Warn("failed to publish email job")
	}
}

// SearchUsers queries the user index; without an index it returns nothing.
func (s *UserService) SearchUsers(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.Index == nil || strings.TrimSpace(q) == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	return s.Index.Search(ctx, q, size)
}
