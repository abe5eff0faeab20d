package application

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-social/internal/domain/entity"
	"github.com/oksasatya/go-ddd-social/internal/domain/errs"
	repo "github.com/oksasatya/go-ddd-social/internal/domain/repository"
	"github.com/oksasatya/go-ddd-social/pkg/helpers"
	"github.com/oksasatya/go-ddd-social/pkg/metrics"
)

// InteractionService owns likes, comments and the post lifecycle.
type InteractionService struct {
	Users         repo.UserRepository
	Posts         repo.PostRepository
	Notifications repo.NotificationRepository
	Media         MediaStore
	Hydrator      *Hydrator
	Logger        *logrus.Logger
}

func NewInteractionService(users repo.UserRepository, posts repo.PostRepository, notifications repo.NotificationRepository, media MediaStore, logger *logrus.Logger) *InteractionService {
	if logger == nil {
		logger = helpers.NewNopLogger()
	}
	return &InteractionService{
		Users:         users,
		Posts:         posts,
		Notifications: notifications,
		Media:         media,
		Hydrator:      NewHydrator(users, posts),
		Logger:        logger,
	}
}

type LikeResult struct {
	Liked bool     `json:"liked"`
	Likes []string `json:"likes"`
}

// ToggleLike flips the like edge actor -> post and returns the resulting like set.
// Unliking never retracts an earlier Like notification.
func (s *InteractionService) ToggleLike(ctx context.Context, actorID, postID string) (LikeResult, error) {
	if _, err := s.Users.GetByID(ctx, actorID); err != nil {
		return LikeResult{}, err
	}
	post, err := s.Posts.GetByID(ctx, postID)
	if err != nil {
		return LikeResult{}, err
	}
	log := s.Logger.WithFields(logrus.Fields{"actor": actorID, "post_id": postID})

	if post.LikedBy(actorID) {
		likes, err := s.Posts.RemoveLike(ctx, postID, actorID)
		if err != nil {
			log.WithError(err).Error("unlike: remove from post failed")
			return LikeResult{}, err
		}
		if err := s.Users.RemoveFromSet(ctx, actorID, entity.UserLikedPosts, postID); err != nil {
			log.WithError(err).Error("unlike: remove from liked posts failed")
			return LikeResult{}, err
		}
		metrics.LikeToggles.WithLabelValues("unliked").Inc()
		return LikeResult{Liked: false, Likes: likes}, nil
	}

	likes, err := s.Posts.AddLike(ctx, postID, actorID)
	if err != nil {
		log.WithError(err).Error("like: add to post failed")
		return LikeResult{}, err
	}
	if err := s.Users.AddToSet(ctx, actorID, entity.UserLikedPosts, postID); err != nil {
		log.WithError(err).Error("like: add to liked posts failed")
		return LikeResult{}, err
	}
	metrics.LikeToggles.WithLabelValues("liked").Inc()
	// self-likes notify too
	if err := emitNotification(ctx, s.Notifications, s.Logger, entity.NotificationLike, actorID, post.UserID); err != nil {
		return LikeResult{}, err
	}
	return LikeResult{Liked: true, Likes: likes}, nil
}

// AddComment appends a comment and returns the hydrated post.
func (s *InteractionService) AddComment(ctx context.Context, actorID, postID, text string) (*PostView, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errs.Validation("text field is required")
	}
	if _, err := s.Users.GetByID(ctx, actorID); err != nil {
		return nil, err
	}
	c := entity.Comment{
		ID:        uuid.NewString(),
		UserID:    actorID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Posts.AppendComment(ctx, postID, c); err != nil {
		return nil, err
	}
	metrics.CommentsAdded.Inc()

	post, err := s.Posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return s.Hydrator.HydratePost(ctx, post)
}

type CreatePostInput struct {
	Text         string
	Image        *ImageUpload
	QuotedPostID string
}

// CreatePost persists a new post. The quoted post is not required to exist.
func (s *InteractionService) CreatePost(ctx context.Context, actorID string, in CreatePostInput) (*PostView, error) {
	text := strings.TrimSpace(in.Text)
	quoted := strings.TrimSpace(in.QuotedPostID)
	hasImage := in.Image != nil && len(in.Image.Data) > 0
	if text == "" && !hasImage && quoted == "" {
		return nil, errs.Validation("post must have text, image or a quoted post")
	}
	if _, err := s.Users.GetByID(ctx, actorID); err != nil {
		return nil, err
	}

	post := &entity.Post{UserID: actorID, Text: text, QuotedPostID: quoted}
	if hasImage {
		if s.Media == nil {
			return nil, errs.MediaStore(nil, "media store not configured")
		}
		url, err := s.Media.Upload(ctx, "posts/"+actorID, *in.Image)
		if err != nil {
			s.Logger.WithError(err).WithField("actor", actorID).Error("post image upload failed")
			return nil, errs.MediaStore(err, "image upload failed")
		}
		post.Img = url
	}

	if err := s.Posts.Create(ctx, post); err != nil {
		if post.Img != "" {
			if dErr := s.Media.Delete(ctx, post.Img); dErr != nil {
				s.Logger.WithError(dErr).WithField("url", post.Img).Warn("orphaned post image cleanup failed")
			}
		}
		return nil, err
	}
	metrics.PostsCreated.Inc()
	return s.Hydrator.HydratePost(ctx, post)
}

// DeletePost removes a post owned by actor. Notifications and quotes that
// reference it are left in place.
func (s *InteractionService) DeletePost(ctx context.Context, actorID, postID string) error {
	post, err := s.Posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != actorID {
		return errs.Authorization("you are not authorized to delete this post")
	}
	if post.Img != "" && s.Media != nil {
		if err := s.Media.Delete(ctx, post.Img); err != nil {
			s.Logger.WithError(err).WithField("post_id", postID).Error("post image delete failed")
			return errs.MediaStore(err, "image delete failed")
		}
	}
	if err := s.Posts.Delete(ctx, postID); err != nil {
		return err
	}
	metrics.PostsDeleted.Inc()
	return nil
}
