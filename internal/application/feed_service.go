package application

import (
	"context"

	"github.com/sirupsen/logrus"

	repo "github.com/oksasatya/go-ddd-social/internal/domain/repository"
	"github.com/oksasatya/go-ddd-social/pkg/helpers"
)

// FeedService assembles read-only, hydrated post timelines.
type FeedService struct {
	Users    repo.UserRepository
	Posts    repo.PostRepository
	Hydrator *Hydrator
	Logger   *logrus.Logger
}

func NewFeedService(users repo.UserRepository, posts repo.PostRepository, logger *logrus.Logger) *FeedService {
	if logger == nil {
		logger = helpers.NewNopLogger()
	}
	return &FeedService{Users: users, Posts: posts, Hydrator: NewHydrator(users, posts), Logger: logger}
}

func (s *FeedService) find(ctx context.Context, f repo.PostFilter) ([]PostView, error) {
	posts, err := s.Posts.Find(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.Hydrator.HydratePosts(ctx, posts)
}

// GlobalFeed returns every post, newest first.
func (s *FeedService) GlobalFeed(ctx context.Context) ([]PostView, error) {
	return s.find(ctx, repo.PostFilter{NewestFirst: true})
}

// FollowingFeed returns posts by the users actor follows, newest first.
func (s *FeedService) FollowingFeed(ctx context.Context, actorID string) ([]PostView, error) {
	actor, err := s.Users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if len(actor.Following) == 0 {
		return []PostView{}, nil
	}
	return s.find(ctx, repo.PostFilter{AuthorIDs: actor.Following, NewestFirst: true})
}

// AuthorFeed returns the posts of the named user, newest first.
func (s *FeedService) AuthorFeed(ctx context.Context, username string) ([]PostView, error) {
	author, err := s.Users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.find(ctx, repo.PostFilter{AuthorIDs: []string{author.ID}, NewestFirst: true})
}

// LikedFeed returns the posts a user has liked in storage order; like time is not tracked.
func (s *FeedService) LikedFeed(ctx context.Context, userID string) ([]PostView, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(u.LikedPosts) == 0 {
		return []PostView{}, nil
	}
	return s.find(ctx, repo.PostFilter{IDs: u.LikedPosts})
}
