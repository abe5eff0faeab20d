package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-social/internal/domain/entity"
	"github.com/oksasatya/go-ddd-social/internal/domain/errs"
	repo "github.com/oksasatya/go-ddd-social/internal/domain/repository"
	"github.com/oksasatya/go-ddd-social/pkg/helpers"
	"github.com/oksasatya/go-ddd-social/pkg/metrics"
)

const (
	DefaultSuggestSampleSize = 10
	DefaultSuggestLimit      = 4
)

// GraphService owns the follow relation. Each follow edge lives twice, in
// target.followers and actor.following, and is written as two independent
// set mutations.
type GraphService struct {
	Users         repo.UserRepository
	Notifications repo.NotificationRepository
	Logger        *logrus.Logger
	SampleSize    int
	SuggestLimit  int
}

func NewGraphService(users repo.UserRepository, notifications repo.NotificationRepository, logger *logrus.Logger) *GraphService {
	if logger == nil {
		logger = helpers.NewNopLogger()
	}
	return &GraphService{
		Users:         users,
		Notifications: notifications,
		Logger:        logger,
		SampleSize:    DefaultSuggestSampleSize,
		SuggestLimit:  DefaultSuggestLimit,
	}
}

type FollowResult struct {
	Following bool   `json:"following"`
	Message   string `json:"message"`
}

// FollowOrUnfollow toggles the follow edge actor -> target.
func (s *GraphService) FollowOrUnfollow(ctx context.Context, actorID, targetID string) (FollowResult, error) {
	if actorID == targetID {
		return FollowResult{}, errs.SelfReference("you can't follow/unfollow yourself")
	}
	actor, err := s.Users.GetByID(ctx, actorID)
	if err != nil {
		return FollowResult{}, err
	}
	if _, err := s.Users.GetByID(ctx, targetID); err != nil {
		return FollowResult{}, err
	}

	log := s.Logger.WithFields(logrus.Fields{"actor": actorID, "target": targetID})

	if actor.IsFollowing(targetID) {
		if err := s.Users.RemoveFromSet(ctx, targetID, entity.UserFollowers, actorID); err != nil {
			log.WithError(err).Error("unfollow: remove follower failed")
			return FollowResult{}, err
		}
		if err := s.Users.RemoveFromSet(ctx, actorID, entity.UserFollowing, targetID); err != nil {
			log.WithError(err).Error("unfollow: remove following failed")
			return FollowResult{}, err
		}
		metrics.FollowToggles.WithLabelValues("unfollowed").Inc()
		log.Debug("user unfollowed")
		return FollowResult{Following: false, Message: "User unfollowed successfully"}, nil
	}

	if err := s.Users.AddToSet(ctx, targetID, entity.UserFollowers, actorID); err != nil {
		log.WithError(err).Error("follow: add follower failed")
		return FollowResult{}, err
	}
	if err := s.Users.AddToSet(ctx, actorID, entity.UserFollowing, targetID); err != nil {
		log.WithError(err).Error("follow: add following failed")
		return FollowResult{}, err
	}
	metrics.FollowToggles.WithLabelValues("followed").Inc()
	if err := emitNotification(ctx, s.Notifications, s.Logger, entity.NotificationFollow, actorID, targetID); err != nil {
		return FollowResult{}, err
	}
	log.Debug("user followed")
	return FollowResult{Following: true, Message: "User followed successfully"}, nil
}

// SuggestUsers samples users the requester does not follow yet.
func (s *GraphService) SuggestUsers(ctx context.Context, userID string) ([]UserView, error) {
	me, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	sample, err := s.Users.Sample(ctx, userID, s.SampleSize)
	if err != nil {
		return nil, err
	}
	out := make([]UserView, 0, s.SuggestLimit)
	for _, u := range sample {
		if len(out) == s.SuggestLimit {
			break
		}
		if u.ID == userID || me.IsFollowing(u.ID) {
			continue
		}
		out = append(out, NewUserView(u))
	}
	return out, nil
}
