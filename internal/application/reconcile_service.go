package application

import (
	"context"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-social/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-social/internal/domain/repository"
	"github.com/oksasatya/go-ddd-social/pkg/helpers"
	"github.com/oksasatya/go-ddd-social/pkg/metrics"
)

const DefaultReconcilePageSize = 200

// Repair kinds, also used as metric labels.
const (
	RepairFollowerAdded     = "follower_added"
	RepairFollowerRemoved   = "follower_removed"
	RepairFollowingRemoved  = "following_removed"
	RepairLikeAdded         = "like_added"
	RepairLikeRemoved       = "like_removed"
	RepairLikedPostsRemoved = "liked_post_removed"
)

// ReconcileService repairs one-sided follow and like edges left behind by
// interrupted two-step writes. following and likedPosts are authoritative.
type ReconcileService struct {
	Users    repo.UserRepository
	Posts    repo.PostRepository
	Logger   *logrus.Logger
	PageSize int
}

func NewReconcileService(users repo.UserRepository, posts repo.PostRepository, logger *logrus.Logger) *ReconcileService {
	if logger == nil {
		logger = helpers.NewNopLogger()
	}
	return &ReconcileService{Users: users, Posts: posts, Logger: logger, PageSize: DefaultReconcilePageSize}
}

type ReconcileReport struct {
	DryRun       bool           `json:"dry_run"`
	UsersScanned int            `json:"users_scanned"`
	PostsScanned int            `json:"posts_scanned"`
	Repairs      map[string]int `json:"repairs"`
}

// Total is the number of repairs found (dry run) or applied.
func (r ReconcileReport) Total() int {
	n := 0
	for _, v := range r.Repairs {
		n += v
	}
	return n
}

type reconcileRun struct {
	s      *ReconcileService
	dryRun bool
	report *ReconcileReport
}

func (rr *reconcileRun) repair(kind string, fields logrus.Fields, apply func() error) error {
	rr.report.Repairs[kind]++
	log := rr.s.Logger.WithFields(fields).WithField("repair", kind)
	if rr.dryRun {
		log.Info("reconcile: would repair")
		return nil
	}
	if err := apply(); err != nil {
		log.WithError(err).Error("reconcile: repair failed")
		return err
	}
	metrics.ReconcileRepairs.WithLabelValues(kind).Inc()
	log.Info("reconcile: repaired")
	return nil
}

// Run makes one pass over all users and posts. With dryRun it only counts.
func (s *ReconcileService) Run(ctx context.Context, dryRun bool) (ReconcileReport, error) {
	report := ReconcileReport{DryRun: dryRun, Repairs: map[string]int{}}
	rr := &reconcileRun{s: s, dryRun: dryRun, report: &report}
	size := s.PageSize
	if size <= 0 {
		size = DefaultReconcilePageSize
	}

	after := ""
	for {
		page, err := s.Users.ListPage(ctx, after, size)
		if err != nil {
			return report, err
		}
		if len(page) == 0 {
			break
		}
		for _, u := range page {
			if err := rr.user(ctx, u); err != nil {
				return report, err
			}
		}
		report.UsersScanned += len(page)
		after = page[len(page)-1].ID
	}

	after = ""
	for {
		page, err := s.Posts.ListPage(ctx, after, size)
		if err != nil {
			return report, err
		}
		if len(page) == 0 {
			break
		}
		for _, p := range page {
			if err := rr.post(ctx, p); err != nil {
				return report, err
			}
		}
		report.PostsScanned += len(page)
		after = page[len(page)-1].ID
	}

	s.Logger.WithFields(logrus.Fields{
		"dry_run": dryRun,
		"users":   report.UsersScanned,
		"posts":   report.PostsScanned,
		"repairs": report.Total(),
	}).Info("reconcile pass finished")
	return report, nil
}

func (rr *reconcileRun) usersByID(ctx context.Context, ids []string) (map[string]*entity.User, error) {
	out := make(map[string]*entity.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	found, err := rr.s.Users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, u := range found {
		out[u.ID] = u
	}
	return out, nil
}

func (rr *reconcileRun) postsByID(ctx context.Context, ids []string) (map[string]*entity.Post, error) {
	out := make(map[string]*entity.Post, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	found, err := rr.s.Posts.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range found {
		out[p.ID] = p
	}
	return out, nil
}

func (rr *reconcileRun) user(ctx context.Context, u *entity.User) error {
	users := rr.s.Users
	posts := rr.s.Posts

	// u.following is authoritative: every target must list u as follower.
	targets, err := rr.usersByID(ctx, u.Following)
	if err != nil {
		return err
	}
	for _, tid := range u.Following {
		f := logrus.Fields{"user_id": u.ID, "target": tid}
		t, ok := targets[tid]
		if !ok {
			if err := rr.repair(RepairFollowingRemoved, f, func() error {
				return users.RemoveFromSet(ctx, u.ID, entity.UserFollowing, tid)
			}); err != nil {
				return err
			}
			continue
		}
		if !t.HasFollower(u.ID) {
			if err := rr.repair(RepairFollowerAdded, f, func() error {
				return users.AddToSet(ctx, tid, entity.UserFollowers, u.ID)
			}); err != nil {
				return err
			}
		}
	}

	// u.followers entries without the matching following entry are stale.
	followers, err := rr.usersByID(ctx, u.Followers)
	if err != nil {
		return err
	}
	for _, fid := range u.Followers {
		if fu, ok := followers[fid]; ok && fu.IsFollowing(u.ID) {
			continue
		}
		if err := rr.repair(RepairFollowerRemoved, logrus.Fields{"user_id": u.ID, "follower": fid}, func() error {
			return users.RemoveFromSet(ctx, u.ID, entity.UserFollowers, fid)
		}); err != nil {
			return err
		}
	}

	// u.likedPosts is authoritative for like edges.
	liked, err := rr.postsByID(ctx, u.LikedPosts)
	if err != nil {
		return err
	}
	for _, pid := range u.LikedPosts {
		f := logrus.Fields{"user_id": u.ID, "post_id": pid}
		p, ok := liked[pid]
		if !ok {
			if err := rr.repair(RepairLikedPostsRemoved, f, func() error {
				return users.RemoveFromSet(ctx, u.ID, entity.UserLikedPosts, pid)
			}); err != nil {
				return err
			}
			continue
		}
		if !p.LikedBy(u.ID) {
			if err := rr.repair(RepairLikeAdded, f, func() error {
				_, err := posts.AddLike(ctx, pid, u.ID)
				return err
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (rr *reconcileRun) post(ctx context.Context, p *entity.Post) error {
	likers, err := rr.usersByID(ctx, p.Likes)
	if err != nil {
		return err
	}
	for _, uid := range slices.Clone(p.Likes) {
		if u, ok := likers[uid]; ok && u.HasLiked(p.ID) {
			continue
		}
		if err := rr.repair(RepairLikeRemoved, logrus.Fields{"post_id": p.ID, "user_id": uid}, func() error {
			_, err := rr.s.Posts.RemoveLike(ctx, p.ID, uid)
			return err
		}); err != nil {
			return err
		}
	}
	return nil
}
