// Package metrics exposes prometheus counters for the social core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "social"

var (
	FollowToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "follow_toggles_total",
		Help:      "Follow/unfollow operations by resulting state.",
	}, []string{"result"})

	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "like_toggles_total",
		Help:      "Like/unlike operations by resulting state.",
	}, []string{"result"})

	CommentsAdded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "comments_added_total",
		Help:      "Comments appended to posts.",
	})

	PostsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "posts_created_total",
		Help:      "Posts created.",
	})

	PostsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "posts_deleted_total",
		Help:      "Posts deleted by their author.",
	})

	NotificationsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_emitted_total",
		Help:      "Notifications created by type.",
	}, []string{"type"})

	ReconcileRepairs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reconcile_repairs_total",
		Help:      "One-sided edges repaired by the reconciliation pass.",
	}, []string{"kind"})

	RateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Requests rejected by a rate limiter, by limiter name.",
	}, []string{"limit"})
)
