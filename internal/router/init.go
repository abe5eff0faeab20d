package router

import (
	app "github.com/oksasatya/go-ddd-social/internal/application"
	"github.com/oksasatya/go-ddd-social/internal/container"
	handlers "github.com/oksasatya/go-ddd-social/internal/interface/http"
	"github.com/oksasatya/go-ddd-social/internal/router/modules"
)

// Services groups the application services built from the container.
type Services struct {
	Users         *app.UserService
	Graph         *app.GraphService
	Interactions  *app.InteractionService
	Feeds         *app.FeedService
	Notifications *app.NotificationService
}

func BuildServices() Services {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	users, posts, notifications := container.GetUsers(), container.GetPosts(), container.GetNotifications()

	graph := app.NewGraphService(users, notifications, logger)
	if cfg.SuggestSampleSize > 0 {
		graph.SampleSize = cfg.SuggestSampleSize
	}
	if cfg.SuggestLimit > 0 {
		graph.SuggestLimit = cfg.SuggestLimit
	}

	return Services{
		Users: app.NewUserService(
			users,
			container.GetJWT(),
			container.GetRedis(),
			container.GetMedia(),
			container.GetUserIndex(),
			container.GetJobs(),
			cfg,
			logger,
		),
		Graph:         graph,
		Interactions:  app.NewInteractionService(users, posts, notifications, container.GetMedia(), logger),
		Feeds:         app.NewFeedService(users, posts, logger),
		Notifications: app.NewNotificationService(notifications, users, logger),
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	jwt := container.GetJWT()
	rdb := container.GetRedis()
	svc := BuildServices()

	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(svc.Users, logger, cfg.CookieDomain, cfg.CookieSecure), jwt, rdb))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(svc.Users, svc.Graph, logger, cfg.MaxImageBytes), jwt, rdb))
	r.Add(modules.NewPostModule(handlers.NewPostHandler(svc.Feeds, svc.Interactions, logger, cfg.MaxImageBytes), jwt, rdb))
	r.Add(modules.NewNotificationModule(handlers.NewNotificationHandler(svc.Notifications, logger), jwt, rdb))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(rdb))
	}
}
