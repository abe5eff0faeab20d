package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-ddd-social/config"
	app "github.com/oksasatya/go-ddd-social/internal/application"
	"github.com/oksasatya/go-ddd-social/internal/domain/entity"
	"github.com/oksasatya/go-ddd-social/internal/domain/errs"
	pginfra "github.com/oksasatya/go-ddd-social/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-social/pkg/helpers"
)

type seedUser struct {
	username, fullName, email string
}

var demoUsers = []seedUser{
	{"demo", "Demo User", "demo@example.com"},
	{"alice", "Alice Hart", "alice@example.com"},
	{"bob", "Bob Stone", "bob@example.com"},
	{"carol", "Carol Vance", "carol@example.com"},
}

const demoPassword = "password123"

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{
		MaxConns:    cfg.DBMaxConns,
		MinConns:    cfg.DBMinConns,
		MaxConnLife: cfg.DBMaxConnLife,
		Logger:      logger,
	})
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	users := pginfra.NewUserRepository(pool)
	posts := pginfra.NewPostRepository(pool)
	notifications := pginfra.NewNotificationRepository(pool)

	accounts := app.NewUserService(users, nil, nil, nil, nil, nil, cfg, logger)
	graph := app.NewGraphService(users, notifications, logger)
	interactions := app.NewInteractionService(users, posts, notifications, nil, logger)

	seeded := make([]*entity.User, 0, len(demoUsers))
	created := false
	for _, su := range demoUsers {
		u, err := accounts.Signup(ctx, app.SignupInput{FullName: su.fullName, Username: su.username, Email: su.email, Password: demoPassword})
		if errors.Is(err, errs.ErrConflict) {
			if u, err = users.GetByUsername(ctx, su.username); err != nil {
				log.Fatalf("load existing %s: %v", su.username, err)
			}
			fmt.Printf("exists: %s (%s)\n", u.Username, u.ID)
		} else if err != nil {
			log.Fatalf("seed %s: %v", su.username, err)
		} else {
			created = true
			fmt.Printf("seeded: %s (%s) password=%s\n", u.Username, u.ID, demoPassword)
		}
		seeded = append(seeded, u)
	}
	if !created {
		fmt.Println("users already present; skipping graph and posts")
		return
	}

	// demo follows everyone, everyone follows demo back except carol
	demo := seeded[0]
	for _, u := range seeded[1:] {
		if _, err := graph.FollowOrUnfollow(ctx, demo.ID, u.ID); err != nil {
			log.Fatalf("follow %s: %v", u.Username, err)
		}
		if u.Username == "carol" {
			continue
		}
		if _, err := graph.FollowOrUnfollow(ctx, u.ID, demo.ID); err != nil {
			log.Fatalf("follow back %s: %v", u.Username, err)
		}
	}

	var first *app.PostView
	for i, u := range seeded {
		p, err := interactions.CreatePost(ctx, u.ID, app.CreatePostInput{Text: fmt.Sprintf("hello from @%s (#%d)", u.Username, i+1)})
		if err != nil {
			log.Fatalf("post for %s: %v", u.Username, err)
		}
		if first == nil {
			first = p
		}
	}
	if _, err := interactions.CreatePost(ctx, seeded[1].ID, app.CreatePostInput{Text: "quoting demo", QuotedPostID: first.ID}); err != nil {
		log.Fatalf("quote post: %v", err)
	}
	if _, err := interactions.ToggleLike(ctx, seeded[2].ID, first.ID); err != nil {
		log.Fatalf("like: %v", err)
	}
	if _, err := interactions.AddComment(ctx, seeded[3].ID, first.ID, "welcome!"); err != nil {
		log.Fatalf("comment: %v", err)
	}
	fmt.Println("seeded follows, posts, a quote, a like and a comment")
}
