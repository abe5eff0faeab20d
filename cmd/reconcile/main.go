// Command reconcile repairs one-sided follow and like edges in the Postgres store.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/oksasatya/go-ddd-social/config"
	app "github.com/oksasatya/go-ddd-social/internal/application"
	pginfra "github.com/oksasatya/go-ddd-social/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-social/pkg/helpers"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		dryRun   bool
		pageSize int
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Repair one-sided follow and like edges",
		Long: `reconcile scans every user and post and restores the inverse side of
follow and like edges. following and liked_posts are treated as the source
of truth; entries pointing at deleted users or posts are dropped.

It is safe to run while the API is serving traffic.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), dryRun, pageSize, asJSON)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report repairs without applying them")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "Records per page (default RECONCILE_PAGE_SIZE)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}

func run(ctx context.Context, dryRun bool, pageSize int, asJSON bool) error {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-reconcile", cfg.Env, cfg.LogLevel)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{
		MaxConns:    cfg.DBMaxConns,
		MinConns:    cfg.DBMinConns,
		MaxConnLife: cfg.DBMaxConnLife,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	svc := app.NewReconcileService(pginfra.NewUserRepository(pool), pginfra.NewPostRepository(pool), logger)
	svc.PageSize = cfg.ReconcilePageSize
	if pageSize > 0 {
		svc.PageSize = pageSize
	}

	report, err := svc.Run(ctx, dryRun)
	if err != nil {
		return err
	}
	if asJSON {
		return json.NewEncoder(os.Stdout).Encode(report)
	}
	logger.WithFields(logrus.Fields{
		"dry_run":       report.DryRun,
		"users_scanned": report.UsersScanned,
		"posts_scanned": report.PostsScanned,
	}).Info("reconcile report")
	for kind, n := range report.Repairs {
		fmt.Printf("%-20s %d\n", kind, n)
	}
	fmt.Printf("%-20s %d\n", "total", report.Total())
	return nil
}
