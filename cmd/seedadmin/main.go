// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/vBaustad/tripplannerhq/internal/billing"
	"github.com/vBaustad/tripplannerhq/internal/config"
	"github.com/vBaustad/tripplannerhq/internal/core"
	"github.com/vBaustad/tripplannerhq/internal/user"
)

// seedadmin upserts the development administrator account from
// DEV_ADMIN_EMAIL / DEV_ADMIN_PASSWORD / DEV_ADMIN_NAME. Safe to re-run; an
// existing account gets its credentials refreshed.
func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(*configPath, logger); err != nil {
		logger.Error("seed admin failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, logger *slog.Logger) error {
	email := os.Getenv("DEV_ADMIN_EMAIL")
	password := os.Getenv("DEV_ADMIN_PASSWORD")
	name := os.Getenv("DEV_ADMIN_NAME")

	if email == "" || password == "" {
		logger.Info("DEV_ADMIN_EMAIL or DEV_ADMIN_PASSWORD not set, nothing to do")
		return nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	processor := billing.NewStripeProcessor(cfg.Stripe.SecretKey)
	svc := user.NewService(
		user.NewRepository(db.DB),
		processor,
		cfg.Security.PasswordHashCost,
		logger,
	)

	admin, err := svc.CreateAdmin(ctx, email, name, password)
	if err != nil {
		return err
	}

	logger.Info("admin account seeded",
		"id", admin.ID,
		"email", admin.Email,
	)
	return nil
}
