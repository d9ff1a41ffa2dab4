package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/sohailKhanIITD/recipe-app-api/internal/config"
	dbpkg "github.com/sohailKhanIITD/recipe-app-api/internal/db"
	"github.com/sohailKhanIITD/recipe-app-api/internal/domain/user"
	infraRepo "github.com/sohailKhanIITD/recipe-app-api/internal/infra/repository"
	"github.com/sohailKhanIITD/recipe-app-api/internal/observability"
)

func main() {
	email := flag.String("email", "", "superuser email (required)")
	password := flag.String("password", "", "superuser password (required)")
	name := flag.String("name", "", "display name")
	timeout := flag.Duration("timeout", time.Minute, "command timeout")
	flag.Parse()

	if *email == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	db, err := dbpkg.NewDB(cfg.Database, logger)
	if err != nil {
		logger.Fatal("database init failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	users := user.NewManager(infraRepo.NewUserGormRepository(db), cfg.Auth.BcryptCost)
	u, err := users.CreateSuperuser(ctx, *email, *password, user.WithName(*name))
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			logger.Error("a user with this email already exists", zap.String("email", user.NormalizeEmail(*email)))
		} else {
			logger.Error("create superuser failed", zap.Error(err))
		}
		os.Exit(1)
	}

	logger.Info("superuser created", zap.Uint("id", u.ID), zap.String("email", u.Email))
}
