package main

import (
	"context"
	"errors"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/learnflow/learnflow-auth/config"
	"github.com/learnflow/learnflow-auth/internal/application"
	"github.com/learnflow/learnflow-auth/internal/domain/entity"
	pginfra "github.com/learnflow/learnflow-auth/internal/infrastructure/postgres"
	"github.com/learnflow/learnflow-auth/pkg/helpers"
)

type seedUser struct {
	name, email, password string
	role                  entity.Role
}

var demoUsers = []seedUser{
	{"Demo Student", "student@learnflow.dev", "student123", entity.RoleStudent},
	{"Demo Teacher", "teacher@learnflow.dev", "teacher123", entity.RoleTeacher},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	if cfg.IsProduction() {
		logger.Fatal("refusing to seed demo users in production")
	}

	ctx := context.Background()
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to postgres")
	}
	defer pool.Close()
	if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		logger.WithError(err).Fatal("migration failed")
	}

	creds := application.NewCredentialService(pginfra.NewUserRepository(pool), logger, 0)
	for _, su := range demoUsers {
		u, err := creds.Create(ctx, su.name, su.email, su.password)
		if errors.Is(err, application.ErrDuplicateEmail) {
			logger.WithField("email", su.email).Info("already seeded")
			continue
		}
		if err != nil {
			logger.WithError(err).WithField("email", su.email).Fatal("failed to seed user")
		}
		if su.role != entity.RoleStudent {
			if err := creds.SetRole(ctx, u.ID, su.role); err != nil {
				logger.WithError(err).Fatal("failed to set role")
			}
		}
		logger.WithFields(logrus.Fields{"id": u.ID, "email": su.email, "role": su.role}).Info("seeded user")
	}
}
