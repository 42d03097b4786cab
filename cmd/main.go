package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/learnflow/learnflow-auth/config"
	"github.com/learnflow/learnflow-auth/internal/container"
	"github.com/learnflow/learnflow-auth/internal/infrastructure/memory"
	pginfra "github.com/learnflow/learnflow-auth/internal/infrastructure/postgres"
	"github.com/learnflow/learnflow-auth/internal/router"
	"github.com/learnflow/learnflow-auth/pkg/helpers"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}
	if cfg.SecretDefaulted() {
		logger.Warn("SESSION_SECRET not set; using the development default")
	}
	if cfg.TeacherCode == "" {
		logger.Warn("TEACHER_CODE not set; role elevation will reject every code")
	}
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()
	infra := container.Infra{}

	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		logger.Warn("STORE_DRIVER=memory; users are lost on restart")
		infra.Users = memory.NewUserRepository()
	default:
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to postgres")
		}
		defer pool.Close()
		if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			logger.WithError(err).Fatal("migration failed")
		}
		infra.PGPool = pool
		infra.Users = pginfra.NewUserRepository(pool)
	}

	// Redis only backs rate limiting; it stays off when unreachable.
	if rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); rdb != nil && cfg.RateLimitEnabled {
		if err := helpers.PingRedis(ctx, rdb); err != nil {
			logger.WithError(err).Warn("redis unreachable; rate limiting disabled")
			_ = rdb.Close()
		} else {
			infra.Redis = rdb
			defer func() { _ = rdb.Close() }()
		}
	}

	if cfg.RabbitMQURL != "" && cfg.MailSendEnabled {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable; auth e-mails disabled")
		} else {
			infra.RabbitPub = pub
			defer pub.Close()
		}
	}

	c := container.New(cfg, logger, infra)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.NewEngine(c),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
		return
	}
	logger.Info("server exited properly")
}
