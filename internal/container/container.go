package container

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/learnflow/learnflow-auth/config"
	"github.com/learnflow/learnflow-auth/internal/application"
	"github.com/learnflow/learnflow-auth/internal/domain/repository"
	"github.com/learnflow/learnflow-auth/pkg/helpers"
	mailtpl "github.com/learnflow/learnflow-auth/pkg/mailer/templates"
)

// Container holds the components constructed in main and shared by the
// router modules. Optional infrastructure (PGPool, Redis, RabbitPub) is nil
// when not configured.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger

	PGPool    *pgxpool.Pool
	Redis     *redis.Client
	RabbitPub *helpers.RabbitPublisher

	Users       repository.UserRepository
	Sessions    application.SessionManager
	Credentials *application.CredentialService
	Auth        *application.AuthService
	Roles       *application.RoleService
}

// Infra is the externally owned infrastructure handed to New.
type Infra struct {
	Users     repository.UserRepository
	PGPool    *pgxpool.Pool
	Redis     *redis.Client
	RabbitPub *helpers.RabbitPublisher
	// BcryptCost overrides the verifier cost; 0 keeps the default.
	BcryptCost int
}

// New wires the application services on top of infra.
func New(cfg *config.Config, logger *logrus.Logger, infra Infra) *Container {
	codec := helpers.NewTokenCodec(cfg.SessionSecret)
	cookies := helpers.NewCookie(cfg.SessionCookieName, cfg.CookieDomain, cfg.CookieSecure())
	sessions := application.NewCookieSessions(codec, cookies, cfg.SessionTTL)

	// a nil *RabbitPublisher must stay a nil interface
	var queue application.EmailQueue
	if infra.RabbitPub != nil && cfg.MailSendEnabled {
		queue = infra.RabbitPub
	}
	links := mailtpl.Links{AppName: "LearnFlow", AppURL: cfg.AppURL, SupportURL: cfg.SupportURL}

	creds := application.NewCredentialService(infra.Users, logger, infra.BcryptCost)
	return &Container{
		Config:      cfg,
		Logger:      logger,
		PGPool:      infra.PGPool,
		Redis:       infra.Redis,
		RabbitPub:   infra.RabbitPub,
		Users:       infra.Users,
		Sessions:    sessions,
		Credentials: creds,
		Auth:        application.NewAuthService(creds, sessions, queue, links, logger),
		Roles:       application.NewRoleService(creds, cfg.TeacherCode, queue, links, logger),
	}
}
