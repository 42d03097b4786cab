package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/learnflow/learnflow-auth/internal/domain/entity"
	handlers "github.com/learnflow/learnflow-auth/internal/interface/http"
	"github.com/learnflow/learnflow-auth/internal/interface/middleware"
)

// UserModule serves the signed-in user's own profile, and other users'
// profiles to teachers.
type UserModule struct {
	Handler *handlers.UserHandler
	Redis   *redis.Client
}

func NewUserModule(h *handlers.UserHandler, rdb *redis.Client) *UserModule {
	return &UserModule{Handler: h, Redis: rdb}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	users.Use(
		middleware.RequireSession(),
		middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	users.GET("/me", m.Handler.Me)
	users.GET("/:id", middleware.RequireRole(entity.RoleTeacher), m.Handler.Lookup)
}
