package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/learnflow/learnflow-auth/internal/interface/http"
	"github.com/learnflow/learnflow-auth/internal/interface/middleware"
)

type RoleModule struct {
	Handler *handlers.RoleHandler
	Redis   *redis.Client
}

func NewRoleModule(h *handlers.RoleHandler, rdb *redis.Client) *RoleModule {
	return &RoleModule{Handler: h, Redis: rdb}
}

func (m *RoleModule) Register(rg *gin.RouterGroup) {
	// guessing the teacher code is the attack; keep the budget small
	elevateLimiter := middleware.RateLimit(m.Redis, 5, 15*time.Minute, middleware.KeyByUserID(), nil)

	role := rg.Group("/role")
	role.Use(middleware.RequireSession())
	role.POST("/elevate", elevateLimiter, m.Handler.Elevate)
}
