package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/learnflow/learnflow-auth/internal/interface/http"
	"github.com/learnflow/learnflow-auth/internal/interface/middleware"
)

// AuthModule mounts the /auth routes. Credential endpoints get per-IP
// limits; reading the session is left unlimited.
type AuthModule struct {
	Handler *handlers.AuthHandler
	Redis   *redis.Client
}

func NewAuthModule(h *handlers.AuthHandler, rdb *redis.Client) *AuthModule {
	return &AuthModule{Handler: h, Redis: rdb}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	signUpLimiter := middleware.RateLimit(m.Redis, 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	signInLimiter := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	syncLimiter := middleware.RateLimit(m.Redis, 60, time.Minute, middleware.KeyByIPAndPath(), nil)

	auth := rg.Group("/auth")
	auth.POST("/sign-up", signUpLimiter, m.Handler.SignUp)
	auth.POST("/sign-in", signInLimiter, m.Handler.SignIn)
	auth.POST("/sign-out", m.Handler.SignOut)
	auth.GET("/session", m.Handler.Session)
	auth.POST("/session/sync", syncLimiter, m.Handler.Sync)
}
