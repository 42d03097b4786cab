package modules

import (
	"expvar"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/learnflow/learnflow-auth/internal/interface/middleware"
)

// DebugModule serves /healthz, and optionally /metrics and /debug/vars.
type DebugModule struct {
	Redis        *redis.Client
	Metrics      bool
	DebugMetrics bool
}

func NewDebugModule(rdb *redis.Client, metrics, debugMetrics bool) *DebugModule {
	return &DebugModule{Redis: rdb, Metrics: metrics, DebugMetrics: debugMetrics}
}

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rg.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// scrapers on private networks bypass the limit
	rl := middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
	if m.Metrics {
		rg.GET("/metrics", rl, gin.WrapH(promhttp.Handler()))
	}
	if m.DebugMetrics {
		rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
	}
}
