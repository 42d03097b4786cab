package router

import (
	"github.com/learnflow/learnflow-auth/internal/container"
	handlers "github.com/learnflow/learnflow-auth/internal/interface/http"
	"github.com/learnflow/learnflow-auth/internal/interface/middleware"
	"github.com/learnflow/learnflow-auth/internal/router/modules"
)

// InitModules registers every feature module. Call once at startup, before
// RegisterAll.
func InitModules(r *Registry, c *container.Container) {
	r.Use(middleware.Session(c.Sessions))

	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(c.Auth, c.Logger), c.Redis))
	r.Add(modules.NewRoleModule(handlers.NewRoleHandler(c.Roles, c.Sessions, c.Logger), c.Redis))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(c.Credentials, c.Logger), c.Redis))
	r.AddRoot(modules.NewDebugModule(c.Redis, c.Config.MetricsEnabled, c.Config.DebugMetricsEnabled))
}
