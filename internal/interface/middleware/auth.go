package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/learnflow/learnflow-auth/internal/application"
	"github.com/learnflow/learnflow-auth/internal/domain/entity"
	"github.com/learnflow/learnflow-auth/pkg/response"
)

const (
	CtxSessionKey = "session"
	CtxUserIDKey  = "userID"
)

// Session resolves the optional caller identity once per request and stores
// it in the Gin context. Anonymous requests pass through untouched.
func Session(sm application.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sess := sm.ResolveSession(c.Request); sess != nil {
			c.Set(CtxSessionKey, sess)
			c.Set(CtxUserIDKey, sess.User.ID)
		}
		c.Next()
	}
}

// SessionFromContext returns the session stored by Session, or nil.
func SessionFromContext(c *gin.Context) *entity.Session {
	v, ok := c.Get(CtxSessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*entity.Session)
	return sess
}

// SessionUserFromContext returns the caller identity, or nil when anonymous.
func SessionUserFromContext(c *gin.Context) *entity.SessionUser {
	if sess := SessionFromContext(c); sess != nil {
		return &sess.User
	}
	return nil
}

// RequireSession rejects anonymous requests with 401.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if SessionUserFromContext(c) == nil {
			response.Error[any](c, http.StatusUnauthorized, "unauthorized", application.ErrUnauthorized.Error(), nil)
			return
		}
		c.Next()
	}
}

// RequireRole admits only sessions holding one of roles: 401 when anonymous,
// 403 otherwise.
func RequireRole(roles ...entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := SessionUserFromContext(c)
		if u == nil {
			response.Error[any](c, http.StatusUnauthorized, "unauthorized", application.ErrUnauthorized.Error(), nil)
			return
		}
		for _, r := range roles {
			if u.Role == r {
				c.Next()
				return
			}
		}
		response.Error[any](c, http.StatusForbidden, "forbidden", application.ErrForbidden.Error(), nil)
	}
}
