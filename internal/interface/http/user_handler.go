package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/learnflow/learnflow-auth/internal/application"
	"github.com/learnflow/learnflow-auth/internal/interface/middleware"
	"github.com/learnflow/learnflow-auth/pkg/response"
)

type UserHandler struct {
	Credentials *application.CredentialService
	Logger      logrus.FieldLogger
}

func NewUserHandler(creds *application.CredentialService, logger logrus.FieldLogger) *UserHandler {
	return &UserHandler{Credentials: creds, Logger: logger}
}

// Me GET /api/users/me returns the stored profile, which may be newer than
// what the session token asserts.
func (h *UserHandler) Me(c *gin.Context) {
	session := middleware.SessionUserFromContext(c)
	if session == nil {
		writeError(c, h.Logger, application.ErrUnauthorized)
		return
	}
	u, err := h.Credentials.Get(c.Request.Context(), session.ID)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"id":         u.ID,
		"name":       u.Name,
		"email":      u.Email,
		"role":       u.Role,
		"created_at": u.CreatedAt.Format(time.RFC3339),
		"updated_at": u.UpdatedAt.Format(time.RFC3339),
	}, "profile", nil)
}

// Lookup GET /api/users/:id shows another user's public profile to
// teachers. Route access is checked by middleware.RequireRole.
func (h *UserHandler) Lookup(c *gin.Context) {
	u, err := h.Credentials.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, application.ErrUserNotFound) {
		response.Error[any](c, http.StatusNotFound, "not_found", "user not found", nil)
		return
	}
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
		"role":  u.Role,
	}, "user", nil)
}
