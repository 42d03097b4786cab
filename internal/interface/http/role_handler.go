package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/learnflow/learnflow-auth/internal/application"
	"github.com/learnflow/learnflow-auth/internal/interface/middleware"
	"github.com/learnflow/learnflow-auth/pkg/response"
)

type RoleHandler struct {
	Roles    *application.RoleService
	Sessions application.SessionManager
	Logger   logrus.FieldLogger
}

func NewRoleHandler(roles *application.RoleService, sessions application.SessionManager, logger logrus.FieldLogger) *RoleHandler {
	return &RoleHandler{Roles: roles, Sessions: sessions, Logger: logger}
}

type elevateRequest struct {
	TeacherCode string `json:"teacherCode" binding:"required,max=256"`
}

// Elevate POST /api/role/elevate. On success the session cookie is re-issued
// so the next request already resolves to the teacher role.
func (h *RoleHandler) Elevate(c *gin.Context) {
	session := middleware.SessionUserFromContext(c)
	if session == nil {
		writeError(c, h.Logger, application.ErrUnauthorized)
		return
	}
	var req elevateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	role, err := h.Roles.ElevateToTeacher(c.Request.Context(), session, req.TeacherCode)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}

	refreshed := *session
	refreshed.Role = role
	ck, err := h.Sessions.IssueCookie(refreshed)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	http.SetCookie(c.Writer, ck)
	response.Success(c, http.StatusOK, gin.H{"role": role}, "role updated", nil)
}
