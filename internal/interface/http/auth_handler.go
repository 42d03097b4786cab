package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/learnflow/learnflow-auth/internal/application"
	"github.com/learnflow/learnflow-auth/internal/domain/entity"
	"github.com/learnflow/learnflow-auth/internal/interface/middleware"
	"github.com/learnflow/learnflow-auth/pkg/response"
)

type AuthHandler struct {
	Auth   *application.AuthService
	Logger logrus.FieldLogger
}

func NewAuthHandler(auth *application.AuthService, logger logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{Auth: auth, Logger: logger}
}

type signUpRequest struct {
	Name     string `json:"name" binding:"required,max=120"`
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,pwd,max=256"`
}

// Sign-in only checks presence; password policy is not revealed here.
type signInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type syncRequest struct {
	ID    string      `json:"id" binding:"required,uuid"`
	Name  string      `json:"name" binding:"max=120"`
	Email string      `json:"email" binding:"required,email"`
	Role  entity.Role `json:"role" binding:"required,role"`
}

type sessionView struct {
	User    entity.SessionUser `json:"user"`
	Session *sessionWindow     `json:"session,omitempty"`
}

type sessionWindow struct {
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SignUp POST /api/auth/sign-up
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	u, ck, err := h.Auth.SignUp(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	http.SetCookie(c.Writer, ck)
	response.Success(c, http.StatusCreated, sessionView{User: u.Public()}, "signed up", nil)
}

// SignIn POST /api/auth/sign-in
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	u, ck, err := h.Auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	http.SetCookie(c.Writer, ck)
	response.Success(c, http.StatusOK, sessionView{User: u.Public()}, "signed in", nil)
}

// SignOut POST /api/auth/sign-out always succeeds, session or not.
func (h *AuthHandler) SignOut(c *gin.Context) {
	http.SetCookie(c.Writer, h.Auth.SignOut())
	response.Success(c, http.StatusOK, gin.H{"ok": true}, "signed out", nil)
}

// Session GET /api/auth/session answers data:null for anonymous callers.
func (h *AuthHandler) Session(c *gin.Context) {
	sess := middleware.SessionFromContext(c)
	if sess == nil {
		response.Success[any](c, http.StatusOK, nil, "no session", nil)
		return
	}
	response.Success(c, http.StatusOK, sessionView{
		User:    sess.User,
		Session: &sessionWindow{IssuedAt: sess.IssuedAt, ExpiresAt: sess.ExpiresAt},
	}, "session", nil)
}

// Sync POST /api/auth/session/sync re-asserts the cookie for a client that
// still holds a cached identity.
func (h *AuthHandler) Sync(c *gin.Context) {
	var req syncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	u, ck, err := h.Auth.SyncSession(entity.SessionUser{ID: req.ID, Name: req.Name, Email: req.Email, Role: req.Role})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	http.SetCookie(c.Writer, ck)
	response.Success(c, http.StatusOK, sessionView{User: *u}, "session synced", nil)
}
