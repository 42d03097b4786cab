package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/learnflow/learnflow-auth/internal/application"
	"github.com/learnflow/learnflow-auth/pkg/response"
	"github.com/learnflow/learnflow-auth/pkg/validation"
)

// writeError maps application errors onto status codes and stable error
// codes. Unknown errors are logged and answered with a bare 500.
func writeError(c *gin.Context, logger logrus.FieldLogger, err error) {
	switch {
	case errors.Is(err, application.ErrDuplicateEmail):
		response.Error[any](c, http.StatusConflict, "duplicate_email", "email already registered", nil)
	case errors.Is(err, application.ErrInvalidCredentials):
		response.Error[any](c, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", nil)
	case errors.Is(err, application.ErrInvalidCode):
		response.Error[any](c, http.StatusForbidden, "invalid_code", "invalid teacher code", nil)
	case errors.Is(err, application.ErrUnauthorized), errors.Is(err, application.ErrUserNotFound):
		response.Error[any](c, http.StatusUnauthorized, "unauthorized", "unauthorized", nil)
	case errors.Is(err, application.ErrForbidden):
		response.Error[any](c, http.StatusForbidden, "forbidden", "forbidden", nil)
	case errors.Is(err, application.ErrInvalidInput):
		response.Error[any](c, http.StatusBadRequest, "invalid_payload", "invalid payload", nil)
	default:
		if logger != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"request_id": c.GetString("request_id"),
				"path":       c.FullPath(),
			}).Error("request failed")
		}
		response.Error[any](c, http.StatusInternalServerError, "internal", "internal server error", nil)
	}
}

func writeBindError(c *gin.Context, err error) {
	response.Error[any](c, http.StatusBadRequest, "invalid_payload", "invalid payload", validation.ToDetails(err))
}
