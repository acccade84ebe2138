package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bookstore-backend/pkg/apperror"
	"github.com/oksasatya/bookstore-backend/pkg/response"
	"github.com/oksasatya/bookstore-backend/pkg/validation"
)

const internalMessage = "internal server error"

// respondError writes err with the status of its kind. Internal faults are logged
// (and reach Sentry through the logger hook) but answered with an opaque message.
func respondError(c *gin.Context, logger logrus.FieldLogger, err error) {
	appErr, ok := apperror.From(err)
	if !ok || appErr.Kind == apperror.Internal {
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"method":     c.Request.Method,
			"path":       c.FullPath(),
		}).Error("request failed")
		response.Error[any](c, http.StatusInternalServerError, internalMessage, nil)
		return
	}
	response.Error[any](c, appErr.StatusCode(), appErr.Message, nil)
}

// badRequest answers a binding or decoding failure with per-field details
func badRequest(c *gin.Context, err error) {
	response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
}
