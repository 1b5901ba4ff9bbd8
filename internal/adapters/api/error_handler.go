package api

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"weatherbot.app/internal/ports"
	errorspkg "weatherbot.app/pkg/errors"
)

// ErrorResponse represents an error message structure for API responses
type ErrorResponse struct {
	Error string `json:"error"`
}

// handleError maps application errors to status codes. Infrastructure
// details stay in the log, never in the response body.
func (s *HTTPServerAdapter) handleError(c *gin.Context, err error) {
	var appErr *errorspkg.AppError
	if !stderrors.As(err, &appErr) {
		s.logError(c, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}

	var statusCode int
	var message string

	switch appErr.Type {
	case errorspkg.ErrorTypeValidation:
		statusCode = http.StatusBadRequest
		message = appErr.Message
	case errorspkg.ErrorTypeNotFound:
		statusCode = http.StatusNotFound
		message = appErr.Message
	case errorspkg.ErrorTypeUnauthorized:
		statusCode = http.StatusUnauthorized
		message = appErr.Message
	case errorspkg.ErrorTypeExternalAPI, errorspkg.ErrorTypeMessaging:
		statusCode = http.StatusServiceUnavailable
		message = "External service unavailable"
	case errorspkg.ErrorTypeDatabase:
		statusCode = http.StatusServiceUnavailable
		message = "Storage unavailable"
	default:
		statusCode = http.StatusInternalServerError
		message = "Internal server error"
	}

	if statusCode >= http.StatusInternalServerError {
		s.logError(c, err)
	}
	c.JSON(statusCode, ErrorResponse{Error: message})
}

func (s *HTTPServerAdapter) logError(c *gin.Context, err error) {
	if s.logger == nil {
		return
	}
	s.logger.Error("Request failed",
		ports.F("path", c.Request.URL.Path),
		ports.F("error", err.Error()))
}
