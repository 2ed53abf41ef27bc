package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	pkgerrors "github.com/yungbote/bytesolver-backend/internal/pkg/errors"
	"github.com/yungbote/bytesolver-backend/internal/platform/apierr"
)

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorEnvelope struct {
	Success bool     `json:"success"`
	Error   APIError `json:"error"`
}

const internalMessage = "Something went wrong. Please try again."

func RespondOK(c *gin.Context, payload gin.H) {
	respond(c, http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload gin.H) {
	respond(c, http.StatusCreated, payload)
}

func respond(c *gin.Context, status int, payload gin.H) {
	if payload == nil {
		payload = gin.H{}
	}
	payload["success"] = true
	c.JSON(status, payload)
}

func RespondError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{Code: code, Message: message},
	})
}

// RespondErr is the single error formatter. Unclassified errors become a
// generic 500 and are attached to the gin context for the request logger.
func RespondErr(c *gin.Context, err error) {
	status, code, msg := Classify(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	RespondError(c, status, code, msg)
}

// Classify maps err to its HTTP status, error code and client message.
func Classify(err error) (int, string, string) {
	if ae, ok := apierr.As(err); ok {
		status := ae.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		code := ae.Code
		if code == "" {
			code = "INTERNAL_ERROR"
		}
		if status >= http.StatusInternalServerError && ae.Err == nil {
			return status, code, internalMessage
		}
		return status, code, ae.Error()
	}
	switch {
	case errors.Is(err, pkgerrors.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "Resource not found"
	case errors.Is(err, pkgerrors.ErrConflict):
		return http.StatusConflict, "CONFLICT", "Resource already exists"
	case errors.Is(err, pkgerrors.ErrInvalidArgument):
		return http.StatusBadRequest, "VALIDATION_ERROR", err.Error()
	case errors.Is(err, pkgerrors.ErrUnauthorized):
		return http.StatusUnauthorized, "AUTH_REQUIRED", "Authentication required"
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR", internalMessage
}
