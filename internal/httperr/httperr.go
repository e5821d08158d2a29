package httperr

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type HTTPError struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

func Forbidden(c *gin.Context, code, message string) {
	Write(c, http.StatusForbidden, code, message)
}

var forbiddenCodes = map[string]bool{
	"staff_only":           true,
	"override_not_allowed": true,
	"pet_not_owned":        true,
}

// FromError maps a use case error onto the response. Persistence
// failures never expose the underlying store message.
func FromError(c *gin.Context, err error) {
	var be *BusinessError
	if !errors.As(err, &be) {
		Internal(c, "internal_error", "Unexpected failure, please try again.")
		return
	}

	switch be.Kind {
	case KindValidation:
		if forbiddenCodes[be.Code] {
			Forbidden(c, be.Code, "Not allowed for your role.")
			return
		}
		if strings.HasSuffix(be.Code, "_not_found") {
			NotFound(c, be.Code, "Resource not found.")
			return
		}
		BadRequest(c, be.Code, "Invalid request.")
	case KindConflict:
		c.JSON(http.StatusConflict, HTTPError{
			Code:    be.Code,
			Message: "The selected time is not free.",
			Reason:  be.Reason,
		})
	default:
		Internal(c, "persistence_failed", "Could not save changes, please re-check and try again.")
	}
}
