package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/easyrent/vehiclerental/internal/domain"
	"github.com/easyrent/vehiclerental/internal/routing"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const serverErrorMessage = "Server error"

// respondError maps service errors to a status and a {"message"} body.
// Unexpected errors, provider failures included, are attached to the
// context for the request logger.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, gin.H{"message": serverErrorMessage})
		return
	}
	c.JSON(status, gin.H{"message": err.Error()})
}

// respondUpstream relays a routing provider failure with the provider's own
// status and body. Only the directions proxy answers this way.
func respondUpstream(c *gin.Context, err error) bool {
	var upstream *routing.UpstreamError
	if !errors.As(err, &upstream) {
		return false
	}
	var body any = string(upstream.Body)
	if json.Valid(upstream.Body) {
		body = json.RawMessage(upstream.Body)
	}
	c.JSON(upstream.Status, gin.H{"error": body})
	return true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrDuplicateUser),
		errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrOutsideServiceArea),
		errors.Is(err, domain.ErrUnknownBranch),
		errors.Is(err, domain.ErrCaptchaMismatch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondBindError reports the first failing field of a request body.
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"message": bindingMessage(err)})
}

func bindingMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		if fe.Tag() == "required" {
			return fe.Field() + " is required"
		}
		return "invalid " + fe.Field()
	}
	return "invalid request body"
}
