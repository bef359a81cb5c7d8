package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/wooglin/roster-api/internal/errors"
	"github.com/wooglin/roster-api/internal/middleware"
	"github.com/wooglin/roster-api/internal/services"
)

const msgInvalidBody = "Invalid request body"

// respondError writes err in the shape its type calls for. Unexpected
// errors are attached to the context for the request logger and answered
// with a generic 500.
func respondError(c *gin.Context, err error) {
	if fe, ok := apierrors.AsFieldError(err); ok {
		apierrors.Respond(c, fe)
		return
	}

	switch {
	case errors.Is(err, services.ErrMemberNotFound),
		errors.Is(err, services.ErrShiftNotFound),
		errors.Is(err, services.ErrEventNotFound),
		errors.Is(err, services.ErrAttendanceNotFound),
		errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "")
	default:
		_ = c.Error(err)
		apierrors.InternalError(c, "")
	}
}

// parseID reads a numeric path parameter, answering 404 when it is not one.
func parseID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		apierrors.NotFound(c, "")
		return 0, false
	}
	return id, true
}

// caller returns the authenticated caller, answering 401 when missing.
func caller(c *gin.Context) (services.Caller, bool) {
	who, ok := middleware.GetCaller(c)
	if !ok {
		apierrors.Unauthorized(c, "")
	}
	return who, ok
}
