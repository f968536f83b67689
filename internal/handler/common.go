package handler // handler defines http handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/dang0801205/volunteerhub-sub000/internal/lock"
	"github.com/dang0801205/volunteerhub-sub000/internal/service"
)

// getUserID extracts the user_id from echo.Context and converts it to uint64.
// JWT numeric claims decode as float64, so several representations are
// accepted.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// getRole returns the role claim injected by the JWT middleware.
func getRole(c echo.Context) string {
	role, _ := c.Get("role").(string)
	return role
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}

// writeServiceError maps service sentinels onto HTTP statuses.  Anything
// unmapped is a server fault and reported as 500 without leaking detail.
func writeServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInvalidRating):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrEventNotOpen),
		errors.Is(err, service.ErrCapacityExceeded),
		errors.Is(err, service.ErrNotEligible):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrStatusConflict),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrAlreadyResolved),
		errors.Is(err, service.ErrDuplicateRequest),
		errors.Is(err, service.ErrAlreadyRegistered),
		errors.Is(err, service.ErrNotWaitlisted),
		errors.Is(err, service.ErrAlreadyCheckedOut),
		errors.Is(err, service.ErrAlreadySubmitted),
		errors.Is(err, service.ErrCascadeFailure):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, lock.ErrLockTimeout):
		c.Response().Header().Set("Retry-After", "1")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "event is busy, retry shortly"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
