// Package handler defines the HTTP handlers for the inventory API.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/davilat/bus-inventory/internal/layout"
	"github.com/davilat/bus-inventory/internal/repository"
)

// getUserID extracts the authenticated user id from the context. The JWT
// middleware stores the raw claim, which arrives as a float64 after JSON
// decoding.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
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

// pathID parses a numeric, non-zero path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id != 0
}

// respondErr maps service and repository errors onto HTTP responses.
// Validation failures carry their per-entry field details so the seat
// editor can highlight the offending cells.
func respondErr(c echo.Context, err error) error {
	if ve, ok := layout.AsValidation(err); ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Message, "fields": ve.Fields})
	}
	switch {
	case errors.Is(err, repository.ErrTemplateNotFound),
		errors.Is(err, repository.ErrDiagramNotFound),
		errors.Is(err, repository.ErrSpaceNotFound),
		errors.Is(err, repository.ErrZoneNotFound),
		errors.Is(err, repository.ErrBusNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrEmailTaken),
		errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	}
	c.Logger().Error(err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
