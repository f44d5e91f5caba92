package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sariqmarket/b2b-backend/internal/service"
)

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error errorPayload `json:"error"`
}

func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: errorPayload{
			Code:    code,
			Message: message,
		},
	}
}

// serviceError maps the service error taxonomy onto HTTP responses. Fetch
// and mutation failures come back as 502 so the admin UI can show a retry
// affordance instead of treating them as client mistakes.
func serviceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "purchase not found"))
	case errors.Is(err, service.ErrUnauthorized):
		return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "admin session required"))
	case errors.Is(err, service.ErrConflict):
		return c.JSON(http.StatusConflict, NewErrorResponse("conflict", "purchase was modified concurrently, reload and retry"))
	case errors.Is(err, service.ErrInvalidTransition):
		return c.JSON(http.StatusUnprocessableEntity, NewErrorResponse("invalid_transition", err.Error()))
	case errors.Is(err, service.ErrInvalidStatus):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("invalid_status", err.Error()))
	case errors.Is(err, service.ErrFetch):
		return c.JSON(http.StatusBadGateway, NewErrorResponse("fetch_failed", "failed to load transactions"))
	case errors.Is(err, service.ErrMutation):
		return c.JSON(http.StatusBadGateway, NewErrorResponse("mutation_failed", err.Error()))
	default:
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", err.Error()))
	}
}
