package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Helmus101/confluence/internal/middleware"
	"github.com/Helmus101/confluence/internal/service"
)

// APIResponse describes the standard envelope returned by the API.
type APIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Success sends a successful response using the shared envelope format.
func Success(c echo.Context, status int, message string, data any) error {
	if status == 0 {
		status = http.StatusOK
	}
	payload := APIResponse{
		Status:  "success",
		Message: message,
		Data:    data,
	}
	return c.JSON(status, payload)
}

// Error sends an error response using the shared envelope format.
func Error(c echo.Context, status int, message string) error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	payload := APIResponse{
		Status:  "error",
		Message: message,
	}
	return c.JSON(status, payload)
}

// ServiceError maps service errors onto HTTP statuses. Unknown errors are
// returned to the logging middleware with fallback as the client message.
func ServiceError(c echo.Context, err error, fallback string) error {
	var validation *service.ValidationError
	switch {
	case errors.As(err, &validation):
		return Error(c, http.StatusBadRequest, validation.Error())
	case errors.Is(err, service.ErrNotFound):
		return Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrEmailTaken):
		return Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrRateLimited):
		return Error(c, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, service.ErrInsufficientContacts):
		return Error(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		return Error(c, http.StatusUnauthorized, err.Error())
	}
	c.Set(middleware.ContextKeyError, err)
	return Error(c, http.StatusInternalServerError, fallback)
}

func currentUser(c echo.Context) (uuid.UUID, bool) {
	return middleware.UserIDFromContext(c)
}

func unauthenticated(c echo.Context) error {
	return Error(c, http.StatusUnauthorized, "unauthenticated")
}

func pathID(c echo.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	return id, err == nil
}
