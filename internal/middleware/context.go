package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Context keys used to store authentication metadata.
const (
	ContextKeyUserID    = "user_id"
	ContextKeyUserEmail = "user_email"
	ContextKeyUserRole  = "user_role"
	ContextKeyRequestID = "request_id"
	// ContextKeyError carries an error a handler or guard already rendered.
	ContextKeyError     = "handler_error"
)

// UserIDFromContext returns the authenticated user's id set by JWT.
func UserIDFromContext(c echo.Context) (uuid.UUID, bool) {
	raw, ok := c.Get(ContextKeyUserID).(string)
	if !ok || raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
