package middleware

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"
)

// RequireRole admits requests whose token role is one of roles. Denials
// record the offending role under ContextKeyError so the access log keeps it.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			value, ok := c.Get(ContextKeyUserRole).(string)
			if !ok || value == "" {
				c.Set(ContextKeyError, fmt.Errorf("no role on request, requires %v", roles))
				return reject(c, http.StatusForbidden, "missing role")
			}
			if !slices.Contains(roles, value) {
				c.Set(ContextKeyError, fmt.Errorf("role %q denied, requires %v", value, roles))
				return reject(c, http.StatusForbidden, "insufficient permissions")
			}
			return next(c)
		}
	}
}
