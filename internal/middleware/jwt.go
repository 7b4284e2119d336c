package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	authpkg "github.com/Helmus101/confluence/internal/auth"
)

type errorBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func reject(c echo.Context, status int, message string) error {
	return c.JSON(status, errorBody{Status: "error", Message: message})
}

// JWT validates bearer tokens and stores user metadata in the request context.
func JWT(manager *authpkg.JWTManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return reject(c, http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return reject(c, http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := manager.ParseToken(strings.TrimSpace(parts[1]))
			if err != nil {
				return reject(c, http.StatusUnauthorized, "invalid token")
			}
			userID, err := claims.UserID()
			if err != nil {
				return reject(c, http.StatusUnauthorized, "invalid token subject")
			}

			c.Set(ContextKeyUserID, userID.String())
			c.Set(ContextKeyUserEmail, claims.Email)
			c.Set(ContextKeyUserRole, claims.Role)

			return next(c)
		}
	}
}
