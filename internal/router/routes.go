package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Helmus101/confluence/internal/auth"
	"github.com/Helmus101/confluence/internal/config"
	"github.com/Helmus101/confluence/internal/entity"
	"github.com/Helmus101/confluence/internal/handler"
	middlewarepkg "github.com/Helmus101/confluence/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Auth          *handler.AuthHandler
	Contacts      *handler.ContactHandler
	Search        *handler.SearchHandler
	Intros        *handler.IntroHandler
	Notifications *handler.NotificationHandler
	Admin         *handler.AdminHandler
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})

	api := e.Group("/api")
	api.POST("/auth/signup", handlers.Auth.Signup)
	api.POST("/auth/login", handlers.Auth.Login)

	secured := api.Group("")
	secured.Use(middlewarepkg.JWT(jwtManager))

	aiLimited := middlewarepkg.AIRateLimiter(cfg.RateLimitAI)

	secured.GET("/me", handlers.Auth.Me)

	secured.GET("/contacts", handlers.Contacts.List)
	secured.POST("/contacts", handlers.Contacts.Create)
	secured.POST("/contacts/upload", handlers.Contacts.Upload)
	secured.POST("/contacts/enrich", handlers.Contacts.Enrich, aiLimited)

	secured.GET("/search", handlers.Search.Search, aiLimited)

	secured.POST("/intros", handlers.Intros.Create, aiLimited)
	secured.GET("/intros/sent", handlers.Intros.ListSent)
	secured.GET("/intros/received", handlers.Intros.ListReceived)
	secured.GET("/intros/:id", handlers.Intros.Get)
	secured.POST("/intros/:id/respond", handlers.Intros.Respond, aiLimited)
	secured.POST("/intros/:id/complete", handlers.Intros.Complete)

	secured.GET("/notifications", handlers.Notifications.List)
	secured.GET("/notifications/unread-count", handlers.Notifications.UnreadCount)
	secured.POST("/notifications/read-all", handlers.Notifications.MarkAllRead)
	secured.POST("/notifications/:id/read", handlers.Notifications.MarkRead)

	admin := secured.Group("/admin", middlewarepkg.RequireRole(entity.RoleAdmin))
	admin.GET("/stats", handlers.Admin.Stats)
	admin.GET("/users", handlers.Admin.ListUsers)
}
