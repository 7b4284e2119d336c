package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Helmus101/confluence/internal/service"
)

// AdminHandler exposes administrative read-only endpoints.
type AdminHandler struct {
	users   *service.UserService
	reports *service.ReportService
}

// NewAdminHandler constructs a handler instance.
func NewAdminHandler(users *service.UserService, reports *service.ReportService) *AdminHandler {
	return &AdminHandler{users: users, reports: reports}
}

// ListUsers returns all users.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	records, err := h.users.ListUsers(c.Request().Context())
	if err != nil {
		return ServiceError(c, err, "failed to list users")
	}
	return Success(c, http.StatusOK, "users retrieved", records)
}

// Stats returns the marketplace report.
func (h *AdminHandler) Stats(c echo.Context) error {
	report, err := h.reports.Build(c.Request().Context())
	if err != nil {
		return ServiceError(c, err, "failed to build report")
	}
	return Success(c, http.StatusOK, "stats retrieved", report)
}
