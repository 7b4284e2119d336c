package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Helmus101/confluence/internal/dto"
	"github.com/Helmus101/confluence/internal/service"
)

// SearchHandler exposes the match engine.
type SearchHandler struct {
	search *service.SearchService
}

// NewSearchHandler constructs a SearchHandler.
func NewSearchHandler(search *service.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

// Search handles GET /api/search?q=.
func (h *SearchHandler) Search(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	var query dto.SearchQuery
	if err := c.Bind(&query); err != nil {
		return Error(c, http.StatusBadRequest, "invalid query")
	}
	result, err := h.search.Search(c.Request().Context(), userID, query.Q)
	if err != nil {
		return ServiceError(c, err, "search failed")
	}
	return Success(c, http.StatusOK, "search completed", result)
}
