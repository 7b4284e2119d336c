package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Helmus101/confluence/internal/dto"
	"github.com/Helmus101/confluence/internal/service"
)

// IntroHandler exposes the introduction request lifecycle.
type IntroHandler struct {
	intros *service.IntroService
}

// NewIntroHandler constructs an IntroHandler.
func NewIntroHandler(intros *service.IntroService) *IntroHandler {
	return &IntroHandler{intros: intros}
}

// Create handles POST /api/intros.
func (h *IntroHandler) Create(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	var req dto.CreateIntroRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	created, err := h.intros.Create(c.Request().Context(), userID, req)
	if err != nil {
		return ServiceError(c, err, "failed to create intro request")
	}
	return Success(c, http.StatusCreated, "intro request created", created)
}

// Get handles GET /api/intros/:id.
func (h *IntroHandler) Get(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return Error(c, http.StatusBadRequest, "invalid intro request id")
	}
	req, err := h.intros.Get(c.Request().Context(), id, userID)
	if err != nil {
		return ServiceError(c, err, "failed to load intro request")
	}
	return Success(c, http.StatusOK, "intro request retrieved", req)
}

// ListSent handles GET /api/intros/sent.
func (h *IntroHandler) ListSent(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	list, err := h.intros.ListSent(c.Request().Context(), userID)
	if err != nil {
		return ServiceError(c, err, "failed to list intro requests")
	}
	return Success(c, http.StatusOK, "intro requests retrieved", list)
}

// ListReceived handles GET /api/intros/received.
func (h *IntroHandler) ListReceived(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	list, err := h.intros.ListReceived(c.Request().Context(), userID)
	if err != nil {
		return ServiceError(c, err, "failed to list intro requests")
	}
	return Success(c, http.StatusOK, "intro requests retrieved", list)
}

// Respond handles POST /api/intros/:id/respond.
func (h *IntroHandler) Respond(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return Error(c, http.StatusBadRequest, "invalid intro request id")
	}
	var req dto.RespondIntroRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	result, err := h.intros.Respond(c.Request().Context(), id, userID, req.Action)
	if err != nil {
		return ServiceError(c, err, "failed to respond to intro request")
	}
	return Success(c, http.StatusOK, "intro request "+string(result.Request.Status), result)
}

// Complete handles POST /api/intros/:id/complete.
func (h *IntroHandler) Complete(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return Error(c, http.StatusBadRequest, "invalid intro request id")
	}
	req, err := h.intros.Complete(c.Request().Context(), id, userID)
	if err != nil {
		return ServiceError(c, err, "failed to complete intro request")
	}
	return Success(c, http.StatusOK, "intro request completed", req)
}
