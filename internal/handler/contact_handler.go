package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Helmus101/confluence/internal/dto"
	"github.com/Helmus101/confluence/internal/service"
)

// ContactHandler manages the caller's own network.
type ContactHandler struct {
	contacts *service.ContactService
}

// NewContactHandler wires a handler backed by the contact service.
func NewContactHandler(contacts *service.ContactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

// List handles GET /api/contacts.
func (h *ContactHandler) List(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	contacts, err := h.contacts.List(c.Request().Context(), userID)
	if err != nil {
		return ServiceError(c, err, "failed to list contacts")
	}
	return Success(c, http.StatusOK, "contacts retrieved", contacts)
}

// Create handles POST /api/contacts.
func (h *ContactHandler) Create(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	var req dto.CreateContactRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	contact, err := h.contacts.Add(c.Request().Context(), userID, req)
	if err != nil {
		return ServiceError(c, err, "failed to create contact")
	}
	return Success(c, http.StatusCreated, "contact created", contact)
}

// Upload handles POST /api/contacts/upload with a multipart "file" field
// holding a CSV or XLSX document.
func (h *ContactHandler) Upload(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return Error(c, http.StatusBadRequest, "missing upload file")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return Error(c, http.StatusBadRequest, "unable to open file")
	}
	defer file.Close()

	n, err := h.contacts.Import(c.Request().Context(), userID, fileHeader.Filename, file)
	if err != nil {
		return ServiceError(c, err, "failed to process upload")
	}
	return Success(c, http.StatusOK, "contacts imported", dto.ImportResponse{Imported: n})
}

// Enrich handles POST /api/contacts/enrich.
func (h *ContactHandler) Enrich(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	resp, err := h.contacts.Enrich(c.Request().Context(), userID)
	if err != nil {
		return ServiceError(c, err, "failed to enrich contacts")
	}
	return Success(c, http.StatusOK, "contacts enriched", resp)
}
