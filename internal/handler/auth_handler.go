package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Helmus101/confluence/internal/dto"
	"github.com/Helmus101/confluence/internal/service"
)

// AuthHandler exposes authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
	users       *service.UserService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(authService *service.AuthService, users *service.UserService) *AuthHandler {
	return &AuthHandler{authService: authService, users: users}
}

// Signup handles POST /api/auth/signup requests.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req dto.SignupRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return Error(c, http.StatusBadRequest, "email and password are required")
	}

	resp, err := h.authService.Signup(c.Request().Context(), req)
	if err != nil {
		return ServiceError(c, err, "unable to register user")
	}

	return Success(c, http.StatusCreated, "registration successful", resp)
}

// Login handles POST /api/auth/login requests.
func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return Error(c, http.StatusBadRequest, "email and password are required")
	}

	resp, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return ServiceError(c, err, "unable to authenticate")
	}

	return Success(c, http.StatusOK, "login successful", resp)
}

// Me handles GET /api/me.
func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	me, err := h.users.Me(c.Request().Context(), userID)
	if err != nil {
		return ServiceError(c, err, "unable to load profile")
	}
	return Success(c, http.StatusOK, "profile retrieved", me)
}
