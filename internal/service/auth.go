package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Helmus101/confluence/internal/auth"
	"github.com/Helmus101/confluence/internal/dto"
	"github.com/Helmus101/confluence/internal/entity"
	"github.com/Helmus101/confluence/internal/repository"
)

const minPasswordLength = 8

// AuthService coordinates registration, credential validation and token issuance.
type AuthService struct {
	users repository.UsersRepository
	jwt   *auth.JWTManager
}

// NewAuthService constructs a new AuthService.
func NewAuthService(users repository.UsersRepository, jwtManager *auth.JWTManager) *AuthService {
	return &AuthService{users: users, jwt: jwtManager}
}

// Signup registers a regular user and returns a token for the new account.
func (s *AuthService) Signup(ctx context.Context, req dto.SignupRequest) (*dto.LoginResponse, error) {
	email := cleanEmail(req.Email)
	if email == "" {
		return nil, invalid("email", "must be a valid email address")
	}
	if len(req.Password) < minPasswordLength {
		return nil, invalid("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("name", "is required")
	}

	var linkedIn *string
	if req.LinkedInURL != nil && strings.TrimSpace(*req.LinkedInURL) != "" {
		cleaned, err := CleanLinkedInURL(*req.LinkedInURL)
		if err != nil {
			return nil, invalid("linkedin_url", err.Error())
		}
		linkedIn = &cleaned
	}
	var university *string
	if req.University != nil {
		university = optional(strings.TrimSpace(*req.University))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, entity.NewUser{
		Email:        email,
		PasswordHash: string(hashed),
		Name:         name,
		University:   university,
		LinkedInURL:  linkedIn,
		Role:         entity.RoleUser,
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return s.issue(user)
}

// Login validates credentials and returns a JWT.
func (s *AuthService) Login(ctx context.Context, email, password string) (*dto.LoginResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, invalid("", "email and password must not be empty")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *entity.User) (*dto.LoginResponse, error) {
	token, err := s.jwt.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{AccessToken: token, User: ToUserResponse(user)}, nil
}

// ToUserResponse maps a user to its public representation.
func ToUserResponse(u *entity.User) dto.UserResponse {
	return dto.UserResponse{
		ID:          u.ID.String(),
		Email:       u.Email,
		Name:        u.Name,
		University:  u.University,
		LinkedInURL: u.LinkedInURL,
		Role:        u.Role,
	}
}
