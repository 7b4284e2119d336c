package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Roles understood by the API.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a marketplace member. Every user may act as a requester and, through
// their uploaded contacts, as a connector.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	University   *string   `json:"university,omitempty"`
	LinkedInURL  *string   `json:"linkedin_url,omitempty"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FirstName returns the first whitespace separated token of the display name.
func (u User) FirstName() string {
	fields := strings.Fields(u.Name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// NewUser carries the attributes required to register a user.
type NewUser struct {
	Email        string
	PasswordHash string
	Name         string
	University   *string
	LinkedInURL  *string
	Role         string
}
