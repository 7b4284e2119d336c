package entity

import (
	"time"

	"github.com/google/uuid"
)

// Notification types.
const (
	NotificationIntroRequest     = "intro_request"
	NotificationIntroAccepted    = "intro_accepted"
	NotificationIntroDeclined    = "intro_declined"
	NotificationIntroCompleted   = "intro_completed"
	NotificationContactsEnriched = "contacts_enriched"
)

// Notification is an in-app message addressed to one user.
type Notification struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"user_id"`
	Type           string     `json:"type"`
	Title          string     `json:"title"`
	Message        string     `json:"message"`
	IntroRequestID *uuid.UUID `json:"intro_request_id,omitempty"`
	Read           bool       `json:"read"`
	CreatedAt      time.Time  `json:"created_at"`
}
