package entity

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// IntroStatus is the lifecycle state of an introduction request.
type IntroStatus string

// Introduction request states. Transitions: pending -> accepted -> completed,
// pending -> declined.
const (
	IntroPending   IntroStatus = "pending"
	IntroAccepted  IntroStatus = "accepted"
	IntroDeclined  IntroStatus = "declined"
	IntroCompleted IntroStatus = "completed"
)

// IntroMessage is a generated subject/body pair.
type IntroMessage struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// IntroMessages holds the messages generated over a request's lifetime.
type IntroMessages struct {
	ToConnector *IntroMessage `json:"to_connector,omitempty"`
	ToTarget    *IntroMessage `json:"to_target,omitempty"`
}

// IntroRequest asks a connector to introduce the requester to someone at a company.
type IntroRequest struct {
	ID                      uuid.UUID     `json:"id"`
	RequesterID             uuid.UUID     `json:"requester_id"`
	ConnectorUserID         uuid.UUID     `json:"connector_user_id"`
	ContactID               *uuid.UUID    `json:"contact_id,omitempty"`
	TargetCompany           string        `json:"target_company"`
	TargetCompanyNormalized string        `json:"target_company_normalized"`
	Reason                  string        `json:"reason"`
	Essay                   *string       `json:"essay,omitempty"`
	Status                  IntroStatus   `json:"status"`
	Messages                IntroMessages `json:"messages"`
	CreatedAt               time.Time     `json:"created_at"`
	UpdatedAt               time.Time     `json:"updated_at"`
}

// NewIntroRequest carries the attributes persisted when a request is created.
type NewIntroRequest struct {
	RequesterID             uuid.UUID
	ConnectorUserID         uuid.UUID
	ContactID               *uuid.UUID
	TargetCompany           string
	TargetCompanyNormalized string
	Reason                  string
	Essay                   *string
}

// ConnectorStats tracks how often a connector has been asked and has delivered.
type ConnectorStats struct {
	UserID        uuid.UUID `json:"user_id"`
	TotalRequests int       `json:"total_requests"`
	SuccessCount  int       `json:"success_count"`
	ResponseRate  int       `json:"response_rate"`
}

// Recompute derives ResponseRate from the counters.
func (s *ConnectorStats) Recompute() {
	s.ResponseRate = ResponseRate(s.SuccessCount, s.TotalRequests)
}

// ResponseRate returns round(success/total*100), or 0 when total is zero.
func ResponseRate(success, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(success) / float64(total) * 100))
}

// WeeklyUsage is the per-user, per-ISO-week indirect request counter.
type WeeklyUsage struct {
	UserID                uuid.UUID `json:"user_id"`
	WeekStart             time.Time `json:"week_start"`
	IndirectRequestsCount int       `json:"indirect_requests_count"`
}
