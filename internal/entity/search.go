package entity

import (
	"strings"

	"github.com/google/uuid"
)

// SearchIntent is the structured filter derived from a free-text query.
// Empty fields are absent.
type SearchIntent struct {
	Company   string `json:"company,omitempty"`
	Industry  string `json:"industry,omitempty"`
	Role      string `json:"role,omitempty"`
	Seniority string `json:"seniority,omitempty"`
	Location  string `json:"location,omitempty"`
}

// Empty reports whether no field carries a non-blank value.
func (i SearchIntent) Empty() bool {
	return strings.TrimSpace(i.Company) == "" &&
		strings.TrimSpace(i.Industry) == "" &&
		strings.TrimSpace(i.Role) == "" &&
		strings.TrimSpace(i.Seniority) == "" &&
		strings.TrimSpace(i.Location) == ""
}

// DirectMatch is one of the searcher's own contacts.
type DirectMatch struct {
	Contact Contact `json:"contact"`
}

// ConnectorSummary is what a searcher may learn about another user acting as connector.
type ConnectorSummary struct {
	UserID        uuid.UUID `json:"user_id"`
	FirstName     string    `json:"first_name"`
	SuccessCount  int       `json:"success_count"`
	ResponseRate  int       `json:"response_rate"`
	TotalRequests int       `json:"total_requests"`
}

// IndirectMatch is a contact reachable through another user. Identifying
// contact details (name, email, phone, raw text) are never exposed.
type IndirectMatch struct {
	ContactID         uuid.UUID        `json:"contact_id"`
	Company           string           `json:"company"`
	CompanyNormalized string           `json:"company_normalized"`
	Title             *string          `json:"title,omitempty"`
	Industry          *string          `json:"industry,omitempty"`
	Seniority         *string          `json:"seniority,omitempty"`
	Location          *string          `json:"location,omitempty"`
	Confidence        int              `json:"confidence"`
	Connector         ConnectorSummary `json:"connector"`
}

// SearchResult groups direct and indirect matches. Both slices are always non-nil.
type SearchResult struct {
	Intent   SearchIntent    `json:"intent"`
	Direct   []DirectMatch   `json:"direct"`
	Indirect []IndirectMatch `json:"indirect"`
}

// EmptySearchResult returns a result with empty, non-nil slices.
func EmptySearchResult() *SearchResult {
	return &SearchResult{Direct: []DirectMatch{}, Indirect: []IndirectMatch{}}
}
