package entity

import (
	"time"

	"github.com/google/uuid"
)

// Contact is one entry of a user's professional network. Structured fields stay
// nil until enrichment runs; Enriched flips to true exactly once.
type Contact struct {
	ID                uuid.UUID `json:"id"`
	UserID            uuid.UUID `json:"user_id"`
	RawText           string    `json:"raw_text"`
	Name              *string   `json:"name,omitempty"`
	Email             *string   `json:"email,omitempty"`
	Phone             *string   `json:"phone,omitempty"`
	Company           *string   `json:"company,omitempty"`
	CompanyNormalized *string   `json:"company_normalized,omitempty"`
	Title             *string   `json:"title,omitempty"`
	Industry          *string   `json:"industry,omitempty"`
	Seniority         *string   `json:"seniority,omitempty"`
	Location          *string   `json:"location,omitempty"`
	LinkedInURL       *string   `json:"linkedin_url,omitempty"`
	Confidence        *int      `json:"confidence,omitempty"`
	Enriched          bool      `json:"enriched"`
	Extended
	CreatedAt time.Time `json:"created_at"`
}

// Extended groups the optional attributes produced by detailed enrichment.
type Extended struct {
	CompanySize      *string  `json:"company_size,omitempty"`
	FundingStage     *string  `json:"funding_stage,omitempty"`
	YearsExperience  *int     `json:"years_experience,omitempty"`
	Skills           []string `json:"skills,omitempty"`
	Education        *string  `json:"education,omitempty"`
	University       *string  `json:"university,omitempty"`
	Degree           *string  `json:"degree,omitempty"`
	Major            *string  `json:"major,omitempty"`
	GraduationYear   *int     `json:"graduation_year,omitempty"`
	RecentRoleChange *bool    `json:"recent_role_change,omitempty"`
	IndustryFit      *string  `json:"industry_fit,omitempty"`
	LinkedInSummary  *string  `json:"linkedin_summary,omitempty"`
}

// NewContact is the unenriched payload accepted by the store.
type NewContact struct {
	RawText     string
	LinkedInURL *string
}

// ContactPatch describes a partial contact update. Nil fields are left untouched.
type ContactPatch struct {
	Name        *string
	Email       *string
	Phone       *string
	Company     *string
	Title       *string
	Industry    *string
	Seniority   *string
	Location    *string
	LinkedInURL *string
	Confidence  *int
	Enriched    *bool
	Extended    *Extended
}

// EnrichedData is the structured result of enriching one contact's raw text.
// On collaborator failure every field is nil and Confidence is 0.
type EnrichedData struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	Company    *string `json:"company"`
	Title      *string `json:"title"`
	Industry   *string `json:"industry"`
	Seniority  *string `json:"seniority"`
	Location   *string `json:"location"`
	Confidence int     `json:"confidence"`
	Extended
}

// Patch converts enrichment output into a store patch that marks the contact enriched.
func (d EnrichedData) Patch() ContactPatch {
	enriched := true
	confidence := d.Confidence
	ext := d.Extended
	return ContactPatch{
		Name:       d.Name,
		Email:      d.Email,
		Phone:      d.Phone,
		Company:    d.Company,
		Title:      d.Title,
		Industry:   d.Industry,
		Seniority:  d.Seniority,
		Location:   d.Location,
		Confidence: &confidence,
		Enriched:   &enriched,
		Extended:   &ext,
	}
}

// Apply copies the non-nil fields of the patch onto the contact.
// CompanyNormalized is owned by the store and is not touched here.
func (p ContactPatch) Apply(c *Contact) {
	setString := func(dst **string, src *string) {
		if src != nil {
			v := *src
			*dst = &v
		}
	}
	setString(&c.Name, p.Name)
	setString(&c.Email, p.Email)
	setString(&c.Phone, p.Phone)
	setString(&c.Company, p.Company)
	setString(&c.Title, p.Title)
	setString(&c.Industry, p.Industry)
	setString(&c.Seniority, p.Seniority)
	setString(&c.Location, p.Location)
	setString(&c.LinkedInURL, p.LinkedInURL)
	if p.Confidence != nil {
		v := *p.Confidence
		c.Confidence = &v
	}
	if p.Enriched != nil {
		c.Enriched = *p.Enriched
	}
	if p.Extended != nil {
		c.Extended = *p.Extended
		if p.Extended.Skills != nil {
			c.Skills = append([]string(nil), p.Extended.Skills...)
		}
	}
}
