package dto

// UserResponse represents user data returned to clients.
type UserResponse struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	Name        string  `json:"name"`
	University  *string `json:"university,omitempty"`
	LinkedInURL *string `json:"linkedin_url,omitempty"`
	Role        string  `json:"role"`
}
