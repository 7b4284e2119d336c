package dto

// SignupRequest captures self-service registration payloads.
type SignupRequest struct {
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	Name        string  `json:"name"`
	University  *string `json:"university,omitempty"`
	LinkedInURL *string `json:"linkedin_url,omitempty"`
}

// LoginRequest captures credential input.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse contains the issued access token and the caller's profile.
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	User        UserResponse `json:"user"`
}
