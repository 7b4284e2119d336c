package dto

// CreateContactRequest is the manual contact form. Fields are joined into the
// contact's raw text; RawText, when set, is used verbatim.
type CreateContactRequest struct {
	RawText     string `json:"raw_text,omitempty"`
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	Company     string `json:"company,omitempty"`
	Title       string `json:"title,omitempty"`
	Location    string `json:"location,omitempty"`
	Notes       string `json:"notes,omitempty"`
	LinkedInURL string `json:"linkedin_url,omitempty"`
}

// ImportResponse reports how many contacts an upload created.
type ImportResponse struct {
	Imported int `json:"imported"`
}

// EnrichResponse reports how many contacts an enrichment run updated.
type EnrichResponse struct {
	Enriched int `json:"enriched"`
	Failed   int `json:"failed"`
}
