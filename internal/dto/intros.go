package dto

// CreateIntroRequest asks a connector for an introduction.
type CreateIntroRequest struct {
	ConnectorUserID string  `json:"connector_user_id"`
	ContactID       *string `json:"contact_id,omitempty"`
	TargetCompany   string  `json:"target_company"`
	Reason          string  `json:"reason"`
	Essay           *string `json:"essay,omitempty"`
}

// RespondIntroRequest carries the connector's decision: "accept" or "decline".
type RespondIntroRequest struct {
	Action string `json:"action"`
}

// SearchQuery is the query string of the search endpoint.
type SearchQuery struct {
	Q string `query:"q"`
}

// UnreadCountResponse wraps the unread notification counter.
type UnreadCountResponse struct {
	Count int `json:"count"`
}

// MarkAllReadResponse reports how many notifications were updated.
type MarkAllReadResponse struct {
	Updated int `json:"updated"`
}
