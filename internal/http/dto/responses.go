package dto

type AuthResponse struct {
	Token string `json:"token"`
	User  any    `json:"user"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type SuccessResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data,omitempty"`
}

type IntegrityResponse struct {
	Valid           bool   `json:"valid"`
	OffendingEntry  string `json:"offending_entry,omitempty"`
	EntriesVerified int    `json:"entries_verified"`
}
