package dto

import "time"

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type RegisterCompanyRequest struct {
	Name           string `json:"name"`
	RegistrationNo string `json:"registration_no"`
	Email          string `json:"email"`
}

type RejectCompanyRequest struct {
	Reason string `json:"reason"`
}

type BlacklistCompanyRequest struct {
	Reason string `json:"reason"`
}

type CreateTenderRequest struct {
	MDAName            string     `json:"mda_name"`
	Title              string     `json:"title"`
	Description        *string    `json:"description,omitempty"`
	Category           string     `json:"category"`
	Budget             string     `json:"budget"`
	SubmissionDeadline *time.Time `json:"submission_deadline,omitempty"`
}

type PublishTenderRequest struct {
	SubmissionDeadline time.Time `json:"submission_deadline"`
}

type AwardTenderRequest struct {
	CompanyID string `json:"company_id"`
}

type SubmitBidRequest struct {
	TenderID  string  `json:"tender_id"`
	CompanyID string  `json:"company_id"`
	Amount    string  `json:"amount"`
	Proposal  *string `json:"proposal,omitempty"`
}

type ScoreBidRequest struct {
	TechnicalScore int `json:"technical_score"`
	FinancialScore int `json:"financial_score"`
}
