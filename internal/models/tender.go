package models

import (
	"time"

	"github.com/google/uuid"
)

// Tender statuses
const (
	TenderStatusDraft           = "draft"
	TenderStatusPublished       = "published"
	TenderStatusClosed          = "closed"
	TenderStatusUnderEvaluation = "under_evaluation"
	TenderStatusAwarded         = "awarded"
	TenderStatusContracted      = "contracted"
	TenderStatusCancelled       = "cancelled"
)

type Tender struct {
	ID                 uuid.UUID  `json:"id"`
	MDAName            string     `json:"mda_name"`
	Title              string     `json:"title"`
	Description        *string    `json:"description,omitempty"`
	Category           string     `json:"category"`
	Budget             string     `json:"budget"`
	Status             string     `json:"status"`
	CreatedBy          uuid.UUID  `json:"created_by"`
	SubmissionDeadline *time.Time `json:"submission_deadline,omitempty"`
	AwardedCompanyID   *uuid.UUID `json:"awarded_company_id,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// ValidTenderTransitions defines the tender lifecycle. The published→closed
// edge is also driven automatically by the worker once the submission
// deadline passes.
var ValidTenderTransitions = map[string][]string{
	TenderStatusDraft:           {TenderStatusPublished, TenderStatusCancelled},
	TenderStatusPublished:       {TenderStatusClosed, TenderStatusCancelled},
	TenderStatusClosed:          {TenderStatusUnderEvaluation, TenderStatusCancelled},
	TenderStatusUnderEvaluation: {TenderStatusAwarded, TenderStatusCancelled},
	TenderStatusAwarded:         {TenderStatusContracted},
	TenderStatusContracted:      {},
	TenderStatusCancelled:       {},
}

func IsValidTenderTransition(from, to string) bool {
	for _, s := range ValidTenderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
