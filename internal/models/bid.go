package models

import (
	"time"

	"github.com/google/uuid"
)

// Bid statuses
const (
	BidStatusSubmitted   = "submitted"
	BidStatusWithdrawn   = "withdrawn"
	BidStatusUnderReview = "under_review"
	BidStatusAccepted    = "accepted"
	BidStatusRejected    = "rejected"
)

type Bid struct {
	ID             uuid.UUID `json:"id"`
	TenderID       uuid.UUID `json:"tender_id"`
	CompanyID      uuid.UUID `json:"company_id"`
	SubmittedBy    uuid.UUID `json:"submitted_by"`
	Amount         string    `json:"amount"`
	Proposal       *string   `json:"proposal,omitempty"`
	Status         string    `json:"status"`
	TechnicalScore *int      `json:"technical_score,omitempty"`
	FinancialScore *int      `json:"financial_score,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

var ValidBidTransitions = map[string][]string{
	BidStatusSubmitted:   {BidStatusWithdrawn, BidStatusUnderReview},
	BidStatusUnderReview: {BidStatusAccepted, BidStatusRejected},
	BidStatusWithdrawn:   {},
	BidStatusAccepted:    {},
	BidStatusRejected:    {},
}

func IsValidBidTransition(from, to string) bool {
	for _, s := range ValidBidTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
