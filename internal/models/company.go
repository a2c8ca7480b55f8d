package models

import (
	"time"

	"github.com/google/uuid"
)

// Company statuses
const (
	CompanyStatusPending     = "pending"
	CompanyStatusApproved    = "approved"
	CompanyStatusRejected    = "rejected"
	CompanyStatusBlacklisted = "blacklisted"
)

type Company struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	RegistrationNo   string    `json:"registration_no"`
	Email            string    `json:"email"`
	Status           string    `json:"status"`
	RegistryVerified bool      `json:"registry_verified"`
	RejectionReason  *string   `json:"rejection_reason,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ValidCompanyTransitions defines the onboarding state machine. Blacklisting
// is reachable from approved only; a rejected company may re-apply and return
// to pending.
var ValidCompanyTransitions = map[string][]string{
	CompanyStatusPending:     {CompanyStatusApproved, CompanyStatusRejected},
	CompanyStatusApproved:    {CompanyStatusBlacklisted},
	CompanyStatusRejected:    {CompanyStatusPending},
	CompanyStatusBlacklisted: {},
}

func IsValidCompanyTransition(from, to string) bool {
	for _, s := range ValidCompanyTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
