package organization

import (
	"encoding/json"
	"time"

	id "fingate/pkg/domain"
)

// Organization is a personal or company entity applying for platform access.
// Mutated only through the Store, by the onboarding orchestrator and by the
// admin approval collaborator. Never deleted during onboarding.
type Organization struct {
	ID               id.OrganizationID
	Kind             id.EntityKind
	OwnerUserID      id.UserID
	Name             string
	OnboardingStatus id.OnboardingStatus

	// Derived by the orchestrator when the provider approves verification.
	Sophisticated       bool
	SophisticatedReason *string

	Profile *KYCProfile

	CreatedAt time.Time
	UpdatedAt time.Time
}

// KYCProfile holds the normalized fields extracted from provider verification
// data. Absent values are nil pointers, never empty or "null" strings.
type KYCProfile struct {
	FirstName      *string
	LastName       *string
	FullName       *string
	Nationality    *string
	Country        *string
	DocumentType   *string
	DocumentNumber *string
	SecondaryID    *string
	Phone          *string
	Address        *string
	DateOfBirth    *string

	// Display areas: opaque provider-defined blocks stored verbatim for
	// downstream admin review.
	BankDetails            json.RawMessage
	WealthDeclaration      json.RawMessage
	ComplianceDeclarations json.RawMessage
}
