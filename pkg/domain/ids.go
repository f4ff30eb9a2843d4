package domain

import (
	"github.com/google/uuid"

	dErrors "fingate/pkg/domain-errors"
)

// Typed identifiers for the onboarding domain. Construct via the Parse
// functions at trust boundaries; direct casting bypasses validation.
type (
	// OrganizationID identifies a personal or company entity on the platform.
	OrganizationID uuid.UUID

	// UserID identifies a platform user (the organization owner or an admin).
	UserID uuid.UUID
)

// ProviderRequestID is the external key issued by the verification provider
// for one verification session. Opaque, provider-defined format.
type ProviderRequestID string

func (r ProviderRequestID) String() string { return string(r) }

func ParseOrganizationID(s string) (OrganizationID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return OrganizationID{}, err
	}
	return OrganizationID(u), nil
}

func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return UserID{}, err
	}
	return UserID(u), nil
}

func ParseProviderRequestID(s string) (ProviderRequestID, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "request id cannot be empty")
	}
	return ProviderRequestID(s), nil
}

func (o OrganizationID) String() string { return uuid.UUID(o).String() }
func (u UserID) String() string         { return uuid.UUID(u).String() }

func (o OrganizationID) IsZero() bool { return o == OrganizationID{} }
func (u UserID) IsZero() bool         { return u == UserID{} }

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be the nil UUID")
	}
	return u, nil
}
