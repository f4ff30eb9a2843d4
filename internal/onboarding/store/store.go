// Package store persists verification sessions. The repository is the single
// source of truth for which provider session belongs to which organization;
// webhook routing depends on it.
package store

import (
	"context"
	"encoding/json"
	"time"

	"fingate/internal/onboarding/models"
	id "fingate/pkg/domain"
)

// SessionStore is the verification-session repository consumed by the
// onboarding service. Implementations return sentinel.ErrNotFound for unknown
// request IDs and sentinel.ErrConflict when creating a second active session
// for the same (organization, portal) pair.
type SessionStore interface {
	Create(ctx context.Context, session *models.VerificationSession) error
	FindByRequestID(ctx context.Context, requestID id.ProviderRequestID) (*models.VerificationSession, error)
	// FindLatestByOrganization returns the most recently created session for
	// the pair, active or not. Resume and retry both start from it.
	FindLatestByOrganization(ctx context.Context, orgID id.OrganizationID, portal id.Portal) (*models.VerificationSession, error)
	// AppendPayload records a raw webhook payload against the session. Called
	// before any interpretation so the forensic trail survives mapping bugs.
	AppendPayload(ctx context.Context, requestID id.ProviderRequestID, payload json.RawMessage) error
	UpdateStatus(ctx context.Context, requestID id.ProviderRequestID, status id.OnboardingStatus, substatus string, completedAt *time.Time) error
	// UpdateVerifyLink replaces the session's verification link after a
	// provider-side restart.
	UpdateVerifyLink(ctx context.Context, requestID id.ProviderRequestID, link string, expiry time.Time) error
}
