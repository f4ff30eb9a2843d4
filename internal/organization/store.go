package organization

import (
	"context"

	id "fingate/pkg/domain"
)

// Store is the organization persistence interface consumed by the onboarding
// orchestrator. Implementations return sentinel.ErrNotFound for unknown IDs.
type Store interface {
	Create(ctx context.Context, org *Organization) error
	FindByID(ctx context.Context, orgID id.OrganizationID) (*Organization, error)
	UpdateOnboardingStatus(ctx context.Context, orgID id.OrganizationID, status id.OnboardingStatus) error
	UpdateExtractedFields(ctx context.Context, orgID id.OrganizationID, profile *KYCProfile, sophisticated bool, reason *string) error
}
