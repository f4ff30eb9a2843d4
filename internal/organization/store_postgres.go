package organization

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	platformpg "fingate/internal/platform/postgres"
	id "fingate/pkg/domain"
	"fingate/pkg/platform/sentinel"
	"fingate/pkg/requestcontext"
)

// PostgresStore persists organizations in PostgreSQL. The KYC profile is
// stored as a jsonb column since admin review reads it as a unit.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, org *Organization) error {
	now := requestcontext.Now(ctx)
	query := `
		INSERT INTO organizations (id, kind, owner_user_id, name, onboarding_status, sophisticated, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		org.ID.String(), string(org.Kind), org.OwnerUserID.String(), org.Name,
		string(org.OnboardingStatus), org.Sophisticated, now,
	)
	if err != nil {
		if platformpg.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create organization: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, orgID id.OrganizationID) (*Organization, error) {
	query := `
		SELECT id, kind, owner_user_id, name, onboarding_status, sophisticated, sophisticated_reason, profile, created_at, updated_at
		FROM organizations
		WHERE id = $1
	`
	var (
		org        Organization
		rawID      string
		rawKind    string
		rawOwner   string
		rawStatus  string
		reason     sql.NullString
		profileRaw []byte
	)
	err := s.db.QueryRowContext(ctx, query, orgID.String()).Scan(
		&rawID, &rawKind, &rawOwner, &org.Name, &rawStatus,
		&org.Sophisticated, &reason, &profileRaw, &org.CreatedAt, &org.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find organization: %w", err)
	}

	parsedID, err := id.ParseOrganizationID(rawID)
	if err != nil {
		return nil, fmt.Errorf("find organization: corrupt id %q", rawID)
	}
	ownerID, err := id.ParseUserID(rawOwner)
	if err != nil {
		return nil, fmt.Errorf("find organization: corrupt owner id %q", rawOwner)
	}
	org.ID = parsedID
	org.OwnerUserID = ownerID
	org.Kind = id.EntityKind(rawKind)
	org.OnboardingStatus = id.OnboardingStatus(rawStatus)
	if reason.Valid {
		org.SophisticatedReason = &reason.String
	}
	if len(profileRaw) > 0 {
		var profile KYCProfile
		if err := json.Unmarshal(profileRaw, &profile); err != nil {
			return nil, fmt.Errorf("find organization: decode profile: %w", err)
		}
		org.Profile = &profile
	}
	return &org, nil
}

func (s *PostgresStore) UpdateOnboardingStatus(ctx context.Context, orgID id.OrganizationID, status id.OnboardingStatus) error {
	query := `UPDATE organizations SET onboarding_status = $2, updated_at = $3 WHERE id = $1`
	res, err := s.db.ExecContext(ctx, query, orgID.String(), string(status), requestcontext.Now(ctx))
	if err != nil {
		return fmt.Errorf("update onboarding status: %w", err)
	}
	return requireRowAffected(res)
}

func (s *PostgresStore) UpdateExtractedFields(ctx context.Context, orgID id.OrganizationID, profile *KYCProfile, sophisticated bool, reason *string) error {
	profileRaw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	query := `
		UPDATE organizations
		SET profile = $2, sophisticated = $3, sophisticated_reason = $4, updated_at = $5
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		orgID.String(), profileRaw, sophisticated, nullableString(reason), requestcontext.Now(ctx),
	)
	if err != nil {
		return fmt.Errorf("update extracted fields: %w", err)
	}
	return requireRowAffected(res)
}

func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
