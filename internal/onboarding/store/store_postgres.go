package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"fingate/internal/onboarding/models"
	platformpg "fingate/internal/platform/postgres"
	id "fingate/pkg/domain"
	"fingate/pkg/platform/sentinel"
	"fingate/pkg/requestcontext"
)

// PostgresStore persists verification sessions. The one-active-session
// invariant is enforced by a partial unique index:
//
//	CREATE UNIQUE INDEX verification_sessions_active_uq
//	ON verification_sessions (organization_id, portal)
//	WHERE completed_at IS NULL;
//
// so two racing Create calls cannot both succeed; the loser sees
// sentinel.ErrConflict.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, session *models.VerificationSession) error {
	now := requestcontext.Now(ctx)
	query := `
		INSERT INTO verification_sessions (provider_request_id, organization_id, portal, kind, status, substatus, verify_link, verify_link_expiry, payload_history, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		session.ProviderRequestID.String(), session.OrganizationID.String(),
		string(session.Portal), string(session.Kind),
		string(session.Status), session.Substatus,
		session.VerifyLink, session.VerifyLinkExpiry,
		pq.Array(rawToStrings(session.PayloadHistory)), now,
	)
	if err != nil {
		if platformpg.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByRequestID(ctx context.Context, requestID id.ProviderRequestID) (*models.VerificationSession, error) {
	query := sessionSelect + ` WHERE provider_request_id = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, query, requestID.String()))
}

func (s *PostgresStore) FindLatestByOrganization(ctx context.Context, orgID id.OrganizationID, portal id.Portal) (*models.VerificationSession, error) {
	query := sessionSelect + `
		WHERE organization_id = $1 AND portal = $2
		ORDER BY created_at DESC
		LIMIT 1
	`
	return s.scanOne(s.db.QueryRowContext(ctx, query, orgID.String(), string(portal)))
}

func (s *PostgresStore) AppendPayload(ctx context.Context, requestID id.ProviderRequestID, payload json.RawMessage) error {
	query := `
		UPDATE verification_sessions
		SET payload_history = array_append(payload_history, $2), updated_at = $3
		WHERE provider_request_id = $1
	`
	res, err := s.db.ExecContext(ctx, query, requestID.String(), string(payload), requestcontext.Now(ctx))
	if err != nil {
		return fmt.Errorf("append payload: %w", err)
	}
	return requireSessionRow(res)
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, requestID id.ProviderRequestID, status id.OnboardingStatus, substatus string, completedAt *time.Time) error {
	query := `
		UPDATE verification_sessions
		SET status = $2, substatus = $3, completed_at = COALESCE($4, completed_at), updated_at = $5
		WHERE provider_request_id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		requestID.String(), string(status), substatus, nullableTime(completedAt), requestcontext.Now(ctx),
	)
	if err != nil {
		return fmt.Errorf("update session status: %w", err)
	}
	return requireSessionRow(res)
}

func (s *PostgresStore) UpdateVerifyLink(ctx context.Context, requestID id.ProviderRequestID, link string, expiry time.Time) error {
	query := `
		UPDATE verification_sessions
		SET verify_link = $2, verify_link_expiry = $3, completed_at = NULL, updated_at = $4
		WHERE provider_request_id = $1
	`
	res, err := s.db.ExecContext(ctx, query, requestID.String(), link, expiry, requestcontext.Now(ctx))
	if err != nil {
		return fmt.Errorf("update verify link: %w", err)
	}
	return requireSessionRow(res)
}

const sessionSelect = `
	SELECT provider_request_id, organization_id, portal, kind, status, substatus, verify_link, verify_link_expiry, payload_history, completed_at, created_at, updated_at
	FROM verification_sessions`

func (s *PostgresStore) scanOne(row *sql.Row) (*models.VerificationSession, error) {
	var (
		session     models.VerificationSession
		rawRequest  string
		rawOrg      string
		rawPortal   string
		rawKind     string
		rawStatus   string
		history     pq.StringArray
		completedAt sql.NullTime
	)
	err := row.Scan(
		&rawRequest, &rawOrg, &rawPortal, &rawKind, &rawStatus, &session.Substatus,
		&session.VerifyLink, &session.VerifyLinkExpiry, &history, &completedAt,
		&session.CreatedAt, &session.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find session: %w", err)
	}

	orgID, err := id.ParseOrganizationID(rawOrg)
	if err != nil {
		return nil, fmt.Errorf("find session: corrupt organization id %q", rawOrg)
	}
	session.ProviderRequestID = id.ProviderRequestID(rawRequest)
	session.OrganizationID = orgID
	session.Portal = id.Portal(rawPortal)
	session.Kind = id.OnboardingKind(rawKind)
	session.Status = id.OnboardingStatus(rawStatus)
	session.PayloadHistory = stringsToRaw(history)
	if completedAt.Valid {
		t := completedAt.Time
		session.CompletedAt = &t
	}
	return &session, nil
}

func requireSessionRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func rawToStrings(raw []json.RawMessage) []string {
	out := make([]string, len(raw))
	for i, r := range raw {
		out[i] = string(r)
	}
	return out
}

func stringsToRaw(in []string) []json.RawMessage {
	if len(in) == 0 {
		return nil
	}
	out := make([]json.RawMessage, len(in))
	for i, s := range in {
		out[i] = json.RawMessage(s)
	}
	return out
}
