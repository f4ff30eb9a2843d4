package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	id "fingate/pkg/domain"
)

// PostgresStore persists audit events in an append-only table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	metadata, err := json.Marshal(event.Metadata)
	if err != nil {
		return fmt.Errorf("encode audit metadata: %w", err)
	}
	query := `
		INSERT INTO onboarding_audit (id, event_type, actor_user_id, role, organization_id, portal, occurred_at, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = s.db.ExecContext(ctx, query,
		event.ID, string(event.Type), event.ActorUserID, string(event.Role),
		event.OrganizationID.String(), event.Portal.String(), event.Timestamp, metadata,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

// ListByOrganization returns events for one organization, oldest first.
func (s *PostgresStore) ListByOrganization(ctx context.Context, orgID id.OrganizationID) ([]Event, error) {
	query := `
		SELECT id, event_type, actor_user_id, role, portal, occurred_at, metadata
		FROM onboarding_audit
		WHERE organization_id = $1
		ORDER BY occurred_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, orgID.String())
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			e           Event
			rawType     string
			rawRole     string
			rawPortal   string
			rawMetadata []byte
		)
		if err := rows.Scan(&e.ID, &rawType, &e.ActorUserID, &rawRole, &rawPortal, &e.Timestamp, &rawMetadata); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Type = EventType(rawType)
		e.Role = Role(rawRole)
		e.Portal = id.Portal(rawPortal)
		e.OrganizationID = orgID
		if len(rawMetadata) > 0 {
			if err := json.Unmarshal(rawMetadata, &e.Metadata); err != nil {
				return nil, fmt.Errorf("decode audit metadata: %w", err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
