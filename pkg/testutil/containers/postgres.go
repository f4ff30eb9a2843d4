//go:build integration

package containers

import (
	"context"
	"database/sql"
	"testing"
	"time"

	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	platformpg "fingate/internal/platform/postgres"
)

// PostgresContainer wraps a testcontainers PostgreSQL instance with the
// onboarding schema applied.
type PostgresContainer struct {
	DSN string
	DB  *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS organizations (
	id UUID PRIMARY KEY,
	kind TEXT NOT NULL,
	owner_user_id UUID NOT NULL,
	name TEXT NOT NULL,
	onboarding_status TEXT NOT NULL,
	sophisticated BOOLEAN NOT NULL DEFAULT FALSE,
	sophisticated_reason TEXT,
	profile JSONB,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS verification_sessions (
	provider_request_id TEXT PRIMARY KEY,
	organization_id UUID NOT NULL,
	portal TEXT NOT NULL,
	kind TEXT NOT NULL,
	status TEXT NOT NULL,
	substatus TEXT NOT NULL DEFAULT '',
	verify_link TEXT NOT NULL,
	verify_link_expiry TIMESTAMPTZ NOT NULL,
	payload_history TEXT[] NOT NULL DEFAULT '{}',
	completed_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS verification_sessions_active_uq
	ON verification_sessions (organization_id, portal)
	WHERE completed_at IS NULL;

CREATE TABLE IF NOT EXISTS onboarding_audit (
	id UUID PRIMARY KEY,
	event_type TEXT NOT NULL,
	actor_user_id TEXT,
	role TEXT NOT NULL,
	organization_id UUID NOT NULL,
	portal TEXT NOT NULL,
	occurred_at TIMESTAMPTZ NOT NULL,
	metadata JSONB
);
`

// NewPostgresContainer starts a PostgreSQL container and applies the schema.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("fingate_test"),
		tcpostgres.WithUsername("fingate"),
		tcpostgres.WithPassword("fingate"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get postgres connection string: %v", err)
	}
	db, err := platformpg.Open(dsn)
	if err != nil {
		t.Fatalf("failed to open postgres: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if _, err := db.ExecContext(applyCtx, schema); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}

	return &PostgresContainer{DSN: dsn, DB: db}
}
