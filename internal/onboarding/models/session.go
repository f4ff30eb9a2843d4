package models

import (
	"encoding/json"
	"time"

	id "fingate/pkg/domain"
)

// VerificationSession is one attempt to complete provider-side verification
// for an organization. At most one active (non-terminal) session exists per
// (organization, portal); a terminal session may be superseded only via an
// explicit retry. Sessions are never deleted.
type VerificationSession struct {
	ProviderRequestID id.ProviderRequestID
	OrganizationID    id.OrganizationID
	Portal            id.Portal
	Kind              id.OnboardingKind

	Status    id.OnboardingStatus
	Substatus string

	VerifyLink       string
	VerifyLinkExpiry time.Time

	// PayloadHistory is the ordered, append-only list of raw webhook payloads
	// received for this session. It preserves the full forensic trail and is
	// the fallback source for fields that arrive outside the detail response.
	PayloadHistory []json.RawMessage

	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsActive reports whether the session is still in flight.
func (s *VerificationSession) IsActive() bool {
	return s.CompletedAt == nil
}

// WebhookEvent is the provider's status notification. Ephemeral: folded into
// the session's payload history rather than persisted standalone.
type WebhookEvent struct {
	RequestID id.ProviderRequestID
	Status    string
	Substatus string
	// Raw carries the entire payload as received, including fields this
	// service never interprets.
	Raw json.RawMessage
}
