package audit

import (
	"time"

	id "fingate/pkg/domain"
)

// EventType names an onboarding audit event.
type EventType string

const (
	EventOnboardingStarted     EventType = "onboarding_started"
	EventOnboardingResumed     EventType = "onboarding_resumed"
	EventOnboardingWebhook     EventType = "onboarding_webhook"
	EventOnboardingSynced      EventType = "onboarding_synced"
	EventOnboardingRetried     EventType = "onboarding_retried"
	EventVerificationCompleted EventType = "verification_completed"
	EventVerificationRejected  EventType = "verification_rejected"
)

// Role classifies the actor that triggered the event.
type Role string

const (
	RoleOwner    Role = "owner"
	RoleProvider Role = "provider"
	RoleSystem   Role = "system"
)

// Event is a write-once onboarding audit entry. The orchestrator never reads
// these back; they exist for compliance and admin review.
type Event struct {
	ID             string            `json:"id"`
	Type           EventType         `json:"type"`
	ActorUserID    string            `json:"actor_user_id,omitempty"`
	Role           Role              `json:"role"`
	OrganizationID id.OrganizationID `json:"organization_id"`
	Portal         id.Portal         `json:"portal"`
	Timestamp      time.Time         `json:"timestamp"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}
