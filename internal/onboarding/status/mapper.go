// Package status maps the verification provider's status vocabulary onto the
// internal onboarding vocabulary. Pure functions, no I/O.
package status

import id "fingate/pkg/domain"

// Provider status vocabulary, as delivered in webhooks and detail responses.
const (
	ProviderProcessing       = "PROCESSING"
	ProviderDocumentUploaded = "DOCUMENT_UPLOADED"
	ProviderLivenessStarted  = "LIVENESS_STARTED"
	ProviderLivenessPassed   = "LIVENESS_PASSED"
	ProviderWaitForApproval  = "WAIT_FOR_APPROVAL"
	ProviderApproved         = "APPROVED"
	ProviderRejected         = "REJECTED"
)

// MapProviderStatus normalizes a provider status. Provider approval maps to
// PENDING_AML, not APPROVED: final approval is a separate, locally-owned step
// gated on AML screening. Unknown values pass through unchanged.
func MapProviderStatus(providerStatus string) id.OnboardingStatus {
	switch providerStatus {
	case ProviderProcessing, ProviderDocumentUploaded, ProviderLivenessStarted:
		return id.StatusFormFilling
	case ProviderLivenessPassed:
		return id.StatusLivenessPassed
	case ProviderWaitForApproval:
		return id.StatusPendingApproval
	case ProviderApproved:
		return id.StatusPendingAML
	case ProviderRejected:
		return id.StatusRejected
	default:
		return id.OnboardingStatus(providerStatus)
	}
}

// resumable is the set of session statuses where the existing verify link is
// still the right one to hand back. Anything at or past liveness must not be
// resumed into.
var resumable = map[id.OnboardingStatus]bool{
	id.StatusPending:     true,
	id.StatusInProgress:  true,
	id.StatusFormFilling: true,
}

// IsResumable reports whether a session in this status should be resumed
// rather than replaced on a repeat start call.
func IsResumable(s id.OnboardingStatus) bool {
	return resumable[s]
}

// IsTerminal reports whether the status closes the session. Terminal sessions
// keep completed_at set and must not be reopened by late-arriving status
// notifications.
func IsTerminal(s id.OnboardingStatus) bool {
	return s == id.StatusPendingAML || s == id.StatusRejected
}

// InitialStatus picks the session status a fresh session starts in.
func InitialStatus(kind id.EntityKind) id.OnboardingStatus {
	if kind == id.EntityPersonal {
		return id.StatusInProgress
	}
	return id.StatusPending
}
