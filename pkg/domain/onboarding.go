package domain

import dErrors "fingate/pkg/domain-errors"

// EntityKind distinguishes personal from company organizations.
type EntityKind string

const (
	EntityPersonal EntityKind = "PERSONAL"
	EntityCompany  EntityKind = "COMPANY"
)

func ParseEntityKind(s string) (EntityKind, error) {
	switch EntityKind(s) {
	case EntityPersonal, EntityCompany:
		return EntityKind(s), nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid entity kind")
	}
}

// OnboardingKind selects the provider-side verification flow.
type OnboardingKind string

const (
	OnboardingIndividual OnboardingKind = "INDIVIDUAL"
	OnboardingCorporate  OnboardingKind = "CORPORATE"
)

// EntityKind maps the verification flow back to the entity kind it serves.
func (k OnboardingKind) EntityKind() EntityKind {
	if k == OnboardingCorporate {
		return EntityCompany
	}
	return EntityPersonal
}

// OnboardingKind picks the verification flow for this entity kind.
func (k EntityKind) OnboardingKind() OnboardingKind {
	if k == EntityCompany {
		return OnboardingCorporate
	}
	return OnboardingIndividual
}

func ParseOnboardingKind(s string) (OnboardingKind, error) {
	switch OnboardingKind(s) {
	case OnboardingIndividual, OnboardingCorporate:
		return OnboardingKind(s), nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid onboarding kind")
	}
}

// OnboardingStatus is the internal lifecycle vocabulary shared by the
// organization record and its verification session. The session only ever
// reaches PENDING_AML; the SSM-review / final-approval split and COMPLETED
// are owned by the admin approval collaborator.
type OnboardingStatus string

const (
	StatusNotStarted           OnboardingStatus = "NOT_STARTED"
	StatusPending              OnboardingStatus = "PENDING"
	StatusInProgress           OnboardingStatus = "IN_PROGRESS"
	StatusFormFilling          OnboardingStatus = "FORM_FILLING"
	StatusLivenessPassed       OnboardingStatus = "LIVENESS_PASSED"
	StatusPendingApproval      OnboardingStatus = "PENDING_APPROVAL"
	StatusPendingAML           OnboardingStatus = "PENDING_AML"
	StatusPendingSSMReview     OnboardingStatus = "PENDING_SSM_REVIEW"
	StatusPendingFinalApproval OnboardingStatus = "PENDING_FINAL_APPROVAL"
	StatusCompleted            OnboardingStatus = "COMPLETED"
	StatusRejected             OnboardingStatus = "REJECTED"
)

func (s OnboardingStatus) String() string { return string(s) }

// IsTerminal reports whether the status ends the onboarding lifecycle.
func (s OnboardingStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusRejected
}
