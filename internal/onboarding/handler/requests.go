package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"fingate/internal/onboarding/models"
	"fingate/internal/onboarding/service"
	id "fingate/pkg/domain"
	dErrors "fingate/pkg/domain-errors"
)

type startRequest struct {
	OrganizationID string `json:"organization_id"`
	Portal         string `json:"portal"`
	Kind           string `json:"kind,omitempty"`

	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	IDNumber    string `json:"id_number,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`

	CompanyName string `json:"company_name,omitempty"`
}

func (r startRequest) toInput() (service.StartInput, error) {
	orgID, err := id.ParseOrganizationID(r.OrganizationID)
	if err != nil {
		return service.StartInput{}, err
	}
	portal, err := id.ParsePortal(r.Portal)
	if err != nil {
		return service.StartInput{}, err
	}
	var kind id.OnboardingKind
	if r.Kind != "" {
		kind, err = id.ParseOnboardingKind(r.Kind)
		if err != nil {
			return service.StartInput{}, err
		}
	}
	return service.StartInput{
		OrganizationID: orgID,
		Portal:         portal,
		Kind:           kind,
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		IDNumber:       r.IDNumber,
		DateOfBirth:    r.DateOfBirth,
		CompanyName:    r.CompanyName,
	}, nil
}

type orgPortalRequest struct {
	OrganizationID string `json:"organization_id"`
	Portal         string `json:"portal"`
}

func (r orgPortalRequest) parse() (id.OrganizationID, id.Portal, error) {
	orgID, err := id.ParseOrganizationID(r.OrganizationID)
	if err != nil {
		return id.OrganizationID{}, "", err
	}
	portal, err := id.ParsePortal(r.Portal)
	if err != nil {
		return id.OrganizationID{}, "", err
	}
	return orgID, portal, nil
}

// decodeWebhook reads the payload leniently: the provider sends arbitrary
// extra fields, and the raw body must survive verbatim for the session's
// payload history.
func decodeWebhook(r *http.Request) (models.WebhookEvent, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return models.WebhookEvent{}, dErrors.New(dErrors.CodeBadRequest, "unreadable webhook body")
	}
	var payload struct {
		RequestID string `json:"request_id"`
		Status    string `json:"status"`
		Substatus string `json:"sub_status"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return models.WebhookEvent{}, dErrors.New(dErrors.CodeBadRequest, "invalid webhook body")
	}
	requestID, err := id.ParseProviderRequestID(payload.RequestID)
	if err != nil {
		return models.WebhookEvent{}, err
	}
	if payload.Status == "" {
		return models.WebhookEvent{}, dErrors.New(dErrors.CodeBadRequest, "webhook status is required")
	}
	return models.WebhookEvent{
		RequestID: requestID,
		Status:    payload.Status,
		Substatus: payload.Substatus,
		Raw:       json.RawMessage(body),
	}, nil
}
