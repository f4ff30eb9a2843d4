package handler

import (
	"time"

	"fingate/internal/onboarding/models"
	"fingate/internal/onboarding/service"
)

type sessionResponse struct {
	RequestID        string    `json:"request_id"`
	VerifyURL        string    `json:"verify_url"`
	VerifyLinkExpiry time.Time `json:"verify_link_expiry"`
	Status           string    `json:"status"`
	Resumed          bool      `json:"resumed"`
}

func sessionResponseFrom(r *service.StartResult) sessionResponse {
	return sessionResponse{
		RequestID:        r.RequestID.String(),
		VerifyURL:        r.VerifyLink,
		VerifyLinkExpiry: r.VerifyLinkExpiry,
		Status:           string(r.Status),
		Resumed:          r.Resumed,
	}
}

type syncResponse struct {
	RequestID   string     `json:"request_id"`
	Status      string     `json:"status"`
	Substatus   string     `json:"substatus,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func syncResponseFrom(s *models.VerificationSession) syncResponse {
	return syncResponse{
		RequestID:   s.ProviderRequestID.String(),
		Status:      string(s.Status),
		Substatus:   s.Substatus,
		CompletedAt: s.CompletedAt,
	}
}
