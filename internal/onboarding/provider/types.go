package provider

import "encoding/json"

// Request/response contract for the hosted verification provider. Only the
// fields this service interprets are typed; everything else survives in
// RawPayload and the session's payload history.

// CreateIndividualSessionRequest starts a personal KYC flow.
type CreateIndividualSessionRequest struct {
	ReferenceID string `json:"reference_id"`
	CallbackURL string `json:"callback_url"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	IDNumber    string `json:"id_number,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
}

// CreateCorporateSessionRequest starts a company KYB flow.
type CreateCorporateSessionRequest struct {
	ReferenceID string `json:"reference_id"`
	CallbackURL string `json:"callback_url"`
	CompanyName string `json:"company_name"`
}

// CreateSessionResponse is returned by both create calls and by restart.
type CreateSessionResponse struct {
	RequestID string `json:"request_id"`
	VerifyURL string `json:"verification_url"`
	// ExpiresIn is the verify link TTL in seconds. Nil when the provider
	// omits it; callers fall back to DefaultLinkTTL.
	ExpiresIn *int64 `json:"expires_in,omitempty"`
}

// SessionDetails is the provider's full view of one verification session.
type SessionDetails struct {
	RequestID string         `json:"request_id"`
	Status    string         `json:"status"`
	Substatus string         `json:"sub_status,omitempty"`
	Profile   *DetailProfile `json:"profile,omitempty"`

	// DisplayAreas are opaque, provider-defined named blocks of declared form
	// answers (bank details, wealth declaration, compliance declarations).
	DisplayAreas map[string]json.RawMessage `json:"display_areas,omitempty"`

	// RawPayload preserves the response verbatim for the payload history.
	// Never interpreted outside the extractor's fallback scan.
	RawPayload json.RawMessage `json:"-"`
}

// DetailProfile carries the identity fields the provider extracted.
type DetailProfile struct {
	FirstName   string          `json:"first_name,omitempty"`
	LastName    string          `json:"last_name,omitempty"`
	FullName    string          `json:"full_name,omitempty"`
	Nationality string          `json:"nationality,omitempty"`
	Country     string          `json:"country,omitempty"`
	Document    *DetailDocument `json:"document,omitempty"`
	SecondaryID string          `json:"secondary_id,omitempty"`
	Phone       string          `json:"phone,omitempty"`
	Address     string          `json:"address,omitempty"`
	DateOfBirth string          `json:"date_of_birth,omitempty"`
}

// DetailDocument is the identity document block within a profile.
type DetailDocument struct {
	Type   string `json:"type,omitempty"`
	Number string `json:"number,omitempty"`
}

// WebhookPreferencesRequest registers the callback endpoint globally.
type WebhookPreferencesRequest struct {
	CallbackURL string   `json:"callback_url"`
	Events      []string `json:"events"`
}

// FormSettingsRequest tunes per-form behavior for a verification flow.
type FormSettingsRequest struct {
	ReferenceID      string `json:"reference_id"`
	Language         string `json:"language,omitempty"`
	RedirectURL      string `json:"redirect_url,omitempty"`
	AllowRetryUpload bool   `json:"allow_retry_upload"`
}

// RestartSessionRequest re-opens an existing session for another attempt.
type RestartSessionRequest struct {
	RequestID string `json:"request_id"`
}

// Display area names used by the extractor.
const (
	AreaBankDetails            = "bank_details"
	AreaWealthDeclaration      = "wealth_declaration"
	AreaComplianceDeclarations = "compliance_declarations"
)
