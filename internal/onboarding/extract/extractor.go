// Package extract turns provider verification data into normalized platform
// fields. Pure transformations: no I/O, no clock, no stores.
package extract

import (
	"encoding/json"
	"strings"

	"fingate/internal/onboarding/provider"
	"fingate/internal/organization"
	id "fingate/pkg/domain"
)

// Sophisticated-investor thresholds, in Malaysian Ringgit. Fixed by the
// high-net-worth definitions the compliance declarations are phrased against.
const (
	NetPersonalAssetsThreshold   = 3_000_000
	AnnualIncomeThreshold        = 300_000
	InvestmentPortfolioThreshold = 1_000_000
)

// Profile builds the normalized KYC profile from a detail response, falling
// back to the session's accumulated webhook history for fields that arrive in
// a different webhook than the main profile (secondary KYC id, OCR document
// fields). Merge strategy: the latest payload containing the field wins.
func Profile(details *provider.SessionDetails, history []json.RawMessage) *organization.KYCProfile {
	p := &organization.KYCProfile{}

	if details != nil && details.Profile != nil {
		dp := details.Profile
		p.FirstName = normalize(dp.FirstName)
		p.LastName = normalize(dp.LastName)
		p.FullName = normalize(dp.FullName)
		p.Nationality = normalize(dp.Nationality)
		p.Country = normalize(dp.Country)
		p.SecondaryID = normalize(dp.SecondaryID)
		p.Phone = normalize(dp.Phone)
		p.Address = normalize(dp.Address)
		p.DateOfBirth = normalize(dp.DateOfBirth)
		if dp.Document != nil {
			p.DocumentType = normalize(dp.Document.Type)
			p.DocumentNumber = normalize(dp.Document.Number)
		}
	}

	// History fallback for fields the detail response may lack.
	if p.SecondaryID == nil {
		p.SecondaryID = latestPayloadValue(history, "data", "secondary_id")
	}
	if p.DocumentType == nil {
		p.DocumentType = latestPayloadValue(history, "data", "document", "type")
	}
	if p.DocumentNumber == nil {
		p.DocumentNumber = latestPayloadValue(history, "data", "document", "number")
	}
	if p.Phone == nil {
		p.Phone = latestPayloadValue(history, "data", "phone")
	}
	if p.DateOfBirth == nil {
		p.DateOfBirth = latestPayloadValue(history, "data", "date_of_birth")
	}

	if details != nil {
		p.BankDetails = details.DisplayAreas[provider.AreaBankDetails]
		p.WealthDeclaration = details.DisplayAreas[provider.AreaWealthDeclaration]
		p.ComplianceDeclarations = details.DisplayAreas[provider.AreaComplianceDeclarations]
	}
	return p
}

// normalize maps the provider's inconsistent "no data" signals (null, empty
// string, the literal "null") to an absent value.
func normalize(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || strings.EqualFold(trimmed, "null") {
		return nil
	}
	return &trimmed
}

// latestPayloadValue scans the payload history newest-first and returns the
// first present, normalized value at the given nested path. This is the
// single, named merge strategy for history fallbacks.
func latestPayloadValue(history []json.RawMessage, path ...string) *string {
	for i := len(history) - 1; i >= 0; i-- {
		var payload map[string]any
		if err := json.Unmarshal(history[i], &payload); err != nil {
			continue
		}
		if v := lookupString(payload, path); v != nil {
			return v
		}
	}
	return nil
}

func lookupString(payload map[string]any, path []string) *string {
	current := any(payload)
	for _, key := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current, ok = m[key]
		if !ok {
			return nil
		}
	}
	s, ok := current.(string)
	if !ok {
		return nil
	}
	return normalize(s)
}

// complianceDeclaration is the typed view of the compliance display area.
// Field values are provider-declared affirmations, not computed amounts.
type complianceDeclaration struct {
	NetPersonalAssetsAboveThreshold   string   `json:"net_personal_assets_above_threshold"`
	AnnualIncomeAboveThreshold        string   `json:"annual_income_above_threshold"`
	InvestmentPortfolioAboveThreshold string   `json:"investment_portfolio_above_threshold"`
	ProfessionalQualification         string   `json:"professional_qualification"`
	CapitalMarketExperience           []string `json:"capital_market_experience"`
}

// Sophistication determines sophisticated-investor status from entity kind
// and the compliance declarations. The reason lists every matching ground,
// not just the first: disclosure requires the full basis of the finding.
func Sophistication(kind id.EntityKind, complianceRaw json.RawMessage) (bool, *string) {
	if kind == id.EntityCompany {
		reason := "company entities qualify as sophisticated investors"
		return true, &reason
	}

	var decl complianceDeclaration
	if len(complianceRaw) > 0 {
		// Malformed declarations read as "nothing declared".
		_ = json.Unmarshal(complianceRaw, &decl)
	}

	var reasons []string
	if affirmative(decl.NetPersonalAssetsAboveThreshold) {
		reasons = append(reasons, "net personal assets exceed RM3,000,000")
	}
	if affirmative(decl.AnnualIncomeAboveThreshold) {
		reasons = append(reasons, "gross annual income exceeds RM300,000")
	}
	if affirmative(decl.InvestmentPortfolioAboveThreshold) {
		reasons = append(reasons, "investment portfolio exceeds RM1,000,000")
	}
	if affirmative(decl.ProfessionalQualification) {
		reasons = append(reasons, "holds a recognized professional qualification")
	}
	if len(decl.CapitalMarketExperience) > 0 {
		reasons = append(reasons, "capital market experience: "+strings.Join(decl.CapitalMarketExperience, ", "))
	}

	if len(reasons) == 0 {
		return false, nil
	}
	joined := strings.Join(reasons, "; ")
	return true, &joined
}

// affirmative interprets the provider's yes-flags, which arrive as any of
// "YES", "true", or "1" depending on form version.
func affirmative(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1", "y":
		return true
	default:
		return false
	}
}
