package domain

import dErrors "fingate/pkg/domain-errors"

// Portal is the platform surface an organization onboards through. The same
// organization may exist on multiple portals with independent onboarding runs,
// so every orchestrator operation takes the portal explicitly.
type Portal string

const (
	PortalInvestor Portal = "investor"
	PortalIssuer   Portal = "issuer"
)

var validPortals = map[Portal]bool{
	PortalInvestor: true,
	PortalIssuer:   true,
}

// ParsePortal constructs a Portal from external input.
func ParsePortal(s string) (Portal, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "portal cannot be empty")
	}
	p := Portal(s)
	if !validPortals[p] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid portal")
	}
	return p, nil
}

func (p Portal) IsValid() bool { return validPortals[p] }

func (p Portal) String() string { return string(p) }
