package auth

import (
	"slices"

	"civiclink/pkg/apperr"
	"civiclink/pkg/models"
)

type Capability string

const (
	CapabilityReviewClaims       Capability = "review-claims"
	CapabilityAuthorTranslations Capability = "author-translations"
	CapabilityVerifyTranslations Capability = "verify-translations"
)

// grants lists the roles holding each capability. Admins hold everything organizers hold.
var grants = map[Capability][]models.Role{
	CapabilityReviewClaims:       {models.RoleOrganizer, models.RoleAdmin},
	CapabilityAuthorTranslations: {models.RoleOrganizer, models.RoleAdmin},
	CapabilityVerifyTranslations: {models.RoleOrganizer, models.RoleAdmin},
}

// Principal is the authenticated caller of an operation
type Principal struct {
	UserID string
	Role   models.Role
}

// Permits reports whether the role holds the capability
func Permits(role models.Role, capability Capability) bool {
	return slices.Contains(grants[capability], role)
}

// Authorize fails with an authentication error for anonymous callers and an authorization
// error when the caller's role lacks the capability.
func Authorize(p *Principal, capability Capability) error {
	if p == nil || len(p.UserID) == 0 {
		return apperr.Unauthenticated("No token, authorization denied")
	}

	if !Permits(p.Role, capability) {
		return apperr.Forbidden("Access denied. Insufficient permissions.")
	}

	return nil
}

// Authenticated fails for anonymous callers
func Authenticated(p *Principal) error {
	if p == nil || len(p.UserID) == 0 {
		return apperr.Unauthenticated("No token, authorization denied")
	}
	return nil
}
