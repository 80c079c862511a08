package auth

import (
	"github.com/vendorx/marketplace/internal/domain"
	apperrors "github.com/vendorx/marketplace/pkg/util"
)

// RequireRole returns principal when it is authenticated with role, and an
// UNAUTHORIZED error otherwise.
func RequireRole(principal *domain.Principal, role domain.Role) (*domain.Principal, error) {
	if principal == nil || principal.SubjectID == "" || principal.Role != role {
		return nil, apperrors.NewUnauthorized("Unauthorized")
	}
	return principal, nil
}

// RequireAuthenticated accepts any authenticated principal.
func RequireAuthenticated(principal *domain.Principal) (*domain.Principal, error) {
	if principal == nil || principal.SubjectID == "" || !principal.Role.Valid() {
		return nil, apperrors.NewUnauthorized("Unauthorized")
	}
	return principal, nil
}
