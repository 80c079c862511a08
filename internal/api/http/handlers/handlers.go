package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vendorx/marketplace/internal/auth"
	"github.com/vendorx/marketplace/internal/domain"
	apperrors "github.com/vendorx/marketplace/pkg/util"
)

// currentPrincipal returns the principal stored by the guard.
func currentPrincipal(c *fiber.Ctx) (*domain.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal == nil {
		return nil, apperrors.NewUnauthorized("Unauthorized")
	}
	return principal, nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}

func quantityOrDefault(q *int) int {
	if q == nil {
		return 1
	}
	return *q
}
