package auth

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/vendorx/marketplace/internal/domain"
)

const principalKey = "auth_principal"

// Guard gates routes on the auth cookie and a required role.
type Guard struct {
	sessions *Sessions
	logger   *zap.Logger
}

// NewGuard constructs the guard.
func NewGuard(sessions *Sessions, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{sessions: sessions, logger: logger}
}

// API rejects requests without a principal of role with 401.
func (g *Guard) API(role domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, err := RequireRole(g.sessions.Authenticate(c), role)
		if err != nil {
			g.denied(c, role)
			return err
		}
		c.Locals(principalKey, principal)
		return c.Next()
	}
}

// Any rejects unauthenticated requests with 401.
func (g *Guard) Any() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, err := RequireAuthenticated(g.sessions.Authenticate(c))
		if err != nil {
			g.denied(c, "")
			return err
		}
		c.Locals(principalKey, principal)
		return c.Next()
	}
}

// Page redirects requests without a principal of role to loginPath.
func (g *Guard) Page(role domain.Role, loginPath string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, err := RequireRole(g.sessions.Authenticate(c), role)
		if err != nil {
			g.denied(c, role)
			return c.Redirect(loginPath, fiber.StatusSeeOther)
		}
		c.Locals(principalKey, principal)
		return c.Next()
	}
}

func (g *Guard) denied(c *fiber.Ctx, role domain.Role) {
	g.logger.Debug("access denied",
		zap.String("path", c.Path()),
		zap.String("required_role", string(role)))
}

// PrincipalFromContext retrieves the authenticated principal.
func PrincipalFromContext(c *fiber.Ctx) (*domain.Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*domain.Principal)
	return principal, ok
}
