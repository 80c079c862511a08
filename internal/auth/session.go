package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/vendorx/marketplace/internal/domain"
)

// CookieName carries the issued token.
const CookieName = "auth-token"

// Sessions reads and writes the auth cookie.
type Sessions struct {
	tokens *TokenManager
	secure bool
}

// NewSessions builds a cookie session helper. secure controls the Secure attribute.
func NewSessions(tokens *TokenManager, secure bool) *Sessions {
	return &Sessions{tokens: tokens, secure: secure}
}

// Tokens exposes the underlying token manager.
func (s *Sessions) Tokens() *TokenManager {
	return s.tokens
}

// Extract returns the raw auth cookie value.
func (s *Sessions) Extract(c *fiber.Ctx) (string, bool) {
	token := c.Cookies(CookieName)
	return token, token != ""
}

// Authenticate decodes the auth cookie into a principal, or returns nil.
func (s *Sessions) Authenticate(c *fiber.Ctx) *domain.Principal {
	token, ok := s.Extract(c)
	if !ok {
		return nil
	}
	return s.tokens.Verify(token)
}

// SetCookie writes the auth cookie for a freshly issued token.
func (s *Sessions) SetCookie(c *fiber.Ctx, token string, expiresAt time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.tokens.TTL() / time.Second),
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   s.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ClearCookie expires the auth cookie on the client. The attributes must
// match SetCookie or the browser keeps the original cookie.
func (s *Sessions) ClearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		HTTPOnly: true,
		Secure:   s.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
