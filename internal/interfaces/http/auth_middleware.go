package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ricemill-ledger/internal/domain"
	"github.com/jhoicas/ricemill-ledger/pkg/jwt"
)

// Locals keys set by AuthMiddleware.
const (
	LocalUserID = "user_id"
	LocalName   = "user_name"
	LocalRole   = "role"
)

func unauthorized(msg string) error {
	return &domain.Error{Kind: domain.KindUnauthorized, Message: msg}
}

// AuthMiddleware validates the Bearer token and stores the user id, name and
// role in c.Locals. A token without a role is rejected.
func AuthMiddleware(secret, issuer string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return unauthorized("authorization header required")
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return unauthorized("expected: Bearer <token>")
		}
		token := strings.TrimSpace(parts[1])
		if token == "" {
			return unauthorized("empty token")
		}
		claims, err := jwt.Parse(secret, issuer, token)
		if err != nil {
			return unauthorized("invalid or expired token")
		}
		if claims.Role == "" {
			return unauthorized("token carries no role")
		}
		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalName, claims.Name)
		c.Locals(LocalRole, claims.Role)
		return c.Next()
	}
}

// RequireRole lets the request through only when the token role is one of roles.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		for _, r := range roles {
			if r == role {
				return c.Next()
			}
		}
		return domain.Forbidden("role %q may not access this resource", role)
	}
}

func localString(c *fiber.Ctx, key string) string {
	s, _ := c.Locals(key).(string)
	return s
}

// GetUserID returns the authenticated user id.
func GetUserID(c *fiber.Ctx) string { return localString(c, LocalUserID) }

// GetRole returns the authenticated user's role.
func GetRole(c *fiber.Ctx) string { return localString(c, LocalRole) }

// actor is the identity recorded as PerformedBy.
func actor(c *fiber.Ctx) string { return GetUserID(c) }

// requireOverrideRight rejects admin_override for anyone but an admin.
func requireOverrideRight(c *fiber.Ctx, override bool) error {
	if override && GetRole(c) != jwt.RoleAdmin {
		return domain.Forbidden("admin_override requires the admin role")
	}
	return nil
}
