package middleware

import (
	"strings"

	"fuelpay-backend/internal/config"
	"fuelpay-backend/internal/pkg/jwt"
	"fuelpay-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware creates authentication middleware
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var accessToken string

		// 1. Try to get token from cookie first
		accessToken = c.Cookies("access_token")

		// 2. If not in cookie, try Authorization header
		if accessToken == "" {
			authHeader := c.Get("Authorization")
			if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
				accessToken = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		// 3. No token found
		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		// 4. Validate token
		claims, err := jwt.Validate(accessToken, cfg.JWT.Secret)
		if err != nil {
			if err == jwt.ErrTokenExpired {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		// 5. Set account info in context
		c.Locals("accountID", claims.AccountID)
		c.Locals("actor", claims.Actor)
		c.Locals("verified", claims.Verified)

		return c.Next()
	}
}

// ActorMiddleware creates actor-based authorization middleware
func ActorMiddleware(allowedActors ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := c.Locals("actor").(string)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		for _, allowed := range allowedActors {
			if actor == allowed {
				return c.Next()
			}
		}

		return response.Forbidden(c, "You don't have permission to access this resource")
	}
}

// CustomerOnly middleware allows only customer tokens
func CustomerOnly() fiber.Handler {
	return ActorMiddleware(jwt.ActorCustomer)
}

// EmployeeOnly middleware allows only employee tokens
func EmployeeOnly() fiber.Handler {
	return ActorMiddleware(jwt.ActorEmployee)
}

// AdminOnly middleware allows only admin tokens
func AdminOnly() fiber.Handler {
	return ActorMiddleware(jwt.ActorAdmin)
}

// EmployeeOrAdmin middleware allows employee or admin tokens
func EmployeeOrAdmin() fiber.Handler {
	return ActorMiddleware(jwt.ActorEmployee, jwt.ActorAdmin)
}

// VerifiedOnly blocks tokens minted before the account verified.
// Value-moving routes sit behind this so an unverified account can log
// in and browse but never touch the ledger.
func VerifiedOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		verified, ok := c.Locals("verified").(bool)
		if !ok || !verified {
			return response.Forbidden(c, "Account verification required")
		}
		return c.Next()
	}
}

// GetAccountID extracts the authenticated account ID from context
func GetAccountID(c *fiber.Ctx) uint {
	if id, ok := c.Locals("accountID").(uint); ok {
		return id
	}
	return 0
}

// GetActor extracts the authenticated actor type from context
func GetActor(c *fiber.Ctx) string {
	if actor, ok := c.Locals("actor").(string); ok {
		return actor
	}
	return ""
}
