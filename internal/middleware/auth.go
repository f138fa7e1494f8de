package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ocrsdk/cloud-runner/internal/auth"
	"github.com/ocrsdk/cloud-runner/pkg/response"
)

// AnonymousUserID owns every task when authentication is disabled.
const AnonymousUserID = "local"

type AuthMiddleware struct {
	jwtSecret string
}

func NewAuthMiddleware(jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{jwtSecret: jwtSecret}
}

// Authenticate validates the bearer token. With no secret configured every
// request runs as AnonymousUserID.
func (m *AuthMiddleware) Authenticate() fiber.Handler {
	if m.jwtSecret == "" {
		return Anonymous()
	}

	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "Missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return response.Unauthorized(c, "Invalid authorization header format")
		}

		claims, err := auth.ValidateToken(parts[1], m.jwtSecret)
		if err != nil {
			return response.Unauthorized(c, "Invalid or expired token")
		}
		if claims.UserID == "" {
			return response.Unauthorized(c, "Invalid token claims")
		}

		c.Locals("userId", claims.UserID)
		c.Locals("email", claims.Email)
		return c.Next()
	}
}

// Anonymous marks the request as coming from the single local user.
func Anonymous() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("userId", AnonymousUserID)
		return c.Next()
	}
}

// GetUserID extracts user ID from context
func GetUserID(c *fiber.Ctx) string {
	if userID, ok := c.Locals("userId").(string); ok {
		return userID
	}
	return ""
}
