// Package middleware provides the request processing layers shared by
// the HTTP routes, most importantly JWT authentication.
package middleware

import (
	"strings"

	"github.com/taqume/toycell-be/internal/models"
	"github.com/taqume/toycell-be/internal/services/auth"
	"github.com/taqume/toycell-be/internal/utils"
	"github.com/taqume/toycell-be/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// AuthMiddleware validates bearer tokens and stores the verified
// claims on the request context.
type AuthMiddleware struct {
	authService auth.Service
	logger      zerolog.Logger
}

func NewAuthMiddleware(authService auth.Service, logger zerolog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		logger:      logger.With().Str("component", "auth_middleware").Logger(),
	}
}

// Handler checks for a Bearer token, verifies the signature and
// expiration, and rejects tokens whose version no longer matches the
// user's current one (bumped on logout and password change).
func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return response.Error(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "missing authorization header")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return response.Error(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "invalid authorization format")
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	_, claims, err := utils.ParseToken(tokenString)
	if err != nil {
		m.logger.Debug().Err(err).Msg("token validation failed")
		return response.Error(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "invalid token")
	}

	currentVersion, err := m.authService.GetUserTokenVersion(c.UserContext(), claims.UserID)
	if err != nil {
		return response.Error(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "invalid token")
	}
	if claims.TokenVersion != currentVersion {
		return response.Error(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "session expired")
	}

	c.Locals("claims", claims)
	c.Locals("userID", claims.UserID)
	return c.Next()
}

// AdminOnly rejects requests whose verified claims do not carry the
// admin role. It must run after Handler.
func AdminOnly(c *fiber.Ctx) error {
	claims, ok := ClaimsFromContext(c)
	if !ok {
		return response.Unauthorized(c)
	}
	if !claims.IsAdmin() {
		return response.Error(c, fiber.StatusForbidden, "FORBIDDEN", "insufficient permissions")
	}
	return c.Next()
}

// ClaimsFromContext extracts the verified claims set by Handler.
func ClaimsFromContext(c *fiber.Ctx) (*models.UserClaims, bool) {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	return claims, ok
}
