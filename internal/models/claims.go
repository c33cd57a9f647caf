package models

import "github.com/golang-jwt/jwt/v5"

// UserClaims is the JWT payload carried on authenticated requests.
// Handlers consume only the verified owner id; the rest is session
// bookkeeping.
type UserClaims struct {
	jwt.RegisteredClaims
	UserID       uint   `json:"user_id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	TokenVersion int    `json:"token_version"`
}

// IsAdmin reports whether the session belongs to an admin account.
func (c *UserClaims) IsAdmin() bool {
	return c.Role == RoleAdmin
}
