package models

import "github.com/golang-jwt/jwt/v5"

// UserClaims carries the authenticated caller's identity and role through
// the request context. Adjustment is the only operation that inspects the
// role.
type UserClaims struct {
	jwt.RegisteredClaims
	UserID       uint   `json:"user_id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	TokenVersion int    `json:"token_version"`
}

// IsAdmin reports whether the caller may perform administrative
// adjustments.
func (c *UserClaims) IsAdmin() bool {
	return c.Role == "admin"
}
