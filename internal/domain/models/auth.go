package models

import "github.com/golang-jwt/jwt/v5"

// SessionClaims is the session token payload. Only the subject identifies
// the caller; role and tenant are always loaded fresh from the database.
type SessionClaims struct {
	jwt.RegisteredClaims        // sub, iss, exp, iat, jti
	Email                string `json:"email,omitempty"`
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *SessionClaims) GetUserID() string {
	return c.Subject
}
