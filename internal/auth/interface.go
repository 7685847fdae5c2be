package auth

import (
	"time"

	"tenantnotes/internal/domain/models"
)

// JWTVerifier validates session tokens.
type JWTVerifier interface {
	// VerifyToken validates a JWT token string and returns the parsed claims.
	// Returns domain.ErrUnauthorized if the token is invalid, expired, or has an invalid signature.
	VerifyToken(tokenString string) (*models.SessionClaims, error)

	// Close releases any resources held by the verifier (e.g., the JWKS refresh goroutine).
	Close() error
}

// TokenIssuer mints session tokens after a successful login.
type TokenIssuer interface {
	IssueToken(user *models.User) (token string, expiresAt time.Time, err error)
}
