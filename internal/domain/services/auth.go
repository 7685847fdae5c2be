package services

import (
	"context"
	"time"

	"tenantnotes/internal/domain/models"
)

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is a freshly issued session
type LoginResult struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expiresAt"`
	User      *models.Identity `json:"user"`
}

// AuthService exchanges credentials for a session token
type AuthService interface {
	Login(ctx context.Context, req *LoginRequest) (*LoginResult, error)
}

// SessionResolver turns a bearer token into the caller's current identity.
// Role and plan are read from the database on every call.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*models.Identity, error)
}
