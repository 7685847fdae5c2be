package auth

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"tenantnotes/internal/domain"
)

// PasswordCost is the bcrypt work factor for stored password hashes.
const PasswordCost = 12

// HashPassword returns a bcrypt hash suitable for users.password_hash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// ComparePassword checks password against a bcrypt hash. A mismatch is
// domain.ErrUnauthorized; a corrupt hash is an internal error.
func ComparePassword(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return domain.ErrUnauthorized
	default:
		return fmt.Errorf("compare password: %w", err)
	}
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// BurnPasswordCheck spends the same bcrypt time as a real comparison. Login
// calls it for unknown emails so response time does not reveal which
// addresses have accounts.
func BurnPasswordCheck(password string) {
	dummyHashOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte("tenantnotes-dummy-password"), PasswordCost)
		if err == nil {
			dummyHash = string(h)
		}
	})
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
}
