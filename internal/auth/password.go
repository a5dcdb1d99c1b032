package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// AdminUser is the only account of the HTTP API
const AdminUser = "admin"

// ErrInvalidCredentials is returned for a wrong user or password
var ErrInvalidCredentials = errors.New("invalid credentials")

// HashPassword hashes a plain text password using bcrypt
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ComparePassword compares a bcrypt hashed password with a plain text password
func ComparePassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}

// CheckAdmin verifies login credentials against the configured admin hash.
// An empty hash rejects every login.
func CheckAdmin(hash, username, password string) error {
	if hash == "" || username != AdminUser {
		return ErrInvalidCredentials
	}
	if err := ComparePassword(hash, password); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
