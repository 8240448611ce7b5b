package contract

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrAccessDenied is returned when the supplied password does not match the access hash.
var ErrAccessDenied = errors.New("incorrect password, try again")

// CheckAccess verifies password against a bcrypt hash. An empty hash disables the gate.
func CheckAccess(hash, password string) error {
	if hash == "" {
		return nil
	}
	if password == "" {
		return ErrAccessDenied
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrAccessDenied
	default:
		return fmt.Errorf("invalid access hash: %w", err)
	}
}

// HashPassword returns a bcrypt hash suitable for the access-hash setting.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	out, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
