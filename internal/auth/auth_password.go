package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	autherrors "go-employee-mgmt/internal/auth/errors"

	"golang.org/x/crypto/bcrypt"
)

const (
	tempPasswordLength = 12
	// bcrypt only reads this many bytes of input.
	maxPasswordBytes = 72
)

// HashPassword returns autherrors.ErrPasswordTooLong for input bcrypt would
// refuse. Binding limits count runes, not bytes.
func HashPassword(password string, cost int) (string, error) {
	if len(password) > maxPasswordBytes {
		return "", autherrors.ErrPasswordTooLong
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateTempPassword returns a random URL-safe password handed out once
// when an admin creates an account.
func GenerateTempPassword() (string, error) {
	b := make([]byte, tempPasswordLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate temp password: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b)[:tempPasswordLength], nil
}
