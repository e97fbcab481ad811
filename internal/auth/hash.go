package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt cost for both user passwords and device secrets
const hashCost = 12

const deviceSecretBytes = 32

// HashSecret returns a salted one-way digest of secret. Each call
// produces a different digest for the same input.
func HashSecret(secret string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(secret), hashCost)
	if err != nil {
		return "", fmt.Errorf("error hashing secret: %w", err)
	}
	return string(digest), nil
}

// VerifySecret reports whether secret matches digest.
func VerifySecret(secret, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret)) == nil
}

// NewDeviceSecret generates a high-entropy one-time device secret.
func NewDeviceSecret() (string, error) {
	buf := make([]byte, deviceSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("error generating device secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
