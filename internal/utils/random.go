package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// GenerateToken returns n random bytes, hex encoded. Used for email
// verification and password reset links.
func GenerateToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// HashToken is how one-time tokens are stored; only the digest hits the database.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// GenerateConfirmationCode returns "GB-" followed by eight uppercase hex characters.
func GenerateConfirmationCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return ConfirmationCodePrefix + strings.ToUpper(raw[:8])
}

func GenerateRequestID() string {
	return uuid.NewString()
}
