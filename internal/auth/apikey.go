// internal/auth/apikey.go
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

const apiKeyPrefix = "pak_" // nolint:gosec // key prefix identifier, not a secret
const apiKeySecretLength = 32

const apiKeyAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// APIKeyPattern matches a well-formed issued key. Used for cheap format
// rejection before any hashing or lookup.
var APIKeyPattern = regexp.MustCompile(`^pak_[a-zA-Z0-9]{32}$`)

// GenerateAPIKey issues a new plaintext bearer key: the "pak_" prefix
// followed by 32 random alphanumeric characters.
func GenerateAPIKey() (string, error) {
	buf := make([]byte, apiKeySecretLength)
	if _, err := rand.Read(buf); err != nil {
		customLog.Warnf("Error generating API key randomness: %v", err)
		return "", fmt.Errorf("failed to generate api key")
	}

	var sb strings.Builder
	sb.WriteString(apiKeyPrefix)
	for _, b := range buf {
		sb.WriteByte(apiKeyAlphabet[int(b)%len(apiKeyAlphabet)])
	}
	return sb.String(), nil
}

// HashAPIKey returns the hex sha256 digest of a plaintext key, the only
// form the store compares against.
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
