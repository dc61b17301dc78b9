package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
)

const (
	apiKeyPrefix = "cd_live_"
	apiKeyBytes  = 24
)

// NewAPIKey mints an opaque API key for demo header auth. The key is shown to
// the caller exactly once at registration and stored for lookup.
func NewAPIKey() (string, error) {
	raw := make([]byte, apiKeyBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	return apiKeyPrefix + base64.RawURLEncoding.EncodeToString(raw), nil
}

// LooksLikeAPIKey checks prefix and length without hitting storage.
func LooksLikeAPIKey(value string) bool {
	value = strings.TrimSpace(value)
	if !strings.HasPrefix(value, apiKeyPrefix) {
		return false
	}
	return len(value) > len(apiKeyPrefix)
}
