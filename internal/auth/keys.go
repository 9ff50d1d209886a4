// Package auth issues and verifies the bearer tokens that identify the
// user behind each API request.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// PASETO v4 requires a 256-bit (32-byte) symmetric key.
	keyLength = 32
	// Expected hex-encoded length (32 bytes = 64 hex characters).
	keyHexLength = 64

	keyFileName = "auth.key"
)

// LoadOrGenerateKey returns the hex-encoded token key stored in
// <dataPath>/auth.key, generating and saving a new one when the file does
// not exist.
func LoadOrGenerateKey(dataPath string) (string, error) {
	keyPath := filepath.Join(dataPath, keyFileName)

	//#nosec G304 -- key path is derived from the configured data path
	if keyBytes, err := os.ReadFile(keyPath); err == nil {
		keyHex := strings.TrimSpace(string(keyBytes))
		if err := checkKeyHex(keyHex); err != nil {
			return "", fmt.Errorf("%s: %w", keyPath, err)
		}
		return keyHex, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("read auth key: %w", err)
	}

	key := make([]byte, keyLength)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("failed to generate auth key: %w", err)
	}
	keyHex := hex.EncodeToString(key)

	if err := os.MkdirAll(dataPath, 0o700); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.WriteFile(keyPath, []byte(keyHex), 0o600); err != nil {
		return "", fmt.Errorf("failed to save auth key: %w", err)
	}

	return keyHex, nil
}

func checkKeyHex(keyHex string) error {
	if len(keyHex) != keyHexLength {
		return fmt.Errorf("invalid auth key length: expected %d hex chars, got %d", keyHexLength, len(keyHex))
	}
	if _, err := hex.DecodeString(keyHex); err != nil {
		return fmt.Errorf("invalid auth key format: not valid hex: %w", err)
	}
	return nil
}
