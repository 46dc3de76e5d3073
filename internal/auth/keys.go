package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// KeyFile is the name of the access token key file inside the data directory.
const KeyFile = "auth.key"

// LoadOrGenerateKey returns the access token key kept hex-encoded in
// <dataDir>/auth.key. A missing file is created with a fresh random key;
// an unreadable or malformed one is an error so tokens are never silently
// invalidated.
func LoadOrGenerateKey(dataDir string) ([]byte, error) {
	path := filepath.Join(dataDir, KeyFile)

	key, err := readKey(path)
	switch {
	case err == nil:
		return key, nil
	case !errors.Is(err, fs.ErrNotExist):
		return nil, err
	}

	key = make([]byte, keyBytesSize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate auth key: %w", err)
	}
	if err := writeKey(dataDir, path, key); err != nil {
		return nil, err
	}
	return key, nil
}

func readKey(path string) ([]byte, error) {
	//#nosec G304 -- path is rooted at the configured data directory
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	encoded := strings.TrimSpace(string(raw))
	if want := hex.EncodedLen(keyBytesSize); len(encoded) != want {
		return nil, fmt.Errorf("%s: expected %d hex chars, got %d", path, want, len(encoded))
	}
	key, err := hex.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%s: not valid hex: %w", path, err)
	}
	return key, nil
}

func writeKey(dataDir, path string, key []byte) error {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(hex.EncodeToString(key)), 0o600); err != nil {
		return fmt.Errorf("save auth key: %w", err)
	}
	return nil
}
