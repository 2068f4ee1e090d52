package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoKeyMaterial is returned when neither a key file nor an inline value
// was configured.
var ErrNoKeyMaterial = errors.New("cryptox: no key material configured")

// LoadKeyMaterial returns key material from path when set, otherwise from the
// inline value. Surrounding whitespace in files is ignored so keys written by
// editors with trailing newlines still match.
func LoadKeyMaterial(path, inline string) ([]byte, error) {
	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("failed to read key file: %w", err)
		}
		data = []byte(strings.TrimSpace(string(data)))
		if len(data) == 0 {
			return nil, fmt.Errorf("key file %s is empty", path)
		}
		return data, nil
	}

	if inline != "" {
		return []byte(inline), nil
	}

	return nil, ErrNoKeyMaterial
}

// LoadOrGenerateKeyFile reads key material from path, creating the file with
// fresh random material when it does not exist yet. Intended for development
// setups; production deployments should provision the key explicitly.
func LoadOrGenerateKeyFile(path string) ([]byte, error) {
	path = filepath.Clean(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			return nil, err
		}

		key, err := GenerateKey()
		if err != nil {
			return nil, err
		}

		if err := os.WriteFile(path, []byte(key), 0600); err != nil {
			return nil, err
		}
		return []byte(key), nil
	}

	return LoadKeyMaterial(path, "")
}

// GenerateKey returns 32 random bytes encoded as base64url, suitable for the
// encryption key or an HS256 signing secret.
func GenerateKey() (string, error) {
	buf := make([]byte, keyLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
