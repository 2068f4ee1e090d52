package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// ErrDecrypt is returned when a ciphertext token cannot be opened, either
// because it was tampered with or because it was sealed with another key.
var ErrDecrypt = errors.New("cryptox: decrypt failed")

// SecretCodec seals short secrets (MFA keys, rotation identifiers) that are
// stored next to plain account data, and hashes passwords.
//
// A codec is built once at startup from configuration and shared read-only.
type SecretCodec struct {
	aead cipher.AEAD
	salt []byte
}

// NewSecretCodec derives an AES-256 key from keyMaterial using SHA-256 and
// keeps salt for password hashing.
func NewSecretCodec(keyMaterial []byte, salt string) (*SecretCodec, error) {
	if len(keyMaterial) == 0 {
		return nil, errors.New("cryptox: empty key material")
	}

	key := sha256.Sum256(keyMaterial)

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	// GCM gives us authentication, so a flipped bit fails Open instead of
	// decrypting to garbage.
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &SecretCodec{
		aead: gcm,
		salt: derivePasswordSalt(salt),
	}, nil
}

// Encrypt seals plaintext and returns a URL-safe token in the form
// base64url([12-byte nonce][ciphertext][16-byte tag]).
func (c *SecretCodec) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a token produced by Encrypt. Any failure is reported as
// ErrDecrypt.
func (c *SecretCodec) Decrypt(token string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("%w: invalid encoding", ErrDecrypt)
	}

	nonceSize := c.aead.NonceSize()
	if len(raw) < nonceSize+c.aead.Overhead() {
		return "", fmt.Errorf("%w: ciphertext too short", ErrDecrypt)
	}

	nonce, ciphertext := raw[:nonceSize], raw[nonceSize:]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}

	return string(plaintext), nil
}
