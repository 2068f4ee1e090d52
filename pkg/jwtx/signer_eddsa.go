package jwtx

import (
	"crypto/ed25519"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// pemPrivateKey is the PEM block type of a PKCS8 key, the only encoding
// MEMO_JWT_KEY_FILE accepts.
const pemPrivateKey = "PRIVATE KEY"

// EdDSASigner signs session tokens with an Ed25519 key. The verifier only
// needs Public, so the private half never leaves the process.
type EdDSASigner struct {
	priv ed25519.PrivateKey
}

// NewSignerEdDSA decodes a PKCS8 PEM private key, as written by
// `memo genkey --eddsa`.
func NewSignerEdDSA(pemKey []byte) (*EdDSASigner, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil {
		return nil, errors.New("jwtx: EdDSA key is not PEM encoded")
	}
	if block.Type != pemPrivateKey {
		return nil, fmt.Errorf("jwtx: EdDSA key must be a PKCS8 %q block, got %q", pemPrivateKey, block.Type)
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("jwtx: EdDSA key: %w", err)
	}

	priv, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("jwtx: EdDSA key holds a %T, not an Ed25519 key", parsed)
	}

	s := &EdDSASigner{priv: priv}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *EdDSASigner) Alg() string { return jwt.SigningMethodEdDSA.Alg() }

// Public returns the key the matching verifier checks signatures with.
func (s *EdDSASigner) Public() ed25519.PublicKey {
	return s.priv.Public().(ed25519.PublicKey)
}

func (s *EdDSASigner) Sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(s.priv)
}

// Validate rejects truncated keys.
func (s *EdDSASigner) Validate() error {
	if len(s.priv) != ed25519.PrivateKeySize {
		return fmt.Errorf("jwtx: EdDSA private key is %d bytes, want %d", len(s.priv), ed25519.PrivateKeySize)
	}
	return nil
}
