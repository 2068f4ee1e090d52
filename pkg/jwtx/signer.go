package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Signer is our interface for anything that can sign session tokens.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
	Validate() error
}

// Supported algorithm names for configuration.
const (
	AlgHS256 = "HS256"
	AlgEdDSA = "EdDSA"
)

// minHMACSecret is the shortest shared secret accepted for HS256.
const minHMACSecret = 16

// HS256Signer signs tokens with a shared HMAC-SHA256 secret.
type HS256Signer struct {
	secret []byte
}

// NewSignerHS256 creates an HS256 signer from a shared secret.
func NewSignerHS256(secret []byte) (*HS256Signer, error) {
	s := &HS256Signer{secret: secret}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *HS256Signer) Alg() string { return jwt.SigningMethodHS256.Alg() }

// Sign takes the claims and turns them into a signed JWT string.
func (s *HS256Signer) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Validate checks the secret is long enough to be worth using.
func (s *HS256Signer) Validate() error {
	if len(s.secret) < minHMACSecret {
		return fmt.Errorf("jwtx: HS256 secret must be at least %d bytes", minHMACSecret)
	}
	return nil
}

var errUnknownAlg = errors.New("jwtx: unsupported algorithm")
