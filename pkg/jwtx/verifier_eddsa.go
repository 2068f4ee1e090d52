package jwtx

import (
	"crypto/ed25519"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// EdDSAVerifier validates JWTs signed using EdDSA (Ed25519).
type EdDSAVerifier struct {
	pub    ed25519.PublicKey
	leeway time.Duration
}

// NewVerifierEdDSA creates a verifier for a single Ed25519 public key.
func NewVerifierEdDSA(pub ed25519.PublicKey, leeway time.Duration) *EdDSAVerifier {
	return &EdDSAVerifier{pub: pub, leeway: leeway}
}

// Verify validates the JWT string and returns its parsed Claims.
func (v *EdDSAVerifier) Verify(tokenStr string, now time.Time) (Claims, error) {
	return parse(tokenStr, jwt.SigningMethodEdDSA.Alg(), v.pub, v.leeway, now)
}
