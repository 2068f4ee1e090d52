package jwtx

import (
	"fmt"
	"time"
)

// Codec issues and parses session tokens with a matched signer/verifier pair.
type Codec struct {
	signer   Signer
	verifier Verifier
}

// NewCodec pairs a signer with the verifier for its key.
func NewCodec(signer Signer, verifier Verifier) *Codec {
	return &Codec{signer: signer, verifier: verifier}
}

// NewCodecFromConfig builds a codec for alg. For HS256 key is the shared
// secret; for EdDSA it is a PKCS8 PEM private key. Tokens issued and parsed
// by the same process need no leeway, so expiry is exact.
func NewCodecFromConfig(alg string, key []byte) (*Codec, error) {
	switch alg {
	case "", AlgHS256:
		s, err := NewSignerHS256(key)
		if err != nil {
			return nil, err
		}
		return NewCodec(s, NewVerifierHS256(key, 0)), nil

	case AlgEdDSA:
		s, err := NewSignerEdDSA(key)
		if err != nil {
			return nil, err
		}
		return NewCodec(s, NewVerifierEdDSA(s.Public(), 0)), nil

	default:
		return nil, fmt.Errorf("%w: %q", errUnknownAlg, alg)
	}
}

// Alg returns the signing algorithm name.
func (c *Codec) Alg() string { return c.signer.Alg() }

// Issue signs a session token for the given account fields. A nil expiresAt
// issues a token that never expires.
func (c *Codec) Issue(
	userID int64,
	role, login, jti string,
	issuedAt time.Time,
	expiresAt *time.Time,
) (string, error) {
	return c.signer.Sign(NewClaims(userID, role, login, jti, issuedAt, expiresAt))
}

// Parse verifies the signature and expiry of token. It fails with ErrExpired
// once "exp" has passed and ErrMalformed for every other problem.
func (c *Codec) Parse(token string) (Claims, error) {
	return c.ParseAt(token, time.Now())
}

// ParseAt is Parse with expiry judged against now.
func (c *Codec) ParseAt(token string, now time.Time) (Claims, error) {
	return c.verifier.Verify(token, now)
}
