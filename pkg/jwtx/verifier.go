package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a JWT as of now and gives you back the claims if it's
// legit.
type Verifier interface {
	Verify(token string, now time.Time) (Claims, error)
}

var (
	ErrMalformed = errors.New("jwtx: malformed token")
	ErrExpired   = errors.New("jwtx: token expired")
)

// parse runs the shared parse path for one algorithm and key. Expiry is
// judged against now.
func parse(tokenStr, alg string, key any, leeway time.Duration, now time.Time) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{alg}),
		jwt.WithLeeway(leeway),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	var claims Claims
	token, err := parser.ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (any, error) {
		return key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpired
		}
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if !token.Valid {
		return Claims{}, ErrMalformed
	}

	if err := claims.validateShape(); err != nil {
		return Claims{}, err
	}

	return claims, nil
}

// HS256Verifier validates tokens signed with a shared HMAC secret.
type HS256Verifier struct {
	secret []byte
	leeway time.Duration
}

// NewVerifierHS256 creates a verifier for the given shared secret.
func NewVerifierHS256(secret []byte, leeway time.Duration) *HS256Verifier {
	return &HS256Verifier{secret: secret, leeway: leeway}
}

// Verify validates the JWT string and returns its parsed Claims.
func (v *HS256Verifier) Verify(tokenStr string, now time.Time) (Claims, error) {
	return parse(tokenStr, jwt.SigningMethodHS256.Alg(), v.secret, v.leeway, now)
}
