package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the session-token claims. The registered part carries the
// rotation identifier (jti), issue time (iat) and optional expiry (exp).
type Claims struct {
	// Account identifier as assigned by the store.
	UserID int64 `json:"user_id"`

	// Role name at issue time: "none", "reader", "writer", "editor", "admin".
	UserRole string `json:"user_role"`

	// Login of the account at issue time.
	UserLogin string `json:"user_login"`

	jwt.RegisteredClaims
}

// NewClaims builds session claims. A nil expiresAt yields a token without
// "exp", which never expires.
func NewClaims(
	userID int64,
	role, login, jti string,
	issuedAt time.Time,
	expiresAt *time.Time,
) Claims {
	c := Claims{
		UserID:    userID,
		UserRole:  role,
		UserLogin: login,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       jti,
			IssuedAt: jwt.NewNumericDate(issuedAt),
		},
	}

	if expiresAt != nil {
		c.ExpiresAt = jwt.NewNumericDate(*expiresAt)
	}

	return c
}

// JTI returns the rotation identifier the token was issued against.
func (c *Claims) JTI() string { return c.ID }

// Expires reports whether the token carries an expiry.
func (c *Claims) Expires() bool { return c.ExpiresAt != nil }

// validateShape rejects tokens that verified but lack the fields every
// session token must carry.
func (c *Claims) validateShape() error {
	if c.UserID <= 0 || c.ID == "" || c.UserLogin == "" {
		return ErrMalformed
	}
	return nil
}
