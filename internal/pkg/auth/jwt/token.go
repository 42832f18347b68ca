package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

// PeekClaims decodes the claims of a bearer token without verifying its
// signature. Verification is the server's job; the client only needs the
// identity and expiry embedded in the token it was handed at login.
func PeekClaims(tokenString string) (*Claims, error) {
	claims := &Claims{}

	parser := &jwt.Parser{}
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, err
	}

	if claims.Subject == "" {
		return nil, errors.New("token carries no subject claim")
	}

	return claims, nil
}

// Expiry returns the expiry time of the claims, or the zero time when the
// token carries no expiration.
func (c *Claims) Expiry() time.Time {
	if c.StandardClaims.ExpiresAt == 0 {
		return time.Time{}
	}
	return time.Unix(c.StandardClaims.ExpiresAt, 0)
}

// IsExpired reports whether the token expired before now. Tokens without an
// expiration claim never expire from the client's point of view.
func (c *Claims) IsExpired(now time.Time) bool {
	exp := c.Expiry()
	return !exp.IsZero() && exp.Before(now)
}
