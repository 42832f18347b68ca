package jwt

import "github.com/golang-jwt/jwt"

// Claims defines the JWT claim structure issued by the collaboration server.
// The client never signs tokens; it only reads claims to learn its own identity
// and the token's lifetime.
type Claims struct {
	// StandardClaims embeds the JWT standard fields such as Sub (Subject),
	// Exp (Expiration), Iat (Issued At), and Iss (Issuer). Subject carries
	// the server-assigned user ID.
	jwt.StandardClaims

	// Email is the account email embedded in the token, when present.
	Email string `json:"email,omitempty"`

	// FirstName is the given name embedded in the token, when present.
	FirstName string `json:"firstName,omitempty"`

	// LastName is the family name embedded in the token, when present.
	LastName string `json:"lastName,omitempty"`
}

// UserID returns the server-assigned user identifier carried in the token.
func (c *Claims) UserID() string {
	return c.Subject
}
