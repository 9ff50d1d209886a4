package auth

import "time"

// AccessClaims are the claims read back from a verified access token.
// Subject carries the user id and is the only claim the API acts on.
type AccessClaims struct {
	Subject    string
	TokenID    string
	IssuedAt   time.Time
	Expiration time.Time
}

// UserID returns the user the token was issued to.
func (c *AccessClaims) UserID() string {
	return c.Subject
}
