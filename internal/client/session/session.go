package session

import (
	"github.com/golang-jwt/jwt/v5"
)

// Session is the persisted auth state.
type Session struct {
	Token  string
	UserID string
}

// Valid reports whether a token is present. Expiry is not checked; the
// backend is the authority on token validity.
func (s Session) Valid() bool {
	return s.Token != ""
}

// Subject returns the "sub" claim of the token without verifying its
// signature. It is for display only and is empty when the token is not a
// readable JWT.
func (s Session) Subject() string {
	if s.Token == "" {
		return ""
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.Token, claims); err != nil {
		return ""
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}
