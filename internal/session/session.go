package session

import (
	"errors"
	"time"
)

// ErrNotAuthenticated is returned when no usable session exists. The API
// client surfaces it before attempting any network call.
var ErrNotAuthenticated = errors.New("user not authenticated")

// User is the authenticated identity as the provider reports it.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is the identity provider's proof of authentication. AccessToken is
// the bearer token the API client attaches to every request.
type Session struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	TokenType    string    `json:"tokenType"`
	ExpiresAt    time.Time `json:"expiresAt"`
	User         User      `json:"user"`
}

// Expired reports whether the access token is past (or within skew of) its
// expiry.
func (s *Session) Expired(skew time.Duration) bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().Add(skew).After(s.ExpiresAt)
}
