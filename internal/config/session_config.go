package config

import "time"

type SessionConfig interface {
	GetSessionDuration() time.Duration
	GetCookieName() string
	GetSessionStoreKey() string
	GetFilterStoreKey() string
}

type Session struct{}

var _ SessionConfig = Session{}

// GetSessionDuration is the client-side ceiling on token validity, counted
// from the token's iat claim (or from now when iat is absent).
func (Session) GetSessionDuration() time.Duration {
	return 365 * 24 * time.Hour // one year
}

func (Session) GetCookieName() string {
	return "auth-token"
}

func (Session) GetSessionStoreKey() string {
	return "console-session"
}

func (Session) GetFilterStoreKey() string {
	return "console-filters"
}
