package session

import (
	"fmt"
	"net/http"
	"net/url"
)

// CookieWriter mirrors the access token into a non-HttpOnly cookie on the
// console origin. Server-rendered route checks read the cookie, so it must
// stay in sync with the store; wiring the writer as a store listener makes
// the two writes a single session-changed fan-out.
type CookieWriter struct {
	jar  http.CookieJar
	base *url.URL
	name string
}

// NewCookieWriter creates a writer that maintains the named cookie for the
// given origin inside jar.
func NewCookieWriter(jar http.CookieJar, origin, name string) (*CookieWriter, error) {
	if jar == nil {
		return nil, fmt.Errorf("cookie jar is required")
	}
	base, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("parse origin: %w", err)
	}
	if name == "" {
		name = "auth-token"
	}
	return &CookieWriter{jar: jar, base: base, name: name}, nil
}

// SessionChanged writes (or expires) the auth cookie from a session
// snapshot.
func (w *CookieWriter) SessionChanged(s Session) {
	cookie := &http.Cookie{
		Name:     w.name,
		Value:    s.AccessToken,
		Path:     "/",
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
	if s.AccessToken == "" {
		cookie.MaxAge = -1
	}
	w.jar.SetCookies(w.base, []*http.Cookie{cookie})
}

// Current returns the cookie value held for the origin, or "" when absent.
func (w *CookieWriter) Current() string {
	for _, c := range w.jar.Cookies(w.base) {
		if c.Name == w.name {
			return c.Value
		}
	}
	return ""
}
