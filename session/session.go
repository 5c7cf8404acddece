// Package session owns the staff user's token pair: storage, durable
// persistence, expiry scheduling and the cookie side-channel.
package session

import (
	"sync"

	"github.com/opencustody/consolekit/claims"
	"github.com/opencustody/consolekit/internal/errors"
	"github.com/rs/zerolog"
)

// Session is the persisted authentication state. Invariant:
// IsLoggedIn == (AccessToken != "").
type Session struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	IsLoggedIn   bool   `json:"isLoggedIn"`
	IsValidating bool   `json:"isValidating"`
	Role         string `json:"role"`
}

// Listener receives a snapshot after every session change. Listeners are
// invoked synchronously in subscription order.
type Listener func(Session)

// Store holds the current session and fans out every mutation to the
// persistence repo and any subscribed listeners (cookie writer, expiry
// scheduler).
type Store struct {
	mu        sync.RWMutex
	current   Session
	hydrated  bool
	repo      Repo
	listeners []Listener
	log       zerolog.Logger
}

// StoreOption defines a function type to modify the Store instance.
type StoreOption func(*Store)

// WithLogger sets the store's logger.
func WithLogger(log zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.log = log
	}
}

// NewStore creates a session store backed by the given repo. The store
// starts unhydrated; call Hydrate before making auth decisions.
func NewStore(repo Repo, options ...StoreOption) (*Store, error) {
	if repo == nil {
		return nil, errors.Wrapf(errors.ErrInternal, "[NewStore] repo is required")
	}
	store := &Store{
		repo: repo,
		log:  zerolog.Nop(),
	}
	for _, opt := range options {
		opt(store)
	}
	return store, nil
}

// Hydrate loads the persisted session. Consumers such as the route guard
// must not read the store before hydration completes, otherwise they would
// act on an empty default state.
func (s *Store) Hydrate() error {
	loaded, found, err := s.repo.Load()
	if err != nil {
		return errors.Wrapf(err, "[Store.Hydrate] repo.Load")
	}

	s.mu.Lock()
	if found {
		// Re-derive the flag rather than trusting the stored copy.
		loaded.IsLoggedIn = loaded.AccessToken != ""
		s.current = loaded
	}
	s.hydrated = true
	snapshot := s.current
	listeners := s.listeners
	s.mu.Unlock()

	notify(listeners, snapshot)
	return nil
}

// Hydrated reports whether the persisted session has been loaded.
func (s *Store) Hydrated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hydrated
}

// Snapshot returns the current session state.
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// LogIn replaces the token pair. The role is derived from the access
// token's claims when present. Subsequent requests carry the new token
// immediately.
func (s *Store) LogIn(accessToken, refreshToken string) error {
	next := Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		IsLoggedIn:   accessToken != "",
	}
	if c, err := claims.Parse(accessToken); err == nil {
		next.Role = c.Role
		next.IsValidating = c.SecondFactor()
	}
	return s.replace(next)
}

// LogOut clears the session. Idempotent.
func (s *Store) LogOut() error {
	return s.replace(Session{})
}

// SetValidating marks the session as awaiting a second-factor code.
func (s *Store) SetValidating(v bool) error {
	s.mu.RLock()
	next := s.current
	s.mu.RUnlock()
	next.IsValidating = v
	return s.replace(next)
}

// Subscribe registers a listener for session changes.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// replace is the single write path: persists first so the durable copy
// never lags the in-memory one, then notifies listeners.
func (s *Store) replace(next Session) error {
	if err := s.repo.Save(next); err != nil {
		return errors.Wrapf(err, "[Store.replace] repo.Save")
	}

	s.mu.Lock()
	s.current = next
	listeners := s.listeners
	s.mu.Unlock()

	s.log.Debug().Bool("loggedIn", next.IsLoggedIn).Msg("session changed")
	notify(listeners, next)
	return nil
}

func notify(listeners []Listener, snapshot Session) {
	for _, l := range listeners {
		l(snapshot)
	}
}
