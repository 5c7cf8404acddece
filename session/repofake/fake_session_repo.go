package repofake

import (
	"sync"

	"github.com/opencustody/consolekit/session"
)

var _ session.Repo = (*FakeSessionRepo)(nil)

// FakeSessionRepo is an in-memory session.Repo for tests.
type FakeSessionRepo struct {
	mu      sync.RWMutex
	stored  session.Session
	found   bool
	saves   int
	SaveErr error
	LoadErr error
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{}
}

func (r *FakeSessionRepo) Load() (session.Session, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.LoadErr != nil {
		return session.Session{}, false, r.LoadErr
	}
	return r.stored, r.found, nil
}

func (r *FakeSessionRepo) Save(s session.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.SaveErr != nil {
		return r.SaveErr
	}
	r.stored = s
	r.found = true
	r.saves++
	return nil
}

func (r *FakeSessionRepo) Delete() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stored = session.Session{}
	r.found = false
	return nil
}

// Saves returns how many times Save has been called.
func (r *FakeSessionRepo) Saves() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.saves
}

// Seed stores a session directly, bypassing the save counter.
func (r *FakeSessionRepo) Seed(s session.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stored = s
	r.found = true
}
