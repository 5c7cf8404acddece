package repofake

import (
	"sync"

	"github.com/opencustody/consolekit/filters"
)

var _ filters.Repo = (*FakeFilterRepo)(nil)

// FakeFilterRepo is an in-memory filters.Repo for tests.
type FakeFilterRepo struct {
	mu     sync.RWMutex
	stored map[string]filters.Values
}

func NewFakeFilterRepo() *FakeFilterRepo {
	return &FakeFilterRepo{}
}

func (r *FakeFilterRepo) Load() (map[string]filters.Values, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.stored == nil {
		return nil, nil
	}
	out := make(map[string]filters.Values, len(r.stored))
	for k, v := range r.stored {
		out[k] = v.Clone()
	}
	return out, nil
}

func (r *FakeFilterRepo) Save(table map[string]filters.Values) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stored = make(map[string]filters.Values, len(table))
	for k, v := range table {
		r.stored[k] = v.Clone()
	}
	return nil
}
