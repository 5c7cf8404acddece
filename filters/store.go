// Package filters persists per-table filter and pagination state so a list
// screen restores its last page, sort and predicates when the user returns
// to it.
package filters

import (
	"strings"
	"sync"

	"github.com/opencustody/consolekit/internal/errors"
	"github.com/opencustody/consolekit/nav"
	"github.com/rs/zerolog"
)

// Values is one table's filter/pagination state. Well-known keys are
// "page", "limit", "orderBy" and "order"; everything else is a
// screen-specific predicate.
type Values map[string]string

// Clone returns a shallow copy of v.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Binding ties a table key to the base path its filters are valid under.
type Binding struct {
	TableKey string
	BasePath string
}

// Store is a keyed persistent map from table identity to last-used filter
// values. Two tables must never share a key; that is a usage error, not
// something the store defends against.
type Store struct {
	mu       sync.RWMutex
	filters  map[string]Values
	bindings []Binding
	repo     Repo
	log      zerolog.Logger
}

// StoreOption defines a function type to modify the Store instance.
type StoreOption func(*Store)

// WithLogger sets the store's logger.
func WithLogger(log zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.log = log
	}
}

// NewStore creates a filter store and loads the persisted filter table.
func NewStore(repo Repo, options ...StoreOption) (*Store, error) {
	if repo == nil {
		return nil, errors.Wrapf(errors.ErrInternal, "[filters.NewStore] repo is required")
	}

	store := &Store{
		filters: make(map[string]Values),
		repo:    repo,
		log:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(store)
	}

	loaded, err := repo.Load()
	if err != nil {
		return nil, errors.Wrapf(err, "[filters.NewStore] repo.Load")
	}
	if loaded != nil {
		store.filters = loaded
	}

	return store, nil
}

// SetFilters replaces the stored map for tableKey wholesale. Merging with
// defaults is the caller's responsibility.
func (s *Store) SetFilters(tableKey string, values Values) error {
	s.mu.Lock()
	s.filters[tableKey] = values.Clone()
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	return s.persist(snapshot)
}

// GetFilters returns the stored values for tableKey, or ok=false when none
// are held.
func (s *Store) GetFilters(tableKey string) (Values, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.filters[tableKey]
	if !ok {
		return nil, false
	}
	return v.Clone(), true
}

// ClearFilters removes the entry for tableKey.
func (s *Store) ClearFilters(tableKey string) error {
	s.mu.Lock()
	if _, ok := s.filters[tableKey]; !ok {
		s.mu.Unlock()
		return nil
	}
	delete(s.filters, tableKey)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	return s.persist(snapshot)
}

// Bind registers a table-key/base-path pair for navigation invalidation.
func (s *Store) Bind(tableKey, basePath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bindings = append(s.bindings, Binding{TableKey: tableKey, BasePath: basePath})
}

// Watch subscribes the store to the navigator: on every navigation, any
// bound table whose base path is not a prefix of the new location has its
// filters cleared. This keeps stale filters from one table leaking into
// another that reuses default values.
func (s *Store) Watch(n *nav.Navigator) {
	n.Subscribe(s.PathChanged)
}

// PathChanged applies the invalidation policy for a new location.
func (s *Store) PathChanged(path string) {
	s.mu.RLock()
	bindings := s.bindings
	s.mu.RUnlock()

	for _, b := range bindings {
		if strings.HasPrefix(path, b.BasePath) {
			continue
		}
		if err := s.ClearFilters(b.TableKey); err != nil {
			s.log.Error().Err(err).Str("tableKey", b.TableKey).Msg("clear filters on navigation")
		}
	}
}

func (s *Store) snapshotLocked() map[string]Values {
	out := make(map[string]Values, len(s.filters))
	for k, v := range s.filters {
		out[k] = v.Clone()
	}
	return out
}

func (s *Store) persist(snapshot map[string]Values) error {
	if err := s.repo.Save(snapshot); err != nil {
		return errors.Wrapf(err, "[filters.Store] repo.Save")
	}
	return nil
}
