// Package table implements the list-screen controller: it merges persisted
// filter state with screen defaults, drives paginated fetches, and saves
// its state back when the user navigates to a detail screen.
package table

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/opencustody/consolekit/filters"
	"github.com/opencustody/consolekit/internal/errors"
	"github.com/opencustody/consolekit/nav"
)

// Phase is the controller's fetch state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseFetching
	PhaseSuccess
	PhaseError
)

// FetchFunc loads one page of data for the given filter values.
type FetchFunc[T any] func(ctx context.Context, values filters.Values) (T, error)

// Config identifies a table and its defaults.
type Config struct {
	TableKey  string
	BasePath  string
	Defaults  filters.Values
	Filters   *filters.Store
	Navigator *nav.Navigator
}

// Controller binds one list screen's filter state to a paginated fetch.
// Two controllers must never share a table key.
type Controller[T any] struct {
	cfg   Config
	fetch FetchFunc[T]

	mu       sync.Mutex
	values   filters.Values
	phase    Phase
	lastErr  error
	result   T
	inflight map[string]chan struct{}
}

// New creates a controller. Its initial filter state is the screen defaults
// shallow-merged under the persisted values for the table key (persisted
// values win on collision), and the controller watches navigation so
// leaving the base path drops the persisted entry.
func New[T any](cfg Config, fetch FetchFunc[T]) (*Controller[T], error) {
	if cfg.TableKey == "" {
		return nil, errors.Wrapf(errors.ErrInternal, "[table.New] table key is required")
	}
	if cfg.Filters == nil {
		return nil, errors.Wrapf(errors.ErrInternal, "[table.New] filter store is required")
	}
	if fetch == nil {
		return nil, errors.Wrapf(errors.ErrInternal, "[table.New] fetch func is required")
	}

	c := &Controller[T]{
		cfg:      cfg,
		fetch:    fetch,
		inflight: make(map[string]chan struct{}),
	}

	merged := cfg.Defaults.Clone()
	if persisted, ok := cfg.Filters.GetFilters(cfg.TableKey); ok {
		for k, v := range persisted {
			merged[k] = v
		}
	}
	c.values = merged

	if cfg.Navigator != nil && cfg.BasePath != "" {
		cfg.Navigator.Subscribe(c.pathChanged)
	}

	return c, nil
}

// pathChanged drops the persisted entry once the location leaves the base
// path. The filter store's global watcher enforces the same rule; both
// must hold it.
func (c *Controller[T]) pathChanged(path string) {
	if strings.HasPrefix(path, c.cfg.BasePath) {
		return
	}
	_ = c.cfg.Filters.ClearFilters(c.cfg.TableKey)
}

// Filters returns a copy of the current local filter state.
func (c *Controller[T]) Filters() filters.Values {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values.Clone()
}

// Phase returns the controller's current fetch phase.
func (c *Controller[T]) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// SetFilters shallow-merges partial into the local state. Nothing is
// persisted until NavigateWithSavedFilters.
func (c *Controller[T]) SetFilters(partial filters.Values) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range partial {
		c.values[k] = v
	}
}

// SetPage sets the current page.
func (c *Controller[T]) SetPage(page int) {
	c.SetFilters(filters.Values{"page": strconv.Itoa(page)})
}

// SetLimit sets the page size.
func (c *Controller[T]) SetLimit(limit int) {
	c.SetFilters(filters.Values{"limit": strconv.Itoa(limit)})
}

// SetOrder sets the sort column and direction.
func (c *Controller[T]) SetOrder(orderBy, order string) {
	c.SetFilters(filters.Values{"orderBy": orderBy, "order": order})
}

// ClearFilters resets the local state to the screen defaults and removes
// the persisted entry.
func (c *Controller[T]) ClearFilters() error {
	c.mu.Lock()
	c.values = c.cfg.Defaults.Clone()
	c.mu.Unlock()
	return c.cfg.Filters.ClearFilters(c.cfg.TableKey)
}

// NavigateWithSavedFilters persists the current filter state and then
// navigates. This is the only write path from a controller back into the
// filter store; it is used when leaving to a detail or edit screen so that
// returning restores pagination and sort.
func (c *Controller[T]) NavigateWithSavedFilters(path string) error {
	c.mu.Lock()
	snapshot := c.values.Clone()
	c.mu.Unlock()

	if err := c.cfg.Filters.SetFilters(c.cfg.TableKey, snapshot); err != nil {
		return errors.Wrapf(err, "[Controller.NavigateWithSavedFilters] SetFilters")
	}
	if c.cfg.Navigator != nil {
		c.cfg.Navigator.Navigate(path)
	}
	return nil
}

// Load fetches the page described by the current filter state. A second
// Load for an identical parameter tuple while one is in flight waits for
// the first instead of issuing an overlapping fetch.
func (c *Controller[T]) Load(ctx context.Context) (T, error) {
	c.mu.Lock()
	values := c.values.Clone()
	identity := paramIdentity(values)

	if done, dup := c.inflight[identity]; dup {
		c.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
		c.mu.Lock()
		result, lastErr := c.result, c.lastErr
		c.mu.Unlock()
		return result, lastErr
	}

	done := make(chan struct{})
	c.inflight[identity] = done
	c.phase = PhaseFetching
	c.mu.Unlock()

	result, err := c.fetch(ctx, values)

	c.mu.Lock()
	c.result, c.lastErr = result, err
	if err != nil {
		c.phase = PhaseError
	} else {
		c.phase = PhaseSuccess
	}
	delete(c.inflight, identity)
	c.mu.Unlock()
	close(done)

	return result, err
}

// paramIdentity canonicalizes a parameter tuple for de-duplication.
func paramIdentity(values filters.Values) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(values[k])
		b.WriteByte('&')
	}
	return b.String()
}
