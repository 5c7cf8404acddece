// Package nav tracks the console's current location and notifies watchers
// on every navigation. It is the client-side router analog the filter
// invalidation layer hangs off.
package nav

import "sync"

// Watcher observes navigations. Watchers run synchronously in
// subscription order with the new path.
type Watcher func(path string)

// Navigator holds the current path.
type Navigator struct {
	mu       sync.RWMutex
	path     string
	watchers []Watcher
}

// New creates a navigator positioned at the initial path.
func New(initial string) *Navigator {
	return &Navigator{path: initial}
}

// Path returns the current location.
func (n *Navigator) Path() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.path
}

// Navigate moves to path and notifies watchers.
func (n *Navigator) Navigate(path string) {
	n.mu.Lock()
	n.path = path
	watchers := n.watchers
	n.mu.Unlock()

	for _, w := range watchers {
		w(path)
	}
}

// Subscribe registers a watcher for future navigations.
func (n *Navigator) Subscribe(w Watcher) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.watchers = append(n.watchers, w)
}
