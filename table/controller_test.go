package table_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/opencustody/consolekit/filters"
	"github.com/opencustody/consolekit/filters/repofake"
	"github.com/opencustody/consolekit/internal/errors"
	"github.com/opencustody/consolekit/nav"
	"github.com/opencustody/consolekit/table"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store     *filters.Store
	navigator *nav.Navigator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := filters.NewStore(repofake.NewFakeFilterRepo())
	require.NoError(t, err)
	return &fixture{store: store, navigator: nav.New("/settings/limits")}
}

func staticFetch(values filters.Values) table.FetchFunc[filters.Values] {
	return func(ctx context.Context, v filters.Values) (filters.Values, error) {
		return v, nil
	}
}

func TestInitialStateMergesPersistedOverDefaults(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.SetFilters("limits-table", filters.Values{"page": "7", "status": "pending"}))

	c, err := table.New(table.Config{
		TableKey:  "limits-table",
		BasePath:  "/settings/limits",
		Defaults:  filters.Values{"page": "1", "limit": "25"},
		Filters:   f.store,
		Navigator: f.navigator,
	}, staticFetch(nil))
	require.NoError(t, err)

	got := c.Filters()
	require.Equal(t, "7", got["page"], "persisted value wins on collision")
	require.Equal(t, "25", got["limit"], "defaults fill the gaps")
	require.Equal(t, "pending", got["status"])
}

func TestSetFiltersIsLocalUntilNavigateWithSavedFilters(t *testing.T) {
	f := newFixture(t)
	c, err := table.New(table.Config{
		TableKey:  "limits-table",
		BasePath:  "/settings/limits",
		Defaults:  filters.Values{"page": "1"},
		Filters:   f.store,
		Navigator: f.navigator,
	}, staticFetch(nil))
	require.NoError(t, err)

	c.SetPage(3)
	c.SetOrder("amount", "desc")

	_, ok := f.store.GetFilters("limits-table")
	require.False(t, ok, "local changes are not persisted")

	require.NoError(t, c.NavigateWithSavedFilters("/settings/limits/5/edit"))
	require.Equal(t, "/settings/limits/5/edit", f.navigator.Path())

	saved, ok := f.store.GetFilters("limits-table")
	require.True(t, ok)
	require.Equal(t, "3", saved["page"])
	require.Equal(t, "amount", saved["orderBy"])
	require.Equal(t, "desc", saved["order"])
}

func TestClearFiltersResetsToDefaults(t *testing.T) {
	f := newFixture(t)
	c, err := table.New(table.Config{
		TableKey:  "limits-table",
		BasePath:  "/settings/limits",
		Defaults:  filters.Values{"page": "1", "limit": "25"},
		Filters:   f.store,
		Navigator: f.navigator,
	}, staticFetch(nil))
	require.NoError(t, err)

	c.SetPage(9)
	require.NoError(t, c.NavigateWithSavedFilters("/settings/limits/1"))
	require.NoError(t, c.ClearFilters())

	require.Equal(t, filters.Values{"page": "1", "limit": "25"}, c.Filters())
	_, ok := f.store.GetFilters("limits-table")
	require.False(t, ok)
}

func TestLeavingBasePathClearsPersistedEntry(t *testing.T) {
	f := newFixture(t)
	c, err := table.New(table.Config{
		TableKey:  "limits-table",
		BasePath:  "/settings/limits",
		Defaults:  filters.Values{"page": "1"},
		Filters:   f.store,
		Navigator: f.navigator,
	}, staticFetch(nil))
	require.NoError(t, err)

	require.NoError(t, c.NavigateWithSavedFilters("/settings/limits/5/edit"))
	_, ok := f.store.GetFilters("limits-table")
	require.True(t, ok, "deeper path under the base keeps the entry")

	f.navigator.Navigate("/users")
	_, ok = f.store.GetFilters("limits-table")
	require.False(t, ok)
}

func TestLoadReturnsFetchResultAndPhase(t *testing.T) {
	f := newFixture(t)
	c, err := table.New(table.Config{
		TableKey: "limits-table",
		BasePath: "/settings/limits",
		Defaults: filters.Values{"page": "2"},
		Filters:  f.store,
	}, staticFetch(nil))
	require.NoError(t, err)

	got, err := c.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, "2", got["page"])
	require.Equal(t, table.PhaseSuccess, c.Phase())
}

func TestLoadErrorPhase(t *testing.T) {
	f := newFixture(t)
	c, err := table.New(table.Config{
		TableKey: "limits-table",
		BasePath: "/settings/limits",
		Defaults: filters.Values{},
		Filters:  f.store,
	}, func(ctx context.Context, v filters.Values) (filters.Values, error) {
		return nil, errors.ErrInternal
	})
	require.NoError(t, err)

	_, err = c.Load(context.Background())
	require.ErrorIs(t, err, errors.ErrInternal)
	require.Equal(t, table.PhaseError, c.Phase())
}

func TestIdenticalParameterTuplesShareOneFetch(t *testing.T) {
	f := newFixture(t)
	var calls atomic.Int32
	release := make(chan struct{})

	c, err := table.New(table.Config{
		TableKey: "limits-table",
		BasePath: "/settings/limits",
		Defaults: filters.Values{"page": "1"},
		Filters:  f.store,
	}, func(ctx context.Context, v filters.Values) (filters.Values, error) {
		calls.Add(1)
		<-release
		return v, nil
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, loadErr := c.Load(context.Background())
			require.NoError(t, loadErr)
		}()
	}

	// Give every Load a chance to either lead or attach to the in-flight
	// fetch before it settles.
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	require.Equal(t, int32(1), calls.Load())
}
