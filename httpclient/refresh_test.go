package httpclient

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/opencustody/consolekit/internal/errors"
	"github.com/opencustody/consolekit/session"
	"github.com/opencustody/consolekit/session/repofake"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *session.Store {
	t.Helper()
	store, err := session.NewStore(repofake.NewFakeSessionRepo())
	require.NoError(t, err)
	require.NoError(t, store.Hydrate())
	return store
}

func TestDoSuccessUpdatesStore(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.LogIn("T1", "R1"))

	c, err := NewRefreshCoordinator(func(ctx context.Context, refreshToken string) (string, string, error) {
		require.Equal(t, "R1", refreshToken)
		return "T2", "R2", nil
	}, store)
	require.NoError(t, err)

	token, err := c.Do(context.Background(), "R1")
	require.NoError(t, err)
	require.Equal(t, "T2", token)

	snap := store.Snapshot()
	require.Equal(t, "T2", snap.AccessToken)
	require.Equal(t, "R2", snap.RefreshToken)
	require.True(t, snap.IsLoggedIn)
}

func TestDoFailureClearsStore(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.LogIn("T1", "R1"))

	c, err := NewRefreshCoordinator(func(ctx context.Context, refreshToken string) (string, string, error) {
		return "", "", errors.ErrInvalidToken
	}, store)
	require.NoError(t, err)

	_, err = c.Do(context.Background(), "R1")
	require.ErrorIs(t, err, errors.ErrRefreshFailed)
	require.Equal(t, session.Session{}, store.Snapshot())
}

func TestConcurrentCallersShareOneRefresh(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.LogIn("T1", "R1"))

	var calls atomic.Int32
	release := make(chan struct{})
	c, err := NewRefreshCoordinator(func(ctx context.Context, refreshToken string) (string, string, error) {
		calls.Add(1)
		<-release
		return "T2", "R2", nil
	}, store)
	require.NoError(t, err)

	const followers = 5
	results := make(chan string, followers+1)
	errs := make(chan error, followers+1)

	go func() {
		token, doErr := c.Do(context.Background(), "R1")
		results <- token
		errs <- doErr
	}()

	// Wait for the leader to take the in-flight slot.
	require.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.inFlight
	}, 2*time.Second, time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < followers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, doErr := c.Do(context.Background(), "R1")
			results <- token
			errs <- doErr
		}()
	}

	// Wait until every follower has enqueued, then settle the refresh.
	require.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		return len(c.waiters) == followers
	}, 2*time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	require.Equal(t, int32(1), calls.Load())
	for i := 0; i < followers+1; i++ {
		require.Equal(t, "T2", <-results)
		require.NoError(t, <-errs)
	}
}

func TestSettleDrainsContinuationsInEnqueueOrder(t *testing.T) {
	store := newTestStore(t)
	c, err := NewRefreshCoordinator(func(ctx context.Context, refreshToken string) (string, string, error) {
		return "T2", "R2", nil
	}, store)
	require.NoError(t, err)

	var order []int
	c.mu.Lock()
	c.inFlight = true
	for i := 0; i < 4; i++ {
		i := i
		c.waiters = append(c.waiters, func(refreshResult) { order = append(order, i) })
	}
	c.mu.Unlock()

	c.settle(refreshResult{token: "T2"})

	require.Equal(t, []int{0, 1, 2, 3}, order)
	c.mu.Lock()
	defer c.mu.Unlock()
	require.False(t, c.inFlight)
	require.Empty(t, c.waiters)
}

func TestWaiterRespectsContextCancellation(t *testing.T) {
	store := newTestStore(t)
	release := make(chan struct{})
	defer close(release)
	c, err := NewRefreshCoordinator(func(ctx context.Context, refreshToken string) (string, string, error) {
		<-release
		return "T2", "R2", nil
	}, store)
	require.NoError(t, err)

	go c.Do(context.Background(), "R1") //nolint:errcheck
	require.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.inFlight
	}, 2*time.Second, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, doErr := c.Do(ctx, "R1")
	require.ErrorIs(t, doErr, context.Canceled)
}
