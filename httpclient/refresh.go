package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/opencustody/consolekit/internal/errors"
	"github.com/opencustody/consolekit/session"
	"github.com/rs/zerolog"
)

// RefreshFunc exchanges a refresh token for a new token pair.
type RefreshFunc func(ctx context.Context, refreshToken string) (accessToken, newRefreshToken string, err error)

type refreshResult struct {
	token string
	err   error
}

type waiter chan refreshResult

// RefreshCoordinator guarantees at most one refresh call in flight at any
// time. Requests that hit a 401 while a refresh is running enqueue a
// continuation behind it and settle against its single outcome, in
// enqueue order.
type RefreshCoordinator struct {
	refreshFn RefreshFunc
	store     *session.Store
	log       zerolog.Logger

	mu       sync.Mutex
	inFlight bool
	waiters  []func(refreshResult)
}

// CoordinatorOption defines a function type to modify the RefreshCoordinator instance.
type CoordinatorOption func(*RefreshCoordinator)

// WithCoordinatorLogger sets the coordinator's logger.
func WithCoordinatorLogger(log zerolog.Logger) CoordinatorOption {
	return func(c *RefreshCoordinator) {
		c.log = log
	}
}

// NewRefreshCoordinator creates a coordinator that refreshes through
// refreshFn and records outcomes in the session store.
func NewRefreshCoordinator(refreshFn RefreshFunc, store *session.Store, options ...CoordinatorOption) (*RefreshCoordinator, error) {
	if refreshFn == nil {
		return nil, errors.Wrapf(errors.ErrInternal, "[NewRefreshCoordinator] refreshFn is required")
	}
	if store == nil {
		return nil, errors.Wrapf(errors.ErrInternal, "[NewRefreshCoordinator] store is required")
	}
	c := &RefreshCoordinator{
		refreshFn: refreshFn,
		store:     store,
		log:       zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Do returns a fresh access token. The first caller leads the refresh;
// callers arriving while it is in flight wait for the same outcome. On
// success the store holds the new pair before Do returns; on failure the
// store is cleared.
func (c *RefreshCoordinator) Do(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", errors.ErrNoRefreshToken
	}

	c.mu.Lock()
	if c.inFlight {
		w := c.enqueueLocked()
		c.mu.Unlock()
		select {
		case res := <-w:
			return res.token, res.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	c.inFlight = true
	c.mu.Unlock()

	accessToken, newRefreshToken, err := c.refreshFn(ctx, refreshToken)

	var res refreshResult
	if err != nil {
		c.log.Warn().Err(err).Msg("token refresh failed, clearing session")
		if logoutErr := c.store.LogOut(); logoutErr != nil {
			c.log.Error().Err(logoutErr).Msg("logout after refresh failure")
		}
		res.err = fmt.Errorf("%w: %w", errors.ErrRefreshFailed, err)
	} else if loginErr := c.store.LogIn(accessToken, newRefreshToken); loginErr != nil {
		res.err = errors.Wrapf(loginErr, "[RefreshCoordinator.Do] store.LogIn")
	} else {
		c.log.Debug().Msg("token refresh succeeded")
		res.token = accessToken
	}

	c.settle(res)
	return res.token, res.err
}

func (c *RefreshCoordinator) enqueueLocked() waiter {
	w := make(waiter, 1)
	c.waiters = append(c.waiters, func(res refreshResult) { w <- res })
	return w
}

// settle clears the in-flight flag and drains waiters in enqueue order.
// The flag drops before any re-issued request is awaited, so a late 401
// can start a fresh cycle instead of deadlocking behind this one.
func (c *RefreshCoordinator) settle(res refreshResult) {
	c.mu.Lock()
	c.inFlight = false
	waiters := c.waiters
	c.waiters = nil
	c.mu.Unlock()

	for _, deliver := range waiters {
		deliver(res)
	}
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// NewRefreshFunc builds the POST /auth/refresh call against the platform
// API. It uses its own plain HTTP client so a 401 from the refresh
// endpoint itself can never re-enter the interceptor chain.
func NewRefreshFunc(baseURL string, hc *http.Client) RefreshFunc {
	if hc == nil {
		hc = &http.Client{}
	}
	return func(ctx context.Context, refreshToken string) (string, string, error) {
		payload, err := json.Marshal(refreshRequest{RefreshToken: refreshToken})
		if err != nil {
			return "", "", fmt.Errorf("marshal refresh request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/auth/refresh", bytes.NewReader(payload))
		if err != nil {
			return "", "", fmt.Errorf("build refresh request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := hc.Do(req)
		if err != nil {
			return "", "", fmt.Errorf("refresh call: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < http.StatusOK || resp.StatusCode > 299 {
			return "", "", fmt.Errorf("refresh rejected: %s", readErrorMessage(resp))
		}

		var tr refreshResponse
		if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
			return "", "", fmt.Errorf("decode refresh response: %w", err)
		}
		return tr.AccessToken, tr.RefreshToken, nil
	}
}

func readErrorMessage(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil || len(body) == 0 {
		return resp.Status
	}
	var apiErr struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		return apiErr.Message
	}
	return resp.Status
}
