package httpclient

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/opencustody/consolekit/internal/errors"
	"github.com/opencustody/consolekit/session"
	"github.com/rs/zerolog"
)

// Requests whose URL contains one of these substrings never trigger the
// refresh flow on 401; they either belong to the auth flow itself or serve
// static assets.
var exemptSubstrings = []string{"auth/signin", "logout", "/assets/"}

type retriedCtxKey struct{}

func markRetried(ctx context.Context) context.Context {
	return context.WithValue(ctx, retriedCtxKey{}, true)
}

func wasRetried(ctx context.Context) bool {
	v, _ := ctx.Value(retriedCtxKey{}).(bool)
	return v
}

// Transport is the interceptor chain: it decorates every outgoing request
// with the bearer token and locale, and on a first-time 401 coordinates a
// single silent refresh before replaying the request.
type Transport struct {
	base        http.RoundTripper
	store       *session.Store
	coordinator *RefreshCoordinator
	locale      func() string
	log         zerolog.Logger
}

// TransportOption defines a function type to modify the Transport instance.
type TransportOption func(*Transport)

// WithLocale sets the Accept-Language source.
func WithLocale(locale func() string) TransportOption {
	return func(t *Transport) {
		t.locale = locale
	}
}

// WithTransportLogger sets the transport's logger.
func WithTransportLogger(log zerolog.Logger) TransportOption {
	return func(t *Transport) {
		t.log = log
	}
}

// NewTransport creates the interceptor chain over base.
func NewTransport(base http.RoundTripper, store *session.Store, coordinator *RefreshCoordinator, options ...TransportOption) (*Transport, error) {
	if store == nil {
		return nil, errors.Wrapf(errors.ErrInternal, "[NewTransport] store is required")
	}
	if coordinator == nil {
		return nil, errors.Wrapf(errors.ErrInternal, "[NewTransport] coordinator is required")
	}
	if base == nil {
		base = http.DefaultTransport
	}
	t := &Transport{
		base:        base,
		store:       store,
		coordinator: coordinator,
		log:         zerolog.Nop(),
	}
	for _, opt := range options {
		opt(t)
	}
	return t, nil
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())

	snapshot := t.store.Snapshot()
	if snapshot.AccessToken != "" {
		out.Header.Set("Authorization", "Bearer "+snapshot.AccessToken)
	}
	if t.locale != nil {
		out.Header.Set("Accept-Language", t.locale())
	}
	if out.Header.Get("X-Request-Id") == "" {
		out.Header.Set("X-Request-Id", uuid.New().String())
	}

	resp, err := t.base.RoundTrip(out)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	if isExempt(req.URL.String()) || wasRetried(req.Context()) {
		// Propagate unchanged; retrying here would loop.
		return resp, nil
	}

	current := t.store.Snapshot()
	if current.RefreshToken == "" {
		t.log.Warn().Str("url", req.URL.Path).Msg("401 with no refresh token held, logging out")
		if logoutErr := t.store.LogOut(); logoutErr != nil {
			t.log.Error().Err(logoutErr).Msg("logout on unrecoverable 401")
		}
		return resp, nil
	}

	t.log.Debug().Str("url", req.URL.Path).Msg("401 received, refreshing token")
	if _, refreshErr := t.coordinator.Do(req.Context(), current.RefreshToken); refreshErr != nil {
		// Terminal for the session; the caller sees the original 401.
		return resp, nil
	}

	retry, cloneErr := cloneForRetry(req)
	if cloneErr != nil {
		return resp, nil
	}

	// The original response is superseded by the replay.
	io.Copy(io.Discard, resp.Body) //nolint:errcheck
	resp.Body.Close()

	// Replays go back through the full chain so they pick up the fresh
	// token, but the marker caps them at one retry per original request.
	return t.RoundTrip(retry)
}

func isExempt(url string) bool {
	for _, s := range exemptSubstrings {
		if strings.Contains(url, s) {
			return true
		}
	}
	return false
}

// cloneForRetry rebuilds the original request with a retry marker. The
// first attempt consumed the body, so it is rewound via GetBody; a request
// whose body cannot be rebuilt is not replayable.
func cloneForRetry(req *http.Request) (*http.Request, error) {
	out := req.Clone(markRetried(req.Context()))
	if req.Body == nil || req.Body == http.NoBody {
		return out, nil
	}
	if req.GetBody == nil {
		return nil, errors.ErrBodyNotReplayable
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, errors.Wrapf(err, "[cloneForRetry] GetBody")
	}
	out.Body = body
	return out, nil
}
