package session

import (
	"sync"
	"time"

	"github.com/opencustody/consolekit/claims"
	"github.com/opencustody/consolekit/internal/errors"
	"github.com/rs/zerolog"
)

// Scheduler force-expires the session client-side when the access token's
// validity window elapses, independent of server-side enforcement. The
// window is counted from the token's iat claim; a token with no usable
// claims falls back to now + duration.
type Scheduler struct {
	store    *Store
	duration time.Duration
	onExpire func()
	nowTime  func() time.Time
	log      zerolog.Logger

	mu    sync.Mutex
	timer *time.Timer
}

// SchedulerOption defines a function type to modify the Scheduler instance.
type SchedulerOption func(*Scheduler)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) SchedulerOption {
	return func(s *Scheduler) {
		s.nowTime = nowFunc
	}
}

// WithOnExpire sets a callback invoked after a forced logout, used by the
// UI layer to notify the user and navigate to the login screen.
func WithOnExpire(fn func()) SchedulerOption {
	return func(s *Scheduler) {
		s.onExpire = fn
	}
}

// WithSchedulerLogger sets the scheduler's logger.
func WithSchedulerLogger(log zerolog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		s.log = log
	}
}

// NewScheduler creates an expiry scheduler for the given store.
func NewScheduler(store *Store, duration time.Duration, options ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		store:    store,
		duration: duration,
		nowTime:  time.Now,
		log:      zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// SessionChanged re-arms the scheduler from a session snapshot. Subscribe
// it to the store so every login or refresh replaces the armed timer.
func (s *Scheduler) SessionChanged(snapshot Session) {
	if snapshot.AccessToken == "" {
		s.Disarm()
		return
	}
	s.Arm(snapshot.AccessToken)
}

// Arm schedules a forced logout at iat + duration (or now + duration when
// the token carries no iat). Exactly one timer is armed at a time; arming
// cancels any previous timer. An expiry instant already in the past fires
// immediately as a zero-delay timeout.
func (s *Scheduler) Arm(accessToken string) {
	now := s.nowTime()
	expiry := now.Add(s.duration)
	if c, err := claims.Parse(accessToken); err == nil && c.IssuedAt != nil {
		expiry = c.IssuedAt.Add(s.duration)
	}

	delay := expiry.Sub(now)
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(delay, s.expire)
	s.log.Debug().Time("expiry", expiry).Msg("session expiry armed")
}

// Disarm cancels any armed timer.
func (s *Scheduler) Disarm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Scheduler) expire() {
	s.mu.Lock()
	s.timer = nil
	s.mu.Unlock()

	s.log.Warn().Err(errors.ErrSessionExpired).Msg("session validity window elapsed, forcing logout")
	if err := s.store.LogOut(); err != nil {
		s.log.Error().Err(err).Msg("forced logout failed")
	}
	if s.onExpire != nil {
		s.onExpire()
	}
}
