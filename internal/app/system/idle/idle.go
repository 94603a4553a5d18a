// Package idle implements the admin inactivity guard.
//
// A session is active until the time since the last tracked user activity
// reaches the idle threshold. The same rule is applied in two places: by
// Guard, an event-driven state machine for interactive clients, and by the
// admin HTTP session middleware through Expired and ShouldRecord.
package idle

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultThreshold is how long a session may stay idle.
	DefaultThreshold = 15 * time.Minute

	// DefaultThrottle bounds how often activity events are recorded.
	DefaultThrottle = time.Second

	signOutTimeout = 10 * time.Second
)

// Expired reports whether a session last active at lastActivity is expired
// at now.
func Expired(lastActivity, now time.Time, threshold time.Duration) bool {
	return now.Sub(lastActivity) >= threshold
}

// ShouldRecord reports whether an activity event at now should be recorded
// given the previously recorded one.
func ShouldRecord(lastRecorded, now time.Time, throttle time.Duration) bool {
	return lastRecorded.IsZero() || now.Sub(lastRecorded) >= throttle
}

// State of a guarded session.
type State int

const (
	StateActive State = iota
	StateExpired
)

func (s State) String() string {
	if s == StateActive {
		return "active"
	}
	return "expired"
}

// Timer is the subset of *time.Timer the guard needs.
type Timer interface {
	Stop() bool
}

// Clock abstracts wall-clock time and timers.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }
func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SignOutFunc ends the session when the guard expires. It runs with the
// guard locked and must not call back into the guard.
type SignOutFunc func(ctx context.Context) error

// Guard tracks user activity and signs the user out after the idle
// threshold. It is safe for concurrent use.
type Guard struct {
	mu sync.Mutex

	clock     Clock
	threshold time.Duration
	throttle  time.Duration
	signOut   SignOutFunc
	log       *zap.Logger

	lastActivity   time.Time
	backgroundedAt time.Time
	inBackground   bool
	expired        bool
	timer          Timer
	err            error
}

// Option configures a Guard.
type Option func(*Guard)

// WithThreshold overrides DefaultThreshold.
func WithThreshold(d time.Duration) Option {
	return func(g *Guard) { g.threshold = d }
}

// WithThrottle overrides DefaultThrottle.
func WithThrottle(d time.Duration) Option {
	return func(g *Guard) { g.throttle = d }
}

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c Clock) Option {
	return func(g *Guard) { g.clock = c }
}

// NewGuard returns a guard that calls signOut on expiry. Call Start to arm it.
func NewGuard(signOut SignOutFunc, logger *zap.Logger, opts ...Option) *Guard {
	g := &Guard{
		clock:     realClock{},
		threshold: DefaultThreshold,
		throttle:  DefaultThrottle,
		signOut:   signOut,
		log:       logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.log == nil {
		g.log = zap.NewNop()
	}
	return g
}

// Start marks the session as just active and arms the expiry timer.
func (g *Guard) Start() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastActivity = g.clock.Now()
	g.expired = false
	g.err = nil
	g.schedule(g.threshold)
}

// Activity records a pointer, key, scroll or touch event. Events closer
// together than the throttle interval are ignored. It returns whether the
// event reset the idle timer.
func (g *Guard) Activity() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.expired {
		return false
	}
	now := g.clock.Now()
	if Expired(g.lastActivity, now, g.threshold) {
		// the timer has not fired yet but the session is already over
		g.expireLocked()
		return false
	}
	if !ShouldRecord(g.lastActivity, now, g.throttle) {
		return false
	}
	g.lastActivity = now
	if !g.inBackground {
		g.schedule(g.threshold)
	}
	return true
}

// Background is called when the app or tab loses focus. Timers may not run
// while backgrounded, so the guard stops its timer and relies on the wall
// clock when the client returns.
func (g *Guard) Background() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.expired || g.inBackground {
		return
	}
	g.inBackground = true
	g.backgroundedAt = g.clock.Now()
	g.stopTimer()
}

// Foreground reconciles idle time after the client returns. If the idle
// threshold passed while in the background the session expires immediately,
// otherwise the timer is re-armed for the remaining time.
func (g *Guard) Foreground() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.expired || !g.inBackground {
		return
	}
	g.inBackground = false
	now := g.clock.Now()
	idleFor := now.Sub(g.lastActivity)
	if idleFor >= g.threshold {
		g.log.Info("session expired while in background",
			zap.Duration("idle", idleFor),
			zap.Duration("background", now.Sub(g.backgroundedAt)))
		g.expireLocked()
		return
	}
	g.schedule(g.threshold - idleFor)
}

// State reports the session state at the current clock time.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.expired || Expired(g.lastActivity, g.clock.Now(), g.threshold) {
		return StateExpired
	}
	return StateActive
}

// Err returns the last sign-out failure, if any. Sign-out failures do not
// keep the session alive.
func (g *Guard) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.err
}

// Stop disarms the guard without signing out.
func (g *Guard) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stopTimer()
}

func (g *Guard) schedule(d time.Duration) {
	g.stopTimer()
	g.timer = g.clock.AfterFunc(d, g.onTimer)
}

func (g *Guard) stopTimer() {
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
}

func (g *Guard) onTimer() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.expired || g.inBackground {
		return
	}
	now := g.clock.Now()
	if !Expired(g.lastActivity, now, g.threshold) {
		// activity raced with the timer
		g.schedule(g.threshold - now.Sub(g.lastActivity))
		return
	}
	g.expireLocked()
}

func (g *Guard) expireLocked() {
	g.expired = true
	g.stopTimer()
	if g.signOut == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), signOutTimeout)
	defer cancel()
	if err := g.signOut(ctx); err != nil {
		g.log.Error("sign-out after inactivity failed", zap.Error(err))
		g.err = err
	}
}
