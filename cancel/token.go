// Package cancel provides the one-shot cooperative cancellation token
// shared by package pathmatch (checked per candidate) and package
// xmledit (checked per context range), per spec.md §5.
package cancel

import (
	"sync/atomic"
	"time"

	"github.com/facebookgo/clock"
)

// Token is a cooperative, one-shot cancellation flag. The zero value is
// a valid, not-yet-cancelled token.
type Token struct {
	cancelled atomic.Bool
	clock     clock.Clock
}

// New returns a fresh, not-cancelled Token using the real wall clock.
func New() *Token {
	return &Token{clock: clock.New()}
}

// NewWithClock returns a fresh Token that arms timers against the given
// clock.Clock instead of the real one, so tests can advance time
// deterministically instead of sleeping (github.com/facebookgo/clock).
func NewWithClock(c clock.Clock) *Token {
	return &Token{clock: c}
}

// Cancel marks the token cancelled. Idempotent.
func (t *Token) Cancel() {
	t.cancelled.Store(true)
}

// Cancelled reports whether Cancel has been called. It is safe to call
// from any goroutine; spec.md §5 requires this to be a relaxed atomic
// load at candidate/range granularity, which atomic.Bool.Load provides.
func (t *Token) Cancelled() bool {
	return t.cancelled.Load()
}

// ArmAfter cancels the token once after d elapses on the token's clock.
// The core never imposes timeouts itself (spec.md §5); this is the
// mechanism a caller uses to impose one.
func (t *Token) ArmAfter(d time.Duration) {
	c := t.clock
	if c == nil {
		c = clock.New()
	}
	c.AfterFunc(d, t.Cancel)
}
