package sdk

import (
	"sync"
	"time"
)

// NonceSource issues strictly increasing nonces for signed requests.
//
// The common case is the current Unix time in milliseconds, but strict
// monotonicity is the real contract: nonce reuse or regression is a hard
// failure at the exchange, so a clock that appears to go backward yields
// previous+1 instead. Monotonicity is process-wide per credential, which
// is why the exchange client owns a single NonceSource behind a mutex.
type NonceSource struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewNonceSource creates a NonceSource backed by the wall clock.
func NewNonceSource() *NonceSource {
	return &NonceSource{now: time.Now}
}

// newNonceSourceWithClock is used by tests to simulate clock regression.
func newNonceSourceWithClock(now func() time.Time) *NonceSource {
	return &NonceSource{now: now}
}

// Next returns a nonce strictly greater than every nonce previously
// returned by this source.
func (n *NonceSource) Next() int64 {
	n.mu.Lock()
	defer n.mu.Unlock()

	v := n.now().UnixMilli()
	if v <= n.last {
		v = n.last + 1
	}
	n.last = v
	return v
}
