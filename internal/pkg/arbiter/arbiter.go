// Package arbiter implements the shared turn state of the rendezvous.
//
// An Arbiter grants the send turn to exactly one participant identity at
// a time. A session handler calls TryAcquire with its own identity; on
// success it holds the turn lock for the whole exchange (signal, read,
// record) and finishes with either Switch, which passes the turn to the
// other identity, or Release, which keeps the turn unchanged. The turn
// only ever moves on an accepted message.
package arbiter

import "sync"

// Identities of the two participants, assigned in connection order.
const (
	IdentityOne uint8 = 1
	IdentityTwo uint8 = 2
)

// Other returns the opposite identity.
func Other(identity uint8) uint8 {
	if identity == IdentityOne {
		return IdentityTwo
	}
	return IdentityOne
}

// Arbiter serialises access to the shared turn between two session
// handlers. The zero value is not usable; use New.
type Arbiter struct {
	mu   sync.Mutex
	turn uint8
}

// New creates an Arbiter with the turn held by identity 1.
func New() *Arbiter {
	return &Arbiter{turn: IdentityOne}
}

// TryAcquire reports whether the given identity currently holds the turn,
// without ever blocking: if the turn state is locked by the other handler
// it returns false immediately, so a waiting session keeps signalling
// WAIT while its peer's exchange is in flight. On true the lock stays
// held until Switch or Release is called.
func (a *Arbiter) TryAcquire(identity uint8) bool {
	if !a.mu.TryLock() {
		return false
	}
	if a.turn == identity {
		return true
	}
	a.mu.Unlock()
	return false
}

// Switch passes the turn to the other identity and releases the lock.
// Must only be called after a successful TryAcquire.
func (a *Arbiter) Switch() {
	a.turn = Other(a.turn)
	a.mu.Unlock()
}

// Release releases the lock without moving the turn. Must only be called
// after a successful TryAcquire.
func (a *Arbiter) Release() {
	a.mu.Unlock()
}

// Turn returns the identity currently holding the turn.
func (a *Arbiter) Turn() uint8 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.turn
}
