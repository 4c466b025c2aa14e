package cache

import (
	"sync"

	"member-portal/app/domain"
)

// SessionCache is a single-entry, invalidate-on-write cache of the current
// authenticated identity. Many UI subscribers read it; only the session
// usecase writes it.
//
// The entry is either unknown (no entry; next read must re-verify), pending
// (verification in flight), a cached negative, or exactly one identity.
// Writes are whole-value replacements, never merges, so a stale field from
// one account can never bleed into another.
type SessionCache struct {
	mu     sync.RWMutex
	snap   domain.SessionSnapshot
	subs   map[int]func(domain.SessionSnapshot)
	nextID int
}

// NewSessionCache creates an empty session cache in the unknown state.
func NewSessionCache() *SessionCache {
	return &SessionCache{
		snap: domain.SessionSnapshot{State: domain.SessionUnknown},
		subs: make(map[int]func(domain.SessionSnapshot)),
	}
}

// Read returns the current snapshot. Pure read, no side effects.
func (c *SessionCache) Read() domain.SessionSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// Write replaces the entry with an authenticated identity and notifies
// subscribers.
func (c *SessionCache) Write(identity *domain.Identity) {
	c.replace(domain.SessionSnapshot{
		State:    domain.SessionAuthenticated,
		Identity: identity,
	})
}

// WriteAbsent replaces the entry with a cached negative: verification
// resolved and there is no session. Subscribers are notified.
func (c *SessionCache) WriteAbsent() {
	c.replace(domain.SessionSnapshot{State: domain.SessionUnauthenticated})
}

// SetPending marks a verification as in flight. Consumers render a loading
// state until the next write.
func (c *SessionCache) SetPending() {
	c.replace(domain.SessionSnapshot{State: domain.SessionPending})
}

// Invalidate removes the entry entirely. Unlike WriteAbsent this is not a
// cached negative: the next read must re-verify rather than trust it.
func (c *SessionCache) Invalidate() {
	c.replace(domain.SessionSnapshot{State: domain.SessionUnknown})
}

// Subscribe registers fn to be called synchronously on every write. The
// returned function removes the subscription.
func (c *SessionCache) Subscribe(fn func(domain.SessionSnapshot)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// replace swaps the snapshot and notifies subscribers outside the lock, so a
// subscriber may call Read without deadlocking.
func (c *SessionCache) replace(snap domain.SessionSnapshot) {
	c.mu.Lock()
	c.snap = snap
	fns := make([]func(domain.SessionSnapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
