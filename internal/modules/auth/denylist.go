package auth

import (
	"sync"
	"time"
)

// Denylist is an in-process set of revoked token ids. Entries drop out once
// the underlying token would have expired anyway. Best-effort only: a
// restart forgets everything and other instances never see the entry, so it
// must not be treated as an authoritative revocation store.
type Denylist struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

func NewDenylist() *Denylist {
	return &Denylist{entries: make(map[string]time.Time)}
}

func (d *Denylist) Add(jti string, expiresAt time.Time) {
	if jti == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[jti] = expiresAt
}

func (d *Denylist) Contains(jti string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	expiresAt, ok := d.entries[jti]
	if !ok {
		return false
	}
	if time.Now().After(expiresAt) {
		delete(d.entries, jti)
		return false
	}
	return true
}
