package auth

import (
	"sync"
	"time"
)

// Revocations remembers logged-out token ids until the tokens expire.
type Revocations struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewRevocations() *Revocations {
	return &Revocations{revoked: make(map[string]time.Time)}
}

func (r *Revocations) Revoke(tokenID string, expiresAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.revoked[tokenID] = expiresAt
}

func (r *Revocations) IsRevoked(tokenID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.revoked[tokenID]
	return ok
}

// Purge drops entries whose token has expired by now and returns how many.
func (r *Revocations) Purge(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, exp := range r.revoked {
		if !exp.After(now) {
			delete(r.revoked, id)
			n++
		}
	}

	return n
}
