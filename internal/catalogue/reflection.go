package catalogue

import (
	"sync"
	"time"

	"github.com/MrSnakeDoc/giftlist/internal/domain"
)

// Reflection is the in-memory copy of the catalogue store.
// It is only mutated through the named operations below, each called after
// the store acknowledged the matching write.
type Reflection struct {
	mu         sync.RWMutex
	gifts      []domain.Gift // store order, prepends first
	loaded     bool
	lastReload time.Time
	gen        uint64 // bumped by every mutation
}

// NewReflection creates an empty, not yet loaded reflection
func NewReflection() *Reflection {
	return &Reflection{
		gifts: make([]domain.Gift, 0),
	}
}

// Replace swaps the whole catalogue after a full reload
func (r *Reflection) Replace(gifts []domain.Gift) {
	cp := make([]domain.Gift, len(gifts))
	copy(cp, gifts)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.replaceLocked(cp)
}

// ReplaceIf swaps the catalogue only when no mutation happened since gen
// was read with Generation. It reports whether the swap happened.
func (r *Reflection) ReplaceIf(gen uint64, gifts []domain.Gift) bool {
	cp := make([]domain.Gift, len(gifts))
	copy(cp, gifts)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.gen != gen {
		return false
	}
	r.replaceLocked(cp)
	return true
}

func (r *Reflection) replaceLocked(gifts []domain.Gift) {
	r.gifts = gifts
	r.loaded = true
	r.lastReload = time.Now()
	r.gen++
}

// Generation returns the mutation counter. A reload reads it before
// fetching the store and hands it back to ReplaceIf.
func (r *Reflection) Generation() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.gen
}

// Patch replaces the gift with the same ID. It reports false when the
// gift is not in the reflection; the generation moves either way.
func (r *Reflection) Patch(g domain.Gift) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.gen++
	for i := range r.gifts {
		if r.gifts[i].ID == g.ID {
			r.gifts[i] = g
			return true
		}
	}
	return false
}

// Prepend adds a freshly created gift in front of the others
func (r *Reflection) Prepend(g domain.Gift) {
	r.mu.Lock()
	defer r.mu.Unlock()

	gifts := make([]domain.Gift, 0, len(r.gifts)+1)
	gifts = append(gifts, g)
	r.gifts = append(gifts, r.gifts...)
	r.gen++
}

// Remove prunes a gift by ID
func (r *Reflection) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.gen++
	for i := range r.gifts {
		if r.gifts[i].ID == id {
			r.gifts = append(r.gifts[:i:i], r.gifts[i+1:]...)
			return true
		}
	}
	return false
}

// Get retrieves a gift by ID
func (r *Reflection) Get(id string) (domain.Gift, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, g := range r.gifts {
		if g.ID == id {
			return g, true
		}
	}
	return domain.Gift{}, false
}

// Snapshot returns a copy of all gifts
func (r *Reflection) Snapshot() []domain.Gift {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Gift, len(r.gifts))
	copy(out, r.gifts)
	return out
}

// Count returns the number of gifts
func (r *Reflection) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.gifts)
}

// Counts returns the number of available and claimed gifts
func (r *Reflection) Counts() (available, claimed int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, g := range r.gifts {
		if g.IsAvailable() {
			available++
		} else {
			claimed++
		}
	}
	return available, claimed
}

// Loaded reports whether at least one full reload succeeded
func (r *Reflection) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.loaded
}

// LastReload returns the timestamp of the last full reload
func (r *Reflection) LastReload() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.lastReload
}
