// Package registry owns the set of live scalar values and is the single
// arbiter of handle validity. A non-cooperating host references values
// only through opaque integer handles; every operation that dereferences
// a handle consults the table first, so a stale handle can never reach a
// value's memory. Deleting twice, or using a handle that was never
// issued, always surfaces ErrInvalidHandle.
package registry

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jdbancal/MyFavoriteDouble/scalar"
)

// ErrInvalidHandle indicates an operation addressed a handle that does
// not currently map to a live value.
var ErrInvalidHandle = errors.New("invalid handle")

// Handle is an opaque integer identifying a live value. It carries no
// meaning beyond identity; 0 is never issued.
type Handle uint64

// InvalidHandle is the zero handle. It never maps to a value.
const InvalidHandle Handle = 0

// entry is the registry-side record for one live value.
type entry struct {
	value    *scalar.Scalar
	owner    string
	created  time.Time
	lastUsed time.Time
}

// Registry maps opaque handles to live heap-allocated scalars. Handles
// are minted from a monotonic counter and never reused, so a deleted
// handle's identity cannot be silently revalidated by a later create.
type Registry struct {
	mu      sync.RWMutex
	entries map[Handle]*entry
	nextID  atomic.Uint64
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		entries: make(map[Handle]*entry),
	}
}

// mint returns a fresh handle. The counter starts at 1 so the zero
// handle stays permanently invalid.
func (r *Registry) mint() Handle {
	id := r.nextID.Add(1)
	if id == 0 {
		// 2^64 creates later. Reissuing wrapped IDs would alias old
		// handles onto new values, so treat exhaustion as fatal.
		panic("registry: handle space exhausted")
	}
	return Handle(id)
}

// register stores a value under a fresh handle. Caller must hold mu.
func (r *Registry) register(v *scalar.Scalar, owner string) Handle {
	h := r.mint()
	now := time.Now()
	r.entries[h] = &entry{value: v, owner: owner, created: now, lastUsed: now}
	return h
}

// lookup returns the entry for h and refreshes its last-used time.
// Caller must hold mu for writing.
func (r *Registry) lookup(h Handle) (*entry, error) {
	e, ok := r.entries[h]
	if !ok {
		return nil, fmt.Errorf("registry: handle %d: %w", h, ErrInvalidHandle)
	}
	e.lastUsed = time.Now()
	return e, nil
}

// Create allocates a new default-constructed scalar (0+0i), registers
// it, and returns its handle.
func (r *Registry) Create() Handle {
	return r.CreateOwned("")
}

// CreateOwned is Create with an owner tag. All handles created on behalf
// of a session carry its ID so ReleaseOwner can reclaim them together.
func (r *Registry) CreateOwned(owner string) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.register(&scalar.Scalar{}, owner)
}

// CreateFromBuffer constructs a scalar from a 1x1 host buffer and
// registers it. On a shape or type error nothing is registered.
func (r *Registry) CreateFromBuffer(b *scalar.Buffer) (Handle, error) {
	return r.CreateFromBufferOwned(b, "")
}

// CreateFromBufferOwned is CreateFromBuffer with an owner tag.
func (r *Registry) CreateFromBufferOwned(b *scalar.Buffer, owner string) (Handle, error) {
	v, err := scalar.FromBuffer(b)
	if err != nil {
		return InvalidHandle, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.register(&v, owner), nil
}

// Copy registers an independent copy of the value at h under a fresh
// handle. Later mutation or deletion of either handle does not affect
// the other.
func (r *Registry) Copy(h Handle) (Handle, error) {
	return r.CopyOwned(h, "")
}

// CopyOwned is Copy with an owner tag for the new handle.
func (r *Registry) CopyOwned(h Handle, owner string) (Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, err := r.lookup(h)
	if err != nil {
		return InvalidHandle, err
	}
	dup := *e.value
	return r.register(&dup, owner), nil
}

// IsValid reports whether h currently maps to a live value. It never
// fails: deleted and never-issued handles simply report false.
func (r *Registry) IsValid(h Handle) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[h]
	return ok
}

// Delete releases the value at h and removes h from the live set.
// Deleting an already-deleted or never-issued handle is an error, not a
// no-op.
func (r *Registry) Delete(h Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[h]; !ok {
		return fmt.Errorf("registry: delete handle %d: %w", h, ErrInvalidHandle)
	}
	delete(r.entries, h)
	return nil
}

// Display returns the human-readable rendering of the value at h.
func (r *Registry) Display(h Handle) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, err := r.lookup(h)
	if err != nil {
		return "", err
	}
	return e.value.String(), nil
}

// ToBuffer exports the value at h as a 1x1 host buffer.
func (r *Registry) ToBuffer(h Handle) (*scalar.Buffer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, err := r.lookup(h)
	if err != nil {
		return nil, err
	}
	return e.value.ToBuffer(), nil
}

// Add registers the component-wise sum of the values at a and b as a new
// value and returns its handle. Neither operand is mutated.
func (r *Registry) Add(a, b Handle) (Handle, error) {
	return r.AddOwned(a, b, "")
}

// AddOwned is Add with an owner tag for the result handle.
func (r *Registry) AddOwned(a, b Handle, owner string) (Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ea, err := r.lookup(a)
	if err != nil {
		return InvalidHandle, err
	}
	eb, err := r.lookup(b)
	if err != nil {
		return InvalidHandle, err
	}
	sum := ea.value.Add(*eb.value)
	return r.register(&sum, owner), nil
}

// Count returns the number of live handles.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Handles returns a snapshot of all live handles, in no particular order.
func (r *Registry) Handles() []Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()

	hs := make([]Handle, 0, len(r.entries))
	for h := range r.entries {
		hs = append(hs, h)
	}
	return hs
}

// ReleaseOwner deletes all handles carrying the given owner tag and
// returns how many were released. The empty owner tag is never matched.
func (r *Registry) ReleaseOwner(owner string) int {
	if owner == "" {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	released := 0
	for h, e := range r.entries {
		if e.owner == owner {
			delete(r.entries, h)
			released++
		}
	}
	return released
}

// Sweep removes handles that haven't been touched within the TTL and
// returns how many were removed. The host proxy contract calls Delete
// exactly once per handle, so sweeping is opt-in hygiene for embedders
// whose hosts can leak; nothing sweeps by default.
func (r *Registry) Sweep(ttl time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-ttl)
	removed := 0
	for h, e := range r.entries {
		if e.lastUsed.Before(cutoff) {
			delete(r.entries, h)
			removed++
		}
	}
	return removed
}

// StartSweeper runs periodic TTL sweeps in the background.
// Returns a stop function.
func (r *Registry) StartSweeper(interval, ttl time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				r.Sweep(ttl)
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()
	return func() { close(done) }
}
