// Package proxy binds one registry handle to a garbage-collected Go
// object. A Proxy owns exactly one live handle for its lifetime and
// releases it exactly once: either explicitly through Close, or through
// a runtime cleanup when the proxy is collected without Close.
//
// Sharing a *Proxy aliases the underlying handle, matching
// reference-semantics host wrappers. Clone is the explicit deep-copy
// operation and yields an independent proxy over a fresh handle.
package proxy

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/jdbancal/MyFavoriteDouble/registry"
	"github.com/jdbancal/MyFavoriteDouble/scalar"
)

// ErrClosed indicates a proxy whose handle was already released.
var ErrClosed = errors.New("proxy already closed")

// Proxy owns one live handle in a registry.
type Proxy struct {
	reg *registry.Registry

	mu      sync.Mutex
	h       registry.Handle
	closed  bool
	cleanup runtime.Cleanup
}

// cleanupState is what the runtime cleanup needs to release the handle.
// It must not reference the Proxy itself, or the proxy would never
// become collectable.
type cleanupState struct {
	reg *registry.Registry
	h   registry.Handle
}

// wrap takes ownership of a live handle and arms the GC cleanup.
func wrap(reg *registry.Registry, h registry.Handle) *Proxy {
	p := &Proxy{reg: reg, h: h}
	p.cleanup = runtime.AddCleanup(p, func(s cleanupState) {
		// The proxy was collected without Close. Release on its behalf;
		// the handle is still live because Close stops this cleanup.
		_ = s.reg.Delete(s.h)
	}, cleanupState{reg: reg, h: h})
	return p
}

// New creates a proxy over a fresh default-constructed value.
func New(reg *registry.Registry) *Proxy {
	return wrap(reg, reg.Create())
}

// FromBuffer creates a proxy over a value constructed from a 1x1 host
// buffer.
func FromBuffer(reg *registry.Registry, b *scalar.Buffer) (*Proxy, error) {
	h, err := reg.CreateFromBuffer(b)
	if err != nil {
		return nil, err
	}
	return wrap(reg, h), nil
}

// Restore creates a proxy from persisted state.
func Restore(reg *registry.Registry, s *registry.Snapshot) (*Proxy, error) {
	h, err := reg.Restore(s)
	if err != nil {
		return nil, err
	}
	return wrap(reg, h), nil
}

// Handle returns the owned handle. The handle stays valid only as long
// as the proxy is open; callers must not cache it across a Close.
func (p *Proxy) Handle() (registry.Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return registry.InvalidHandle, ErrClosed
	}
	return p.h, nil
}

// Close releases the owned handle. The first call deletes the value and
// disarms the GC cleanup; any further call is an error, mirroring the
// registry's double-delete semantics.
func (p *Proxy) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return fmt.Errorf("proxy: close: %w", ErrClosed)
	}
	p.closed = true
	p.cleanup.Stop()
	return p.reg.Delete(p.h)
}

// Clone performs an explicit deep copy: a new value with the same
// components under a fresh handle, owned by a new proxy. This is the
// copy-by-duplication operation; copying the *Proxy itself aliases.
func (p *Proxy) Clone() (*Proxy, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, fmt.Errorf("proxy: clone: %w", ErrClosed)
	}
	h, err := p.reg.Copy(p.h)
	if err != nil {
		return nil, err
	}
	return wrap(p.reg, h), nil
}

// Valid reports whether the proxy still owns a live handle.
func (p *Proxy) Valid() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.closed && p.reg.IsValid(p.h)
}

// Display returns the human-readable rendering of the owned value.
func (p *Proxy) Display() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return "", fmt.Errorf("proxy: display: %w", ErrClosed)
	}
	return p.reg.Display(p.h)
}

// ToBuffer exports the owned value as a 1x1 host buffer.
func (p *Proxy) ToBuffer() (*scalar.Buffer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, fmt.Errorf("proxy: toBuffer: %w", ErrClosed)
	}
	return p.reg.ToBuffer(p.h)
}

// Add returns a new proxy owning the sum of p and other. Both operands
// stay live and unchanged.
func (p *Proxy) Add(other *Proxy) (*Proxy, error) {
	ha, err := p.Handle()
	if err != nil {
		return nil, err
	}
	hb, err := other.Handle()
	if err != nil {
		return nil, err
	}
	h, err := p.reg.Add(ha, hb)
	if err != nil {
		return nil, err
	}
	return wrap(p.reg, h), nil
}

// Save exports the owned value as persisted state.
func (p *Proxy) Save() (*registry.Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, fmt.Errorf("proxy: save: %w", ErrClosed)
	}
	return p.reg.Save(p.h)
}
