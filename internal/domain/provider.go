// Package domain holds the role-scoped state providers that wrap every
// navigation stack, whichever role is active.
package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrNotMounted is returned when provider state is used outside its lifecycle.
var ErrNotMounted = errors.New("provider not mounted")

// Provider is a lifecycle-managed holder of one actor type's state.
type Provider interface {
	Name() string
	Mount(ctx context.Context) error
	Unmount(ctx context.Context) error
}

// StateProvider owns a value of S between Mount and Unmount. Each mount
// starts from a fresh value built by init.
type StateProvider[S any] struct {
	name string
	init func() S

	mu      sync.RWMutex
	state   S
	mounted bool
}

// NewStateProvider creates a provider named name whose state is built by init.
func NewStateProvider[S any](name string, init func() S) *StateProvider[S] {
	return &StateProvider[S]{name: name, init: init}
}

// Name returns the provider name.
func (p *StateProvider[S]) Name() string {
	return p.name
}

// Mount initializes fresh state. Mounting twice is an error.
func (p *StateProvider[S]) Mount(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.mounted {
		return fmt.Errorf("provider %s already mounted", p.name)
	}
	p.state = p.init()
	p.mounted = true
	slog.Debug("provider mounted", "provider", p.name)
	return nil
}

// Unmount discards the state. Unmounting an unmounted provider is a no-op.
func (p *StateProvider[S]) Unmount(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.mounted {
		return nil
	}
	var zero S
	p.state = zero
	p.mounted = false
	slog.Debug("provider unmounted", "provider", p.name)
	return nil
}

// Mounted reports whether the provider is between Mount and Unmount.
func (p *StateProvider[S]) Mounted() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.mounted
}

// Read calls fn with the current state under a read lock.
func (p *StateProvider[S]) Read(fn func(S)) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.mounted {
		return fmt.Errorf("%s: %w", p.name, ErrNotMounted)
	}
	fn(p.state)
	return nil
}

// Update calls fn with a pointer to the state under the write lock.
func (p *StateProvider[S]) Update(fn func(*S) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.mounted {
		return fmt.Errorf("%s: %w", p.name, ErrNotMounted)
	}
	return fn(&p.state)
}
