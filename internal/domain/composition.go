package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Composition is the fixed chain of providers mounted around every stack.
// The order is set at construction and never changes; later providers may
// assume earlier ones are mounted.
type Composition struct {
	providers []Provider

	Farmer     *StateProvider[FarmerState]
	Collector  *StateProvider[CollectorState]
	Composting *StateProvider[CompostingState]
	Supplier   *StateProvider[SupplierState]

	mu      sync.Mutex
	mounted int
}

// NewComposition builds the standard chain: farmer, collector, composting
// center, supplier.
func NewComposition() *Composition {
	c := &Composition{
		Farmer:     NewFarmerProvider(),
		Collector:  NewCollectorProvider(),
		Composting: NewCompostingProvider(),
		Supplier:   NewSupplierProvider(),
	}
	c.providers = []Provider{c.Farmer, c.Collector, c.Composting, c.Supplier}
	return c
}

// NewCompositionOf builds a chain from arbitrary providers, outermost first.
func NewCompositionOf(providers ...Provider) *Composition {
	return &Composition{providers: append([]Provider(nil), providers...)}
}

// Names returns provider names, outermost first.
func (c *Composition) Names() []string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return names
}

// Mount mounts every provider in order. If one fails, the providers
// mounted before it are unmounted in reverse order and the error returned.
func (c *Composition) Mount(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mounted > 0 {
		return errors.New("composition already mounted")
	}

	for i, p := range c.providers {
		if err := p.Mount(ctx); err != nil {
			c.mounted = i
			rollbackErr := c.unmountLocked(ctx)
			return errors.Join(fmt.Errorf("mounting provider %s: %w", p.Name(), err), rollbackErr)
		}
	}
	c.mounted = len(c.providers)
	slog.Info("domain providers mounted", "providers", c.Names())
	return nil
}

// Unmount unmounts mounted providers in reverse order. Every provider is
// attempted; failures are joined.
func (c *Composition) Unmount(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unmountLocked(ctx)
}

func (c *Composition) unmountLocked(ctx context.Context) error {
	var errs []error
	for i := c.mounted - 1; i >= 0; i-- {
		p := c.providers[i]
		if err := p.Unmount(ctx); err != nil {
			errs = append(errs, fmt.Errorf("unmounting provider %s: %w", p.Name(), err))
		}
	}
	c.mounted = 0
	return errors.Join(errs...)
}

// Mounted reports whether the whole chain is mounted.
func (c *Composition) Mounted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.providers) > 0 && c.mounted == len(c.providers)
}

// Tree is a stack nested inside the provider chain.
type Tree[T any] struct {
	Providers []string
	Child     T
}

// Wrap nests child inside the chain. It does not depend on the child, so
// every stack gets the same providers.
func Wrap[T any](c *Composition, child T) Tree[T] {
	return Tree[T]{Providers: c.Names(), Child: child}
}
