package identity

import (
	"log/slog"
	"sync"
)

// Broadcaster is an in-process Source. Publishing and delivery are
// serialized, so every listener observes events in the same order.
// Listeners must not call Publish or Subscribe from inside the callback.
type Broadcaster struct {
	mu        sync.Mutex
	current   *Identity
	nextID    int
	listeners map[int]Listener
}

// NewBroadcaster creates a Broadcaster with no active identity.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		listeners: make(map[int]Listener),
	}
}

// Subscribe registers l and delivers the current identity to it immediately.
func (b *Broadcaster) Subscribe(l Listener) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = l
	l(clone(b.current))
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.listeners, id)
			b.mu.Unlock()
		})
	}
}

// SignIn publishes uid as the active identity.
func (b *Broadcaster) SignIn(uid string) {
	b.Publish(&Identity{UID: uid})
}

// SignOut publishes the absence of an identity.
func (b *Broadcaster) SignOut() {
	b.Publish(nil)
}

// Publish sets the current identity and delivers it to every listener.
func (b *Broadcaster) Publish(id *Identity) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.current = clone(id)
	if id != nil {
		slog.Debug("identity signed in", "uid", id.UID, "listeners", len(b.listeners))
	} else {
		slog.Debug("identity signed out", "listeners", len(b.listeners))
	}

	// Listener order is irrelevant; event order is what callers rely on.
	for _, l := range b.listeners {
		l(clone(b.current))
	}
}

// Current returns the active identity, or nil.
func (b *Broadcaster) Current() *Identity {
	b.mu.Lock()
	defer b.mu.Unlock()
	return clone(b.current)
}

func clone(id *Identity) *Identity {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}
