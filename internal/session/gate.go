// Package session owns the role resolution gate: the state machine that
// turns identity events and profile lookups into a single DisplayState.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/wastelink/wastelink/internal/identity"
	"github.com/wastelink/wastelink/internal/profile"
)

// Status is a read-only snapshot of the gate for observability.
type Status struct {
	State DisplayState
	// UID is the identity the state was determined for; empty when signed out.
	UID string
	// Generation increments on every identity change.
	Generation uint64
	// LastFailure is the most recent lookup failure for the current
	// identity, or nil.
	LastFailure error
}

// Option configures a Gate.
type Option func(*Gate)

// WithLookupTimeout bounds each profile lookup. Zero disables the bound;
// Dispose then blocks until a fetcher that ignores cancellation returns.
func WithLookupTimeout(d time.Duration) Option {
	return func(g *Gate) {
		g.timeout = d
	}
}

// WithLogger sets the logger used for transitions and lookup failures.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gate) {
		g.logger = l
	}
}

// Gate resolves the current identity to a DisplayState. Identity events are
// applied synchronously under mu; lookups run on their own goroutines and
// their results are applied only if their tag still matches.
type Gate struct {
	fetcher profile.Fetcher
	timeout time.Duration
	logger  *slog.Logger

	mu          sync.Mutex
	state       DisplayState
	uid         string
	signedIn    bool
	generation  uint64
	cancel      context.CancelFunc
	lastFailure error
	disposed    bool
	unsubscribe func()

	wg sync.WaitGroup
}

// lookupTag identifies the identity event a lookup was issued for.
type lookupTag struct {
	uid        string
	generation uint64
}

// NewGate creates a Gate and subscribes it to source. The source delivers
// the current identity during the call, so the gate may already have left
// Initializing when NewGate returns.
func NewGate(source identity.Source, fetcher profile.Fetcher, opts ...Option) *Gate {
	g := &Gate{
		fetcher: fetcher,
		logger:  slog.Default(),
		state:   Initializing(),
	}
	for _, opt := range opts {
		opt(g)
	}

	unsubscribe := source.Subscribe(g.handleIdentity)

	g.mu.Lock()
	disposed := g.disposed
	if !disposed {
		g.unsubscribe = unsubscribe
	}
	g.mu.Unlock()

	if disposed {
		unsubscribe()
	}
	return g
}

// State returns the current DisplayState.
func (g *Gate) State() DisplayState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Status returns the current state together with its identity and the
// last lookup failure.
func (g *Gate) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Status{
		State:       g.state,
		UID:         g.uid,
		Generation:  g.generation,
		LastFailure: g.lastFailure,
	}
}

// Dispose releases the identity subscription and abandons any in-flight
// lookup, then waits for lookup goroutines to return. Fetchers must honor
// context cancellation. Dispose is idempotent.
func (g *Gate) Dispose() {
	g.mu.Lock()
	if g.disposed {
		g.mu.Unlock()
		g.wg.Wait()
		return
	}
	g.disposed = true
	// Bumping the generation turns any pending completion into a stale one.
	g.generation++
	g.cancelLookupLocked()
	unsubscribe := g.unsubscribe
	g.unsubscribe = nil
	g.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	g.wg.Wait()
}

func (g *Gate) handleIdentity(id *identity.Identity) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.disposed {
		return
	}

	if id == nil || id.UID == "" {
		g.cancelLookupLocked()
		if g.signedIn {
			g.generation++
		}
		g.signedIn = false
		g.uid = ""
		g.lastFailure = nil
		g.setLocked(Unauthenticated())
		return
	}

	if g.signedIn && g.uid == id.UID {
		// Same identity re-emitted: the outstanding or completed lookup
		// already covers it.
		return
	}

	g.cancelLookupLocked()
	g.generation++
	g.signedIn = true
	g.uid = id.UID
	g.lastFailure = nil
	g.setLocked(Initializing())

	tag := lookupTag{uid: id.UID, generation: g.generation}
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if g.timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), g.timeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	g.cancel = cancel

	g.wg.Add(1)
	go g.lookup(ctx, cancel, tag)
}

func (g *Gate) lookup(ctx context.Context, cancel context.CancelFunc, tag lookupTag) {
	defer g.wg.Done()
	defer cancel()

	rec, err := g.fetcher.FetchProfile(ctx, tag.uid)
	g.complete(tag, rec, err)
}

func (g *Gate) complete(tag lookupTag, rec *profile.Record, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.disposed || !g.signedIn || tag.generation != g.generation || tag.uid != g.uid {
		g.logger.Debug("discarding stale profile lookup",
			"uid", tag.uid,
			"generation", tag.generation,
			"currentGeneration", g.generation,
		)
		return
	}
	g.cancel = nil

	switch {
	case err == nil && rec != nil && rec.Role.Valid():
		g.setLocked(AuthenticatedWithRole(rec.Role))
		return
	case err == nil:
		err = profile.ErrInvalidRole
	}

	g.lastFailure = err
	switch {
	case errors.Is(err, profile.ErrProfileNotFound):
		g.logger.Warn("no profile document for identity", "uid", tag.uid)
	case errors.Is(err, profile.ErrInvalidRole):
		g.logger.Warn("profile role is missing or invalid", "uid", tag.uid, "error", err)
	case errors.Is(err, context.DeadlineExceeded):
		g.logger.Error("profile lookup timed out", "uid", tag.uid, "timeout", g.timeout.String())
	default:
		g.logger.Error("profile lookup failed", "uid", tag.uid, "error", err)
	}
	g.setLocked(AuthenticatedRoleUnresolved())
}

func (g *Gate) cancelLookupLocked() {
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
}

func (g *Gate) setLocked(next DisplayState) {
	if next == g.state {
		return
	}
	g.logger.Debug("display state changed",
		"from", g.state.String(),
		"to", next.String(),
		"uid", g.uid,
	)
	g.state = next
}
