package session_test

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wastelink/wastelink/internal/identity"
	"github.com/wastelink/wastelink/internal/navigation"
	"github.com/wastelink/wastelink/internal/profile"
	"github.com/wastelink/wastelink/internal/session"
)

const waitFor = 2 * time.Second
const tick = 5 * time.Millisecond

func nextCall(t *testing.T, f *controlledFetcher) pendingCall {
	t.Helper()
	select {
	case c := <-f.calls:
		return c
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for profile lookup")
		return pendingCall{}
	}
}

func eventuallyState(t *testing.T, g *session.Gate, want session.DisplayState) {
	t.Helper()
	assert.Eventually(t, func() bool {
		return g.State() == want
	}, waitFor, tick, "want state %s, have %s", want, g.State())
}

// --- Initial state Tests ---

func TestGate_SignedOutSourceIsUnauthenticated(t *testing.T) {
	src := identity.NewBroadcaster()
	g := session.NewGate(src, newStubFetcher())
	defer g.Dispose()

	assert.Equal(t, session.Unauthenticated(), g.State())
	assert.Equal(t, navigation.AuthStack, navigation.Select(g.State()))
}

func TestGate_InitializingWhileLookupPending(t *testing.T) {
	src := identity.NewBroadcaster()
	src.SignIn("u1")
	f := newControlledFetcher(false)

	g := session.NewGate(src, f)
	defer g.Dispose()

	c := nextCall(t, f)
	assert.Equal(t, "u1", c.uid)
	assert.Equal(t, session.Initializing(), g.State())
	assert.Equal(t, navigation.StackNone, navigation.Select(g.State()))

	c.resolve(profile.RoleCollector)
	eventuallyState(t, g, session.AuthenticatedWithRole(profile.RoleCollector))
}

// --- Resolution Tests ---

func TestGate_ResolvesFarmerRole(t *testing.T) {
	src := identity.NewBroadcaster()
	g := session.NewGate(src, newStubFetcher().withRole("u1", profile.RoleFarmer))
	defer g.Dispose()

	src.SignIn("u1")

	eventuallyState(t, g, session.AuthenticatedWithRole(profile.RoleFarmer))
	assert.Equal(t, navigation.FarmerStack, navigation.Select(g.State()))

	st := g.Status()
	assert.Equal(t, "u1", st.UID)
	assert.NoError(t, st.LastFailure)
}

func TestGate_MissingRoleFieldIsUnresolved(t *testing.T) {
	repo := &memoryRepository{docs: map[string]*profile.Document{
		"u1": {UID: "u1", Name: "Amina", Role: nil},
	}}
	src := identity.NewBroadcaster()
	g := session.NewGate(src, profile.NewService(repo))
	defer g.Dispose()

	src.SignIn("u1")

	eventuallyState(t, g, session.AuthenticatedRoleUnresolved())
	assert.Equal(t, navigation.AuthStack, navigation.Select(g.State()))
	assert.ErrorIs(t, g.Status().LastFailure, profile.ErrInvalidRole)
}

func TestGate_UnknownRoleValueIsUnresolved(t *testing.T) {
	role := "admin"
	repo := &memoryRepository{docs: map[string]*profile.Document{
		"u1": {UID: "u1", Role: &role},
	}}
	src := identity.NewBroadcaster()
	g := session.NewGate(src, profile.NewService(repo))
	defer g.Dispose()

	src.SignIn("u1")

	eventuallyState(t, g, session.AuthenticatedRoleUnresolved())
	assert.ErrorIs(t, g.Status().LastFailure, profile.ErrInvalidRole)
}

func TestGate_MissingDocumentIsUnresolved(t *testing.T) {
	src := identity.NewBroadcaster()
	g := session.NewGate(src, newStubFetcher())
	defer g.Dispose()

	src.SignIn("ghost")

	eventuallyState(t, g, session.AuthenticatedRoleUnresolved())
	assert.ErrorIs(t, g.Status().LastFailure, profile.ErrProfileNotFound)
}

func TestGate_TransportErrorIsUnresolvedWithoutRetry(t *testing.T) {
	transportErr := errors.New("connection reset by peer")
	f := newStubFetcher().withErr("u1", transportErr)
	src := identity.NewBroadcaster()
	g := session.NewGate(src, f)
	defer g.Dispose()

	src.SignIn("u1")

	eventuallyState(t, g, session.AuthenticatedRoleUnresolved())
	assert.ErrorIs(t, g.Status().LastFailure, transportErr)

	// No automatic retry: the call count stays at one.
	assert.Never(t, func() bool { return f.callCount() > 1 }, 50*time.Millisecond, tick)
}

func TestGate_LookupTimeoutIsUnresolved(t *testing.T) {
	f := newControlledFetcher(false)
	src := identity.NewBroadcaster()
	g := session.NewGate(src, f, session.WithLookupTimeout(20*time.Millisecond))
	defer g.Dispose()

	src.SignIn("u1")
	_ = nextCall(t, f) // never answered

	eventuallyState(t, g, session.AuthenticatedRoleUnresolved())
	assert.ErrorIs(t, g.Status().LastFailure, context.DeadlineExceeded)
}

// --- Sign-out Tests ---

func TestGate_SignOutIsSynchronousWhileLookupPending(t *testing.T) {
	f := newControlledFetcher(false)
	src := identity.NewBroadcaster()
	g := session.NewGate(src, f)
	defer g.Dispose()

	src.SignIn("u1")
	_ = nextCall(t, f)

	src.SignOut()

	assert.Equal(t, session.Unauthenticated(), g.State())
	assert.Empty(t, g.Status().UID)
}

func TestGate_SignOutAfterResolution(t *testing.T) {
	src := identity.NewBroadcaster()
	g := session.NewGate(src, newStubFetcher().withRole("u1", profile.RoleSupplier))
	defer g.Dispose()

	src.SignIn("u1")
	eventuallyState(t, g, session.AuthenticatedWithRole(profile.RoleSupplier))

	src.SignOut()
	assert.Equal(t, session.Unauthenticated(), g.State())
}

// --- Stale response Tests ---

func TestGate_StaleLookupDoesNotOverwriteNewerIdentity(t *testing.T) {
	f := newControlledFetcher(true)
	src := identity.NewBroadcaster()
	g := session.NewGate(src, f)

	src.SignIn("u1")
	first := nextCall(t, f)

	src.SignIn("u2")
	second := nextCall(t, f)
	require.Equal(t, "u2", second.uid)

	second.resolve(profile.RoleSupplier)
	eventuallyState(t, g, session.AuthenticatedWithRole(profile.RoleSupplier))

	// u1's lookup answers last.
	first.resolve(profile.RoleFarmer)
	g.Dispose()

	assert.Equal(t, session.AuthenticatedWithRole(profile.RoleSupplier), g.State())
	assert.Equal(t, "u2", g.Status().UID)
}

func TestGate_StaleLookupAfterSignOutIsDiscarded(t *testing.T) {
	f := newControlledFetcher(true)
	src := identity.NewBroadcaster()
	g := session.NewGate(src, f)

	src.SignIn("u1")
	c := nextCall(t, f)

	src.SignOut()
	c.resolve(profile.RoleFarmer)
	g.Dispose()

	assert.Equal(t, session.Unauthenticated(), g.State())
}

func TestGate_StaleFailureDoesNotOverwriteNewerIdentity(t *testing.T) {
	f := newControlledFetcher(true)
	src := identity.NewBroadcaster()
	g := session.NewGate(src, f)

	src.SignIn("u1")
	first := nextCall(t, f)

	src.SignIn("u2")
	second := nextCall(t, f)
	second.resolve(profile.RoleCollector)
	eventuallyState(t, g, session.AuthenticatedWithRole(profile.RoleCollector))

	first.fail(errors.New("late failure"))
	g.Dispose()

	assert.Equal(t, session.AuthenticatedWithRole(profile.RoleCollector), g.State())
	assert.NoError(t, g.Status().LastFailure)
}

// --- Idempotence Tests ---

func TestGate_RepeatedIdentityIssuesOneLookup(t *testing.T) {
	f := newStubFetcher().withRole("u1", profile.RoleCompostingCenter)
	src := identity.NewBroadcaster()
	g := session.NewGate(src, f)
	defer g.Dispose()

	src.SignIn("u1")
	src.SignIn("u1")
	eventuallyState(t, g, session.AuthenticatedWithRole(profile.RoleCompostingCenter))
	src.SignIn("u1")

	assert.Equal(t, 1, f.callCount())
	assert.Equal(t, session.AuthenticatedWithRole(profile.RoleCompostingCenter), g.State())
}

func TestGate_RepeatedIdentityWhilePendingKeepsLookup(t *testing.T) {
	f := newControlledFetcher(false)
	src := identity.NewBroadcaster()
	g := session.NewGate(src, f)
	defer g.Dispose()

	src.SignIn("u1")
	c := nextCall(t, f)
	gen := g.Status().Generation

	src.SignIn("u1")
	assert.Equal(t, gen, g.Status().Generation)
	assert.Equal(t, session.Initializing(), g.State())

	c.resolve(profile.RoleFarmer)
	eventuallyState(t, g, session.AuthenticatedWithRole(profile.RoleFarmer))
	assert.Empty(t, f.calls)
}

func TestGate_SignInAgainAfterSignOutLooksUpAgain(t *testing.T) {
	f := newStubFetcher().withRole("u1", profile.RoleFarmer)
	src := identity.NewBroadcaster()
	g := session.NewGate(src, f)
	defer g.Dispose()

	src.SignIn("u1")
	eventuallyState(t, g, session.AuthenticatedWithRole(profile.RoleFarmer))
	src.SignOut()
	src.SignIn("u1")
	eventuallyState(t, g, session.AuthenticatedWithRole(profile.RoleFarmer))

	assert.Equal(t, 2, f.callCount())
}

// --- Dispose Tests ---

func TestGate_DisposeAbandonsLookupAndIgnoresEvents(t *testing.T) {
	f := newControlledFetcher(false)
	src := identity.NewBroadcaster()
	g := session.NewGate(src, f)

	src.SignIn("u1")
	_ = nextCall(t, f)

	g.Dispose()
	assert.Equal(t, session.Initializing(), g.State())

	src.SignOut()
	src.SignIn("u2")
	assert.Equal(t, session.Initializing(), g.State())
	assert.Empty(t, f.calls)

	// second call is a no-op
	g.Dispose()
}

// --- Totality Tests ---

func TestGate_RandomEventSequencesStayTotal(t *testing.T) {
	valid := map[session.Kind]bool{
		session.KindInitializing:    true,
		session.KindUnauthenticated: true,
		session.KindAuthenticated:   true,
		session.KindRoleUnresolved:  true,
	}

	f := newStubFetcher().
		withRole("u0", profile.RoleFarmer).
		withRole("u1", profile.RoleCollector).
		withErr("u2", errors.New("unavailable"))
	rnd := rand.New(rand.NewSource(42))

	for run := 0; run < 20; run++ {
		src := identity.NewBroadcaster()
		g := session.NewGate(src, f)

		for i := 0; i < 50; i++ {
			if n := rnd.Intn(5); n == 4 {
				src.SignOut()
			} else {
				src.SignIn("u" + strconv.Itoa(n))
			}
			assert.True(t, valid[g.State().Kind()], "invalid state %s", g.State())
		}

		last := src.Current()
		g.Dispose()

		st := g.State()
		switch {
		case last == nil:
			assert.Equal(t, session.Unauthenticated(), st)
		case last.UID == "u0":
			assert.Contains(t, []session.DisplayState{session.Initializing(), session.AuthenticatedWithRole(profile.RoleFarmer)}, st)
		case last.UID == "u1":
			assert.Contains(t, []session.DisplayState{session.Initializing(), session.AuthenticatedWithRole(profile.RoleCollector)}, st)
		default:
			assert.Contains(t, []session.DisplayState{session.Initializing(), session.AuthenticatedRoleUnresolved()}, st)
		}
	}
}
