package identity_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wastelink/wastelink/internal/identity"
)

// recorder collects delivered events as uids ("" for signed out).
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) listen(id *identity.Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id == nil {
		r.events = append(r.events, "")
		return
	}
	r.events = append(r.events, id.UID)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func TestBroadcaster_SubscribeDeliversCurrentImmediately(t *testing.T) {
	b := identity.NewBroadcaster()
	var signedOut, signedIn recorder

	unsub := b.Subscribe(signedOut.listen)
	defer unsub()
	assert.Equal(t, []string{""}, signedOut.snapshot())

	b.SignIn("u1")
	unsub2 := b.Subscribe(signedIn.listen)
	defer unsub2()
	assert.Equal(t, []string{"u1"}, signedIn.snapshot())
}

func TestBroadcaster_DeliversInEmissionOrder(t *testing.T) {
	b := identity.NewBroadcaster()
	var r recorder
	defer b.Subscribe(r.listen)()

	b.SignIn("u1")
	b.SignOut()
	b.SignIn("u2")
	b.SignIn("u2")

	assert.Equal(t, []string{"", "u1", "", "u2", "u2"}, r.snapshot())
	require.NotNil(t, b.Current())
	assert.Equal(t, "u2", b.Current().UID)
}

func TestBroadcaster_UnsubscribeStopsDeliveryAndIsIdempotent(t *testing.T) {
	b := identity.NewBroadcaster()
	var r recorder
	unsub := b.Subscribe(r.listen)

	b.SignIn("u1")
	unsub()
	unsub()
	b.SignOut()

	assert.Equal(t, []string{"", "u1"}, r.snapshot())
}

func TestBroadcaster_ListenersCannotMutateCurrent(t *testing.T) {
	b := identity.NewBroadcaster()
	defer b.Subscribe(func(id *identity.Identity) {
		if id != nil {
			id.UID = "tampered"
		}
	})()

	b.SignIn("u1")
	assert.Equal(t, "u1", b.Current().UID)
}

func TestBroadcaster_ConcurrentPublishersKeepListenersConsistent(t *testing.T) {
	b := identity.NewBroadcaster()
	var r1, r2 recorder
	defer b.Subscribe(r1.listen)()
	defer b.Subscribe(r2.listen)()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				b.SignIn("u")
			} else {
				b.SignOut()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, r1.snapshot(), r2.snapshot())
	last := r1.snapshot()[len(r1.snapshot())-1]
	if cur := b.Current(); cur == nil {
		assert.Equal(t, "", last)
	} else {
		assert.Equal(t, cur.UID, last)
	}
}
