// Package identity defines the session source boundary: the current
// signed-in identity, and a subscription that reports every change to it.
package identity

// Identity is the opaque subject of an active session.
type Identity struct {
	UID string
}

// Listener receives the current identity, or nil when signed out.
type Listener func(id *Identity)

// Source emits the current identity to subscribers. Subscribe must invoke
// the listener once immediately with the current value, then on every
// sign-in or sign-out, in emission order. The returned function releases
// the subscription and is safe to call more than once.
type Source interface {
	Subscribe(l Listener) (unsubscribe func())
}
