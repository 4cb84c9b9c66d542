package session

import "github.com/wastelink/wastelink/internal/profile"

// Kind discriminates the DisplayState variants.
type Kind int

const (
	KindInitializing Kind = iota
	KindUnauthenticated
	KindAuthenticated
	KindRoleUnresolved
)

func (k Kind) String() string {
	switch k {
	case KindInitializing:
		return "initializing"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindAuthenticated:
		return "authenticated"
	case KindRoleUnresolved:
		return "role_unresolved"
	}
	return "unknown"
}

// DisplayState is the resolved, renderable session state. The zero value
// is Initializing. A role is carried only by the Authenticated variant.
type DisplayState struct {
	kind Kind
	role profile.Role
}

// Initializing is the state before any determination has been made.
func Initializing() DisplayState {
	return DisplayState{kind: KindInitializing}
}

// Unauthenticated is the state with no active identity.
func Unauthenticated() DisplayState {
	return DisplayState{kind: KindUnauthenticated}
}

// AuthenticatedWithRole is the state of a signed-in identity whose role resolved.
func AuthenticatedWithRole(r profile.Role) DisplayState {
	return DisplayState{kind: KindAuthenticated, role: r}
}

// AuthenticatedRoleUnresolved is the state of a signed-in identity whose
// role is missing, invalid or could not be fetched.
func AuthenticatedRoleUnresolved() DisplayState {
	return DisplayState{kind: KindRoleUnresolved}
}

// Kind returns the variant tag.
func (s DisplayState) Kind() Kind {
	return s.kind
}

// Role returns the resolved role. ok is false for every variant except
// AuthenticatedWithRole.
func (s DisplayState) Role() (r profile.Role, ok bool) {
	if s.kind != KindAuthenticated {
		return "", false
	}
	return s.role, true
}

func (s DisplayState) String() string {
	if s.kind == KindAuthenticated {
		return s.kind.String() + "(" + string(s.role) + ")"
	}
	return s.kind.String()
}
