// Package navigation maps a resolved session state onto one of the five
// navigation stacks, and describes the screens inside each stack.
package navigation

import (
	"github.com/wastelink/wastelink/internal/profile"
	"github.com/wastelink/wastelink/internal/session"
)

// Stack names a navigation destination. StackNone means render nothing.
type Stack string

const (
	StackNone             Stack = ""
	AuthStack             Stack = "AuthStack"
	FarmerStack           Stack = "FarmerStack"
	CollectorStack        Stack = "CollectorStack"
	CompostingCenterStack Stack = "CompostingCenterStack"
	SupplierStack         Stack = "SupplierStack"
)

// Destinations lists the five named stacks.
func Destinations() []Stack {
	return []Stack{AuthStack, FarmerStack, CollectorStack, CompostingCenterStack, SupplierStack}
}

// RoleStack returns the dashboard stack for r, or AuthStack for a role
// outside the closed set.
func RoleStack(r profile.Role) Stack {
	switch r {
	case profile.RoleFarmer:
		return FarmerStack
	case profile.RoleCollector:
		return CollectorStack
	case profile.RoleCompostingCenter:
		return CompostingCenterStack
	case profile.RoleSupplier:
		return SupplierStack
	}
	return AuthStack
}

// Select is the pure mapping from DisplayState to Stack. An unresolved role
// routes back through the auth stack.
func Select(s session.DisplayState) Stack {
	switch s.Kind() {
	case session.KindUnauthenticated, session.KindRoleUnresolved:
		return AuthStack
	case session.KindAuthenticated:
		r, _ := s.Role()
		return RoleStack(r)
	}
	return StackNone
}
