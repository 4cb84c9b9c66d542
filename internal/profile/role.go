package profile

import (
	"errors"
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"
)

// Role is the closed-set actor tag stored on a profile document.
type Role string

const (
	RoleFarmer           Role = "farmer"
	RoleCollector        Role = "collector"
	RoleCompostingCenter Role = "composting_center"
	RoleSupplier         Role = "supplier"
)

// ErrInvalidRole is returned when a role value is absent or outside the closed set.
var ErrInvalidRole = errors.New("invalid role")

var knownRoles = sets.New(RoleFarmer, RoleCollector, RoleCompostingCenter, RoleSupplier)

// Roles returns every known role in a stable order.
func Roles() []Role {
	return []Role{RoleFarmer, RoleCollector, RoleCompostingCenter, RoleSupplier}
}

// ParseRole validates raw against the closed role set. Matching is exact;
// "Farmer" or " farmer" are rejected rather than normalized.
func ParseRole(raw string) (Role, error) {
	if raw == "" {
		return "", fmt.Errorf("%w: role is missing", ErrInvalidRole)
	}
	r := Role(raw)
	if !knownRoles.Has(r) {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, raw)
	}
	return r, nil
}

// Valid reports whether r belongs to the closed role set.
func (r Role) Valid() bool {
	return knownRoles.Has(r)
}

func (r Role) String() string {
	return string(r)
}

// Label returns a human readable name for the role.
func (r Role) Label() string {
	switch r {
	case RoleCompostingCenter:
		return "Composting center"
	case RoleCollector:
		return "Collector / NGO"
	case "":
		return ""
	}
	s := string(r)
	return strings.ToUpper(s[:1]) + s[1:]
}
