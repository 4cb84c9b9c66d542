package navigation

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"
	"sigs.k8s.io/yaml"
)

//go:embed stacks.yaml
var defaultManifest []byte

// ErrInvalidManifest is returned when a manifest does not describe exactly
// the five destinations or a stack is malformed.
var ErrInvalidManifest = errors.New("invalid navigation manifest")

// StackSpec lists the screens mounted by one stack.
type StackSpec struct {
	Initial string   `json:"initial"`
	Screens []string `json:"screens"`
}

// Manifest maps every destination to its screens.
type Manifest struct {
	Stacks map[Stack]StackSpec `json:"stacks"`
}

// DefaultManifest returns the embedded manifest.
func DefaultManifest() (*Manifest, error) {
	return ParseManifest(defaultManifest)
}

// LoadManifest reads and validates a manifest file. An empty path returns
// the embedded default.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return DefaultManifest()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading navigation manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest decodes YAML and validates it.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.UnmarshalStrict(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks that the manifest covers exactly the five destinations
// and that each stack's initial screen is one of its screens.
func (m *Manifest) Validate() error {
	want := sets.New(Destinations()...)
	have := sets.KeySet(m.Stacks)

	if missing := want.Difference(have); missing.Len() > 0 {
		return fmt.Errorf("%w: missing stacks %s", ErrInvalidManifest, joinStacks(missing))
	}
	if extra := have.Difference(want); extra.Len() > 0 {
		return fmt.Errorf("%w: unknown stacks %s", ErrInvalidManifest, joinStacks(extra))
	}

	for name, spec := range m.Stacks {
		if len(spec.Screens) == 0 {
			return fmt.Errorf("%w: stack %s has no screens", ErrInvalidManifest, name)
		}
		screens := sets.New(spec.Screens...)
		if screens.Len() != len(spec.Screens) {
			return fmt.Errorf("%w: stack %s lists a screen twice", ErrInvalidManifest, name)
		}
		if !screens.Has(spec.Initial) {
			return fmt.Errorf("%w: stack %s initial screen %q is not one of its screens", ErrInvalidManifest, name, spec.Initial)
		}
	}
	return nil
}

// Stack returns the screens of s. StackNone has none.
func (m *Manifest) Stack(s Stack) (StackSpec, bool) {
	if s == StackNone {
		return StackSpec{}, false
	}
	spec, ok := m.Stacks[s]
	return spec, ok
}

func joinStacks(s sets.Set[Stack]) string {
	names := make([]string, 0, s.Len())
	for _, st := range sets.List(s) {
		names = append(names, string(st))
	}
	return strings.Join(names, ", ")
}
