// Package shell is the root of the client: it reads the gate, selects a
// stack and nests it inside the domain provider chain.
package shell

import (
	"context"
	"fmt"

	"github.com/wastelink/wastelink/internal/domain"
	"github.com/wastelink/wastelink/internal/navigation"
	"github.com/wastelink/wastelink/internal/session"
)

// StateReader exposes the resolved display state.
type StateReader interface {
	State() session.DisplayState
}

// Screen is the selected stack with its screens from the manifest.
type Screen struct {
	Stack   navigation.Stack
	Initial string
	Screens []string
}

// View is what the UI renders for the current state.
type View struct {
	State session.DisplayState
	Tree  domain.Tree[Screen]
}

// Shell composes the gate, selector, manifest and provider chain.
type Shell struct {
	gate        StateReader
	manifest    *navigation.Manifest
	composition *domain.Composition
}

// New creates a Shell. The composition is mounted by Start.
func New(gate StateReader, manifest *navigation.Manifest, composition *domain.Composition) *Shell {
	return &Shell{
		gate:        gate,
		manifest:    manifest,
		composition: composition,
	}
}

// Start mounts the domain providers. They stay mounted for every state,
// signed in or not.
func (s *Shell) Start(ctx context.Context) error {
	if err := s.composition.Mount(ctx); err != nil {
		return fmt.Errorf("mounting domain providers: %w", err)
	}
	return nil
}

// Stop unmounts the domain providers.
func (s *Shell) Stop(ctx context.Context) error {
	return s.composition.Unmount(ctx)
}

// View renders the current state. StackNone yields an empty Screen.
func (s *Shell) View() View {
	state := s.gate.State()
	stack := navigation.Select(state)

	screen := Screen{Stack: stack}
	if spec, ok := s.manifest.Stack(stack); ok {
		screen.Initial = spec.Initial
		screen.Screens = append([]string(nil), spec.Screens...)
	}

	return View{
		State: state,
		Tree:  domain.Wrap(s.composition, screen),
	}
}
