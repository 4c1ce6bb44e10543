package runtime

import (
	"maps"

	"smile/pkg/value"
)

// LabelRegistry maps a label name to the 1-based source line it was
// declared on.
type LabelRegistry map[string]int

// Resolve returns the line bound to name.
func (r LabelRegistry) Resolve(name string) (int, bool) {
	line, ok := r[name]
	return line, ok
}

// ProgramState owns the variables and labels of exactly one run.
type ProgramState struct {
	vars   map[string]value.Value
	labels LabelRegistry
}

// NewProgramState returns an empty state bound to a copy of labels.
func NewProgramState(labels LabelRegistry) *ProgramState {
	s := &ProgramState{}
	s.Reset(labels)
	return s
}

// Reset drops every variable and installs a private copy of labels, so the
// caller's map can never change the registry mid-run.
func (s *ProgramState) Reset(labels LabelRegistry) {
	s.vars = make(map[string]value.Value)
	s.labels = maps.Clone(labels)
	if s.labels == nil {
		s.labels = LabelRegistry{}
	}
}

func (s *ProgramState) Lookup(name string) (value.Value, bool) {
	v, ok := s.vars[name]
	return v, ok
}

func (s *ProgramState) Store(name string, v value.Value) {
	s.vars[name] = v
}

// ResolveLabel returns the 1-based line bound to name.
func (s *ProgramState) ResolveLabel(name string) (int, bool) {
	return s.labels.Resolve(name)
}

// Variables returns a snapshot of the variable store.
func (s *ProgramState) Variables() map[string]value.Value {
	return maps.Clone(s.vars)
}
