package engine

import (
	"fmt"

	"github.com/blockberries/stepberry/types"
)

// PhaseFunc performs one step of a protocol script.
type PhaseFunc func(step types.Step) error

// Phase is a named entry of a step script.
type Phase struct {
	Name string
	Run  PhaseFunc
}

// Script maps each protocol step 1..MaxStep to a phase handler. It makes the
// fixed script an explicit, inspectable table.
type Script struct {
	phases [types.MaxStep + 1]Phase
}

// NewScript builds a script from a step table. Every step 1..MaxStep must have
// a phase with a handler.
func NewScript(table map[types.Step]Phase) (*Script, error) {
	s := &Script{}
	for step, phase := range table {
		if step < types.FirstStep || step > types.MaxStep {
			return nil, fmt.Errorf("%w: %d", ErrInvalidStep, step)
		}
		s.phases[step] = phase
	}
	for step := types.FirstStep; step <= types.MaxStep; step++ {
		if s.phases[step].Run == nil {
			return nil, fmt.Errorf("%w %d", ErrIncompleteScript, step)
		}
	}
	return s, nil
}

// MustScript is like NewScript but panics on an incomplete table. Engines
// build their tables statically, so a failure is a programming error.
func MustScript(table map[types.Step]Phase) *Script {
	s, err := NewScript(table)
	if err != nil {
		panic(err)
	}
	return s
}

// Phase returns the phase for a step.
func (s *Script) Phase(step types.Step) (Phase, bool) {
	if step < types.FirstStep || step > types.MaxStep {
		return Phase{}, false
	}
	return s.phases[step], true
}

// Execute runs the phase for a step.
func (s *Script) Execute(step types.Step) error {
	phase, ok := s.Phase(step)
	if !ok {
		return fmt.Errorf("%w: %d", ErrInvalidStep, step)
	}
	return phase.Run(step)
}

// Names returns the phase names indexed by step; index 0 is the baseline.
func (s *Script) Names() []string {
	names := make([]string, len(s.phases))
	names[0] = "baseline"
	for step := types.FirstStep; step <= types.MaxStep; step++ {
		names[step] = s.phases[step].Name
	}
	return names
}
