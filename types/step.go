package types

import "fmt"

// Step is a discrete index into the scripted simulation timeline.
// Step 0 is the idle baseline; steps 1 through MaxStep are protocol actions.
type Step int

const (
	// BaselineStep is the reset/idle state before any protocol action
	BaselineStep Step = 0

	// FirstStep is the first protocol action
	FirstStep Step = 1

	// MaxStep is the last scripted step of a run
	MaxStep Step = 10
)

// Valid reports whether the step lies within 0..MaxStep.
func (s Step) Valid() bool {
	return s >= BaselineStep && s <= MaxStep
}

// IsBaseline reports whether the step is the idle baseline.
func (s Step) IsBaseline() bool {
	return s == BaselineStep
}

func (s Step) String() string {
	return fmt.Sprintf("step %d", int(s))
}

// Steps returns the protocol steps 1..to in order. Steps beyond MaxStep are clamped.
func Steps(to Step) []Step {
	if to > MaxStep {
		to = MaxStep
	}
	if to < FirstStep {
		return nil
	}
	steps := make([]Step, 0, int(to))
	for s := FirstStep; s <= to; s++ {
		steps = append(steps, s)
	}
	return steps
}
