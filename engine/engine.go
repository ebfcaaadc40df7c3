package engine

import "github.com/blockberries/stepberry/types"

// Engine is the contract every protocol simulation engine implements.
//
// SimulateStep computes exactly one step and never replays earlier steps
// itself: after Initialize or Reset, callers invoke it for steps 1, 2, ... in
// order. Step 0 resets to the baseline.
type Engine interface {
	// Initialize seeds the engine with a topology. The slice is deep-copied.
	Initialize(nodes []types.Node) error

	// SimulateStep computes the effects of one step under the given scenario.
	SimulateStep(step types.Step, scenario types.Scenario) (*StepResult, error)

	// Reset returns to the step-0 baseline and clears history and log.
	Reset()
}

// StepResult is the outcome of a single step. All slices are copies owned by
// the caller.
type StepResult struct {
	Step types.Step

	// Nodes is the node state after the step, ordered by id
	Nodes []types.Node

	// Messages is the batch produced by this step
	Messages []types.Message

	// Log holds only the records appended by this step
	Log []types.LogRecord

	// HistorySize is the number of messages recorded by the run so far
	HistorySize int
}
