package engine

import (
	"fmt"

	"github.com/blockberries/stepberry/types"
)

// Run holds the per-run bookkeeping every engine needs: the step-0 baseline,
// the live nodes, the append-only message history and the cumulative log.
// It is engine-local and never shared.
type Run struct {
	baseline []types.Node
	nodes    []types.Node
	history  History
	log      []types.LogRecord

	// Pending output of the step in progress
	batch   []types.Message
	emitted []types.LogRecord

	step        types.Step
	initialized bool
}

// Seed validates and deep-copies the topology as the new baseline, then
// rewinds to it. Nodes are ordered by ascending id.
func (r *Run) Seed(nodes []types.Node) error {
	if err := types.ValidateTopology(nodes); err != nil {
		return err
	}
	r.baseline = types.CopyNodes(nodes)
	types.SortNodes(r.baseline)
	r.initialized = true
	r.Rewind()
	return nil
}

// Initialized reports whether Seed has succeeded.
func (r *Run) Initialized() bool {
	return r.initialized
}

// Rewind restores the baseline and clears history, log and pending output.
func (r *Run) Rewind() {
	r.nodes = types.CopyNodes(r.baseline)
	r.history.Reset()
	r.log = nil
	r.batch = nil
	r.emitted = nil
	r.step = types.BaselineStep
}

// Begin starts a step. Steps must follow each other without gaps.
func (r *Run) Begin(step types.Step) error {
	if !r.initialized {
		return ErrNotInitialized
	}
	if step < types.FirstStep || step > types.MaxStep {
		return fmt.Errorf("%w: %d", ErrInvalidStep, step)
	}
	if step != r.step+1 {
		return fmt.Errorf("%w: got %d, expected %d", ErrStepOutOfOrder, step, r.step+1)
	}
	r.step = step
	r.batch = nil
	r.emitted = nil
	return nil
}

// Abort drops the pending output of the step in progress. The step counter
// stays where Begin put it, since node state may already have changed.
func (r *Run) Abort() {
	r.batch = nil
	r.emitted = nil
}

// Finish commits the pending batch to history and the pending records to the
// log, and returns the step result.
func (r *Run) Finish() *StepResult {
	r.history.Append(r.batch...)
	r.log = append(r.log, r.emitted...)
	res := &StepResult{
		Step:        r.step,
		Nodes:       types.CopyNodes(r.nodes),
		Messages:    append([]types.Message{}, r.batch...),
		Log:         append([]types.LogRecord{}, types.CopyLog(r.emitted)...),
		HistorySize: r.history.Len(),
	}
	r.batch = nil
	r.emitted = nil
	return res
}

// Baseline returns the result describing the rewound step-0 state.
func (r *Run) Baseline() *StepResult {
	return &StepResult{
		Step:        types.BaselineStep,
		Nodes:       types.CopyNodes(r.nodes),
		Messages:    []types.Message{},
		Log:         []types.LogRecord{},
		HistorySize: r.history.Len(),
	}
}

// Step returns the current step.
func (r *Run) Step() types.Step {
	return r.step
}

// Send queues a message produced by the current step.
func (r *Run) Send(from, to types.NodeID, typ types.MessageType, payload types.Payload) {
	r.batch = append(r.batch, types.Message{
		From:    from,
		To:      to,
		Type:    typ,
		Payload: payload,
		Step:    r.step,
	})
}

// Pending returns the messages queued so far by the current step.
func (r *Run) Pending() []types.Message {
	return r.batch
}

// Emit queues a log record for the current step. The step parameter is filled
// in when absent.
func (r *Run) Emit(key types.LogKey, params types.Params) {
	rec := types.NewLogRecord(key, params)
	if _, ok := rec.Params["step"]; !ok {
		rec.Params["step"] = r.step
	}
	r.emitted = append(r.emitted, rec)
}

// EmitRecord queues a prepared record, for compound records built with
// LogRecord.WithReason.
func (r *Run) EmitRecord(rec types.LogRecord) {
	if rec.Params == nil {
		rec.Params = types.Params{}
	}
	if _, ok := rec.Params["step"]; !ok {
		rec.Params["step"] = r.step
	}
	r.emitted = append(r.emitted, rec)
}

// History returns the run's message history.
func (r *Run) History() *History {
	return &r.history
}

// Log returns a copy of the cumulative log.
func (r *Run) Log() []types.LogRecord {
	return types.CopyLog(r.log)
}

// Nodes returns a copy of the live nodes.
func (r *Run) Nodes() []types.Node {
	return types.CopyNodes(r.nodes)
}

// Node returns the live node with the given id, or nil.
func (r *Run) Node(id types.NodeID) *types.Node {
	for i := range r.nodes {
		if r.nodes[i].ID == id {
			return &r.nodes[i]
		}
	}
	return nil
}

// Find returns the lowest-id live node satisfying pred, or nil.
func (r *Run) Find(pred func(*types.Node) bool) *types.Node {
	for i := range r.nodes {
		if pred(&r.nodes[i]) {
			return &r.nodes[i]
		}
	}
	return nil
}

// Filter returns the live nodes satisfying pred in ascending id order.
func (r *Run) Filter(pred func(*types.Node) bool) []*types.Node {
	var out []*types.Node
	for i := range r.nodes {
		if pred(&r.nodes[i]) {
			out = append(out, &r.nodes[i])
		}
	}
	return out
}

// Each calls fn for every live node in ascending id order.
func (r *Run) Each(fn func(*types.Node)) {
	for i := range r.nodes {
		fn(&r.nodes[i])
	}
}

// Quorum returns the quorum size over active nodes accepted by eligible.
func (r *Run) Quorum(eligible func(*types.Node) bool) int {
	return types.QuorumSize(types.CountActive(r.nodes, eligible))
}
