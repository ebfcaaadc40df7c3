package engine

import (
	"github.com/blockberries/stepberry/types"
)

// echoKey is logged once per step by echoEngine
const echoKey types.LogKey = "echo"

// echoEngine is a minimal Engine: at every step node 1 sends one heartbeat to
// each other active node.
type echoEngine struct {
	run    Run
	script *Script
}

func newEchoEngine() *echoEngine {
	e := &echoEngine{}
	table := make(map[types.Step]Phase)
	for _, step := range types.Steps(types.MaxStep) {
		table[step] = Phase{Name: "echo", Run: e.echo}
	}
	e.script = MustScript(table)
	return e
}

func (e *echoEngine) Initialize(nodes []types.Node) error {
	return e.run.Seed(nodes)
}

func (e *echoEngine) SimulateStep(step types.Step, _ types.Scenario) (*StepResult, error) {
	if step == types.BaselineStep {
		if !e.run.Initialized() {
			return nil, ErrNotInitialized
		}
		e.run.Rewind()
		return e.run.Baseline(), nil
	}
	if err := e.run.Begin(step); err != nil {
		return nil, err
	}
	if err := e.script.Execute(step); err != nil {
		e.run.Abort()
		return nil, err
	}
	return e.run.Finish(), nil
}

func (e *echoEngine) Reset() {
	e.run.Rewind()
}

func (e *echoEngine) echo(step types.Step) error {
	peers := e.run.Filter(func(n *types.Node) bool {
		return n.Active && n.ID != 1
	})
	for _, p := range peers {
		e.run.Send(1, p.ID, types.MsgAppendEntries, types.Payload{Term: uint64(step)})
	}
	e.run.Emit(echoKey, types.Params{"count": len(peers)})
	return nil
}

var _ Engine = (*echoEngine)(nil)

func testTopology() []types.Node {
	return types.RaftTopology(types.DefaultPositions)
}
