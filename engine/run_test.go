package engine

import (
	"errors"
	"testing"

	"github.com/blockberries/stepberry/types"
)

func TestSimulateBeforeInitialize(t *testing.T) {
	e := newEchoEngine()
	if _, err := e.SimulateStep(1, types.ScenarioNormal); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
	if _, err := e.SimulateStep(0, types.ScenarioNormal); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized for step 0, got %v", err)
	}
}

func TestStepOrdering(t *testing.T) {
	e := newEchoEngine()
	if err := e.Initialize(testTopology()); err != nil {
		t.Fatalf("failed to initialize: %v", err)
	}

	if _, err := e.SimulateStep(2, types.ScenarioNormal); !errors.Is(err, ErrStepOutOfOrder) {
		t.Errorf("expected ErrStepOutOfOrder, got %v", err)
	}
	if _, err := e.SimulateStep(11, types.ScenarioNormal); !errors.Is(err, ErrInvalidStep) {
		t.Errorf("expected ErrInvalidStep, got %v", err)
	}
	if _, err := e.SimulateStep(-1, types.ScenarioNormal); !errors.Is(err, ErrInvalidStep) {
		t.Errorf("expected ErrInvalidStep for negative step, got %v", err)
	}

	if _, err := e.SimulateStep(1, types.ScenarioNormal); err != nil {
		t.Fatalf("step 1 failed: %v", err)
	}
	if _, err := e.SimulateStep(1, types.ScenarioNormal); !errors.Is(err, ErrStepOutOfOrder) {
		t.Errorf("repeating a step should fail, got %v", err)
	}
}

func TestStepResultIsStepLocal(t *testing.T) {
	e := newEchoEngine()
	if err := e.Initialize(testTopology()); err != nil {
		t.Fatalf("failed to initialize: %v", err)
	}

	for _, step := range types.Steps(3) {
		res, err := e.SimulateStep(step, types.ScenarioNormal)
		if err != nil {
			t.Fatalf("step %d failed: %v", step, err)
		}
		if len(res.Messages) != 4 {
			t.Errorf("step %d: expected 4 messages, got %d", step, len(res.Messages))
		}
		if len(res.Log) != 1 {
			t.Errorf("step %d: expected 1 record, got %d", step, len(res.Log))
		}
		if s, ok := res.Log[0].Step(); !ok || s != step {
			t.Errorf("step %d: record step = %v", step, res.Log[0].Params["step"])
		}
		for _, m := range res.Messages {
			if m.Step != step {
				t.Errorf("message %s stamped with wrong step", m)
			}
		}
		if res.HistorySize != 4*int(step) {
			t.Errorf("step %d: history size %d", step, res.HistorySize)
		}
	}
	if got := len(e.run.Log()); got != 3 {
		t.Errorf("cumulative log should have 3 records, got %d", got)
	}
}

func TestBaselineResets(t *testing.T) {
	e := newEchoEngine()
	if err := e.Initialize(testTopology()); err != nil {
		t.Fatalf("failed to initialize: %v", err)
	}
	for _, step := range types.Steps(4) {
		if _, err := e.SimulateStep(step, types.ScenarioNormal); err != nil {
			t.Fatalf("step %d failed: %v", step, err)
		}
	}

	base, err := e.SimulateStep(0, types.ScenarioNormal)
	if err != nil {
		t.Fatalf("step 0 failed: %v", err)
	}
	if len(base.Messages) != 0 || len(base.Log) != 0 || base.HistorySize != 0 {
		t.Errorf("baseline should be empty, got %+v", base)
	}
	if _, err := e.SimulateStep(1, types.ScenarioNormal); err != nil {
		t.Errorf("step 1 after baseline should succeed: %v", err)
	}
}

func TestInitializeCopiesTopology(t *testing.T) {
	nodes := testTopology()
	e := newEchoEngine()
	if err := e.Initialize(nodes); err != nil {
		t.Fatalf("failed to initialize: %v", err)
	}
	nodes[0].Active = false

	res, err := e.SimulateStep(1, types.ScenarioNormal)
	if err != nil {
		t.Fatalf("step 1 failed: %v", err)
	}
	if !res.Nodes[0].Active {
		t.Error("engine saw a caller mutation after Initialize")
	}

	res.Nodes[1].State = types.StateLeader
	if e.run.Node(2).State == types.StateLeader {
		t.Error("caller mutation of a result leaked into the engine")
	}
}

func TestInitializeRejectsBadTopology(t *testing.T) {
	e := newEchoEngine()
	if err := e.Initialize(nil); !errors.Is(err, types.ErrEmptyTopology) {
		t.Errorf("expected ErrEmptyTopology, got %v", err)
	}
}

func TestRunQuorum(t *testing.T) {
	var r Run
	if err := r.Seed(types.PaxosTopology(types.DefaultPositions)); err != nil {
		t.Fatalf("failed to seed: %v", err)
	}
	isAcceptor := func(n *types.Node) bool { return n.Role == types.RoleAcceptor }
	if got := r.Quorum(isAcceptor); got != 2 {
		t.Errorf("expected acceptor quorum 2, got %d", got)
	}
	if got := r.Quorum(nil); got != 3 {
		t.Errorf("expected overall quorum 3, got %d", got)
	}
	r.Node(2).Active = false
	r.Node(3).Active = false
	if got := r.Quorum(isAcceptor); got != 1 {
		t.Errorf("expected acceptor quorum 1, got %d", got)
	}
}
