package raft

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/blockberries/stepberry/engine"
	"github.com/blockberries/stepberry/types"
)

// noStep marks a scenario event that has not fired
const noStep types.Step = -1

// leaderFailureStep is the step at which leaderFailure fails the leader
const leaderFailureStep types.Step = 4

// Engine simulates the Raft step script. All nodes start as followers; node 1
// starts the first election. It is not safe for concurrent use.
type Engine struct {
	cfg    *engine.Config
	logger hclog.Logger
	run    engine.Run
	script *engine.Script

	leaderID         types.NodeID
	leaderFailedStep types.Step
	highestTermSeen  uint64

	scenario types.Scenario
}

var _ engine.Engine = (*Engine)(nil)

// NewEngine creates a Raft engine. A nil config uses DefaultConfig.
func NewEngine(cfg *engine.Config) *Engine {
	if cfg == nil {
		cfg = engine.DefaultConfig()
	}
	e := &Engine{
		cfg:              cfg,
		logger:           cfg.NamedLogger("raft"),
		leaderFailedStep: noStep,
		scenario:         types.ScenarioNormal,
	}
	e.script = engine.MustScript(map[types.Step]engine.Phase{
		1:  {Name: "elect", Run: e.elect},
		2:  {Name: "request-vote", Run: e.requestVotes},
		3:  {Name: "vote", Run: e.grantVotes(2)},
		4:  {Name: "election-result", Run: e.electionResult(3)},
		5:  {Name: "heartbeat-or-recover", Run: e.heartbeatOrRecover},
		6:  {Name: "request-vote", Run: e.requestVotes},
		7:  {Name: "vote", Run: e.grantVotes(6)},
		8:  {Name: "election-result", Run: e.electionResult(7)},
		9:  {Name: "heartbeat", Run: e.heartbeat},
		10: {Name: "heartbeat", Run: e.heartbeat},
	})
	return e
}

// Initialize seeds the engine with a topology. Every node becomes a follower
// at term 0 with no vote.
func (e *Engine) Initialize(nodes []types.Node) error {
	seeded := types.CopyNodes(nodes)
	for i := range seeded {
		n := &seeded[i]
		n.State = types.StateFollower
		n.CurrentTerm = 0
		n.VotedFor = types.NoNode
		n.CommitIndex = 0
		n.LastApplied = 0
		n.HighestPromisedN = 0
		n.AcceptedN = 0
		n.AcceptedValue = ""
		n.LearnedValue = ""
		n.IsActingProposer = false
	}
	if err := e.run.Seed(seeded); err != nil {
		return fmt.Errorf("raft: %w", err)
	}
	e.resetCounters()
	return nil
}

// Reset returns to the step-0 baseline.
func (e *Engine) Reset() {
	e.run.Rewind()
	e.resetCounters()
}

func (e *Engine) resetCounters() {
	e.leaderID = types.NoNode
	e.leaderFailedStep = noStep
	e.highestTermSeen = 0
	e.scenario = types.ScenarioNormal
}

// SimulateStep computes one step. Step 0 resets to the baseline.
func (e *Engine) SimulateStep(step types.Step, scenario types.Scenario) (*engine.StepResult, error) {
	if step.IsBaseline() {
		if !e.run.Initialized() {
			return nil, engine.ErrNotInitialized
		}
		e.Reset()
		return e.run.Baseline(), nil
	}
	if err := e.run.Begin(step); err != nil {
		return nil, err
	}
	e.scenario = scenario.Normalize()

	e.updateHighestTermSeen()
	e.injectLeaderFailure(step)

	if err := e.script.Execute(step); err != nil {
		e.run.Abort()
		return nil, err
	}
	return e.run.Finish(), nil
}

// Script returns the step table.
func (e *Engine) Script() *engine.Script {
	return e.script
}

// Log returns the cumulative log of the run.
func (e *Engine) Log() []types.LogRecord {
	return e.run.Log()
}

// Messages returns every message recorded by the run.
func (e *Engine) Messages() []types.Message {
	return e.run.History().Messages()
}

// Nodes returns the current node state.
func (e *Engine) Nodes() []types.Node {
	return e.run.Nodes()
}

// HighestTermSeen returns the highest term observed among active nodes.
func (e *Engine) HighestTermSeen() uint64 {
	return e.highestTermSeen
}

// LeaderID returns the current leader, or NoNode.
func (e *Engine) LeaderID() types.NodeID {
	if l := e.leader(); l != nil {
		return l.ID
	}
	return types.NoNode
}

// updateHighestTermSeen never lowers the value, so terms of failed nodes stay
// counted.
func (e *Engine) updateHighestTermSeen() {
	e.run.Each(func(n *types.Node) {
		if n.Active && n.CurrentTerm > e.highestTermSeen {
			e.highestTermSeen = n.CurrentTerm
		}
	})
}

// injectLeaderFailure fails a leader that is already in place when the
// failure step starts. A leader elected during that step is failed by
// electionResult instead.
func (e *Engine) injectLeaderFailure(step types.Step) {
	if e.scenario != types.ScenarioLeaderFailure || step != leaderFailureStep || e.leaderFailedStep != noStep {
		return
	}
	leader := e.leader()
	if leader == nil {
		return
	}
	e.run.Emit(types.RaftLeaderFailed, types.Params{"leaderId": leader.ID})
	e.fail(leader, step)
}

func (e *Engine) fail(n *types.Node, step types.Step) {
	n.State = types.StateFailed
	n.Active = false
	e.leaderID = types.NoNode
	e.leaderFailedStep = step
	e.logger.Debug("failed leader", "step", int(step), "leader", n.ID)
}

// leader returns the active leader. A leader that went inactive is forgotten.
func (e *Engine) leader() *types.Node {
	if e.leaderID == types.NoNode {
		return nil
	}
	n := e.run.Node(e.leaderID)
	if n != nil && n.Active {
		return n
	}
	e.leaderID = types.NoNode
	return nil
}

func (e *Engine) leaderFailed() bool {
	return e.leaderFailedStep > 0
}

// candidate returns the lowest-id active candidate of the current term.
func (e *Engine) candidate() *types.Node {
	return e.run.Find(func(n *types.Node) bool {
		return n.Active && n.State == types.StateCandidate && n.CurrentTerm == e.highestTermSeen
	})
}

// quorum is computed over all currently active nodes.
func (e *Engine) quorum() int {
	return e.run.Quorum(nil)
}

// becomeCandidate starts a new term one above the highest seen.
func (e *Engine) becomeCandidate(n *types.Node) {
	n.State = types.StateCandidate
	n.CurrentTerm = e.highestTermSeen + 1
	e.highestTermSeen = n.CurrentTerm
	n.VotedFor = n.ID
}

// broadcast sends typ from the given node to every other active node and
// returns the number of recipients.
func (e *Engine) broadcast(from *types.Node, typ types.MessageType, payload types.Payload) int {
	sent := 0
	e.run.Each(func(n *types.Node) {
		if n.ID == from.ID || !n.Active {
			return
		}
		e.run.Send(from.ID, n.ID, typ, payload)
		sent++
	})
	return sent
}

// inconsistent handles a history lookup that bookkeeping should have made
// impossible: an error in strict mode, the given record otherwise.
func (e *Engine) inconsistent(step types.Step, key types.LogKey, params types.Params) error {
	if e.cfg.Strict {
		return fmt.Errorf("%w: raft %s: %s %v", engine.ErrInconsistentHistory, step, key, map[string]any(params))
	}
	e.logger.Warn("history inconsistency", "step", int(step), "event", key)
	e.run.Emit(key, params)
	return nil
}
