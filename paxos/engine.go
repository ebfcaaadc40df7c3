package paxos

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/blockberries/stepberry/engine"
	"github.com/blockberries/stepberry/types"
)

// noStep marks a scenario event that has not fired
const noStep types.Step = -1

// proposerFailureStep is the step at which leaderFailure fails the original proposer
const proposerFailureStep types.Step = 3

// recoveryDelay is the number of steps after the proposer failure before an
// acceptor is promoted to acting proposer
const recoveryDelay types.Step = 2

// Engine simulates the Paxos step script over proposer, acceptor and learner
// roles. It is not safe for concurrent use; independent runs need independent
// engines.
type Engine struct {
	cfg    *engine.Config
	logger hclog.Logger
	run    engine.Run
	script *engine.Script

	originalProposer   types.NodeID
	proposalCounter    uint64
	proposerFailedStep types.Step

	// learner state as of the previous learn check, for waiting transitions
	learnerPrev map[types.NodeID]types.State

	// scenario of the step in progress
	scenario types.Scenario
}

var _ engine.Engine = (*Engine)(nil)

// NewEngine creates a Paxos engine. A nil config uses DefaultConfig.
func NewEngine(cfg *engine.Config) *Engine {
	if cfg == nil {
		cfg = engine.DefaultConfig()
	}
	e := &Engine{
		cfg:                cfg,
		logger:             cfg.NamedLogger("paxos"),
		proposerFailedStep: noStep,
		learnerPrev:        make(map[types.NodeID]types.State),
		scenario:           types.ScenarioNormal,
	}
	e.script = engine.MustScript(map[types.Step]engine.Phase{
		1:  {Name: "prepare", Run: e.prepare},
		2:  {Name: "promise", Run: e.promise(1)},
		3:  {Name: "accept", Run: e.accept(1, 2)},
		4:  {Name: "accepted", Run: e.accepted(3)},
		5:  {Name: "recovery-prepare", Run: e.recoveryPrepare},
		6:  {Name: "promise", Run: e.promise(5)},
		7:  {Name: "accept", Run: e.accept(5, 6)},
		8:  {Name: "accepted", Run: e.accepted(7)},
		9:  {Name: "learn", Run: e.learn},
		10: {Name: "finalize", Run: e.learn},
	})
	return e
}

// Initialize seeds the engine with a topology, zeroing all protocol fields.
// The node with role proposer becomes the original and acting proposer.
func (e *Engine) Initialize(nodes []types.Node) error {
	seeded := types.CopyNodes(nodes)
	for i := range seeded {
		n := &seeded[i]
		n.State = types.StateIdle
		n.HighestPromisedN = 0
		n.AcceptedN = 0
		n.AcceptedValue = ""
		n.LearnedValue = ""
		n.IsActingProposer = n.Role == types.RoleProposer
		n.CurrentTerm = 0
		n.VotedFor = types.NoNode
		n.CommitIndex = 0
		n.LastApplied = 0
	}
	if err := e.run.Seed(seeded); err != nil {
		return fmt.Errorf("paxos: %w", err)
	}

	e.originalProposer = types.NoNode
	if p := e.run.Find(isProposer); p != nil {
		e.originalProposer = p.ID
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
	e.proposalCounter = 0
	e.proposerFailedStep = noStep
	e.learnerPrev = make(map[types.NodeID]types.State)
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

	e.injectProposerFailure(step)
	e.promoteRecoveryProposer(step)

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

// OriginalProposer returns the id of the node seeded as proposer.
func (e *Engine) OriginalProposer() types.NodeID {
	return e.originalProposer
}

// injectProposerFailure fails the original proposer once, at the scripted step.
func (e *Engine) injectProposerFailure(step types.Step) {
	if e.scenario != types.ScenarioLeaderFailure || step != proposerFailureStep || e.proposerFailedStep != noStep {
		return
	}
	orig := e.run.Node(e.originalProposer)
	if orig == nil || !orig.Active {
		return
	}
	orig.State = types.StateFailed
	orig.Active = false
	orig.IsActingProposer = false
	e.proposerFailedStep = step
	e.logger.Debug("failed original proposer", "step", int(step), "proposer", orig.ID)
	e.run.Emit(types.PaxosProposerFailed, types.Params{"proposerId": orig.ID})
}

// promoteRecoveryProposer hands the proposer role to the lowest-id active
// acceptor once the recovery delay has passed and no acting proposer is left.
func (e *Engine) promoteRecoveryProposer(step types.Step) {
	if !e.proposerFailed() || step < e.proposerFailedStep+recoveryDelay {
		return
	}
	if e.actingProposer() != nil {
		return
	}
	next := e.run.Find(func(n *types.Node) bool {
		return n.ID != e.originalProposer && n.Role == types.RoleAcceptor && n.Active
	})
	if next == nil || next.IsActingProposer {
		return
	}
	next.IsActingProposer = true
	e.logger.Debug("promoted recovery proposer", "step", int(step), "proposer", next.ID)
	e.run.Emit(types.PaxosRecoveryProposerTakingOver, types.Params{"proposerId": next.ID})
}

// proposerFailed reports whether the leaderFailure scenario has fired.
func (e *Engine) proposerFailed() bool {
	return e.scenario == types.ScenarioLeaderFailure && e.proposerFailedStep > 0
}

func (e *Engine) actingProposer() *types.Node {
	return e.run.Find(func(n *types.Node) bool {
		return n.IsActingProposer && n.Active
	})
}

func (e *Engine) acceptors() []*types.Node {
	return e.run.Filter(func(n *types.Node) bool {
		return isAcceptor(n) && n.Active
	})
}

func (e *Engine) learner() *types.Node {
	return e.run.Find(func(n *types.Node) bool {
		return n.Role == types.RoleLearner && n.Active
	})
}

// quorum is computed over currently active acceptors.
func (e *Engine) quorum() int {
	return e.run.Quorum(isAcceptor)
}

func (e *Engine) nextProposal() uint64 {
	e.proposalCounter++
	return e.proposalCounter
}

// inconsistent handles a history lookup that bookkeeping should have made
// impossible: an error in strict mode, a log record otherwise.
func (e *Engine) inconsistent(step types.Step, detail string) error {
	if e.cfg.Strict {
		return fmt.Errorf("%w: paxos %s: %s", engine.ErrInconsistentHistory, step, detail)
	}
	e.logger.Warn("history inconsistency", "step", int(step), "detail", detail)
	e.run.Emit(types.PaxosHistoryInconsistent, types.Params{"detail": detail})
	return nil
}

func isProposer(n *types.Node) bool {
	return n.Role == types.RoleProposer
}

func isAcceptor(n *types.Node) bool {
	return n.Role == types.RoleAcceptor
}
