// Package engine holds what the protocol simulation engines share.
//
// An engine runs a fixed script of steps 1..10 over a small topology. Each
// step reads the engine's own message history, mutates node state, emits a
// batch of messages and appends symbolic log records. Step 0 is the idle
// baseline.
//
// # Core Components
//
// Engine: The contract every protocol engine implements (Initialize,
// SimulateStep, Reset).
//
// Run: Per-run bookkeeping. Holds the baseline, the live nodes, the
// append-only History, the cumulative log and the output of the step in
// progress. Enforces step ordering.
//
// Script: The step table. Maps every step to a named phase handler and
// refuses to build if a step is missing.
//
// Tally: Distinct-source vote counting per key, used for promise, accepted
// and vote quorums.
//
// Replayer: Reconstructs the state at any step by replaying a fresh engine
// from the baseline.
//
// # Usage Example
//
//	eng := paxos.NewEngine(engine.DefaultConfig())
//	snap, err := engine.NewReplayer(logger).Replay(ctx, eng,
//	    types.PaxosTopology(types.DefaultPositions), types.ScenarioNormal, 4)
//
// # Thread Safety
//
// Engines are single-threaded and hold all their state; independent runs use
// independent engines. Nothing in this package keeps global state.
package engine
