// Package types defines the data model shared by the Stepberry simulation engines.
//
// # Core Types
//
// Node: A participant in a run. Paxos and Raft fields sit side by side; the
// Role says which protocol a node belongs to and State is its display state.
// Inactive nodes are excluded from quorum and message routing.
//
// Message: A directed, typed unit of protocol communication. Decision inputs
// (proposal number, term, value, grant) travel as explicit Payload fields;
// Content renders the canonical text for display only.
//
// LogRecord: A symbolic event (LogKey plus Params) emitted whenever an engine
// decides something. The key catalog in logkeys.go is the only contract with
// text rendering and localisation.
//
// Scenario: The closed set of perturbations (normal, nodeFailure,
// leaderFailure). Unknown names parse to normal.
//
// Step: An index 0..MaxStep into the fixed script. Step 0 is the baseline.
//
// # Quorum
//
// QuorumSize(n) = n/2 + 1 over the currently active eligible nodes. Which
// nodes are eligible is protocol policy: Paxos counts acceptors, Raft counts
// every node.
//
// # Topology
//
// PaxosTopology and RaftTopology build the five-slot topology used by both
// protocols. Callers get fresh slices; engines deep-copy what they are given.
package types
