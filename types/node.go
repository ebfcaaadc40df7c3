package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// NodeID identifies a participant. IDs are positive and stable for a run.
type NodeID int

// NoNode is the zero NodeID, used for "no vote" and "no leader".
const NoNode NodeID = 0

// Role is the structural role of a node.
type Role string

const (
	RoleProposer Role = "proposer"
	RoleAcceptor Role = "acceptor"
	RoleLearner  Role = "learner"

	// RoleNode is the uniform Raft role; behaviour is given by State
	RoleNode Role = "node"
)

// State is the display state of a node.
type State string

// Paxos states
const (
	StateIdle          State = "idle"
	StatePreparing     State = "preparing"
	StatePromised      State = "promised"
	StateProposing     State = "proposing"
	StateAccepted      State = "accepted"
	StateLearned       State = "learned"
	StatePrepareFailed State = "prepare_failed"
	StateWaiting       State = "waiting"
)

// Raft states
const (
	StateFollower  State = "follower"
	StateCandidate State = "candidate"
	StateLeader    State = "leader"
)

// StateFailed marks a node failed by a scenario. Shared by both protocols.
const StateFailed State = "failed"

// MaxNodes bounds the size of a topology.
const MaxNodes = 64

// Errors
var (
	ErrEmptyTopology   = errors.New("empty topology")
	ErrTooManyNodes    = errors.New("too many nodes")
	ErrInvalidNodeID   = errors.New("invalid node id")
	ErrDuplicateNodeID = errors.New("duplicate node id")
)

// Position is the layout slot of a node. It is carried for the renderer only.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Node is the mutable record of one participant. Paxos and Raft fields live side
// by side; each engine only touches its own.
type Node struct {
	ID       NodeID   `json:"id"`
	Role     Role     `json:"type"`
	State    State    `json:"state"`
	Active   bool     `json:"active"`
	Position Position `json:"position"`

	// Paxos
	HighestPromisedN uint64 `json:"highestPromisedN"`
	AcceptedN        uint64 `json:"acceptedN"`
	AcceptedValue    string `json:"acceptedValue"`
	LearnedValue     string `json:"learnedValue"`
	IsActingProposer bool   `json:"isActingProposer"`

	// Raft
	CurrentTerm uint64 `json:"currentTerm"`
	VotedFor    NodeID `json:"votedFor"`
	CommitIndex uint64 `json:"commitIndex"`
	LastApplied uint64 `json:"lastApplied"`
}

type nodeCore struct {
	ID       NodeID   `json:"id"`
	Role     Role     `json:"type"`
	State    State    `json:"state"`
	Active   bool     `json:"active"`
	Position Position `json:"position"`
}

type paxosNodeJSON struct {
	nodeCore
	HighestPromisedN uint64 `json:"highestPromisedN"`
	AcceptedN        uint64 `json:"acceptedN"`
	AcceptedValue    string `json:"acceptedValue"`
	LearnedValue     string `json:"learnedValue"`
	IsActingProposer bool   `json:"isActingProposer"`
}

type raftNodeJSON struct {
	nodeCore
	CurrentTerm uint64 `json:"currentTerm"`
	VotedFor    NodeID `json:"votedFor"`
	CommitIndex uint64 `json:"commitIndex"`
	LastApplied uint64 `json:"lastApplied"`
}

// MarshalJSON emits the common fields plus those of the node's protocol, zero
// values included. Raft nodes carry RoleNode; every other role is Paxos.
func (n Node) MarshalJSON() ([]byte, error) {
	core := nodeCore{ID: n.ID, Role: n.Role, State: n.State, Active: n.Active, Position: n.Position}
	if n.Role == RoleNode {
		return json.Marshal(raftNodeJSON{
			nodeCore:    core,
			CurrentTerm: n.CurrentTerm,
			VotedFor:    n.VotedFor,
			CommitIndex: n.CommitIndex,
			LastApplied: n.LastApplied,
		})
	}
	return json.Marshal(paxosNodeJSON{
		nodeCore:         core,
		HighestPromisedN: n.HighestPromisedN,
		AcceptedN:        n.AcceptedN,
		AcceptedValue:    n.AcceptedValue,
		LearnedValue:     n.LearnedValue,
		IsActingProposer: n.IsActingProposer,
	})
}

// HasVoted reports whether the node has cast a vote in its current term.
func (n *Node) HasVoted() bool {
	return n.VotedFor != NoNode
}

func (n Node) String() string {
	active := "active"
	if !n.Active {
		active = "inactive"
	}
	return fmt.Sprintf("Node{%d %s %s %s}", n.ID, n.Role, n.State, active)
}

// CopyNodes deep-copies a node slice.
func CopyNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	cp := make([]Node, len(nodes))
	copy(cp, nodes)
	return cp
}

// SortNodes orders nodes by ascending id in place.
func SortNodes(nodes []Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].ID < nodes[j].ID
	})
}

// ValidateTopology checks that a topology is non-empty, bounded, and has unique
// positive ids.
func ValidateTopology(nodes []Node) error {
	if len(nodes) == 0 {
		return ErrEmptyTopology
	}
	if len(nodes) > MaxNodes {
		return fmt.Errorf("%w: %d (max %d)", ErrTooManyNodes, len(nodes), MaxNodes)
	}
	seen := make(map[NodeID]struct{}, len(nodes))
	for i, n := range nodes {
		if n.ID <= NoNode {
			return fmt.Errorf("%w: node %d has id %d", ErrInvalidNodeID, i, n.ID)
		}
		if _, ok := seen[n.ID]; ok {
			return fmt.Errorf("%w: %d", ErrDuplicateNodeID, n.ID)
		}
		seen[n.ID] = struct{}{}
	}
	return nil
}

// CountActive counts active nodes accepted by the filter. A nil filter accepts all.
func CountActive(nodes []Node, eligible func(*Node) bool) int {
	count := 0
	for i := range nodes {
		n := &nodes[i]
		if !n.Active {
			continue
		}
		if eligible == nil || eligible(n) {
			count++
		}
	}
	return count
}

// QuorumSize returns the majority threshold for n eligible participants.
func QuorumSize(n int) int {
	if n < 0 {
		n = 0
	}
	return n/2 + 1
}
