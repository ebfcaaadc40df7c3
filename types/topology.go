package types

// DefaultPositions are the five layout slots shared by both protocols.
var DefaultPositions = []Position{
	{X: 100, Y: 100},
	{X: 300, Y: 50},
	{X: 500, Y: 100},
	{X: 300, Y: 250},
	{X: 100, Y: 200},
}

// Paxos topology roles by node id
const (
	PaxosProposerID NodeID = 1
	PaxosLearnerID  NodeID = 5
)

// RaftInitialCandidateID is the node that starts the first election.
const RaftInitialCandidateID NodeID = 1

// PaxosTopology builds the Paxos topology over the given positions: the first
// node is the proposer, the fifth the learner, everything else an acceptor.
func PaxosTopology(positions []Position) []Node {
	nodes := make([]Node, len(positions))
	for i, pos := range positions {
		id := NodeID(i + 1)
		role := RoleAcceptor
		switch id {
		case PaxosProposerID:
			role = RoleProposer
		case PaxosLearnerID:
			role = RoleLearner
		}
		nodes[i] = Node{
			ID:       id,
			Role:     role,
			State:    StateIdle,
			Active:   true,
			Position: pos,
		}
	}
	return nodes
}

// RaftTopology builds the Raft topology: every node is a follower.
func RaftTopology(positions []Position) []Node {
	nodes := make([]Node, len(positions))
	for i, pos := range positions {
		nodes[i] = Node{
			ID:       NodeID(i + 1),
			Role:     RoleNode,
			State:    StateFollower,
			Active:   true,
			Position: pos,
		}
	}
	return nodes
}

// Deactivate marks the node with the given id inactive. It reports whether the
// node was found.
func Deactivate(nodes []Node, id NodeID) bool {
	for i := range nodes {
		if nodes[i].ID == id {
			nodes[i].Active = false
			return true
		}
	}
	return false
}
