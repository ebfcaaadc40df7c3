package raft

import "github.com/blockberries/stepberry/types"

// VoteDecision is the outcome of applying the vote rules to one request.
type VoteDecision struct {
	Grant bool

	// AdoptTerm is set when the voter must move to the candidate's term,
	// revert to follower and forget its previous vote before granting.
	AdoptTerm bool

	// Reason and ReasonParams explain a denial
	Reason       types.LogKey
	ReasonParams types.Params
}

// DecideVote applies the vote rules for a request from candidate at term:
//
//   - a voter with a higher term denies
//   - a voter with a lower term adopts the candidate's term and grants
//   - at equal terms the voter grants unless it already voted for someone else
//
// The voter is not modified.
func DecideVote(voter *types.Node, candidate types.NodeID, term uint64) VoteDecision {
	switch {
	case voter.CurrentTerm > term:
		return VoteDecision{
			Reason: types.RaftVoteDeniedReasonHigherTerm,
			ReasonParams: types.Params{
				"voterTerm":     voter.CurrentTerm,
				"candidateTerm": term,
			},
		}
	case term > voter.CurrentTerm:
		return VoteDecision{Grant: true, AdoptTerm: true}
	case voter.VotedFor == types.NoNode || voter.VotedFor == candidate:
		return VoteDecision{Grant: true}
	default:
		return VoteDecision{
			Reason: types.RaftVoteDeniedReasonAlreadyVoted,
			ReasonParams: types.Params{
				"term":     voter.CurrentTerm,
				"votedFor": voter.VotedFor,
			},
		}
	}
}

// apply updates the voter for a decision.
func (d VoteDecision) apply(voter *types.Node, candidate types.NodeID, term uint64) {
	if d.AdoptTerm {
		voter.CurrentTerm = term
		voter.State = types.StateFollower
		voter.VotedFor = types.NoNode
	}
	if d.Grant {
		voter.VotedFor = candidate
	}
}
