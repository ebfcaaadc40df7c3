package raft

import (
	"sort"

	"github.com/blockberries/stepberry/engine"
	"github.com/blockberries/stepberry/types"
)

// elect starts the first election unless a leader is already in place.
func (e *Engine) elect(step types.Step) error {
	if l := e.leader(); l != nil {
		e.run.Emit(types.RaftLeaderExists, types.Params{"leaderId": l.ID, "term": l.CurrentTerm})
		return nil
	}
	c := e.run.Find(func(n *types.Node) bool {
		return n.ID == types.RaftInitialCandidateID && n.Active
	})
	if c == nil {
		e.run.Emit(types.RaftInitialCandidateInactive, types.Params{"nodeId": types.RaftInitialCandidateID})
		return nil
	}
	e.becomeCandidate(c)
	e.run.Emit(types.RaftCandidateElectedSelf, types.Params{"nodeId": c.ID, "term": c.CurrentTerm})
	return nil
}

// requestVotes has the current candidate ask every other active node for a
// vote.
func (e *Engine) requestVotes(step types.Step) error {
	if c := e.candidate(); c != nil {
		sent := e.broadcast(c, types.MsgRequestVote, types.Payload{Term: c.CurrentTerm})
		if sent > 0 {
			e.run.Emit(types.RaftCandidateRequestingVotes, types.Params{
				"candidateId": c.ID,
				"term":        c.CurrentTerm,
				"count":       sent,
			})
		} else {
			e.run.Emit(types.RaftCandidateNoNodesToRequest, types.Params{
				"candidateId": c.ID,
				"term":        c.CurrentTerm,
			})
		}
		return nil
	}

	switch {
	case e.leader() != nil:
		e.run.Emit(types.RaftLeaderExistsNoRequestVote, types.Params{"leaderId": e.leaderID})
	case e.leaderFailed() && step == 6:
		e.run.Emit(types.RaftRecoveryNoCandidate, nil)
	default:
		e.run.Emit(types.RaftNoCandidateWaiting, nil)
	}
	return nil
}

// grantVotes answers every requestVote sent at requestStep and reports a
// running vote count per candidate, self-vote included.
func (e *Engine) grantVotes(requestStep types.Step) engine.PhaseFunc {
	return func(step types.Step) error {
		e.run.Emit(types.RaftProcessingRequestVotes, types.Params{"prevStep": requestStep})

		requests := e.run.History().Select(engine.Filter{Type: types.MsgRequestVote, Step: requestStep})
		counts := make(map[types.NodeID]int)
		for _, req := range requests {
			voter := e.run.Node(req.To)
			if voter == nil || !voter.Active {
				e.run.Emit(types.RaftVoterInactive, types.Params{
					"voterId":     req.To,
					"candidateId": req.From,
				})
				continue
			}
			cand := e.run.Node(req.From)
			if cand == nil {
				if err := e.inconsistent(step, types.RaftCandidateNotFound, types.Params{"candidateId": req.From}); err != nil {
					return err
				}
				continue
			}

			if _, ok := counts[cand.ID]; !ok {
				counts[cand.ID] = 0
				if cand.Active && cand.State == types.StateCandidate && cand.VotedFor == cand.ID {
					counts[cand.ID] = 1
				}
			}

			term := req.Payload.Term
			d := DecideVote(voter, cand.ID, term)
			if d.AdoptTerm {
				e.run.Emit(types.RaftVoterUpdatingTerm, types.Params{
					"voterId":     voter.ID,
					"newTerm":     term,
					"candidateId": cand.ID,
					"oldTerm":     voter.CurrentTerm,
				})
			}
			d.apply(voter, cand.ID, term)

			e.run.Send(voter.ID, cand.ID, types.MsgVoteGranted, types.Payload{
				Term:    voter.CurrentTerm,
				Granted: d.Grant,
			})
			if d.Grant {
				counts[cand.ID]++
				e.run.Emit(types.RaftVoteGranted, types.Params{
					"voterId":     voter.ID,
					"candidateId": cand.ID,
					"term":        voter.CurrentTerm,
				})
				continue
			}
			rec := types.NewLogRecord(types.RaftVoteDenied, types.Params{
				"voterId":     voter.ID,
				"candidateId": cand.ID,
			})
			e.run.EmitRecord(rec.WithReason(d.Reason, d.ReasonParams))
		}

		ids := make([]types.NodeID, 0, len(counts))
		for id := range counts {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for _, id := range ids {
			cand := e.run.Node(id)
			if cand == nil || cand.State != types.StateCandidate {
				continue
			}
			e.run.Emit(types.RaftCandidateVoteSummary, types.Params{
				"candidateId": id,
				"term":        cand.CurrentTerm,
				"count":       counts[id],
			})
		}

		leader := e.leader()
		switch {
		case len(requests) == 0 && leader == nil:
			e.run.Emit(types.RaftNoRequestVotesFound, types.Params{"prevStep": requestStep})
		case leader != nil:
			e.run.Emit(types.RaftLeaderExistsVoteGrantSkipped, types.Params{"leaderId": leader.ID})
		}
		return nil
	}
}

// electionResult counts the granted votes sent at voteStep. The first
// candidate of the current term to reach quorum becomes leader and sends its
// first heartbeats in the same step.
func (e *Engine) electionResult(voteStep types.Step) engine.PhaseFunc {
	return func(step types.Step) error {
		quorum := e.quorum()
		term := e.highestTermSeen
		e.run.Emit(types.RaftCheckingQuorum, types.Params{
			"term":     term,
			"voteStep": voteStep,
			"quorum":   quorum,
		})

		tally := engine.NewTally[types.NodeID]()
		for _, m := range e.run.History().Select(engine.Filter{
			Type:  types.MsgVoteGranted,
			Step:  voteStep,
			Where: func(m types.Message) bool { return m.Payload.Granted },
		}) {
			tally.Add(m.To, m.From, m.Payload.Term)
		}

		prevLeader := e.leader()
		candidates := e.run.Filter(func(n *types.Node) bool {
			return n.Active && n.State == types.StateCandidate && n.CurrentTerm == term
		})

		var elected *types.Node
		for _, c := range candidates {
			received := tally.Count(c.ID)
			self := 0
			if c.VotedFor == c.ID {
				self = 1
			}
			total := received + self
			e.run.Emit(types.RaftCandidateVoteCheck, types.Params{
				"candidateId":   c.ID,
				"term":          c.CurrentTerm,
				"totalVotes":    total,
				"receivedVotes": received,
				"selfVote":      self,
				"quorum":        quorum,
			})

			switch {
			case total >= quorum && elected == nil:
				elected = c
				e.becomeLeader(c, step, total, quorum)
			case total < quorum:
				e.run.Emit(types.RaftCandidateNoQuorum, types.Params{
					"candidateId": c.ID,
					"totalVotes":  total,
					"quorum":      quorum,
				})
			}
		}

		if elected == nil {
			switch {
			case prevLeader != nil:
				e.run.Emit(types.RaftLeaderFailedMaybe, types.Params{"leaderId": prevLeader.ID})
			case len(candidates) > 0:
				e.run.Emit(types.RaftNoQuorumElectionFailed, types.Params{"term": term})
			default:
				e.run.Emit(types.RaftNoActiveCandidatesFound, types.Params{"term": term})
			}
			return nil
		}

		if e.scenario == types.ScenarioLeaderFailure && step == leaderFailureStep && e.leaderFailedStep == noStep {
			e.run.Emit(types.RaftScenarioTriggerLeaderFail, types.Params{"leaderId": elected.ID})
			e.fail(elected, step)
		}
		return nil
	}
}

func (e *Engine) becomeLeader(c *types.Node, step types.Step, votes, quorum int) {
	c.State = types.StateLeader
	e.leaderID = c.ID
	e.leaderFailedStep = noStep
	e.run.Emit(types.RaftNewLeaderElected, types.Params{
		"leaderId":   c.ID,
		"term":       c.CurrentTerm,
		"totalVotes": votes,
		"quorum":     quorum,
	})
	if step == 8 {
		e.run.Emit(types.RaftRecoveryElectionSuccess, nil)
	}

	sent := e.broadcast(c, types.MsgAppendEntries, types.Payload{Term: c.CurrentTerm})
	if sent > 0 {
		e.run.Emit(types.RaftNewLeaderSendsHeartbeats, types.Params{"leaderId": c.ID, "count": sent})
	} else {
		e.run.Emit(types.RaftNewLeaderNoFollowers, types.Params{"leaderId": c.ID})
	}
}

// heartbeatOrRecover keeps an existing leader's followers in line. After a
// leader failure the lowest-id active follower starts a new term instead.
func (e *Engine) heartbeatOrRecover(step types.Step) error {
	if l := e.leader(); l != nil {
		e.run.Emit(types.RaftLeaderSendsHeartbeats, types.Params{"leaderId": l.ID, "term": l.CurrentTerm})
		e.sendHeartbeats(l)
		return nil
	}
	if !e.leaderFailed() {
		e.run.Emit(types.RaftNoLeaderWaiting, nil)
		return nil
	}

	c := e.run.Find(func(n *types.Node) bool {
		return n.Active && n.State == types.StateFollower
	})
	if c == nil {
		e.run.Emit(types.RaftRecoveryNoFollowers, nil)
		return nil
	}
	e.becomeCandidate(c)
	e.logger.Debug("recovery election", "step", int(step), "candidate", c.ID, "term", c.CurrentTerm)
	e.run.Emit(types.RaftRecoveryCandidateElectedSelf, types.Params{"nodeId": c.ID, "term": c.CurrentTerm})
	return nil
}

// heartbeat sends periodic heartbeats and has every follower process the
// ones addressed to it within the same step.
func (e *Engine) heartbeat(step types.Step) error {
	l := e.leader()
	switch {
	case l != nil:
		e.run.Emit(types.RaftLeaderPeriodicHeartbeats, types.Params{"leaderId": l.ID, "term": l.CurrentTerm})
		e.sendHeartbeats(l)
		e.receiveHeartbeats(l)
	case e.leaderFailed():
		e.run.Emit(types.RaftNoLeaderElectionOngoing, types.Params{"failedStep": e.leaderFailedStep})
	default:
		e.run.Emit(types.RaftNoLeaderElectionFailed, nil)
	}

	if step == types.MaxStep {
		e.run.Emit(types.RaftEndOfSimulation, nil)
	}
	return nil
}

func (e *Engine) sendHeartbeats(l *types.Node) {
	sent := e.broadcast(l, types.MsgAppendEntries, types.Payload{Term: l.CurrentTerm})
	if sent > 0 {
		e.run.Emit(types.RaftLeaderSentHeartbeatsCount, types.Params{"leaderId": l.ID, "count": sent})
	} else {
		e.run.Emit(types.RaftLeaderNoFollowers, types.Params{"leaderId": l.ID})
	}
}

// receiveHeartbeats applies this step's heartbeats from l. Followers ignore
// a lower term, adopt a higher one and revert to follower otherwise.
func (e *Engine) receiveHeartbeats(l *types.Node) {
	for _, hb := range e.run.Pending() {
		if hb.Type != types.MsgAppendEntries || hb.From != l.ID {
			continue
		}
		f := e.run.Node(hb.To)
		if f == nil || !f.Active {
			continue
		}
		term := hb.Payload.Term
		if term < f.CurrentTerm {
			e.run.Emit(types.RaftFollowerIgnoringOldHeartbeat, types.Params{
				"followerId":   f.ID,
				"leaderId":     l.ID,
				"leaderTerm":   term,
				"followerTerm": f.CurrentTerm,
			})
			continue
		}
		if term > f.CurrentTerm {
			e.run.Emit(types.RaftFollowerUpdatingTermFromHeartbeat, types.Params{
				"voterId":     f.ID,
				"newTerm":     term,
				"candidateId": l.ID,
				"oldTerm":     f.CurrentTerm,
			})
			f.CurrentTerm = term
			f.VotedFor = types.NoNode
		}
		f.State = types.StateFollower
		e.run.Emit(types.RaftFollowerReceivedHeartbeat, types.Params{
			"voterId":  f.ID,
			"leaderId": l.ID,
			"term":     f.CurrentTerm,
		})
	}
}
