package paxos

import (
	"github.com/blockberries/stepberry/engine"
	"github.com/blockberries/stepberry/types"
)

// prepare is phase 1 of the first round: the original proposer opens a
// proposal and sends prepare to every active acceptor.
func (e *Engine) prepare(step types.Step) error {
	initial := e.run.Find(func(n *types.Node) bool {
		return n.ID == e.originalProposer && n.Active
	})
	switch {
	case initial != nil:
		initial.State = types.StatePreparing
		initial.IsActingProposer = true
		n := e.nextProposal()
		acceptors := e.acceptors()
		for _, a := range acceptors {
			e.run.Send(initial.ID, a.ID, types.MsgPrepare, types.Payload{N: n})
		}
		e.run.Emit(types.PaxosPrepareSent, types.Params{
			"proposerId": initial.ID,
			"proposalN":  n,
			"count":      len(acceptors),
		})
	case e.proposerFailed():
		e.run.Emit(types.PaxosOriginalProposerFailedOrInactive, nil)
	default:
		e.run.Emit(types.PaxosNoActiveInitialProposer, nil)
	}
	return nil
}

// recoveryPrepare restarts phase 1 under a promoted proposer. Without a
// failure it only re-evaluates the learner.
func (e *Engine) recoveryPrepare(step types.Step) error {
	acting := e.actingProposer()
	switch {
	case e.proposerFailed() && acting != nil && acting.ID != e.originalProposer:
		acting.State = types.StatePreparing
		n := e.nextProposal()
		acceptors := e.acceptors()
		for _, a := range acceptors {
			e.run.Send(acting.ID, a.ID, types.MsgPrepare, types.Payload{N: n})
		}
		e.run.Emit(types.PaxosRecoveryProposerPrepareSent, types.Params{
			"proposerId": acting.ID,
			"proposalN":  n,
			"count":      len(acceptors),
		})
	case acting == nil && e.proposerFailed():
		e.run.Emit(types.PaxosRecoveryWaiting, nil)
	case acting != nil && acting.ID == e.originalProposer:
		e.run.Emit(types.PaxosOriginalProposerActiveNoAction, nil)
		if l := e.learner(); l != nil {
			e.checkAndLearn(l)
		}
	default:
		e.run.Emit(types.PaxosStep5NoAction, nil)
		if l := e.learner(); l != nil {
			e.checkAndLearn(l)
		}
	}
	return nil
}

// promise answers the prepare sent at prepareStep. An acceptor promises iff
// the proposal number exceeds everything it has promised before.
func (e *Engine) promise(prepareStep types.Step) engine.PhaseFunc {
	return func(step types.Step) error {
		prep, ok := e.run.History().Latest(engine.Filter{Type: types.MsgPrepare, Step: prepareStep})
		if !ok {
			e.run.Emit(types.PaxosNoPrepareMessageFound, types.Params{"lookingForPrepareStep": prepareStep})
			return nil
		}
		if prep.Payload.N == 0 {
			return e.inconsistent(step, "prepare without proposal number")
		}

		n := prep.Payload.N
		acceptors := e.acceptors()
		sent := 0
		for _, a := range acceptors {
			if n > a.HighestPromisedN {
				a.State = types.StatePromised
				a.HighestPromisedN = n
				sent++
				e.run.Send(a.ID, prep.From, types.MsgPromise, types.Payload{N: n})
				continue
			}
			e.run.Emit(types.PaxosAcceptorIgnoringPrepare, types.Params{
				"acceptorId": a.ID,
				"proposalN":  n,
				"promisedN":  a.HighestPromisedN,
			})
		}

		switch {
		case sent > 0:
			e.run.Emit(types.PaxosPromisesSent, types.Params{
				"count":      sent,
				"proposalN":  n,
				"proposerId": prep.From,
			})
		case len(acceptors) > 0:
			e.run.Emit(types.PaxosNoPromisesSent, types.Params{"proposalN": n})
		}
		return nil
	}
}

// accept tallies the promises for the prepare sent at prepareStep. With a
// quorum the proposer sends accept(n, value) to every active acceptor;
// otherwise it moves to prepare_failed.
func (e *Engine) accept(prepareStep, promiseStep types.Step) engine.PhaseFunc {
	return func(step types.Step) error {
		hist := e.run.History()
		prep, found := hist.Latest(engine.Filter{Type: types.MsgPrepare, Step: prepareStep})
		if found && prep.Payload.N == 0 {
			return e.inconsistent(step, "prepare without proposal number")
		}

		source, n := types.NoNode, uint64(0)
		if found {
			source, n = prep.From, prep.Payload.N
		}

		var proposer *types.Node
		if acting := e.actingProposer(); acting != nil && found && acting.ID == source {
			proposer = acting
		}

		quorum := e.quorum()
		canProceed := false
		switch {
		case proposer != nil:
			promises := hist.Count(engine.Filter{
				Type: types.MsgPromise,
				Step: promiseStep,
				To:   source,
				Where: func(m types.Message) bool {
					return m.Payload.N == n
				},
			})
			params := types.Params{
				"proposerId":    proposer.ID,
				"promiseStep":   promiseStep,
				"receivedCount": promises,
				"quorum":        quorum,
			}
			if promises >= quorum {
				proposer.State = types.StatePromised
				e.run.Emit(types.PaxosProposerGotQuorum, params)
				canProceed = true
			} else {
				proposer.State = types.StatePrepareFailed
				e.run.Emit(types.PaxosProposerNoQuorum, params)
			}
		case e.proposerFailed() && step == 7:
			e.run.Emit(types.PaxosRecoveryProposerFailedOrNoPrepare, types.Params{"proposerId": source})
		case found:
			e.run.Emit(types.PaxosProposerInactiveOrNotFound, types.Params{
				"proposerId": source,
				"proposalN":  n,
			})
		default:
			e.run.Emit(types.PaxosNoValidPrepareMessageForAccept, types.Params{"prepareStep": prepareStep})
		}

		if proposer == nil {
			return nil
		}
		if !canProceed {
			e.run.Emit(types.PaxosCannotSendAcceptDueToNoQuorum, types.Params{"proposerId": proposer.ID})
			return nil
		}

		proposer.State = types.StateProposing
		value := types.ProposalValue(n)
		for _, a := range e.acceptors() {
			e.run.Send(proposer.ID, a.ID, types.MsgAccept, types.Payload{N: n, Value: value})
		}
		e.run.Emit(types.PaxosAcceptSent, types.Params{
			"proposerId": proposer.ID,
			"proposalN":  n,
			"value":      value,
		})

		proposer.State = types.StateIdle
		e.run.Emit(types.PaxosProposerIdleAfterAccept, types.Params{
			"proposerId": proposer.ID,
			"proposalN":  n,
		})
		return nil
	}
}

// accepted delivers the accept sent at acceptStep. An acceptor accepts iff
// the proposal number is at least its highest promise, then notifies the
// active learner, which re-evaluates its quorum.
func (e *Engine) accepted(acceptStep types.Step) engine.PhaseFunc {
	return func(step types.Step) error {
		learner := e.learner()

		acc, found := e.run.History().Latest(engine.Filter{Type: types.MsgAccept, Step: acceptStep})
		switch {
		case !found:
			e.run.Emit(types.PaxosNoAcceptMessageFound, types.Params{"lookingForAcceptStep": acceptStep})
		case acc.Payload.N == 0 || acc.Payload.Value == "":
			if err := e.inconsistent(step, "accept without proposal number or value"); err != nil {
				return err
			}
		default:
			n, v := acc.Payload.N, acc.Payload.Value
			acceptors := e.acceptors()
			count := 0
			for _, a := range acceptors {
				if n < a.HighestPromisedN {
					e.run.Emit(types.PaxosAcceptorIgnoringAccept, types.Params{
						"acceptorId": a.ID,
						"proposalN":  n,
						"promisedN":  a.HighestPromisedN,
					})
					continue
				}
				a.State = types.StateAccepted
				a.AcceptedN = n
				a.AcceptedValue = v
				count++
				if learner != nil {
					e.run.Send(a.ID, learner.ID, types.MsgAccepted, types.Payload{N: a.AcceptedN, Value: a.AcceptedValue})
				}
			}

			switch {
			case count > 0:
				e.run.Emit(types.PaxosAcceptedAndNotified, types.Params{
					"count":      count,
					"value":      v,
					"proposalN":  n,
					"proposerId": acc.From,
				})
			case len(acceptors) > 0:
				e.run.Emit(types.PaxosNoAcceptorsAccepted, types.Params{
					"value":     v,
					"proposalN": n,
				})
			}
		}

		if learner != nil && learner.State != types.StateLearned {
			e.checkAndLearn(learner)
		}
		return nil
	}
}

// learn re-evaluates the learner; the last step also records the outcome.
func (e *Engine) learn(step types.Step) error {
	learner := e.learner()
	if learner != nil {
		e.checkAndLearn(learner)
	} else {
		e.run.Emit(types.PaxosNoActiveLearner, nil)
	}

	if step == types.MaxStep {
		learned := types.NoLearnedValue
		if learner != nil && learner.State == types.StateLearned {
			learned = learner.LearnedValue
		}
		e.run.Emit(types.PaxosEndOfSimulation, types.Params{"learnedValue": learned})
	}
	return nil
}
