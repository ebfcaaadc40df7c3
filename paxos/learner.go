package paxos

import (
	"github.com/blockberries/stepberry/engine"
	"github.com/blockberries/stepberry/types"
)

// checkAndLearn evaluates the learner over every accepted message recorded so
// far, including the batch of the step in progress.
//
// Votes are grouped by value with at most one vote per acceptor. A value is
// learned once it reaches quorum; among quorate values the one with the
// highest proposal number wins. A learned value is only replaced by one with
// a strictly higher proposal number. Every other quorate value is reported as
// a conflict.
func (e *Engine) checkAndLearn(learner *types.Node) {
	tally := e.acceptedTally()
	quorum := e.quorum()

	reached := tally.Reached(quorum)
	if len(reached) == 0 {
		if learner.State != types.StateLearned {
			learner.State = types.StateWaiting
			if e.learnerPrev[learner.ID] != types.StateWaiting {
				e.run.Emit(types.PaxosLearnerWaitingQuorum, types.Params{
					"learnerId": learner.ID,
					"quorum":    quorum,
					"details":   tally.Counts(),
				})
			}
		}
		e.learnerPrev[learner.ID] = learner.State
		return
	}

	if win := reached[0]; learner.State != types.StateLearned || win.Highest > learner.AcceptedN {
		prevState, prevValue := learner.State, learner.LearnedValue
		learner.State = types.StateLearned
		learner.LearnedValue = win.Key
		learner.AcceptedN = win.Highest
		e.run.Emit(types.PaxosLearnerLearned, types.Params{
			"learnerId":     learner.ID,
			"value":         win.Key,
			"proposalN":     win.Highest,
			"count":         win.Count(),
			"quorum":        quorum,
			"previousState": prevState,
			"previousValue": prevValue,
		})
	}
	for _, r := range reached {
		if r.Key == learner.LearnedValue {
			continue
		}
		e.run.Emit(types.PaxosLearnerConflict, types.Params{
			"learnerId":        learner.ID,
			"currentValue":     learner.LearnedValue,
			"currentN":         learner.AcceptedN,
			"conflictingValue": r.Key,
			"conflictingN":     r.Highest,
			"conflictingCount": r.Count(),
			"quorum":           quorum,
		})
	}
	e.learnerPrev[learner.ID] = learner.State
}

func (e *Engine) acceptedTally() *engine.Tally[string] {
	tally := engine.NewTally[string]()
	add := func(m types.Message) {
		if m.Type != types.MsgAccepted || m.Payload.Value == "" || m.Payload.N == 0 {
			return
		}
		tally.Add(m.Payload.Value, m.From, m.Payload.N)
	}
	for _, m := range e.run.History().Select(engine.Filter{Type: types.MsgAccepted, AnyStep: true}) {
		add(m)
	}
	for _, m := range e.run.Pending() {
		add(m)
	}
	return tally
}
