package types

// Paxos log keys
const (
	PaxosProposerFailed                    LogKey = "paxosProposerFailed"
	PaxosRecoveryProposerTakingOver        LogKey = "paxosRecoveryProposerTakingOver"
	PaxosPrepareSent                       LogKey = "paxosPrepareSent"
	PaxosOriginalProposerFailedOrInactive  LogKey = "paxosOriginalProposerFailedOrInactive"
	PaxosNoActiveInitialProposer           LogKey = "paxosNoActiveInitialProposer"
	PaxosRecoveryProposerPrepareSent       LogKey = "paxosRecoveryProposerPrepareSent"
	PaxosRecoveryWaiting                   LogKey = "paxosRecoveryWaiting"
	PaxosOriginalProposerActiveNoAction    LogKey = "paxosOriginalProposerActiveNoAction"
	PaxosStep5NoAction                     LogKey = "paxosStep5NoAction"
	PaxosAcceptorIgnoringPrepare           LogKey = "paxosAcceptorIgnoringPrepare"
	PaxosPromisesSent                      LogKey = "paxosPromisesSent"
	PaxosNoPromisesSent                    LogKey = "paxosNoPromisesSent"
	PaxosNoPrepareMessageFound             LogKey = "paxosNoPrepareMessageFound"
	PaxosProposerGotQuorum                 LogKey = "paxosProposerGotQuorum"
	PaxosProposerNoQuorum                  LogKey = "paxosProposerNoQuorum"
	PaxosRecoveryProposerFailedOrNoPrepare LogKey = "paxosRecoveryProposerFailedOrNoPrepare"
	PaxosProposerInactiveOrNotFound        LogKey = "paxosProposerInactiveOrNotFound"
	PaxosNoValidPrepareMessageForAccept    LogKey = "paxosNoValidPrepareMessageForAccept"
	PaxosAcceptSent                        LogKey = "paxosAcceptSent"
	PaxosProposerIdleAfterAccept           LogKey = "paxosProposerIdleAfterAccept"
	PaxosCannotSendAcceptDueToNoQuorum     LogKey = "paxosCannotSendAcceptDueToNoQuorum"
	PaxosAcceptorIgnoringAccept            LogKey = "paxosAcceptorIgnoringAccept"
	PaxosAcceptedAndNotified               LogKey = "paxosAcceptedAndNotified"
	PaxosNoAcceptorsAccepted               LogKey = "paxosNoAcceptorsAccepted"
	PaxosNoAcceptMessageFound              LogKey = "paxosNoAcceptMessageFound"
	PaxosNoActiveLearner                   LogKey = "paxosNoActiveLearner"
	PaxosEndOfSimulation                   LogKey = "paxosEndOfSimulation"
	PaxosLearnerLearned                    LogKey = "paxosLearnerLearned"
	PaxosLearnerConflict                   LogKey = "paxosLearnerConflict"
	PaxosLearnerWaitingQuorum              LogKey = "paxosLearnerWaitingQuorum"

	// PaxosHistoryInconsistent is emitted in place of an action when a step
	// finds history that cross-step bookkeeping should not have produced.
	PaxosHistoryInconsistent LogKey = "paxosHistoryInconsistent"
)

// Raft log keys
const (
	RaftLeaderFailed                      LogKey = "raftLeaderFailed"
	RaftLeaderExists                      LogKey = "raftLeaderExists"
	RaftCandidateElectedSelf              LogKey = "raftCandidateElectedSelf"
	RaftInitialCandidateInactive          LogKey = "raftInitialCandidateInactive"
	RaftLeaderSendsHeartbeats             LogKey = "raftLeaderSendsHeartbeats"
	RaftLeaderSentHeartbeatsCount         LogKey = "raftLeaderSentHeartbeatsCount"
	RaftLeaderNoFollowers                 LogKey = "raftLeaderNoFollowers"
	RaftRecoveryCandidateElectedSelf      LogKey = "raftRecoveryCandidateElectedSelf"
	RaftRecoveryNoFollowers               LogKey = "raftRecoveryNoFollowers"
	RaftNoLeaderWaiting                   LogKey = "raftNoLeaderWaiting"
	RaftCandidateRequestingVotes          LogKey = "raftCandidateRequestingVotes"
	RaftCandidateNoNodesToRequest         LogKey = "raftCandidateNoNodesToRequest"
	RaftLeaderExistsNoRequestVote         LogKey = "raftLeaderExistsNoRequestVote"
	RaftRecoveryNoCandidate               LogKey = "raftRecoveryNoCandidate"
	RaftNoCandidateWaiting                LogKey = "raftNoCandidateWaiting"
	RaftProcessingRequestVotes            LogKey = "raftProcessingRequestVotes"
	RaftVoterInactive                     LogKey = "raftVoterInactive"
	RaftCandidateNotFound                 LogKey = "raftCandidateNotFound"
	RaftVoterUpdatingTerm                 LogKey = "raftVoterUpdatingTerm"
	RaftVoteGranted                       LogKey = "raftVoteGranted"
	RaftVoteDenied                        LogKey = "raftVoteDenied"
	RaftCandidateVoteSummary              LogKey = "raftCandidateVoteSummary"
	RaftNoRequestVotesFound               LogKey = "raftNoRequestVotesFound"
	RaftLeaderExistsVoteGrantSkipped      LogKey = "raftLeaderExistsVoteGrantSkipped"
	RaftCheckingQuorum                    LogKey = "raftCheckingQuorum"
	RaftCandidateVoteCheck                LogKey = "raftCandidateVoteCheck"
	RaftNewLeaderElected                  LogKey = "raftNewLeaderElected"
	RaftRecoveryElectionSuccess           LogKey = "raftRecoveryElectionSuccess"
	RaftNewLeaderSendsHeartbeats          LogKey = "raftNewLeaderSendsHeartbeats"
	RaftNewLeaderNoFollowers              LogKey = "raftNewLeaderNoFollowers"
	RaftCandidateNoQuorum                 LogKey = "raftCandidateNoQuorum"
	RaftLeaderFailedMaybe                 LogKey = "raftLeaderFailedMaybe"
	RaftNoQuorumElectionFailed            LogKey = "raftNoQuorumElectionFailed"
	RaftNoActiveCandidatesFound           LogKey = "raftNoActiveCandidatesFound"
	RaftScenarioTriggerLeaderFail         LogKey = "raftScenarioTriggerLeaderFail"
	RaftLeaderPeriodicHeartbeats          LogKey = "raftLeaderPeriodicHeartbeats"
	RaftFollowerIgnoringOldHeartbeat      LogKey = "raftFollowerIgnoringOldHeartbeat"
	RaftFollowerUpdatingTermFromHeartbeat LogKey = "raftFollowerUpdatingTermFromHeartbeat"
	RaftFollowerReceivedHeartbeat         LogKey = "raftFollowerReceivedHeartbeat"
	RaftNoLeaderElectionOngoing           LogKey = "raftNoLeaderElectionOngoing"
	RaftNoLeaderElectionFailed            LogKey = "raftNoLeaderElectionFailed"
	RaftEndOfSimulation                   LogKey = "raftEndOfSimulation"
)

// Reason keys nested inside RaftVoteDenied
const (
	RaftVoteDeniedReasonGeneric      LogKey = "raftVoteDeniedReasonGeneric"
	RaftVoteDeniedReasonHigherTerm   LogKey = "raftVoteDeniedReasonHigherTerm"
	RaftVoteDeniedReasonAlreadyVoted LogKey = "raftVoteDeniedReasonAlreadyVoted"
)

// NoLearnedValue is reported at the end of a Paxos run when nothing was learned.
const NoLearnedValue = "none"
