// Package paxos simulates single-decree Paxos as a fixed ten-step script.
//
// Node 1 proposes, node 5 learns and the nodes in between accept. Steps 1-4
// run the first round (prepare, promise, accept, accepted), steps 5-8 a
// recovery round and steps 9-10 let the learner settle. Quorums are taken over
// the currently active acceptors.
//
// Under leaderFailure the proposer fails at step 3 and the lowest-id active
// acceptor takes over from step 5 with a fresh proposal number.
package paxos
