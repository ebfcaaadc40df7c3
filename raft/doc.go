// Package raft simulates Raft leader election and heartbeats as a fixed
// ten-step script.
//
// Node 1 starts an election at step 1; votes are requested, granted and
// counted over steps 2-4. Steps 5-8 repeat the election when the leader
// failed, and steps 9-10 carry periodic heartbeats. Quorums are taken over
// all currently active nodes.
//
// DecideVote exposes the vote rules on their own.
package raft
