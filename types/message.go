package types

import (
	"encoding/json"
	"fmt"
)

// MessageType identifies a protocol message.
type MessageType string

// Paxos message types
const (
	MsgPrepare  MessageType = "prepare"
	MsgPromise  MessageType = "promise"
	MsgAccept   MessageType = "accept"
	MsgAccepted MessageType = "accepted"
)

// Raft message types
const (
	MsgRequestVote   MessageType = "requestVote"
	MsgVoteGranted   MessageType = "voteGranted"
	MsgAppendEntries MessageType = "appendEntries"
)

// Payload carries the decision inputs of a message as explicit fields.
// N is the Paxos proposal number, Term the Raft term. Granted is only
// meaningful for voteGranted.
type Payload struct {
	N       uint64 `json:"n,omitempty"`
	Value   string `json:"value,omitempty"`
	Term    uint64 `json:"term,omitempty"`
	Granted bool   `json:"granted,omitempty"`
}

// Message is a directed unit of protocol communication produced at a step.
type Message struct {
	From    NodeID      `json:"from"`
	To      NodeID      `json:"to"`
	Type    MessageType `json:"type"`
	Payload Payload     `json:"payload"`
	Step    Step        `json:"step"`
}

// ID returns an identifier unique within a run.
func (m Message) ID() string {
	return fmt.Sprintf("%s-%d-%d-%d", m.Type, m.From, m.To, int(m.Step))
}

// Content renders the canonical encoded text of the message, as shown on edges.
func (m Message) Content() string {
	p := m.Payload
	switch m.Type {
	case MsgPrepare:
		return fmt.Sprintf("Prepare(n=%d)", p.N)
	case MsgPromise:
		return fmt.Sprintf("Promise(n=%d)", p.N)
	case MsgAccept:
		return fmt.Sprintf("Accept(n=%d, v=%q)", p.N, p.Value)
	case MsgAccepted:
		return fmt.Sprintf("Accepted(n=%d, v=%q)", p.N, p.Value)
	case MsgRequestVote:
		return fmt.Sprintf("RequestVote(term=%d)", p.Term)
	case MsgVoteGranted:
		return fmt.Sprintf("VoteGranted(term=%d, granted=%t)", p.Term, p.Granted)
	case MsgAppendEntries:
		return fmt.Sprintf("AppendEntries(term=%d, entries=[])", p.Term)
	default:
		return string(m.Type)
	}
}

// MarshalJSON adds the derived id and content to the encoded fields, for
// renderers that draw edges without knowing payload layouts.
func (m Message) MarshalJSON() ([]byte, error) {
	type plain Message
	return json.Marshal(struct {
		ID string `json:"id"`
		plain
		Content string `json:"content"`
	}{
		ID:      m.ID(),
		plain:   plain(m),
		Content: m.Content(),
	})
}

func (m Message) String() string {
	return fmt.Sprintf("%d->%d %s @%d", m.From, m.To, m.Content(), int(m.Step))
}

// CopyMessages copies a message slice.
func CopyMessages(msgs []Message) []Message {
	if msgs == nil {
		return nil
	}
	cp := make([]Message, len(msgs))
	copy(cp, msgs)
	return cp
}

// ProposalValue derives the value a proposer offers for proposal number n.
func ProposalValue(n uint64) string {
	return fmt.Sprintf("value%d", n)
}
