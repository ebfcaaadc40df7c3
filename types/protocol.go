package types

import (
	"fmt"
	"strings"
)

// Protocol names a simulated consensus protocol.
type Protocol string

const (
	ProtocolPaxos Protocol = "paxos"
	ProtocolRaft  Protocol = "raft"
)

// Protocols lists the simulated protocols in display order.
var Protocols = []Protocol{ProtocolPaxos, ProtocolRaft}

// ParseProtocol parses a protocol name, case-insensitively.
func ParseProtocol(name string) (Protocol, error) {
	switch p := Protocol(strings.ToLower(strings.TrimSpace(name))); p {
	case ProtocolPaxos, ProtocolRaft:
		return p, nil
	default:
		return "", fmt.Errorf("unknown protocol %q", name)
	}
}
