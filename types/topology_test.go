package types

import "testing"

func TestPaxosTopologyRoles(t *testing.T) {
	nodes := PaxosTopology(DefaultPositions)
	if len(nodes) != 5 {
		t.Fatalf("expected 5 nodes, got %d", len(nodes))
	}

	want := map[NodeID]Role{
		1: RoleProposer,
		2: RoleAcceptor,
		3: RoleAcceptor,
		4: RoleAcceptor,
		5: RoleLearner,
	}
	for _, n := range nodes {
		if n.Role != want[n.ID] {
			t.Errorf("node %d: expected role %s, got %s", n.ID, want[n.ID], n.Role)
		}
		if !n.Active {
			t.Errorf("node %d should start active", n.ID)
		}
		if n.State != StateIdle {
			t.Errorf("node %d: expected idle, got %s", n.ID, n.State)
		}
	}
	if nodes[2].Position != DefaultPositions[2] {
		t.Errorf("node 3 position = %v, want %v", nodes[2].Position, DefaultPositions[2])
	}
}

func TestRaftTopology(t *testing.T) {
	for _, n := range RaftTopology(DefaultPositions) {
		if n.Role != RoleNode || n.State != StateFollower || !n.Active {
			t.Errorf("unexpected initial raft node %v", n)
		}
	}
}

func TestDeactivate(t *testing.T) {
	nodes := RaftTopology(DefaultPositions)
	if !Deactivate(nodes, 3) {
		t.Fatal("node 3 should be found")
	}
	if nodes[2].Active {
		t.Error("node 3 should be inactive")
	}
	if Deactivate(nodes, 42) {
		t.Error("node 42 should not be found")
	}
}
