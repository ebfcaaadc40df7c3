package types

import (
	"testing"
)

func TestParseScenario(t *testing.T) {
	tests := []struct {
		in   string
		want Scenario
	}{
		{"normal", ScenarioNormal},
		{"nodeFailure", ScenarioNodeFailure},
		{"leaderFailure", ScenarioLeaderFailure},
		{" leaderFailure ", ScenarioLeaderFailure},
		{"", ScenarioNormal},
		{"partition", ScenarioNormal},
		{"NODEFAILURE", ScenarioNormal},
	}
	for _, tt := range tests {
		if got := ParseScenario(tt.in); got != tt.want {
			t.Errorf("ParseScenario(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}

	if got := Scenario("bogus").Normalize(); got != ScenarioNormal {
		t.Errorf("Normalize of unknown scenario = %s, want normal", got)
	}
}

func TestParseProtocol(t *testing.T) {
	if p, err := ParseProtocol(" Raft "); err != nil || p != ProtocolRaft {
		t.Errorf("ParseProtocol(Raft) = %s, %v", p, err)
	}
	if _, err := ParseProtocol("pbft"); err == nil {
		t.Error("expected error for unknown protocol")
	}
}

func TestSteps(t *testing.T) {
	if got := Steps(0); len(got) != 0 {
		t.Errorf("Steps(0) should be empty, got %v", got)
	}
	got := Steps(3)
	if len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Errorf("Steps(3) = %v", got)
	}
	if got := Steps(20); len(got) != int(MaxStep) {
		t.Errorf("Steps(20) should clamp to %d steps, got %d", MaxStep, len(got))
	}
	if Step(11).Valid() || Step(-1).Valid() || !Step(0).Valid() {
		t.Error("unexpected step validity")
	}
	if !BaselineStep.IsBaseline() || Step(1).IsBaseline() {
		t.Error("unexpected baseline detection")
	}
}
