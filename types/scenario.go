package types

import "strings"

// Scenario is a pre-scripted perturbation applied to a run.
type Scenario string

const (
	// ScenarioNormal runs the protocol without failures
	ScenarioNormal Scenario = "normal"

	// ScenarioNodeFailure deactivates a designated node before step 1.
	// The node never recovers.
	ScenarioNodeFailure Scenario = "nodeFailure"

	// ScenarioLeaderFailure fails the proposer (Paxos) or the elected leader (Raft)
	// at a fixed step and drives a recovery round.
	ScenarioLeaderFailure Scenario = "leaderFailure"
)

// Scenarios lists the closed set of scenarios in display order.
var Scenarios = []Scenario{ScenarioNormal, ScenarioNodeFailure, ScenarioLeaderFailure}

// ParseScenario maps a scenario name to a Scenario.
// Anything outside the closed set is treated as ScenarioNormal.
func ParseScenario(name string) Scenario {
	switch s := Scenario(strings.TrimSpace(name)); s {
	case ScenarioNodeFailure, ScenarioLeaderFailure:
		return s
	default:
		return ScenarioNormal
	}
}

// Normalize returns the scenario itself if it is known, ScenarioNormal otherwise.
func (s Scenario) Normalize() Scenario {
	return ParseScenario(string(s))
}

func (s Scenario) String() string {
	return string(s.Normalize())
}
