package sim

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/blockberries/stepberry/engine"
	"github.com/blockberries/stepberry/trace"
	"github.com/blockberries/stepberry/types"
)

func newTestSimulator(t *testing.T) *Simulator {
	t.Helper()
	s, err := New(nil)
	if err != nil {
		t.Fatalf("failed to create simulator: %v", err)
	}
	return s
}

func TestTopologyPerturbation(t *testing.T) {
	s := newTestSimulator(t)

	paxos, err := s.Topology(types.ProtocolPaxos, types.ScenarioNodeFailure)
	if err != nil {
		t.Fatalf("topology failed: %v", err)
	}
	for _, n := range paxos {
		if n.Active == (n.ID == 4) {
			t.Errorf("paxos node %d active = %v", n.ID, n.Active)
		}
	}

	raft, err := s.Topology(types.ProtocolRaft, types.ScenarioNodeFailure)
	if err != nil {
		t.Fatalf("topology failed: %v", err)
	}
	for _, n := range raft {
		if n.Active == (n.ID == 3) {
			t.Errorf("raft node %d active = %v", n.ID, n.Active)
		}
	}

	normal, _ := s.Topology(types.ProtocolRaft, types.ScenarioLeaderFailure)
	for _, n := range normal {
		if !n.Active {
			t.Errorf("leaderFailure should not deactivate node %d up front", n.ID)
		}
	}

	if _, err := s.Topology("pbft", types.ScenarioNormal); err == nil {
		t.Error("expected error for unknown protocol")
	}
}

func TestRunIsIdempotent(t *testing.T) {
	s := newTestSimulator(t)
	ctx := context.Background()

	a, err := s.Run(ctx, types.ProtocolPaxos, types.ScenarioLeaderFailure, 8)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	// jump around, then come back
	if _, err := s.Run(ctx, types.ProtocolPaxos, types.ScenarioLeaderFailure, 2); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	b, err := s.Run(ctx, types.ProtocolPaxos, types.ScenarioLeaderFailure, 8)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("replaying the same step gave different snapshots")
	}
	if a.Protocol != types.ProtocolPaxos || a.Step != 8 {
		t.Errorf("unexpected snapshot header %s %d", a.Protocol, a.Step)
	}
}

func TestRunUnknownScenarioIsNormal(t *testing.T) {
	s := newTestSimulator(t)
	ctx := context.Background()

	a, err := s.Run(ctx, types.ProtocolRaft, types.Scenario("partition"), 10)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	b, err := s.Run(ctx, types.ProtocolRaft, types.ScenarioNormal, 10)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("unknown scenario should behave as normal")
	}
}

func TestCompareMatchesRun(t *testing.T) {
	s := newTestSimulator(t)
	ctx := context.Background()

	for _, sc := range types.Scenarios {
		cmp, err := s.Compare(ctx, sc, 6)
		if err != nil {
			t.Fatalf("%s: compare failed: %v", sc, err)
		}
		paxos, _ := s.Run(ctx, types.ProtocolPaxos, sc, 6)
		raft, _ := s.Run(ctx, types.ProtocolRaft, sc, 6)
		if !reflect.DeepEqual(cmp.Paxos, paxos) {
			t.Errorf("%s: paxos comparison differs from run", sc)
		}
		if !reflect.DeepEqual(cmp.Raft, raft) {
			t.Errorf("%s: raft comparison differs from run", sc)
		}
	}
}

func TestTimeline(t *testing.T) {
	s := newTestSimulator(t)
	snaps, err := s.Timeline(context.Background(), types.ProtocolRaft, types.ScenarioNormal)
	if err != nil {
		t.Fatalf("timeline failed: %v", err)
	}
	if len(snaps) != int(types.MaxStep)+1 {
		t.Fatalf("expected %d snapshots, got %d", types.MaxStep+1, len(snaps))
	}
	for i, snap := range snaps {
		if snap.Step != types.Step(i) || snap.Protocol != types.ProtocolRaft {
			t.Errorf("snapshot %d header = %s %d", i, snap.Protocol, snap.Step)
		}
	}
	last := snaps[len(snaps)-1].Log
	if last[len(last)-1].Key != types.RaftEndOfSimulation {
		t.Errorf("timeline should end with the end record, got %s", last[len(last)-1].Key)
	}
}

func TestExport(t *testing.T) {
	s := newTestSimulator(t)
	var buf bytes.Buffer
	w := trace.NewWriter(&buf)
	if err := s.Export(context.Background(), w, types.Protocols, types.ScenarioNodeFailure); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	snaps, err := trace.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	per := int(types.MaxStep) + 1
	if len(snaps) != 2*per {
		t.Fatalf("expected %d frames, got %d", 2*per, len(snaps))
	}
	if snaps[0].Protocol != types.ProtocolPaxos || snaps[per].Protocol != types.ProtocolRaft {
		t.Errorf("frames out of protocol order: %s, %s", snaps[0].Protocol, snaps[per].Protocol)
	}
	if snaps[per-1].Step != types.MaxStep || snaps[per].Step != types.BaselineStep {
		t.Error("frames out of step order")
	}
}

func TestCancelledRun(t *testing.T) {
	s := newTestSimulator(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Compare(ctx, types.ScenarioNormal, 10); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.ValidateBasic(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	cfg.RaftFailedNode = 9
	if err := cfg.ValidateBasic(); !errors.Is(err, engine.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
	if _, err := New(cfg); err == nil {
		t.Error("New should reject an invalid config")
	}

	cfg = DefaultConfig()
	cfg.Positions = nil
	if err := cfg.ValidateBasic(); !errors.Is(err, engine.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for no positions, got %v", err)
	}

	for _, n := range []int{4, 6} {
		cfg = DefaultConfig()
		cfg.Positions = make([]types.Position, n)
		if err := cfg.ValidateBasic(); !errors.Is(err, engine.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig for %d positions, got %v", n, err)
		}
	}
}

func TestNewLeavesConfigUntouched(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logger = nil
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	if cfg.Logger != nil {
		t.Error("New should not fill in the caller's logger")
	}
	if _, err := s.Run(context.Background(), types.ProtocolRaft, types.ScenarioNormal, 2); err != nil {
		t.Errorf("run without logger failed: %v", err)
	}
}

func TestDecodeConfig(t *testing.T) {
	cfg, err := DecodeConfig(strings.NewReader(`{"raftFailedNode": 5, "strict": true}`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if cfg.RaftFailedNode != 5 || !cfg.Strict {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.PaxosFailedNode != 4 || len(cfg.Positions) != 5 {
		t.Errorf("defaults lost: %+v", cfg)
	}

	if _, err := DecodeConfig(strings.NewReader(`{"bogus": 1}`)); !errors.Is(err, engine.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for unknown field, got %v", err)
	}
	if _, err := DecodeConfig(strings.NewReader("")); err != nil {
		t.Errorf("empty input should keep defaults: %v", err)
	}
}
