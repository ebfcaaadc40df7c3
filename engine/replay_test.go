package engine

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/blockberries/stepberry/types"
)

func TestReplayToStep(t *testing.T) {
	r := NewReplayer(nil)
	snap, err := r.Replay(context.Background(), newEchoEngine(), testTopology(), types.ScenarioNormal, 4)
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if snap.Step != 4 {
		t.Errorf("expected step 4, got %d", snap.Step)
	}
	if len(snap.Messages) != 4 {
		t.Errorf("expected only step-4 messages, got %d", len(snap.Messages))
	}
	if len(snap.Log) != 4 {
		t.Errorf("expected cumulative log of 4, got %d", len(snap.Log))
	}
	if snap.HistorySize != 16 {
		t.Errorf("expected history size 16, got %d", snap.HistorySize)
	}
}

func TestReplayBaseline(t *testing.T) {
	snap, err := NewReplayer(nil).Replay(context.Background(), newEchoEngine(), testTopology(), types.ScenarioNormal, 0)
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if len(snap.Messages) != 0 || len(snap.Log) != 0 {
		t.Errorf("baseline should have no messages or log, got %+v", snap)
	}
	if len(snap.Nodes) != 5 {
		t.Errorf("baseline should carry the topology, got %d nodes", len(snap.Nodes))
	}
}

func TestReplayDeterministic(t *testing.T) {
	r := NewReplayer(nil)
	eng := newEchoEngine()
	a, err := r.Replay(context.Background(), eng, testTopology(), types.ScenarioNormal, 7)
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	// same engine, replayed again from scratch
	b, err := r.Replay(context.Background(), eng, testTopology(), types.ScenarioNormal, 7)
	if err != nil {
		t.Fatalf("second replay failed: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("replays of the same input differ")
	}
}

func TestTimelineLogIsMonotonic(t *testing.T) {
	snaps, err := NewReplayer(nil).Timeline(context.Background(), newEchoEngine(), testTopology(), types.ScenarioNormal, types.MaxStep)
	if err != nil {
		t.Fatalf("timeline failed: %v", err)
	}
	if len(snaps) != int(types.MaxStep)+1 {
		t.Fatalf("expected %d snapshots, got %d", types.MaxStep+1, len(snaps))
	}
	for i := 1; i < len(snaps); i++ {
		prev, cur := snaps[i-1].Log, snaps[i].Log
		if len(cur) < len(prev) {
			t.Fatalf("log shrank at step %d", i)
		}
		if !reflect.DeepEqual(prev, cur[:len(prev)]) {
			t.Errorf("log at step %d does not extend step %d", i, i-1)
		}
	}
}

func TestReplayInvalidTarget(t *testing.T) {
	_, err := NewReplayer(nil).Replay(context.Background(), newEchoEngine(), testTopology(), types.ScenarioNormal, 11)
	if !errors.Is(err, ErrInvalidStep) {
		t.Errorf("expected ErrInvalidStep, got %v", err)
	}
}

func TestReplayCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewReplayer(nil).Replay(ctx, newEchoEngine(), testTopology(), types.ScenarioNormal, 5)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestConfigNamedLogger(t *testing.T) {
	var cfg *Config
	if err := cfg.ValidateBasic(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("nil config should be invalid, got %v", err)
	}
	if cfg.NamedLogger("x") == nil {
		t.Error("nil config should still yield a logger")
	}
	if err := DefaultConfig().ValidateBasic(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}
