package engine

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/blockberries/stepberry/types"
)

// Snapshot is the state of a run at a selected step, as handed to a renderer.
type Snapshot struct {
	Protocol types.Protocol `json:"protocol,omitempty"`
	Scenario types.Scenario `json:"scenario"`
	Step     types.Step     `json:"step"`

	// Nodes after the step, ordered by id
	Nodes []types.Node `json:"nodes"`

	// Messages produced at the selected step only
	Messages []types.Message `json:"messages"`

	// Log is cumulative up to and including the selected step
	Log []types.LogRecord `json:"log"`

	// HistorySize is the number of messages recorded up to the step
	HistorySize int `json:"historySize"`
}

// Replayer reconstructs the state at a step by replaying an engine from the
// baseline. Every replay starts from Initialize, so jumping to a step is
// idempotent and restartable.
type Replayer struct {
	logger hclog.Logger
}

// NewReplayer creates a replayer. A nil logger discards diagnostics.
func NewReplayer(logger hclog.Logger) *Replayer {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Replayer{logger: logger}
}

// Replay seeds eng with topology and runs steps 1..target under scenario.
// Cancelling ctx discards the replay; no partial state is returned.
func (r *Replayer) Replay(
	ctx context.Context,
	eng Engine,
	topology []types.Node,
	scenario types.Scenario,
	target types.Step,
) (*Snapshot, error) {
	var last *Snapshot
	err := r.replay(ctx, eng, topology, scenario, target, func(s *Snapshot) {
		last = s
	})
	if err != nil {
		return nil, err
	}
	return last, nil
}

// Timeline is like Replay but returns the snapshot of every step 0..target.
func (r *Replayer) Timeline(
	ctx context.Context,
	eng Engine,
	topology []types.Node,
	scenario types.Scenario,
	target types.Step,
) ([]*Snapshot, error) {
	var out []*Snapshot
	err := r.replay(ctx, eng, topology, scenario, target, func(s *Snapshot) {
		out = append(out, s)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Replayer) replay(
	ctx context.Context,
	eng Engine,
	topology []types.Node,
	scenario types.Scenario,
	target types.Step,
	emit func(*Snapshot),
) error {
	if !target.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidStep, target)
	}
	scenario = scenario.Normalize()

	if err := eng.Initialize(topology); err != nil {
		return fmt.Errorf("failed to initialize engine: %w", err)
	}

	base, err := eng.SimulateStep(types.BaselineStep, scenario)
	if err != nil {
		return fmt.Errorf("failed to reset engine: %w", err)
	}
	emit(&Snapshot{
		Scenario:    scenario,
		Step:        types.BaselineStep,
		Nodes:       base.Nodes,
		Messages:    base.Messages,
		Log:         []types.LogRecord{},
		HistorySize: base.HistorySize,
	})

	cumulative := []types.LogRecord{}
	for _, step := range types.Steps(target) {
		if err := ctx.Err(); err != nil {
			return err
		}

		res, err := eng.SimulateStep(step, scenario)
		if err != nil {
			return fmt.Errorf("failed to simulate %s: %w", step, err)
		}
		cumulative = append(cumulative, res.Log...)

		r.logger.Debug("replayed step",
			"step", int(step),
			"scenario", scenario,
			"messages", len(res.Messages),
			"events", len(res.Log),
			"history", res.HistorySize)

		emit(&Snapshot{
			Scenario:    scenario,
			Step:        step,
			Nodes:       res.Nodes,
			Messages:    res.Messages,
			Log:         types.CopyLog(cumulative),
			HistorySize: res.HistorySize,
		})
	}
	return nil
}
