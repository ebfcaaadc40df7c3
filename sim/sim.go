package sim

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/blockberries/stepberry/engine"
	"github.com/blockberries/stepberry/paxos"
	"github.com/blockberries/stepberry/raft"
	"github.com/blockberries/stepberry/trace"
	"github.com/blockberries/stepberry/types"
)

// Simulator turns (protocol, scenario, step) into a snapshot. Every call
// replays a fresh engine from the baseline, so calls are independent and a
// Simulator is safe for concurrent use.
type Simulator struct {
	cfg      *Config
	logger   hclog.Logger
	replayer *engine.Replayer
}

// Comparison holds the snapshots of both protocols for the same scenario and step.
type Comparison struct {
	Paxos *engine.Snapshot `json:"paxos"`
	Raft  *engine.Snapshot `json:"raft"`
}

// New creates a simulator. A nil config uses DefaultConfig.
func New(cfg *Config) (*Simulator, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.ValidateBasic(); err != nil {
		return nil, err
	}
	own := *cfg
	if own.Logger == nil {
		own.Logger = hclog.NewNullLogger()
	}
	logger := own.Logger.Named("sim")
	return &Simulator{
		cfg:      &own,
		logger:   logger,
		replayer: engine.NewReplayer(logger),
	}, nil
}

// Topology builds the initial topology of a protocol with the scenario's
// pre-step perturbation applied.
func (s *Simulator) Topology(p types.Protocol, scenario types.Scenario) ([]types.Node, error) {
	var (
		nodes  []types.Node
		failed types.NodeID
	)
	switch p {
	case types.ProtocolPaxos:
		nodes = types.PaxosTopology(s.cfg.Positions)
		failed = s.cfg.PaxosFailedNode
	case types.ProtocolRaft:
		nodes = types.RaftTopology(s.cfg.Positions)
		failed = s.cfg.RaftFailedNode
	default:
		return nil, fmt.Errorf("unknown protocol %q", p)
	}
	if scenario.Normalize() == types.ScenarioNodeFailure && failed != types.NoNode {
		types.Deactivate(nodes, failed)
	}
	return nodes, nil
}

// NewEngine creates a fresh engine for a protocol.
func (s *Simulator) NewEngine(p types.Protocol) (engine.Engine, error) {
	switch p {
	case types.ProtocolPaxos:
		return paxos.NewEngine(s.cfg.EngineConfig()), nil
	case types.ProtocolRaft:
		return raft.NewEngine(s.cfg.EngineConfig()), nil
	default:
		return nil, fmt.Errorf("unknown protocol %q", p)
	}
}

// Run replays a protocol under scenario up to step and returns the snapshot.
func (s *Simulator) Run(ctx context.Context, p types.Protocol, scenario types.Scenario, step types.Step) (*engine.Snapshot, error) {
	eng, topology, err := s.prepare(p, scenario)
	if err != nil {
		return nil, err
	}
	snap, err := s.replayer.Replay(ctx, eng, topology, scenario, step)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	snap.Protocol = p
	return snap, nil
}

// Timeline returns the snapshots of steps 0..MaxStep.
func (s *Simulator) Timeline(ctx context.Context, p types.Protocol, scenario types.Scenario) ([]*engine.Snapshot, error) {
	eng, topology, err := s.prepare(p, scenario)
	if err != nil {
		return nil, err
	}
	snaps, err := s.replayer.Timeline(ctx, eng, topology, scenario, types.MaxStep)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	for _, snap := range snaps {
		snap.Protocol = p
	}
	return snaps, nil
}

// Compare runs both protocols concurrently on independent engines.
func (s *Simulator) Compare(ctx context.Context, scenario types.Scenario, step types.Step) (*Comparison, error) {
	var cmp Comparison
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		snap, err := s.Run(gctx, types.ProtocolPaxos, scenario, step)
		cmp.Paxos = snap
		return err
	})
	g.Go(func() error {
		snap, err := s.Run(gctx, types.ProtocolRaft, scenario, step)
		cmp.Raft = snap
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &cmp, nil
}

// Export writes the full timeline of each protocol to w. Timelines are
// computed concurrently and written in the order of protocols.
func (s *Simulator) Export(ctx context.Context, w *trace.Writer, protocols []types.Protocol, scenario types.Scenario) error {
	timelines := make([][]*engine.Snapshot, len(protocols))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range protocols {
		i, p := i, p
		g.Go(func() error {
			snaps, err := s.Timeline(gctx, p, scenario)
			timelines[i] = snaps
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, snaps := range timelines {
		for _, snap := range snaps {
			if err := w.Write(snap); err != nil {
				return fmt.Errorf("failed to write %s %s: %w", protocols[i], snap.Step, err)
			}
		}
		s.logger.Debug("exported timeline", "protocol", protocols[i], "scenario", scenario.Normalize(), "frames", len(snaps))
	}
	return w.Flush()
}

func (s *Simulator) prepare(p types.Protocol, scenario types.Scenario) (engine.Engine, []types.Node, error) {
	topology, err := s.Topology(p, scenario)
	if err != nil {
		return nil, nil, err
	}
	eng, err := s.NewEngine(p)
	if err != nil {
		return nil, nil, err
	}
	return eng, topology, nil
}
