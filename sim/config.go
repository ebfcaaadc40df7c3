package sim

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"

	"github.com/blockberries/stepberry/engine"
	"github.com/blockberries/stepberry/types"
)

// Config holds driver configuration
type Config struct {
	// Positions are the layout slots of the topology; node i+1 takes slot i
	Positions []types.Position `json:"positions"`

	// Nodes deactivated by the nodeFailure scenario, per protocol
	PaxosFailedNode types.NodeID `json:"paxosFailedNode"`
	RaftFailedNode  types.NodeID `json:"raftFailedNode"`

	// Strict fails a step on a history inconsistency
	Strict bool `json:"strict"`

	Logger hclog.Logger `json:"-"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Positions:       append([]types.Position{}, types.DefaultPositions...),
		PaxosFailedNode: 4,
		RaftFailedNode:  3,
		Strict:          false,
		Logger:          hclog.NewNullLogger(),
	}
}

// ValidateBasic performs basic validation of the config
func (cfg *Config) ValidateBasic() error {
	if cfg == nil {
		return engine.ErrInvalidConfig
	}
	if len(cfg.Positions) != len(types.DefaultPositions) {
		return fmt.Errorf("%w: %d positions, want %d", engine.ErrInvalidConfig, len(cfg.Positions), len(types.DefaultPositions))
	}
	for name, id := range map[string]types.NodeID{
		"paxosFailedNode": cfg.PaxosFailedNode,
		"raftFailedNode":  cfg.RaftFailedNode,
	} {
		if id < types.NoNode || int(id) > len(cfg.Positions) {
			return fmt.Errorf("%w: %s %d outside topology", engine.ErrInvalidConfig, name, id)
		}
	}
	return nil
}

// EngineConfig derives the engine configuration.
func (cfg *Config) EngineConfig() *engine.Config {
	return &engine.Config{
		Strict: cfg.Strict,
		Logger: cfg.Logger,
	}
}

// LoadConfig reads JSON overrides on top of DefaultConfig from path.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()
	return DecodeConfig(f)
}

// DecodeConfig reads JSON overrides on top of DefaultConfig. Fields missing
// from the input keep their defaults; unknown fields are rejected.
func DecodeConfig(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", engine.ErrInvalidConfig, err)
	}
	if err := cfg.ValidateBasic(); err != nil {
		return nil, err
	}
	return cfg, nil
}
