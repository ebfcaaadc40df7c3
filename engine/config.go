package engine

import "github.com/hashicorp/go-hclog"

// Config holds configuration shared by the protocol engines
type Config struct {
	// Strict makes history inconsistencies fail the step with
	// ErrInconsistentHistory instead of degrading to a log record.
	Strict bool

	// Logger receives diagnostics. Protocol events go to the symbolic log,
	// not here.
	Logger hclog.Logger
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Strict: false,
		Logger: hclog.NewNullLogger(),
	}
}

// ValidateBasic performs basic validation of the config
func (cfg *Config) ValidateBasic() error {
	if cfg == nil {
		return ErrInvalidConfig
	}
	return nil
}

// NamedLogger returns the configured logger scoped to name, or a null logger.
func (cfg *Config) NamedLogger(name string) hclog.Logger {
	if cfg == nil || cfg.Logger == nil {
		return hclog.NewNullLogger()
	}
	return cfg.Logger.Named(name)
}
