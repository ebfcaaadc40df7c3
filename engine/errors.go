package engine

import "errors"

// Engine errors
var (
	ErrNotInitialized      = errors.New("engine not initialized")
	ErrInvalidStep         = errors.New("invalid step")
	ErrStepOutOfOrder      = errors.New("step out of order")
	ErrIncompleteScript    = errors.New("step script has no phase for step")
	ErrInconsistentHistory = errors.New("inconsistent message history")
	ErrInvalidConfig       = errors.New("invalid engine config")
)
