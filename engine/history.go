package engine

import "github.com/blockberries/stepberry/types"

// History is the append-only record of every message produced during a run.
// Step handlers look prior messages up by type and originating step; nothing
// is ever removed except by Reset.
type History struct {
	msgs []types.Message
}

// Filter selects messages from a History. Zero fields match anything.
type Filter struct {
	Type types.MessageType
	Step types.Step
	From types.NodeID
	To   types.NodeID

	// AnyStep must be set to match messages from every step, since Step 0
	// is a valid value for Step.
	AnyStep bool

	// Where is an optional payload predicate
	Where func(types.Message) bool
}

// Match reports whether m satisfies the filter.
func (f Filter) Match(m types.Message) bool {
	if f.Type != "" && m.Type != f.Type {
		return false
	}
	if !f.AnyStep && m.Step != f.Step {
		return false
	}
	if f.From != types.NoNode && m.From != f.From {
		return false
	}
	if f.To != types.NoNode && m.To != f.To {
		return false
	}
	if f.Where != nil && !f.Where(m) {
		return false
	}
	return true
}

// Append adds a batch to the end of the history.
func (h *History) Append(batch ...types.Message) {
	h.msgs = append(h.msgs, batch...)
}

// Len returns the number of recorded messages.
func (h *History) Len() int {
	return len(h.msgs)
}

// Latest returns the most recently recorded message matching the filter.
func (h *History) Latest(f Filter) (types.Message, bool) {
	for i := len(h.msgs) - 1; i >= 0; i-- {
		if f.Match(h.msgs[i]) {
			return h.msgs[i], true
		}
	}
	return types.Message{}, false
}

// Select returns every matching message in recording order.
func (h *History) Select(f Filter) []types.Message {
	var out []types.Message
	for _, m := range h.msgs {
		if f.Match(m) {
			out = append(out, m)
		}
	}
	return out
}

// Count returns the number of matching messages.
func (h *History) Count(f Filter) int {
	n := 0
	for _, m := range h.msgs {
		if f.Match(m) {
			n++
		}
	}
	return n
}

// Messages returns a copy of the whole history.
func (h *History) Messages() []types.Message {
	return types.CopyMessages(h.msgs)
}

// Reset clears the history.
func (h *History) Reset() {
	h.msgs = nil
}
