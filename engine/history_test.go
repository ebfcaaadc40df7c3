package engine

import (
	"testing"

	"github.com/blockberries/stepberry/types"
)

func TestHistoryFilter(t *testing.T) {
	var h History
	h.Append(
		types.Message{From: 1, To: 2, Type: types.MsgPrepare, Payload: types.Payload{N: 1}, Step: 1},
		types.Message{From: 1, To: 3, Type: types.MsgPrepare, Payload: types.Payload{N: 1}, Step: 1},
		types.Message{From: 2, To: 1, Type: types.MsgPromise, Payload: types.Payload{N: 1}, Step: 2},
		types.Message{From: 3, To: 1, Type: types.MsgPromise, Payload: types.Payload{N: 0}, Step: 2},
		types.Message{From: 2, To: 2, Type: types.MsgPrepare, Payload: types.Payload{N: 2}, Step: 5},
	)

	if h.Len() != 5 {
		t.Fatalf("expected 5 messages, got %d", h.Len())
	}
	if got := h.Count(Filter{Type: types.MsgPrepare, Step: 1}); got != 2 {
		t.Errorf("expected 2 prepares at step 1, got %d", got)
	}
	if got := h.Count(Filter{Type: types.MsgPrepare, AnyStep: true}); got != 3 {
		t.Errorf("expected 3 prepares overall, got %d", got)
	}

	latest, ok := h.Latest(Filter{Type: types.MsgPrepare, AnyStep: true})
	if !ok || latest.Step != 5 || latest.Payload.N != 2 {
		t.Errorf("unexpected latest prepare %v", latest)
	}
	if _, ok := h.Latest(Filter{Type: types.MsgAccept, AnyStep: true}); ok {
		t.Error("no accept was recorded")
	}

	withN := Filter{
		Type:  types.MsgPromise,
		Step:  2,
		To:    1,
		Where: func(m types.Message) bool { return m.Payload.N == 1 },
	}
	got := h.Select(withN)
	if len(got) != 1 || got[0].From != 2 {
		t.Errorf("payload predicate selected %v", got)
	}

	// step 0 is a value, not a wildcard
	if got := h.Count(Filter{Type: types.MsgPrepare}); got != 0 {
		t.Errorf("zero Step should only match step 0, got %d", got)
	}

	h.Reset()
	if h.Len() != 0 {
		t.Error("reset should clear history")
	}
}

func TestHistoryMessagesIsCopy(t *testing.T) {
	var h History
	h.Append(types.Message{From: 1, To: 2, Type: types.MsgPrepare, Step: 1})
	msgs := h.Messages()
	msgs[0].From = 9
	if m, _ := h.Latest(Filter{AnyStep: true}); m.From != 1 {
		t.Error("Messages should return a copy")
	}
}
