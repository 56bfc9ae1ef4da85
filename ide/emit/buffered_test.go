package emit

import "testing"

func TestBufferedEmitterGetHistoryPreservesOrder(t *testing.T) {
	b := NewBufferedEmitter()
	b.Emit(Event{RunID: "r1", Msg: "propagate", Node: "n1"})
	b.Emit(Event{RunID: "r1", Msg: "propagate", Node: "n2"})
	b.Emit(Event{RunID: "r2", Msg: "propagate", Node: "n3"})

	history := b.GetHistory("r1")
	if len(history) != 2 || history[0].Node != "n1" || history[1].Node != "n2" {
		t.Fatalf("GetHistory(r1) = %v, want [n1 n2] in order", history)
	}
	if len(b.GetHistory("r2")) != 1 {
		t.Fatalf("GetHistory(r2) should have its own events, unaffected by r1")
	}
}

func TestBufferedEmitterGetHistoryWithFilter(t *testing.T) {
	b := NewBufferedEmitter()
	b.Emit(Event{RunID: "r1", Msg: "propagate", Node: "n1", Method: "main"})
	b.Emit(Event{RunID: "r1", Msg: "summary_reuse", Node: "n1", Method: "main"})
	b.Emit(Event{RunID: "r1", Msg: "propagate", Node: "n2", Method: "callee"})

	filtered := b.GetHistoryWithFilter("r1", HistoryFilter{Msg: "propagate"})
	if len(filtered) != 2 {
		t.Fatalf("filter by Msg = %v, want 2 events", filtered)
	}

	filtered = b.GetHistoryWithFilter("r1", HistoryFilter{Node: "n1", Msg: "propagate"})
	if len(filtered) != 1 {
		t.Fatalf("filter by Node+Msg = %v, want 1 event", filtered)
	}
}

func TestBufferedEmitterClearSingleRun(t *testing.T) {
	b := NewBufferedEmitter()
	b.Emit(Event{RunID: "r1", Msg: "propagate"})
	b.Emit(Event{RunID: "r2", Msg: "propagate"})

	b.Clear("r1")
	if len(b.GetHistory("r1")) != 0 {
		t.Fatal("Clear(r1) should remove r1's history")
	}
	if len(b.GetHistory("r2")) != 1 {
		t.Fatal("Clear(r1) should not affect r2's history")
	}
}

func TestBufferedEmitterClearAll(t *testing.T) {
	b := NewBufferedEmitter()
	b.Emit(Event{RunID: "r1", Msg: "propagate"})
	b.Emit(Event{RunID: "r2", Msg: "propagate"})

	b.Clear("")
	if len(b.GetHistory("r1")) != 0 || len(b.GetHistory("r2")) != 0 {
		t.Fatal("Clear(\"\") should remove every run's history")
	}
}

func TestBufferedEmitterEmitBatch(t *testing.T) {
	b := NewBufferedEmitter()
	err := b.EmitBatch(nil, []Event{
		{RunID: "r1", Msg: "propagate"},
		{RunID: "r1", Msg: "propagate"},
	})
	if err != nil {
		t.Fatalf("EmitBatch: %v", err)
	}
	if len(b.GetHistory("r1")) != 2 {
		t.Fatalf("GetHistory after EmitBatch = %v, want 2 events", b.GetHistory("r1"))
	}
}
