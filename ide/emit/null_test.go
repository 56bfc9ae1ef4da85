package emit

import "testing"

func TestNullEmitterDiscardsEverything(t *testing.T) {
	var e Emitter = NullEmitter{}
	e.Emit(Event{RunID: "r1", Msg: "propagate"})
	if err := e.EmitBatch(nil, []Event{{RunID: "r1"}}); err != nil {
		t.Fatalf("EmitBatch: %v", err)
	}
	if err := e.Flush(nil); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}
