package emit

import (
	"context"
	"sync"
)

// BufferedEmitter stores events in memory, organized by runID, so a
// solver run's history can be queried and filtered after the fact.
//
// Unbounded: long-running or high-volume runs should Clear consumed runs
// or use LogEmitter/OTelEmitter instead.
type BufferedEmitter struct {
	mu     sync.RWMutex
	events map[string][]Event
}

// HistoryFilter narrows GetHistoryWithFilter results. Empty fields place
// no constraint; set fields combine with AND.
type HistoryFilter struct {
	Node   string
	Method string
	Msg    string
}

// NewBufferedEmitter returns an empty, ready-to-use BufferedEmitter.
func NewBufferedEmitter() *BufferedEmitter {
	return &BufferedEmitter{events: make(map[string][]Event)}
}

func (b *BufferedEmitter) Emit(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events[event.RunID] = append(b.events[event.RunID], event)
}

func (b *BufferedEmitter) EmitBatch(_ context.Context, events []Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range events {
		b.events[e.RunID] = append(b.events[e.RunID], e)
	}
	return nil
}

// Flush is a no-op; BufferedEmitter never holds events outside its map.
func (b *BufferedEmitter) Flush(_ context.Context) error { return nil }

// GetHistory returns a copy of all events recorded for runID, in emission
// order.
func (b *BufferedEmitter) GetHistory(runID string) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	events := b.events[runID]
	result := make([]Event, len(events))
	copy(result, events)
	return result
}

// GetHistoryWithFilter returns the events for runID matching filter, in
// emission order.
func (b *BufferedEmitter) GetHistoryWithFilter(runID string, filter HistoryFilter) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var result []Event
	for _, e := range b.events[runID] {
		if filter.Node != "" && e.Node != filter.Node {
			continue
		}
		if filter.Method != "" && e.Method != filter.Method {
			continue
		}
		if filter.Msg != "" && e.Msg != filter.Msg {
			continue
		}
		result = append(result, e)
	}
	return result
}

// Clear removes stored events for runID, or all events when runID is
// empty.
func (b *BufferedEmitter) Clear(runID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if runID == "" {
		b.events = make(map[string][]Event)
		return
	}
	delete(b.events, runID)
}
