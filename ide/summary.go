package ide

import "sync"

// summaryEdge is an end summary: from (sp,d1), calling into method m, the
// tabulation observed a realizable path reaching (eP,d2) by the time the
// callee's exit was processed.
type summaryEdge[N comparable, D comparable] struct {
	sp, eP N
	d1, d2 D
}

// incomingEntry records that callSite, with incoming fact d1, called into
// the method starting at sp with callee-entry fact d3.
type incomingEntry[N comparable, D comparable] struct {
	callSite N
	d1       D
	sp       N
	d3       D
}

// summaryStore holds the EndSummary and Incoming tables used by call/exit
// processing. They are guarded by one lock rather than two: exit
// processing reads Incoming and writes EndSummary for the same (sp,d3) in
// one step, and call processing reads EndSummary and writes Incoming for
// the same (sp,d3) in one step, so splitting the lock would only add
// contention without removing a critical section.
type summaryStore[N comparable, D comparable] struct {
	mu sync.Mutex

	// endSummary[sp][d3] -> set of summary edges computed for calls into
	// procedure starting at sp with entry fact d3.
	endSummary map[N]map[D][]summaryEdge[N, D]

	// incoming[sp][d3] -> call sites (with their d1) that reached sp with
	// entry fact d3 and are awaiting its end summary.
	incoming map[N]map[D][]incomingEntry[N, D]
}

func newSummaryStore[N comparable, D comparable]() *summaryStore[N, D] {
	return &summaryStore[N, D]{
		endSummary: make(map[N]map[D][]summaryEdge[N, D]),
		incoming:   make(map[N]map[D][]incomingEntry[N, D]),
	}
}

// AddIncoming records (callSite,d1) as awaiting the summary of (sp,d3), and
// returns a snapshot of any end summaries already computed for (sp,d3) so
// the caller can apply them immediately without re-taking the lock.
func (s *summaryStore[N, D]) AddIncoming(callSite N, d1 D, sp N, d3 D) (existing []summaryEdge[N, D], isNew bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byD3, ok := s.incoming[sp]
	if !ok {
		byD3 = make(map[D][]incomingEntry[N, D])
		s.incoming[sp] = byD3
	}
	isNew = len(byD3[d3]) == 0 && len(s.endSummary[sp][d3]) == 0
	byD3[d3] = append(byD3[d3], incomingEntry[N, D]{callSite: callSite, d1: d1, sp: sp, d3: d3})

	if sums, ok := s.endSummary[sp]; ok {
		existing = append(existing, sums[d3]...)
	}
	return existing, isNew
}

// AddEndSummary records a new end summary edge for (sp,d3) -> (eP,d2), and
// returns the incoming call sites that should now have it applied, plus
// whether the summary set actually changed (callers skip re-propagation on
// a duplicate).
func (s *summaryStore[N, D]) AddEndSummary(sp N, d3 D, eP N, d2 D) (waiting []incomingEntry[N, D], changed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byD3, ok := s.endSummary[sp]
	if !ok {
		byD3 = make(map[D][]summaryEdge[N, D])
		s.endSummary[sp] = byD3
	}
	for _, existing := range byD3[d3] {
		if existing.eP2Equal(eP, d2) {
			return nil, false
		}
	}
	byD3[d3] = append(byD3[d3], summaryEdge[N, D]{sp: sp, eP: eP, d1: d3, d2: d2})

	if inc, ok := s.incoming[sp]; ok {
		waiting = append(waiting, inc[d3]...)
	}
	return waiting, true
}

func (e summaryEdge[N, D]) eP2Equal(eP N, d2 D) bool {
	return e.eP == eP && e.d2 == d2
}

// IncomingAt returns a snapshot of the call sites awaiting (sp,d3)'s end
// summary, without recording a new one. Used when reprocessing an erased
// exit fact during an incremental update, where there is no real summary
// value to add, only waiting callers to notify.
func (s *summaryStore[N, D]) IncomingAt(sp N, d3 D) []incomingEntry[N, D] {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []incomingEntry[N, D]
	if byD3, ok := s.incoming[sp]; ok {
		out = append(out, byD3[d3]...)
	}
	return out
}

// ForgetExit discards every end summary edge whose exit node is eP, used
// by the incremental updater's join-point recompute phase when eP's
// procedure body changed.
func (s *summaryStore[N, D]) ForgetExit(eP N) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sp, byD3 := range s.endSummary {
		for d3, edges := range byD3 {
			kept := edges[:0]
			for _, e := range edges {
				if e.eP != eP {
					kept = append(kept, e)
				}
			}
			if len(kept) == 0 {
				delete(byD3, d3)
			} else {
				byD3[d3] = kept
			}
		}
		if len(byD3) == 0 {
			delete(s.endSummary, sp)
		}
	}
}

// ForgetMethod discards all stored summaries and incoming entries keyed by
// sp, used by the incremental updater when a procedure's body changed.
func (s *summaryStore[N, D]) ForgetMethod(sp N) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.endSummary, sp)
	delete(s.incoming, sp)
}
