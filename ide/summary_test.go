package ide

import "testing"

func TestSummaryStoreAddIncomingIsNewOnlyOnce(t *testing.T) {
	s := newSummaryStore[string, string]()

	_, isNew := s.AddIncoming("c1", "Z", "sp", "d3")
	if !isNew {
		t.Fatal("first AddIncoming for (sp,d3) should report isNew")
	}
	_, isNew = s.AddIncoming("c2", "Z", "sp", "d3")
	if isNew {
		t.Fatal("second AddIncoming for the same (sp,d3) should not report isNew")
	}
}

func TestSummaryStoreAddIncomingReturnsExistingSummaries(t *testing.T) {
	s := newSummaryStore[string, string]()
	s.AddEndSummary("sp", "d3", "eP", "d2")

	existing, _ := s.AddIncoming("c1", "Z", "sp", "d3")
	if len(existing) != 1 || existing[0].eP != "eP" || existing[0].d2 != "d2" {
		t.Fatalf("existing summaries = %v, want one (eP,d2) edge", existing)
	}
}

func TestSummaryStoreAddEndSummaryDedupes(t *testing.T) {
	s := newSummaryStore[string, string]()

	_, changed := s.AddEndSummary("sp", "d3", "eP", "d2")
	if !changed {
		t.Fatal("first AddEndSummary should report changed")
	}
	_, changed = s.AddEndSummary("sp", "d3", "eP", "d2")
	if changed {
		t.Fatal("duplicate AddEndSummary should report unchanged")
	}
	_, changed = s.AddEndSummary("sp", "d3", "eP", "other")
	if !changed {
		t.Fatal("a distinct (eP,d2) pair should report changed")
	}
}

func TestSummaryStoreAddEndSummaryReturnsWaitingCallSites(t *testing.T) {
	s := newSummaryStore[string, string]()
	s.AddIncoming("c1", "Z", "sp", "d3")
	s.AddIncoming("c2", "w", "sp", "d3")

	waiting, changed := s.AddEndSummary("sp", "d3", "eP", "d2")
	if !changed {
		t.Fatal("AddEndSummary should report changed")
	}
	if len(waiting) != 2 {
		t.Fatalf("waiting = %v, want both incoming call sites", waiting)
	}
}

func TestSummaryStoreForgetMethodClearsBothTables(t *testing.T) {
	s := newSummaryStore[string, string]()
	s.AddIncoming("c1", "Z", "sp", "d3")
	s.AddEndSummary("sp", "d3", "eP", "d2")

	s.ForgetMethod("sp")

	_, isNew := s.AddIncoming("c1", "Z", "sp", "d3")
	if !isNew {
		t.Fatal("after ForgetMethod, AddIncoming should report isNew again")
	}
	existing, _ := s.AddIncoming("c2", "Z", "sp", "d3")
	if len(existing) != 0 {
		t.Fatal("ForgetMethod should have discarded the prior end summary too")
	}
}
