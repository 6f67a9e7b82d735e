package optimistic

import (
	"testing"

	"valos-cli/internal/model"
)

func testLeads() []model.Lead {
	return []model.Lead{
		{ID: 1, CompanyName: "Acme", Status: model.StatusNew, Priority: model.PriorityMedium},
		{ID: 2, CompanyName: "Globex", Status: model.StatusContacted, Priority: model.PriorityMedium},
	}
}

func TestApplyStatusChangeIsImmediate(t *testing.T) {
	s := NewLeadSet(testLeads())

	persistNow, ok := s.ApplyStatusChange(1, model.StatusContacted)
	if !ok || !persistNow {
		t.Fatalf("ApplyStatusChange = (%v, %v), want (true, true)", persistNow, ok)
	}

	// Local view reflects the change before any persist resolves.
	l, _ := s.Get(1)
	if l.Status != model.StatusContacted {
		t.Fatalf("status = %s, want contacted before persist resolves", l.Status)
	}
	if s.StateOf(1) != StatePending {
		t.Fatalf("state = %s, want pending", s.StateOf(1))
	}
	// Unrelated lead untouched and synced.
	if s.StateOf(2) != StateSynced {
		t.Fatalf("unrelated lead state = %s, want synced", s.StateOf(2))
	}
}

func TestApplyStatusChangeUnknownID(t *testing.T) {
	s := NewLeadSet(testLeads())
	if _, ok := s.ApplyStatusChange(99, model.StatusLost); ok {
		t.Fatal("expected unknown id to be rejected")
	}
}

func TestConfirmReturnsToSynced(t *testing.T) {
	s := NewLeadSet(testLeads())
	s.ApplyStatusChange(1, model.StatusContacted)

	next, hasNext := s.Confirm(1)
	if hasNext {
		t.Fatalf("unexpected queued follow-up %q", next)
	}
	if s.StateOf(1) != StateSynced {
		t.Fatalf("state = %s, want synced after confirm", s.StateOf(1))
	}
	// The optimistic value is now authoritative; no rollback.
	l, _ := s.Get(1)
	if l.Status != model.StatusContacted {
		t.Fatalf("status = %s, want contacted", l.Status)
	}
}

func TestSecondChangeQueuesBehindInFlight(t *testing.T) {
	s := NewLeadSet(testLeads())

	if persistNow, _ := s.ApplyStatusChange(1, model.StatusContacted); !persistNow {
		t.Fatal("first change should persist immediately")
	}
	// Second change before the first resolves: display updates, persist queued.
	persistNow, ok := s.ApplyStatusChange(1, model.StatusQualified)
	if !ok || persistNow {
		t.Fatalf("second change = (%v, %v), want queued (false, true)", persistNow, ok)
	}
	l, _ := s.Get(1)
	if l.Status != model.StatusQualified {
		t.Fatalf("display status = %s, want the latest write", l.Status)
	}

	// Third change replaces the queued one (cancel-and-replace).
	s.ApplyStatusChange(1, model.StatusConverted)

	next, hasNext := s.Confirm(1)
	if !hasNext || next != model.StatusConverted {
		t.Fatalf("queued follow-up = (%q, %v), want (converted, true)", next, hasNext)
	}
	// Still pending: the follow-up persist is now in flight.
	if s.StateOf(1) != StatePending {
		t.Fatalf("state = %s, want pending while follow-up persists", s.StateOf(1))
	}

	if next, hasNext := s.Confirm(1); hasNext {
		t.Fatalf("no further follow-up expected, got %q", next)
	}
	if s.StateOf(1) != StateSynced {
		t.Fatalf("state = %s, want synced", s.StateOf(1))
	}
}

func TestFailReconcilesToBackendTruth(t *testing.T) {
	s := NewLeadSet(testLeads())
	s.ApplyStatusChange(1, model.StatusContacted)

	s.Fail(1)
	if s.StateOf(1) != StateReconciling {
		t.Fatalf("state = %s, want reconciling", s.StateOf(1))
	}
	if !s.Reconciling() {
		t.Fatal("Reconciling() = false, want true")
	}

	// The backend actually holds "qualified" (someone else moved it); the
	// revert target is backend truth, not the original "new".
	authoritative := []model.Lead{
		{ID: 1, CompanyName: "Acme", Status: model.StatusQualified},
		{ID: 2, CompanyName: "Globex", Status: model.StatusContacted},
	}
	s.ReplaceAll(authoritative)

	l, _ := s.Get(1)
	if l.Status != model.StatusQualified {
		t.Fatalf("status = %s, want the refetched qualified", l.Status)
	}
	if s.StateOf(1) != StateSynced || s.Reconciling() {
		t.Fatal("expected all states synced after ReplaceAll")
	}
}

func TestReplaceAllWinsOverInterleavedOptimisticWrite(t *testing.T) {
	s := NewLeadSet(testLeads())
	s.ApplyStatusChange(1, model.StatusContacted)
	s.Fail(1)

	// An optimistic write lands while the reconciling refetch is in flight.
	s.ApplyStatusChange(1, model.StatusLost)

	s.ReplaceAll([]model.Lead{{ID: 1, CompanyName: "Acme", Status: model.StatusNew}})

	l, _ := s.Get(1)
	if l.Status != model.StatusNew {
		t.Fatalf("status = %s; reconciliation must win over the interleaved write", l.Status)
	}
}

func TestReplaceAllPreservesLocalPriorities(t *testing.T) {
	s := NewLeadSet(testLeads())
	s.CyclePriority(1) // medium -> low

	s.ReplaceAll([]model.Lead{
		{ID: 1, CompanyName: "Acme", Status: model.StatusNew},
		{ID: 3, CompanyName: "Initech", Status: model.StatusNew},
	})

	l, _ := s.Get(1)
	if l.Priority != model.PriorityLow {
		t.Fatalf("priority = %s, want the local annotation to survive refetch", l.Priority)
	}
	newcomer, _ := s.Get(3)
	if newcomer.Priority != model.DefaultPriority {
		t.Fatalf("new lead priority = %s, want default", newcomer.Priority)
	}
}

func TestCyclePriority(t *testing.T) {
	s := NewLeadSet([]model.Lead{{ID: 1, Priority: model.PriorityHigh}})
	s.CyclePriority(1)
	if l, _ := s.Get(1); l.Priority != model.PriorityMedium {
		t.Fatalf("priority = %s, want medium", l.Priority)
	}
	s.CyclePriority(1)
	if l, _ := s.Get(1); l.Priority != model.PriorityLow {
		t.Fatalf("priority = %s, want low", l.Priority)
	}
	s.CyclePriority(1)
	if l, _ := s.Get(1); l.Priority != model.PriorityHigh {
		t.Fatalf("priority = %s, want high (wrapped)", l.Priority)
	}
}

func TestConfirmAndFailAreNoOpsWhenNotPending(t *testing.T) {
	s := NewLeadSet(testLeads())
	if _, hasNext := s.Confirm(1); hasNext {
		t.Fatal("Confirm on a synced id must be a no-op")
	}
	s.Fail(1)
	if s.StateOf(1) != StateSynced {
		t.Fatalf("Fail on a synced id must be a no-op, state = %s", s.StateOf(1))
	}
}
