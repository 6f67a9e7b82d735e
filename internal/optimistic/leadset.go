// Package optimistic keeps the local mirror of the lead collection in step
// with the backend across optimistic status changes.
//
// Per lead id the sync state machine is:
//
//	Synced -> Pending (local write applied, persist in flight)
//	Pending -> Synced (persist confirmed)
//	Pending -> Reconciling (persist failed; authoritative refetch required)
//	Reconciling -> Synced (refetched list installed via ReplaceAll)
//
// At most one persist is in flight per id. A second change to a pending id
// replaces the queued value: the display always shows the latest write, and
// the latest value is persisted once the in-flight call resolves.
// Reconciliation always wins: ReplaceAll installs the refetched list
// wholesale, discarding any optimistic guesses.
package optimistic

import "valos-cli/internal/model"

type State int

const (
	StateSynced State = iota
	StatePending
	StateReconciling
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateReconciling:
		return "reconciling"
	default:
		return "synced"
	}
}

type LeadSet struct {
	leads  []model.Lead
	states map[int64]State
	queued map[int64]model.LeadStatus
}

func NewLeadSet(leads []model.Lead) *LeadSet {
	s := &LeadSet{
		states: map[int64]State{},
		queued: map[int64]model.LeadStatus{},
	}
	s.leads = append(s.leads, leads...)
	return s
}

// Leads returns the mirror in its current (possibly optimistic) state.
func (s *LeadSet) Leads() []model.Lead { return s.leads }

func (s *LeadSet) Get(id int64) (model.Lead, bool) {
	for _, l := range s.leads {
		if l.ID == id {
			return l, true
		}
	}
	return model.Lead{}, false
}

func (s *LeadSet) StateOf(id int64) State { return s.states[id] }

// Reconciling reports whether any id awaits an authoritative refetch.
func (s *LeadSet) Reconciling() bool {
	for _, st := range s.states {
		if st == StateReconciling {
			return true
		}
	}
	return false
}

// ApplyStatusChange rewrites the lead's status synchronously so the view
// reflects it before any network call resolves. The return value tells the
// caller whether to issue the persist now; false means a persist for this
// id is already in flight and the change was queued behind it
// (cancel-and-replace: only the latest queued value survives).
func (s *LeadSet) ApplyStatusChange(id int64, status model.LeadStatus) (persistNow bool, ok bool) {
	idx := s.indexOf(id)
	if idx < 0 {
		return false, false
	}
	s.leads[idx].Status = status

	if s.states[id] == StatePending {
		s.queued[id] = status
		return false, true
	}
	s.states[id] = StatePending
	delete(s.queued, id)
	return true, true
}

// Confirm marks the in-flight persist for id as accepted. When a follow-up
// change was queued while the call was out, it is returned and becomes the
// new in-flight persist; the caller must issue it.
func (s *LeadSet) Confirm(id int64) (next model.LeadStatus, hasNext bool) {
	if s.states[id] != StatePending {
		return "", false
	}
	if queued, ok := s.queued[id]; ok {
		delete(s.queued, id)
		// Stay pending; the queued value goes out next.
		return queued, true
	}
	delete(s.states, id)
	return "", false
}

// Fail marks the in-flight persist as rejected. The optimistic guess is not
// rolled back locally; the caller refetches the authoritative list and
// installs it with ReplaceAll. Any queued follow-up is dropped, since the
// refetch supersedes it.
func (s *LeadSet) Fail(id int64) {
	if s.states[id] != StatePending {
		return
	}
	s.states[id] = StateReconciling
	delete(s.queued, id)
}

// ReplaceAll installs a freshly fetched authoritative list, discarding every
// optimistic guess (reconciliation wins over interleaved optimistic writes).
// Local-only priority annotations are carried over by id so a refetch does
// not reset them.
func (s *LeadSet) ReplaceAll(leads []model.Lead) {
	priorities := make(map[int64]model.Priority, len(s.leads))
	for _, l := range s.leads {
		priorities[l.ID] = l.Priority
	}

	s.leads = s.leads[:0]
	for _, l := range leads {
		if p, ok := priorities[l.ID]; ok && p != "" {
			l.Priority = p
		} else if l.Priority == "" {
			l.Priority = model.DefaultPriority
		}
		s.leads = append(s.leads, l)
	}
	s.states = map[int64]State{}
	s.queued = map[int64]model.LeadStatus{}
}

// CyclePriority rotates the local priority annotation. Purely cosmetic;
// nothing is persisted.
func (s *LeadSet) CyclePriority(id int64) {
	idx := s.indexOf(id)
	if idx < 0 {
		return
	}
	p := s.leads[idx].Priority
	if p == "" {
		p = model.DefaultPriority
	}
	s.leads[idx].Priority = p.Next()
}

func (s *LeadSet) indexOf(id int64) int {
	for i := range s.leads {
		if s.leads[i].ID == id {
			return i
		}
	}
	return -1
}
