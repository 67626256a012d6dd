package syncer

import (
	"sync"
	"time"
)

// RunStatus is a point-in-time copy of the engine's run state.
type RunStatus struct {
	IsRunning   bool       `json:"is_running"`
	LastRunID   string     `json:"last_run_id,omitempty"`
	LastRunKind string     `json:"last_run_kind,omitempty"`
	LastStart   *time.Time `json:"last_start,omitempty"`
	LastFinish  *time.Time `json:"last_finish,omitempty"`
	LastUpdated int        `json:"last_updated_count"`
	LastEvicted int64      `json:"last_evicted_count"`
	LastError   string     `json:"last_error,omitempty"`
	// CycleError and AdminError keep the last outcome per writer so an
	// overlapping admin run cannot mask a failing scheduler cycle.
	CycleError   string `json:"last_cycle_error,omitempty"`
	AdminError   string `json:"last_admin_error,omitempty"`
	NextInterval string `json:"next_interval,omitempty"`
	Cycles       int64  `json:"cycles"`
}

// RunState is the single process-wide run state. Writers are the scheduler
// loop and admin-triggered runs; everyone else reads snapshots.
type RunState struct {
	mu     sync.Mutex
	active int
	st     RunStatus
}

func newRunState() *RunState {
	return &RunState{}
}

func (r *RunState) begin(runID, kind string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active++
	r.st.LastRunID = runID
	r.st.LastRunKind = kind
	r.st.LastStart = &at
}

func (r *RunState) finish(kind string, at time.Time, updated int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active > 0 {
		r.active--
	}
	r.st.LastFinish = &at
	r.st.LastUpdated = updated

	msg := ""
	if err != nil {
		msg = err.Error()
	}
	r.st.LastError = msg
	if kind == runKindCycle {
		r.st.CycleError = msg
	} else {
		r.st.AdminError = msg
	}
}

func (r *RunState) cycleDone(evicted int64, next time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.st.Cycles++
	r.st.LastEvicted = evicted
	r.st.NextInterval = next.String()
}

// Snapshot returns a copy safe to hand out.
func (r *RunState) Snapshot() RunStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.st
	out.IsRunning = r.active > 0
	if r.st.LastStart != nil {
		t := *r.st.LastStart
		out.LastStart = &t
	}
	if r.st.LastFinish != nil {
		t := *r.st.LastFinish
		out.LastFinish = &t
	}
	return out
}
