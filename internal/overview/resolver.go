package overview

import (
	"fmt"
	"sort"
	"time"

	"github.com/evandro-macedo/interactive-dashboard/internal/core"
)

// JobState is the derived state of one active job.
type JobState struct {
	JobID        int64      `json:"job_id"`
	Jobsite      string     `json:"jobsite"`
	PhaseOrdinal int        `json:"phase_ordinal"`
	Phase        string     `json:"phase"`
	Latest       core.Event `json:"latest_event"`
}

// Derived is the resolver output: the active-job set with per-job state.
type Derived struct {
	states map[int64]JobState
	jobs   []int64
}

// Resolve computes the active-job set and per-job derived state.
//
// A job is active iff it has at least one event within the trailing
// 60-day window and has never produced a terminal-marker event. The
// phase ordinal is the maximum over all phase labels ever seen for the
// job; jobs with no recognized label get the sentinel and are excluded
// from phase-keyed views. The latest event is the most recent by
// timestamp, ties broken by the highest insertion ID.
func (s *Snapshot) Resolve() *Derived {
	d := &Derived{states: make(map[int64]JobState)}
	horizon := s.now.Add(-ActivityWindow)

	for _, job := range s.jobs {
		evs := s.byJob[job]
		recent := false
		terminal := false
		maxPhase := core.PhaseUnknown
		for _, e := range evs {
			if e.Process == core.TerminalProcess {
				terminal = true
				break
			}
			if !e.DateCreated.Before(horizon) {
				recent = true
			}
			if p := core.PhaseOrdinal(e.Phase); p > maxPhase {
				maxPhase = p
			}
		}
		if terminal || !recent {
			continue
		}

		latest := evs[len(evs)-1]
		d.states[job] = JobState{
			JobID:        job,
			Jobsite:      latest.Jobsite,
			PhaseOrdinal: maxPhase,
			Phase:        core.PhaseLabel(maxPhase),
			Latest:       latest,
		}
		d.jobs = append(d.jobs, job)
	}
	return d
}

// Active reports whether the job made the active set.
func (d *Derived) Active(job int64) bool {
	_, ok := d.states[job]
	return ok
}

// State returns the derived state for an active job.
func (d *Derived) State(job int64) (JobState, bool) {
	st, ok := d.states[job]
	return st, ok
}

// Count is the total number of active jobs, recognized phase or not.
func (d *Derived) Count() int {
	return len(d.jobs)
}

// PhaseBucket is one row of a phase-keyed summary.
type PhaseBucket struct {
	Phase   string `json:"phase"`
	Ordinal int    `json:"-"`
	Jobs    int    `json:"jobs"`
	Issues  int    `json:"issues,omitempty"`
	Percent string `json:"percent"`
}

// PhaseSummary counts active jobs per phase ordinal. Percentages are over
// jobs with a recognized phase.
func (d *Derived) PhaseSummary() []PhaseBucket {
	counts := make([]int, core.PhaseCount)
	total := 0
	for _, st := range d.states {
		if st.PhaseOrdinal < 0 {
			continue
		}
		counts[st.PhaseOrdinal]++
		total++
	}

	var buckets []PhaseBucket
	for ordinal, n := range counts {
		if n == 0 {
			continue
		}
		buckets = append(buckets, PhaseBucket{
			Phase:   core.PhaseLabel(ordinal),
			Ordinal: ordinal,
			Jobs:    n,
			Percent: percent(n, total),
		})
	}
	return buckets
}

// ActiveDetail lists every active job with a recognized phase and its
// latest activity, most recent first.
func (d *Derived) ActiveDetail() []JobState {
	var out []JobState
	for _, st := range d.states {
		if st.PhaseOrdinal < 0 {
			continue
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := out[i].Latest.DateCreated, out[j].Latest.DateCreated
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return out[i].JobID < out[j].JobID
	})
	return out
}

// FinalizedJob is one job bearing the terminal marker.
type FinalizedJob struct {
	JobID       int64     `json:"job_id"`
	Jobsite     string    `json:"jobsite"`
	FinalizedAt time.Time `json:"finalized_at"`
}

// Finalized lists jobs that produced a terminal-marker event, with the
// date of their last activity, newest first.
func (s *Snapshot) Finalized() []FinalizedJob {
	var out []FinalizedJob
	for _, job := range s.jobs {
		evs := s.byJob[job]
		terminal := false
		for _, e := range evs {
			if e.Process == core.TerminalProcess {
				terminal = true
				break
			}
		}
		if !terminal {
			continue
		}
		last := evs[len(evs)-1]
		out = append(out, FinalizedJob{
			JobID:       job,
			Jobsite:     last.Jobsite,
			FinalizedAt: last.DateCreated,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].FinalizedAt.Equal(out[j].FinalizedAt) {
			return out[i].FinalizedAt.After(out[j].FinalizedAt)
		}
		return out[i].JobID < out[j].JobID
	})
	return out
}

func percent(part, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(part)*100/float64(total))
}
