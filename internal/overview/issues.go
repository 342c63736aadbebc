package overview

import (
	"time"

	"github.com/evandro-macedo/interactive-dashboard/internal/core"
)

// IssueDetail is one outstanding issue.
type IssueDetail struct {
	Phase        string    `json:"phase"`
	JobID        int64     `json:"job_id"`
	Jobsite      string    `json:"jobsite"`
	Process      string    `json:"process"`
	OpenedAt     time.Time `json:"opened_at"`
	DaysOpen     int       `json:"days_open"`
	LastStatus   string    `json:"last_status,omitempty"`
	LastStatusAt time.Time `json:"last_status_at,omitzero"`
}

// IssueReport pairs the phase-keyed summary with the detail list for one
// issue category.
type IssueReport struct {
	Summary []PhaseBucket `json:"summary"`
	Detail  []IssueDetail `json:"detail"`
}

// FailedInspections finds inspection processes whose latest disapproval
// has no later approval.
func (s *Snapshot) FailedInspections(d *Derived) IssueReport {
	cands := s.evaluate(d, temporalRule{
		candidate: func(e core.Event) bool {
			return isInspectionProcess(e.Process) && e.Status == core.StatusInspectionDisapproved
		},
		pick: pickLatest,
		closing: func(e core.Event) bool {
			return e.Status == core.StatusInspectionApproved
		},
	})
	return s.report(d, cands, true)
}

// PendingReports finds report events with no later checklist-done,
// bounded to the recency cutoff and filtered by the five OR-combined
// suppression rules.
func (s *Snapshot) PendingReports(d *Derived) IssueReport {
	cands := s.evaluate(d, temporalRule{
		candidate: func(e core.Event) bool {
			return e.Status == core.StatusReport
		},
		pick: pickLatest,
		closing: func(e core.Event) bool {
			return e.Status == core.StatusChecklistDone
		},
		cutoffDays: RecencyCutoffDays,
		suppress: []func(*Snapshot, pairKey, core.Event) bool{
			annotationVeto(),
			laterEventExists(core.StatusReworkScheduled),
			laterTaggedAnnotationExists(core.StatusChecklistDone),
			laterTaggedAnnotationExists(core.StatusReworkRequested),
			laterEventExists(core.StatusInProgress),
		},
	})
	return s.report(d, cands, false)
}

// OpenScheduled finds scheduled items with no later checklist-done, for
// processes where a checklist applies (inspections and material
// procurement are excluded), bounded to the recency cutoff.
func (s *Snapshot) OpenScheduled(d *Derived) IssueReport {
	cands := s.evaluate(d, temporalRule{
		candidate: func(e core.Event) bool {
			return e.Status == core.StatusScheduled &&
				!isInspectionProcess(e.Process) && !isMaterialProcess(e.Process)
		},
		pick: pickEarliest,
		closing: func(e core.Event) bool {
			return e.Status == core.StatusChecklistDone || e.Status == core.StatusReworkChecklistDone
		},
		cutoffDays: RecencyCutoffDays,
	})
	return s.report(d, cands, true)
}

// report aggregates candidates into the phase-keyed summary and detail
// list. When withLastStatus is set, each detail row carries the most
// recent status recorded for the pair at or after the opening event.
func (s *Snapshot) report(d *Derived, cands []issueCandidate, withLastStatus bool) IssueReport {
	jobsSeen := make([]map[int64]struct{}, core.PhaseCount)
	issues := make([]int, core.PhaseCount)
	var detail []IssueDetail

	for _, c := range cands {
		st, ok := d.State(c.Job)
		if !ok || st.PhaseOrdinal < 0 {
			continue
		}

		if jobsSeen[st.PhaseOrdinal] == nil {
			jobsSeen[st.PhaseOrdinal] = make(map[int64]struct{})
		}
		jobsSeen[st.PhaseOrdinal][c.Job] = struct{}{}
		issues[st.PhaseOrdinal]++

		row := IssueDetail{
			Phase:    st.Phase,
			JobID:    c.Job,
			Jobsite:  st.Jobsite,
			Process:  c.Process,
			OpenedAt: c.Event.DateCreated,
			DaysOpen: s.daysOpen(c.Event.DateCreated),
		}
		if withLastStatus {
			if last, ok := s.lastStatusSince(pairKey{Job: c.Job, Process: c.Process}, c.Event); ok {
				row.LastStatus = last.Status
				row.LastStatusAt = last.DateCreated
			}
		}
		detail = append(detail, row)
	}

	var summary []PhaseBucket
	for ordinal := 0; ordinal < core.PhaseCount; ordinal++ {
		if issues[ordinal] == 0 {
			continue
		}
		summary = append(summary, PhaseBucket{
			Phase:   core.PhaseLabel(ordinal),
			Ordinal: ordinal,
			Jobs:    len(jobsSeen[ordinal]),
			Issues:  issues[ordinal],
			Percent: percent(len(jobsSeen[ordinal]), d.Count()),
		})
	}

	return IssueReport{Summary: summary, Detail: detail}
}

// lastStatusSince returns the most recent event for the pair at or after
// the opening event, ties broken by insertion ID.
func (s *Snapshot) lastStatusSince(pk pairKey, opening core.Event) (core.Event, bool) {
	evs := s.byPair[pk]
	for i := len(evs) - 1; i >= 0; i-- {
		if !evs[i].DateCreated.Before(opening.DateCreated) {
			return evs[i], true
		}
	}
	return core.Event{}, false
}
