// Package overview derives per-job state and outstanding issues from the
// raw replicated event history. Nothing here mutates the store; phase and
// issue sets are recomputed from scratch on every evaluation.
package overview

import (
	"sort"
	"strings"
	"time"

	"github.com/evandro-macedo/interactive-dashboard/internal/core"
)

// ActivityWindow bounds the active-job set; HistoryWindow bounds the
// per-job history read. RecencyCutoffDays drops stale issue candidates.
const (
	ActivityWindow    = 60 * 24 * time.Hour
	HistoryWindow     = 90 * 24 * time.Hour
	RecencyCutoffDays = 60
)

type pairKey struct {
	Job     int64
	Process string
}

// Snapshot indexes one consistent read of the event log and its
// annotation companion for rule evaluation against a reference instant.
type Snapshot struct {
	now time.Time

	byJob     map[int64][]core.Event
	byPair    map[pairKey][]core.Event
	annByPair map[pairKey][]core.RuleAnnotation
	vetoPairs map[core.TriggerKey]struct{}
	jobs      []int64
}

// NewSnapshot builds the evaluation indexes. Events within each job and
// pair are ordered by timestamp, ties broken by insertion ID.
func NewSnapshot(events []core.Event, anns []core.RuleAnnotation, now time.Time) *Snapshot {
	s := &Snapshot{
		now:       now,
		byJob:     make(map[int64][]core.Event),
		byPair:    make(map[pairKey][]core.Event),
		annByPair: make(map[pairKey][]core.RuleAnnotation),
		vetoPairs: make(map[core.TriggerKey]struct{}),
	}

	for _, e := range events {
		if e.JobID == 0 {
			continue
		}
		s.byJob[e.JobID] = append(s.byJob[e.JobID], e)
		pk := pairKey{Job: e.JobID, Process: e.Process}
		s.byPair[pk] = append(s.byPair[pk], e)
	}
	for job := range s.byJob {
		s.jobs = append(s.jobs, job)
	}
	sort.Slice(s.jobs, func(i, j int) bool { return s.jobs[i] < s.jobs[j] })

	for _, evs := range s.byJob {
		sortEvents(evs)
	}
	for _, evs := range s.byPair {
		sortEvents(evs)
	}

	for _, a := range anns {
		if a.NotReport {
			s.vetoPairs[core.TriggerKey{Process: a.Process, Status: a.Status}] = struct{}{}
		}
		if a.JobID != 0 {
			pk := pairKey{Job: a.JobID, Process: a.Process}
			s.annByPair[pk] = append(s.annByPair[pk], a)
		}
	}

	return s
}

func sortEvents(evs []core.Event) {
	sort.Slice(evs, func(i, j int) bool {
		if !evs[i].DateCreated.Equal(evs[j].DateCreated) {
			return evs[i].DateCreated.Before(evs[j].DateCreated)
		}
		return evs[i].ID < evs[j].ID
	})
}

func isInspectionProcess(process string) bool {
	return strings.Contains(process, "inspection")
}

func isMaterialProcess(process string) bool {
	return strings.Contains(process, "material")
}

// daysOpen is the integer-truncated day difference between now and t.
func (s *Snapshot) daysOpen(t time.Time) int {
	return int(s.now.Sub(t).Hours() / 24)
}
