package overview

import (
	"sort"

	"github.com/evandro-macedo/interactive-dashboard/internal/core"
)

// The three issue categories share one shape: pick a candidate event per
// (job, process) pair with a status filter, drop it when a qualifying
// closing event exists strictly later, drop candidates older than the
// recency cutoff, then OR together any extra suppression rules. This is
// that primitive; the categories in issues.go only parameterize it.

type pickMode int

const (
	pickLatest pickMode = iota
	pickEarliest
)

type temporalRule struct {
	// candidate selects opening events; pick chooses which one represents
	// the pair when several match.
	candidate func(core.Event) bool
	pick      pickMode

	// closing drops the candidate when a matching event exists strictly
	// after it.
	closing func(core.Event) bool

	// cutoffDays drops candidates older than this many days; 0 disables.
	cutoffDays int

	// suppress are extra anti-existence rules, OR-combined.
	suppress []func(s *Snapshot, pk pairKey, cand core.Event) bool
}

type issueCandidate struct {
	Job     int64
	Process string
	Event   core.Event
}

// evaluate runs the rule over every (job, process) pair of the active set.
func (s *Snapshot) evaluate(d *Derived, rule temporalRule) []issueCandidate {
	var out []issueCandidate

	for pk, evs := range s.byPair {
		if !d.Active(pk.Job) {
			continue
		}

		var cand *core.Event
		for i := range evs {
			if !rule.candidate(evs[i]) {
				continue
			}
			if cand == nil || rule.pick == pickLatest {
				// evs is time-ordered, so the last match wins for
				// pickLatest and the first for pickEarliest.
				cand = &evs[i]
			}
		}
		if cand == nil {
			continue
		}

		if rule.cutoffDays > 0 && s.daysOpen(cand.DateCreated) > rule.cutoffDays {
			continue
		}

		closed := false
		for _, e := range evs {
			if rule.closing != nil && rule.closing(e) && e.DateCreated.After(cand.DateCreated) {
				closed = true
				break
			}
		}
		if closed {
			continue
		}

		suppressed := false
		for _, sup := range rule.suppress {
			if sup(s, pk, *cand) {
				suppressed = true
				break
			}
		}
		if suppressed {
			continue
		}

		out = append(out, issueCandidate{Job: pk.Job, Process: pk.Process, Event: *cand})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Job != out[j].Job {
			return out[i].Job < out[j].Job
		}
		return out[i].Process < out[j].Process
	})
	return out
}

// laterEventExists is a suppression rule matching an event with the given
// status strictly after the candidate, for the same pair.
func laterEventExists(status string) func(*Snapshot, pairKey, core.Event) bool {
	return func(s *Snapshot, pk pairKey, cand core.Event) bool {
		for _, e := range s.byPair[pk] {
			if e.Status == status && e.DateCreated.After(cand.DateCreated) {
				return true
			}
		}
		return false
	}
}

// laterTaggedAnnotationExists matches a failure-tagged annotation with the
// given status strictly after the candidate, for the same pair.
func laterTaggedAnnotationExists(status string) func(*Snapshot, pairKey, core.Event) bool {
	return func(s *Snapshot, pk pairKey, cand core.Event) bool {
		for _, a := range s.annByPair[pk] {
			if a.Status == status && a.Tagged() && a.DateCreated.After(cand.DateCreated) {
				return true
			}
		}
		return false
	}
}

// annotationVeto matches candidates whose (process, status) pair is
// flagged suppress-from-reporting in the annotation table.
func annotationVeto() func(*Snapshot, pairKey, core.Event) bool {
	return func(s *Snapshot, _ pairKey, cand core.Event) bool {
		_, ok := s.vetoPairs[cand.TriggerKey()]
		return ok
	}
}
