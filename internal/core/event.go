package core

import "time"

// Phase labels recognized on events. Anything else maps to PhaseUnknown
// and the job is excluded from phase-keyed summaries.
const (
	PhaseUnknown = -1
	PhaseCount   = 5
)

// TerminalProcess marks a job as finished. Jobs with this process are
// excluded from the active set regardless of recency.
const TerminalProcess = "phase 3 fcc"

// Status labels used by the rule engine and trigger matching.
const (
	StatusReport                = "report"
	StatusChecklistDone         = "checklist done"
	StatusReworkChecklistDone   = "rework checklist done"
	StatusReworkScheduled       = "rework scheduled"
	StatusReworkRequested       = "rework requested"
	StatusInProgress            = "in progress"
	StatusScheduled             = "scheduled"
	StatusInspectionApproved    = "inspection approved"
	StatusInspectionDisapproved = "inspection disapproved"
)

// Event is one row of the replicated daily-log table. The table is
// replaced wholesale on every sync; history is never mutated locally.
// ID is the local insertion order and serves as the deterministic
// tie-break when two events share a timestamp.
type Event struct {
	ID          int64     `json:"id"`
	JobID       int64     `json:"job_id"`
	SiteNumber  int64     `json:"site_number"`
	LogTitle    string    `json:"logtitle"`
	Notes       string    `json:"notes"`
	Process     string    `json:"process"`
	Status      string    `json:"status"`
	Phase       string    `json:"phase"`
	Jobsite     string    `json:"jobsite"`
	County      string    `json:"county"`
	Sector      string    `json:"sector"`
	Site        string    `json:"site"`
	Permit      string    `json:"permit"`
	Parcel      string    `json:"parcel"`
	ModelCode   string    `json:"model_code"`
	AddedBy     string    `json:"added_by"`
	ServiceDate string    `json:"service_date,omitempty"`
	DateCreated time.Time `json:"date_created"`
	Fingerprint string    `json:"fingerprint"`
}

// PhaseOrdinal maps a phase label to its rank (0..4), or PhaseUnknown.
func PhaseOrdinal(label string) int {
	switch label {
	case "phase 0":
		return 0
	case "phase 1":
		return 1
	case "phase 2":
		return 2
	case "phase 3":
		return 3
	case "phase 4":
		return 4
	}
	return PhaseUnknown
}

// PhaseLabel formats an ordinal for display ("Phase 0".."Phase 4").
func PhaseLabel(ordinal int) string {
	switch ordinal {
	case 0:
		return "Phase 0"
	case 1:
		return "Phase 1"
	case 2:
		return "Phase 2"
	case 3:
		return "Phase 3"
	case 4:
		return "Phase 4"
	}
	return ""
}

// TriggerKey is the exact-match (process, status) routing key for
// subscriptions. Matching is case-sensitive; no wildcards.
type TriggerKey struct {
	Process string `json:"process"`
	Status  string `json:"status"`
}

func (e Event) TriggerKey() TriggerKey {
	return TriggerKey{Process: e.Process, Status: e.Status}
}
