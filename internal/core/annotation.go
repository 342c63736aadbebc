package core

import (
	"strings"
	"time"
)

// RuleAnnotation is one row of the companion failure-classification table,
// replicated alongside the event log with the same replace-wholesale
// lifecycle. It serves two purposes: the (process, status) pairs flagged
// NotReport veto pending-report candidates outright, and the per-job rows
// tagged with a failure group act as closing events for suppression rules.
type RuleAnnotation struct {
	ID           int64     `json:"id"`
	JobID        int64     `json:"job_id"`
	Process      string    `json:"process"`
	Status       string    `json:"status"`
	Phase        string    `json:"phase"`
	FailureGroup string    `json:"failure_group"`
	FailureItem  string    `json:"failure_item"`
	LogTitle     string    `json:"logtitle"`
	Notes        string    `json:"notes"`
	AddedBy      string    `json:"added_by"`
	Jobsite      string    `json:"jobsite"`
	County       string    `json:"county"`
	Sector       string    `json:"sector"`
	NotReport    bool      `json:"not_report"`
	DateCreated  time.Time `json:"date_created"`
}

// Tagged reports whether the annotation carries a failure classification.
func (a RuleAnnotation) Tagged() bool {
	return strings.Contains(a.FailureGroup, "fmea")
}
