package overview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evandro-macedo/interactive-dashboard/internal/core"
)

func TestFailedInspections_ActiveFailure(t *testing.T) {
	b := &eventBuilder{}
	b.add(1, "framing inspection", core.StatusInspectionDisapproved, "phase 2", day(50))

	snap, d := resolve(t, b)
	report := snap.FailedInspections(d)
	require.Len(t, report.Detail, 1)
	assert.Equal(t, int64(1), report.Detail[0].JobID)
	assert.Equal(t, "framing inspection", report.Detail[0].Process)
	assert.Equal(t, 10, report.Detail[0].DaysOpen)
}

func TestFailedInspections_LaterApprovalCloses(t *testing.T) {
	b := &eventBuilder{}
	b.add(1, "framing inspection", core.StatusInspectionDisapproved, "phase 2", day(50))
	b.add(1, "framing inspection", core.StatusInspectionApproved, "phase 2", day(52))
	b.add(1, "framing", core.StatusInProgress, "phase 2", day(55))

	snap, d := resolve(t, b)
	assert.Empty(t, snap.FailedInspections(d).Detail,
		"a disapproval followed by an approval must never appear in detail")
}

func TestFailedInspections_ReFailureAfterApproval(t *testing.T) {
	b := &eventBuilder{}
	b.add(1, "framing inspection", core.StatusInspectionDisapproved, "phase 2", day(40))
	b.add(1, "framing inspection", core.StatusInspectionApproved, "phase 2", day(45))
	b.add(1, "framing inspection", core.StatusInspectionDisapproved, "phase 2", day(50))

	snap, d := resolve(t, b)
	report := snap.FailedInspections(d)
	require.Len(t, report.Detail, 1)
	assert.Equal(t, day(50), report.Detail[0].OpenedAt,
		"latest disapproval wins when it post-dates the approval")
}

func TestFailedInspections_LastStatusAfterDisapproval(t *testing.T) {
	b := &eventBuilder{}
	b.add(1, "framing inspection", core.StatusInspectionDisapproved, "phase 2", day(50))
	b.add(1, "framing inspection", core.StatusScheduled, "phase 2", day(53))

	snap, d := resolve(t, b)
	report := snap.FailedInspections(d)
	require.Len(t, report.Detail, 1)
	assert.Equal(t, core.StatusScheduled, report.Detail[0].LastStatus)
	assert.Equal(t, day(53), report.Detail[0].LastStatusAt)
}

func TestFailedInspections_NonInspectionProcessIgnored(t *testing.T) {
	b := &eventBuilder{}
	b.add(1, "framing", core.StatusInspectionDisapproved, "phase 2", day(50))

	snap, d := resolve(t, b)
	assert.Empty(t, snap.FailedInspections(d).Detail)
}

func TestPendingReports_OpenReport(t *testing.T) {
	b := &eventBuilder{}
	b.add(1, "framing", core.StatusReport, "phase 1", day(45))

	snap, d := resolve(t, b)
	report := snap.PendingReports(d)
	require.Len(t, report.Detail, 1)
	assert.Equal(t, 15, report.Detail[0].DaysOpen)
}

func TestPendingReports_LaterChecklistDoneCloses(t *testing.T) {
	b := &eventBuilder{}
	b.add(1, "framing", core.StatusReport, "phase 1", day(45))
	b.add(1, "framing", core.StatusChecklistDone, "phase 1", day(47))

	snap, d := resolve(t, b)
	assert.Empty(t, snap.PendingReports(d).Detail)
}

func TestPendingReports_EarlierChecklistDoneDoesNotClose(t *testing.T) {
	b := &eventBuilder{}
	b.add(1, "framing", core.StatusChecklistDone, "phase 1", day(40))
	b.add(1, "framing", core.StatusReport, "phase 1", day(45))

	snap, d := resolve(t, b)
	require.Len(t, snap.PendingReports(d).Detail, 1,
		"a checklist-done before the report must not close it")
}

func TestPendingReports_RecencyCutoffDropsStale(t *testing.T) {
	b := &eventBuilder{}
	b.add(1, "framing", core.StatusReport, "phase 1", day(-5))
	// Keep the job itself active.
	b.add(1, "roofing", core.StatusInProgress, "phase 1", day(55))

	snap, d := resolve(t, b)
	assert.Empty(t, snap.PendingReports(d).Detail,
		"reports older than the cutoff are dropped entirely")
}

// Every suppression rule is independent: adding any single qualifying
// later event removes the candidate, regardless of the other rules.
func TestPendingReports_SuppressionRulesORCombined(t *testing.T) {
	baseline := func() *eventBuilder {
		b := &eventBuilder{}
		b.add(1, "framing", core.StatusReport, "phase 1", day(45))
		return b
	}

	t.Run("baseline is pending", func(t *testing.T) {
		snap, d := resolve(t, baseline())
		require.Len(t, snap.PendingReports(d).Detail, 1)
	})

	t.Run("R0 annotation veto", func(t *testing.T) {
		snap, d := resolve(t, baseline(), core.RuleAnnotation{
			Process: "framing", Status: core.StatusReport, NotReport: true,
			DateCreated: day(1),
		})
		assert.Empty(t, snap.PendingReports(d).Detail)
	})

	t.Run("R1 later rework scheduled", func(t *testing.T) {
		b := baseline()
		b.add(1, "framing", core.StatusReworkScheduled, "phase 1", day(47))
		snap, d := resolve(t, b)
		assert.Empty(t, snap.PendingReports(d).Detail)
	})

	t.Run("R2 later tagged checklist done", func(t *testing.T) {
		snap, d := resolve(t, baseline(), core.RuleAnnotation{
			JobID: 1, Process: "framing", Status: core.StatusChecklistDone,
			FailureGroup: "fmea-structural", DateCreated: day(47),
		})
		assert.Empty(t, snap.PendingReports(d).Detail)
	})

	t.Run("R3 later tagged rework requested", func(t *testing.T) {
		snap, d := resolve(t, baseline(), core.RuleAnnotation{
			JobID: 1, Process: "framing", Status: core.StatusReworkRequested,
			FailureGroup: "fmea-finishing", DateCreated: day(47),
		})
		assert.Empty(t, snap.PendingReports(d).Detail)
	})

	t.Run("R4 later in progress", func(t *testing.T) {
		b := baseline()
		b.add(1, "framing", core.StatusInProgress, "phase 1", day(47))
		snap, d := resolve(t, b)
		assert.Empty(t, snap.PendingReports(d).Detail)
	})

	t.Run("untagged annotation does not suppress", func(t *testing.T) {
		snap, d := resolve(t, baseline(), core.RuleAnnotation{
			JobID: 1, Process: "framing", Status: core.StatusChecklistDone,
			FailureGroup: "other", DateCreated: day(47),
		})
		require.Len(t, snap.PendingReports(d).Detail, 1)
	})

	t.Run("earlier tagged annotation does not suppress", func(t *testing.T) {
		snap, d := resolve(t, baseline(), core.RuleAnnotation{
			JobID: 1, Process: "framing", Status: core.StatusChecklistDone,
			FailureGroup: "fmea-structural", DateCreated: day(40),
		})
		require.Len(t, snap.PendingReports(d).Detail, 1)
	})
}

func TestOpenScheduled_ScenarioChecklistDoneNextDay(t *testing.T) {
	b := &eventBuilder{}
	b.add(1, "framing", core.StatusScheduled, "phase 1", day(50))
	b.add(1, "framing", core.StatusChecklistDone, "phase 1", day(51))

	snap, d := resolve(t, b)
	assert.Empty(t, snap.OpenScheduled(d).Detail,
		"scheduled followed by checklist done the next day must not be open")
}

func TestOpenScheduled_OpenItem(t *testing.T) {
	b := &eventBuilder{}
	b.add(1, "framing", core.StatusScheduled, "phase 1", day(50))
	b.add(1, "framing", core.StatusInProgress, "phase 1", day(53))

	snap, d := resolve(t, b)
	report := snap.OpenScheduled(d)
	require.Len(t, report.Detail, 1)
	assert.Equal(t, day(50), report.Detail[0].OpenedAt)
	assert.Equal(t, core.StatusInProgress, report.Detail[0].LastStatus)
}

func TestOpenScheduled_ReworkChecklistDoneAlsoCloses(t *testing.T) {
	b := &eventBuilder{}
	b.add(1, "framing", core.StatusScheduled, "phase 1", day(50))
	b.add(1, "framing", core.StatusReworkChecklistDone, "phase 1", day(52))

	snap, d := resolve(t, b)
	assert.Empty(t, snap.OpenScheduled(d).Detail)
}

func TestOpenScheduled_InspectionAndMaterialProcessesExcluded(t *testing.T) {
	b := &eventBuilder{}
	b.add(1, "framing inspection", core.StatusScheduled, "phase 1", day(50))
	b.add(1, "material order", core.StatusScheduled, "phase 1", day(50))

	snap, d := resolve(t, b)
	assert.Empty(t, snap.OpenScheduled(d).Detail)
}

func TestOpenScheduled_EarliestScheduledWins(t *testing.T) {
	b := &eventBuilder{}
	b.add(1, "framing", core.StatusScheduled, "phase 1", day(40))
	b.add(1, "framing", core.StatusScheduled, "phase 1", day(50))

	snap, d := resolve(t, b)
	report := snap.OpenScheduled(d)
	require.Len(t, report.Detail, 1)
	assert.Equal(t, day(40), report.Detail[0].OpenedAt)
}

func TestIssueSummary_PhaseBucketsAndPercent(t *testing.T) {
	b := &eventBuilder{}
	b.add(1, "framing", core.StatusReport, "phase 1", day(45))
	b.add(2, "roofing", core.StatusReport, "phase 2", day(45))
	b.add(3, "siding", core.StatusInProgress, "phase 2", day(55))
	b.add(4, "paint", core.StatusInProgress, "phase 2", day(55))

	snap, d := resolve(t, b)
	report := snap.PendingReports(d)
	require.Len(t, report.Summary, 2)
	assert.Equal(t, "Phase 1", report.Summary[0].Phase)
	assert.Equal(t, 1, report.Summary[0].Jobs)
	assert.Equal(t, 1, report.Summary[0].Issues)
	// Percentage is over all four active jobs.
	assert.Equal(t, "25.0%", report.Summary[0].Percent)
}

func TestIssues_InactiveJobsExcluded(t *testing.T) {
	b := &eventBuilder{}
	b.add(1, "framing", core.StatusReport, "phase 1", day(45))
	b.add(1, core.TerminalProcess, core.StatusChecklistDone, "phase 3", day(55))

	snap, d := resolve(t, b)
	assert.Empty(t, snap.PendingReports(d).Detail,
		"issue categories operate only over the active set")
}

func TestDaysOpen_IntegerTruncated(t *testing.T) {
	b := &eventBuilder{}
	b.add(1, "framing", core.StatusReport, "phase 1", testNow.Add(-36*time.Hour))

	snap, d := resolve(t, b)
	report := snap.PendingReports(d)
	require.Len(t, report.Detail, 1)
	assert.Equal(t, 1, report.Detail[0].DaysOpen)
}
