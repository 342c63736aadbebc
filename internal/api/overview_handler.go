package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/evandro-macedo/interactive-dashboard/internal/core"
)

// GetPhaseSummary returns active-job counts per phase.
func (a *API) GetPhaseSummary(w http.ResponseWriter, r *http.Request) {
	phases, err := a.views.PhaseSummary(r.Context())
	if err != nil {
		a.log.Error("phase summary failed", zap.Error(err))
		respondError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"phases": phases})
}

// GetActiveDetail returns every active job with its latest activity.
func (a *API) GetActiveDetail(w http.ResponseWriter, r *http.Request) {
	jobs, err := a.views.ActiveDetail(r.Context())
	if err != nil {
		a.log.Error("active detail failed", zap.Error(err))
		respondError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"jobs": jobs})
}

// GetFailedInspections returns the failed-inspections report.
func (a *API) GetFailedInspections(w http.ResponseWriter, r *http.Request) {
	report, err := a.views.FailedInspections(r.Context())
	if err != nil {
		a.log.Error("failed inspections failed", zap.Error(err))
		respondError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, report)
}

// GetPendingReports returns the pending-reports report.
func (a *API) GetPendingReports(w http.ResponseWriter, r *http.Request) {
	report, err := a.views.PendingReports(r.Context())
	if err != nil {
		a.log.Error("pending reports failed", zap.Error(err))
		respondError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, report)
}

// GetOpenScheduled returns the open-scheduled-items report.
func (a *API) GetOpenScheduled(w http.ResponseWriter, r *http.Request) {
	report, err := a.views.OpenScheduled(r.Context())
	if err != nil {
		a.log.Error("open scheduled failed", zap.Error(err))
		respondError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, report)
}

// GetFinalized lists jobs that reached the terminal marker.
func (a *API) GetFinalized(w http.ResponseWriter, r *http.Request) {
	jobs, err := a.views.Finalized(r.Context())
	if err != nil {
		a.log.Error("finalized list failed", zap.Error(err))
		respondError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"jobs": jobs})
}

// GetJobHistory returns the trailing 90 days of events for one job,
// newest first.
func (a *API) GetJobHistory(w http.ResponseWriter, r *http.Request) {
	jobID, err := strconv.ParseInt(chi.URLParam(r, "job_id"), 10, 64)
	if err != nil {
		WriteError(w, core.NewAppError(core.ErrBadRequest, "job_id must be an integer"))
		return
	}

	events, err := a.views.JobHistory(r.Context(), jobID)
	if err != nil {
		respondError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"job_id": jobID,
		"events": events,
	})
}
