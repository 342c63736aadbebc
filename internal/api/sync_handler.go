package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/evandro-macedo/interactive-dashboard/internal/core"
)

var auditTables = map[string]bool{
	"events":           true,
	"rule_annotations": true,
}

// GetSyncStatus returns the outcome of the most recent replication run
// per table.
func (a *API) GetSyncStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := make(map[string]interface{}, len(auditTables))
	for table := range auditTables {
		audit, err := a.store.LatestSyncAudit(ctx, table)
		if err != nil {
			// No sync has run yet for this table.
			status[table] = nil
			continue
		}
		status[table] = audit
	}
	WriteJSON(w, http.StatusOK, status)
}

// ListSyncAudit returns recent replication attempts for one table.
func (a *API) ListSyncAudit(w http.ResponseWriter, r *http.Request) {
	table := r.URL.Query().Get("table")
	if table == "" {
		table = "events"
	}
	if !auditTables[table] {
		WriteError(w, core.NewAppError(core.ErrBadRequest, "unknown table"))
		return
	}

	limit := parseLimit(r.URL.Query().Get("limit"), 20, 100)
	audits, err := a.store.ListSyncAudit(r.Context(), table, limit)
	if err != nil {
		a.log.Error("list sync audit failed", zap.Error(err))
		respondError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"audits": audits})
}
