package monitor

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/marvelquant/position-monitor/internal/positionmonitor"
	"github.com/marvelquant/position-monitor/internal/utils"
)

// Handler serves read-only status over the per-user monitor registries and
// the exit audit log. It never mutates a PositionMonitor.
type Handler struct {
	registries func(userID string) (*positionmonitor.MonitorRegistry, bool)
	auditStore *positionmonitor.ExitAuditStore
}

// NewHandler builds a Handler. registries looks up the live registry for a
// user id; it is a function rather than a map so the caller can back it with
// whatever per-user session store it already owns.
func NewHandler(registries func(userID string) (*positionmonitor.MonitorRegistry, bool), auditStore *positionmonitor.ExitAuditStore) *Handler {
	return &Handler{registries: registries, auditStore: auditStore}
}

type monitorSummary struct {
	ExecutionID string  `json:"executionId"`
	Direction   string  `json:"direction"`
	Active      bool    `json:"active"`
	ExitReason  string  `json:"exitReason,omitempty"`
	EntryPremium float64 `json:"entryPremium"`
	LegCount    int     `json:"legCount"`
}

// GetUserMonitors returns a snapshot of every monitor currently registered
// for a user.
func (h *Handler) GetUserMonitors(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]

	registry, ok := h.registries(userID)
	if !ok {
		utils.RespondWithJSON(w, http.StatusOK, []monitorSummary{})
		return
	}

	snapshot := registry.Snapshot()
	summaries := make([]monitorSummary, 0, len(snapshot))
	for _, m := range snapshot {
		summaries = append(summaries, monitorSummary{
			ExecutionID:  m.ExecutionID(),
			Direction:    string(m.Direction()),
			Active:       m.Active(),
			ExitReason:   m.ExitReason(),
			EntryPremium: m.EntryPremium(),
			LegCount:     len(m.Legs()),
		})
	}

	utils.RespondWithJSON(w, http.StatusOK, summaries)
}

// GetExecutionAlerts returns the most recent exit-audit entries for one
// execution id, newest first.
func (h *Handler) GetExecutionAlerts(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	executionID := vars["executionID"]

	limit := 50
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		if parsed, err := strconv.Atoi(limitParam); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	if h.auditStore == nil {
		utils.RespondWithJSON(w, http.StatusOK, []positionmonitor.ExitEvent{})
		return
	}

	events, err := h.auditStore.Recent(r.Context(), executionID, limit)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "error retrieving exit alerts")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, events)
}
