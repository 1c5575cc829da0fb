package http

import (
	"errors"
	"log/slog"
	"net/http"

	"budgetd/internal/core"
	"budgetd/internal/storage"
)

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid X-User-ID header")
		return
	}
	period := parsePeriod(r, s.now())

	alerts, err := s.repo.ListAlerts(r.Context(), uid, period)
	if err != nil {
		slog.ErrorContext(r.Context(), "Alert list failed",
			"error", err, "user_id", uid, "year", period.Year, "month", period.Month)
		writeError(w, http.StatusInternalServerError, "failed to load alerts")
		return
	}
	if alerts == nil {
		alerts = []core.Alert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (s *Server) handleMarkAlertRead(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid X-User-ID header")
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid alert id")
		return
	}

	if err := s.repo.MarkAlertRead(r.Context(), uid, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "alert not found")
			return
		}
		slog.ErrorContext(r.Context(), "Alert read update failed", "error", err, "user_id", uid, "alert_id", id)
		writeError(w, http.StatusInternalServerError, "failed to update alert")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
