package http

import (
	"errors"
	"log/slog"
	"net/http"

	"budgetd/internal/core"
	"budgetd/internal/storage"
)

func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid X-User-ID header")
		return
	}
	period := parsePeriod(r, s.now())

	key := summaryKey{userID: uid, period: period}
	if summary, ok := s.summaryCache.Get(key); ok {
		writeJSON(w, http.StatusOK, summary)
		return
	}

	summary, err := s.service.ComputeSummary(r.Context(), uid, period)
	if err != nil {
		slog.ErrorContext(r.Context(), "Summary computation failed",
			"error", err, "user_id", uid, "year", period.Year, "month", period.Month)
		writeError(w, http.StatusInternalServerError, "failed to compute summary")
		return
	}

	// Threshold and pacing alerts piggyback on summary reads. A failed
	// evaluation does not block the response.
	if s.alerts != nil {
		if _, err := s.alerts.Evaluate(r.Context(), uid, period, summary); err != nil {
			slog.ErrorContext(r.Context(), "Alert evaluation failed",
				"error", err, "user_id", uid, "year", period.Year, "month", period.Month)
		}
	}

	s.summaryCache.Set(key, summary)
	writeJSON(w, http.StatusOK, summary)
}

type incomeRequest struct {
	Year        int               `json:"year"`
	Month       int               `json:"month"`
	Salary      float64           `json:"salary"`
	OtherIncome float64           `json:"other_income"`
	Sources     []incomeSourceDTO `json:"sources"`
}

type incomeSourceDTO struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

func (s *Server) handleUpsertIncome(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid X-User-ID header")
		return
	}

	var req incomeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	record := core.IncomeRecord{
		UserID:      uid,
		Year:        req.Year,
		Month:       req.Month,
		Salary:      req.Salary,
		OtherIncome: req.OtherIncome,
	}
	for _, src := range req.Sources {
		record.Sources = append(record.Sources, core.IncomeSource{
			Name:   sanitizeInput(src.Name),
			Amount: src.Amount,
		})
	}
	if err := record.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.repo.UpsertIncome(r.Context(), record); err != nil {
		slog.ErrorContext(r.Context(), "Income upsert failed", "error", err, "user_id", uid)
		writeError(w, http.StatusInternalServerError, "failed to save income")
		return
	}

	s.invalidateSummaries(uid)
	s.evaluateAlerts(r.Context(), uid, core.Period{Year: record.Year, Month: record.Month})
	writeJSON(w, http.StatusOK, record)
}

type limitRequest struct {
	CategoryID int64   `json:"category_id"`
	Year       int     `json:"year"`
	Month      int     `json:"month"`
	Limit      float64 `json:"limit"`
}

func (s *Server) handleUpsertLimit(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid X-User-ID header")
		return
	}

	var req limitRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if _, err := s.repo.GetCategory(r.Context(), uid, req.CategoryID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "category not found")
			return
		}
		slog.ErrorContext(r.Context(), "Category lookup failed", "error", err, "user_id", uid, "category_id", req.CategoryID)
		writeError(w, http.StatusInternalServerError, "failed to load category")
		return
	}

	version := core.LimitVersion{
		CategoryID: req.CategoryID,
		Year:       req.Year,
		Month:      req.Month,
		Limit:      req.Limit,
	}
	if err := s.service.UpsertLimit(r.Context(), uid, version); err != nil {
		if errors.Is(err, core.ErrInvalidMonth) || errors.Is(err, core.ErrInvalidAmount) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Limit upsert failed", "error", err, "user_id", uid, "category_id", req.CategoryID)
		writeError(w, http.StatusInternalServerError, "failed to save limit")
		return
	}

	s.invalidateSummaries(uid)
	s.evaluateAlerts(r.Context(), uid, core.Period{Year: version.Year, Month: version.Month})
	writeJSON(w, http.StatusOK, version)
}
