package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"budgetd/internal/core"
	"budgetd/internal/storage"
)

type expenseRequest struct {
	CategoryID int64   `json:"category_id"`
	Amount     float64 `json:"amount"`
	Date       string  `json:"date"`
	Note       string  `json:"note"`
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid X-User-ID header")
		return
	}
	period := parsePeriod(r, s.now())

	expenses, err := s.repo.ListExpenses(r.Context(), uid, period)
	if err != nil {
		slog.ErrorContext(r.Context(), "Expense list failed",
			"error", err, "user_id", uid, "year", period.Year, "month", period.Month)
		writeError(w, http.StatusInternalServerError, "failed to load expenses")
		return
	}
	if expenses == nil {
		expenses = []core.Expense{}
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid X-User-ID header")
		return
	}

	var req expenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	date := s.now()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "date must be YYYY-MM-DD")
			return
		}
		date = parsed
	}

	if req.CategoryID != 0 {
		if _, err := s.repo.GetCategory(r.Context(), uid, req.CategoryID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, http.StatusNotFound, "category not found")
				return
			}
			slog.ErrorContext(r.Context(), "Category lookup failed", "error", err, "user_id", uid, "category_id", req.CategoryID)
			writeError(w, http.StatusInternalServerError, "failed to load category")
			return
		}
	}

	expense := core.Expense{
		UserID:     uid,
		CategoryID: req.CategoryID,
		Amount:     req.Amount,
		Date:       date,
		Note:       sanitizeInput(req.Note),
	}
	if err := expense.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.repo.CreateExpense(r.Context(), expense)
	if err != nil {
		slog.ErrorContext(r.Context(), "Expense create failed", "error", err, "user_id", uid)
		writeError(w, http.StatusInternalServerError, "failed to create expense")
		return
	}
	expense.ID = id

	s.invalidateSummaries(uid)
	s.evaluateAlerts(r.Context(), uid, core.CurrentPeriod(expense.Date))
	writeJSON(w, http.StatusCreated, expense)
}
