package http

import (
	"errors"
	"log/slog"
	"net/http"

	"budgetd/internal/budget"
	"budgetd/internal/core"
	"budgetd/internal/storage"
)

type debtRequest struct {
	Name    string  `json:"name"`
	Balance float64 `json:"balance"`
	APR     float64 `json:"apr"`
	Minimum float64 `json:"minimum"`
	Extra   float64 `json:"extra"`
}

func (s *Server) handleListDebts(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid X-User-ID header")
		return
	}

	debts, err := s.repo.ListActiveDebts(r.Context(), uid)
	if err != nil {
		slog.ErrorContext(r.Context(), "Debt list failed", "error", err, "user_id", uid)
		writeError(w, http.StatusInternalServerError, "failed to load debts")
		return
	}
	if debts == nil {
		debts = []core.Debt{}
	}
	writeJSON(w, http.StatusOK, debts)
}

func (s *Server) handleCreateDebt(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid X-User-ID header")
		return
	}

	var req debtRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	debt := core.Debt{
		UserID:   uid,
		Name:     sanitizeInput(req.Name),
		Balance:  req.Balance,
		APR:      req.APR,
		Minimum:  req.Minimum,
		Extra:    req.Extra,
		IsActive: true,
	}
	if err := debt.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.repo.CreateDebt(r.Context(), debt)
	if err != nil {
		slog.ErrorContext(r.Context(), "Debt create failed", "error", err, "user_id", uid)
		writeError(w, http.StatusInternalServerError, "failed to create debt")
		return
	}
	debt.ID = id

	s.invalidateSummaries(uid)
	writeJSON(w, http.StatusCreated, debt)
}

func (s *Server) handleUpdateDebt(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid X-User-ID header")
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid debt id")
		return
	}

	var req debtRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	debt := core.Debt{
		ID:       id,
		UserID:   uid,
		Name:     sanitizeInput(req.Name),
		Balance:  req.Balance,
		APR:      req.APR,
		Minimum:  req.Minimum,
		Extra:    req.Extra,
		IsActive: true,
	}
	if err := debt.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.repo.UpdateDebt(r.Context(), debt); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "debt not found")
			return
		}
		slog.ErrorContext(r.Context(), "Debt update failed", "error", err, "user_id", uid, "debt_id", id)
		writeError(w, http.StatusInternalServerError, "failed to update debt")
		return
	}

	s.invalidateSummaries(uid)
	writeJSON(w, http.StatusOK, debt)
}

func (s *Server) handleDeleteDebt(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid X-User-ID header")
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid debt id")
		return
	}

	if err := s.repo.DeactivateDebt(r.Context(), uid, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "debt not found")
			return
		}
		slog.ErrorContext(r.Context(), "Debt delete failed", "error", err, "user_id", uid, "debt_id", id)
		writeError(w, http.StatusInternalServerError, "failed to delete debt")
		return
	}

	s.invalidateSummaries(uid)
	w.WriteHeader(http.StatusNoContent)
}

type simulateRequest struct {
	Strategy     string  `json:"strategy"`
	ExtraMonthly float64 `json:"extra_monthly"`
}

func (s *Server) handleSimulateDebts(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid X-User-ID header")
		return
	}

	var req simulateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ExtraMonthly < 0 {
		writeError(w, http.StatusUnprocessableEntity, "extra_monthly must not be negative")
		return
	}

	debts, err := s.repo.ListActiveDebts(r.Context(), uid)
	if err != nil {
		slog.ErrorContext(r.Context(), "Debt list failed", "error", err, "user_id", uid)
		writeError(w, http.StatusInternalServerError, "failed to load debts")
		return
	}

	plan, err := budget.Simulate(debts, req.Strategy, req.ExtraMonthly)
	if err != nil {
		if errors.Is(err, budget.ErrInvalidStrategy) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Debt simulation failed", "error", err, "user_id", uid, "strategy", req.Strategy)
		writeError(w, http.StatusInternalServerError, "failed to simulate payoff")
		return
	}

	writeJSON(w, http.StatusOK, plan)
}
