package http

import (
	"errors"
	"log/slog"
	"net/http"

	"budgetd/internal/core"
	"budgetd/internal/storage"
)

type categoryRequest struct {
	Name         string  `json:"name"`
	MonthlyLimit float64 `json:"monthly_limit"`
	Tag          string  `json:"tag"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid X-User-ID header")
		return
	}

	// First contact provisions the default category set.
	if err := s.repo.SeedDefaultCategories(r.Context(), uid); err != nil {
		slog.ErrorContext(r.Context(), "Category seeding failed", "error", err, "user_id", uid)
		writeError(w, http.StatusInternalServerError, "failed to load categories")
		return
	}

	categories, err := s.repo.ListActiveCategories(r.Context(), uid)
	if err != nil {
		slog.ErrorContext(r.Context(), "Category list failed", "error", err, "user_id", uid)
		writeError(w, http.StatusInternalServerError, "failed to load categories")
		return
	}
	if categories == nil {
		categories = []core.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid X-User-ID header")
		return
	}

	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	category := core.Category{
		UserID:       uid,
		Name:         sanitizeInput(req.Name),
		MonthlyLimit: req.MonthlyLimit,
		Tag:          core.CategoryTag(req.Tag),
		IsActive:     true,
	}
	if category.Tag == "" {
		category.Tag = core.TagRegular
	}
	if err := category.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.repo.CreateCategory(r.Context(), category)
	if err != nil {
		slog.ErrorContext(r.Context(), "Category create failed", "error", err, "user_id", uid)
		writeError(w, http.StatusInternalServerError, "failed to create category")
		return
	}
	category.ID = id

	s.invalidateSummaries(uid)
	s.evaluateAlerts(r.Context(), uid, core.CurrentPeriod(s.now()))
	writeJSON(w, http.StatusCreated, category)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid X-User-ID header")
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	existing, err := s.repo.GetCategory(r.Context(), uid, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "category not found")
			return
		}
		slog.ErrorContext(r.Context(), "Category lookup failed", "error", err, "user_id", uid, "category_id", id)
		writeError(w, http.StatusInternalServerError, "failed to load category")
		return
	}
	if existing.IsSystem {
		writeError(w, http.StatusUnprocessableEntity, "system category cannot be modified")
		return
	}

	category := core.Category{
		ID:           id,
		UserID:       uid,
		Name:         sanitizeInput(req.Name),
		MonthlyLimit: req.MonthlyLimit,
		Tag:          core.CategoryTag(req.Tag),
		IsActive:     true,
	}
	if category.Tag == "" {
		category.Tag = existing.Tag
	}
	if err := category.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.repo.UpdateCategory(r.Context(), category); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "category not found")
			return
		}
		slog.ErrorContext(r.Context(), "Category update failed", "error", err, "user_id", uid, "category_id", id)
		writeError(w, http.StatusInternalServerError, "failed to update category")
		return
	}

	s.invalidateSummaries(uid)
	s.evaluateAlerts(r.Context(), uid, core.CurrentPeriod(s.now()))
	writeJSON(w, http.StatusOK, category)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid X-User-ID header")
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	var replacementID int64
	if v := r.URL.Query().Get("reassign_to"); v != "" {
		replacementID, ok = parseID(v)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid reassign_to parameter")
			return
		}
	}

	reassignedTo, err := s.repo.DeactivateCategory(r.Context(), uid, id, replacementID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "category not found")
			return
		}
		slog.ErrorContext(r.Context(), "Category delete failed", "error", err, "user_id", uid, "category_id", id)
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.invalidateSummaries(uid)
	s.evaluateAlerts(r.Context(), uid, core.CurrentPeriod(s.now()))
	writeJSON(w, http.StatusOK, map[string]int64{"reassigned_to": reassignedTo})
}
