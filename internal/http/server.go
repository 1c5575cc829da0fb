// Package http exposes the budgeting API over JSON.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"budgetd/internal/budget"
	"budgetd/internal/cache"
	"budgetd/internal/core"
)

const (
	handlerTimeout   = 10 * time.Second
	summaryCacheSize = 256
	summaryCacheTTL  = 2 * time.Minute
)

// Repository is the persistence surface the handlers need beyond the
// budget engine itself.
type Repository interface {
	ListActiveCategories(ctx context.Context, userID int64) ([]core.Category, error)
	GetCategory(ctx context.Context, userID, categoryID int64) (*core.Category, error)
	CreateCategory(ctx context.Context, c core.Category) (int64, error)
	UpdateCategory(ctx context.Context, c core.Category) error
	DeactivateCategory(ctx context.Context, userID, categoryID, replacementID int64) (int64, error)
	SeedDefaultCategories(ctx context.Context, userID int64) error

	CreateExpense(ctx context.Context, e core.Expense) (int64, error)
	ListExpenses(ctx context.Context, userID int64, period core.Period) ([]core.Expense, error)

	UpsertIncome(ctx context.Context, record core.IncomeRecord) error

	ListActiveDebts(ctx context.Context, userID int64) ([]core.Debt, error)
	CreateDebt(ctx context.Context, d core.Debt) (int64, error)
	UpdateDebt(ctx context.Context, d core.Debt) error
	DeactivateDebt(ctx context.Context, userID, debtID int64) error

	ListAlerts(ctx context.Context, userID int64, period core.Period) ([]core.Alert, error)
	MarkAlertRead(ctx context.Context, userID, alertID int64) error
}

type summaryKey struct {
	userID int64
	period core.Period
}

type Server struct {
	http.Server

	repo    Repository
	service *budget.Service
	alerts  *budget.AlertGenerator

	summaryCache *cache.LRU[summaryKey, *core.Summary]
	now          func() time.Time
}

// NewServer wires routes and returns a ready-to-run server.
func NewServer(addr string, repo Repository, service *budget.Service, alerts *budget.AlertGenerator) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		repo:         repo,
		service:      service,
		alerts:       alerts,
		summaryCache: cache.NewLRU[summaryKey, *core.Summary](summaryCacheSize, summaryCacheTTL),
		now:          time.Now,
	}

	mux.HandleFunc("GET /healthz", handleHealth)

	mux.HandleFunc("GET /api/budget/summary", s.withTimeout(s.handleGetSummary))
	mux.HandleFunc("POST /api/budget/income", s.withTimeout(s.handleUpsertIncome))
	mux.HandleFunc("POST /api/budget/limits", s.withTimeout(s.handleUpsertLimit))

	mux.HandleFunc("GET /api/categories", s.withTimeout(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.withTimeout(s.handleCreateCategory))
	mux.HandleFunc("PUT /api/categories/{id}", s.withTimeout(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", s.withTimeout(s.handleDeleteCategory))

	mux.HandleFunc("GET /api/expenses", s.withTimeout(s.handleListExpenses))
	mux.HandleFunc("POST /api/expenses", s.withTimeout(s.handleCreateExpense))

	mux.HandleFunc("GET /api/debts", s.withTimeout(s.handleListDebts))
	mux.HandleFunc("POST /api/debts", s.withTimeout(s.handleCreateDebt))
	mux.HandleFunc("PUT /api/debts/{id}", s.withTimeout(s.handleUpdateDebt))
	mux.HandleFunc("DELETE /api/debts/{id}", s.withTimeout(s.handleDeleteDebt))
	mux.HandleFunc("POST /api/debts/simulate", s.withTimeout(s.handleSimulateDebts))

	mux.HandleFunc("GET /api/alerts", s.withTimeout(s.handleListAlerts))
	mux.HandleFunc("PATCH /api/alerts/{id}/read", s.withTimeout(s.handleMarkAlertRead))

	return s
}

func (s *Server) withTimeout(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()
		next(w, r.WithContext(ctx))
	}
}

// invalidateSummaries drops every cached summary for the user. Called after
// any write that can change summary math.
func (s *Server) invalidateSummaries(userID int64) {
	s.summaryCache.DeleteFunc(func(k summaryKey) bool { return k.userID == userID })
}

// evaluateAlerts recomputes the period's summary and runs the alert rules.
// Write handlers call this so a threshold crossed by the write raises its
// alert immediately instead of waiting for the next read or sweep. The
// insert-if-absent store keeps repeated evaluations idempotent; failures
// are logged, never surfaced to the writer.
func (s *Server) evaluateAlerts(ctx context.Context, userID int64, period core.Period) {
	if s.alerts == nil {
		return
	}
	summary, err := s.service.ComputeSummary(ctx, userID, period)
	if err != nil {
		slog.ErrorContext(ctx, "Summary computation for alert evaluation failed",
			"error", err, "user_id", userID, "year", period.Year, "month", period.Month)
		return
	}
	if _, err := s.alerts.Evaluate(ctx, userID, period, summary); err != nil {
		slog.ErrorContext(ctx, "Alert evaluation failed",
			"error", err, "user_id", userID, "year", period.Year, "month", period.Month)
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down HTTP server")
	return s.Server.Shutdown(ctx)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
