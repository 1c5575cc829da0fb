package budget

import (
	"context"

	"budgetd/internal/core"
)

// Store is the read surface the budget engine needs from persistence.
// The engine itself is pure computation; everything stateful lives behind
// this interface.
type Store interface {
	ListActiveCategories(ctx context.Context, userID int64) ([]core.Category, error)

	GetCategory(ctx context.Context, userID, categoryID int64) (*core.Category, error)

	// ListLimitVersions returns every stored limit version for the given
	// categories, in no particular order.
	ListLimitVersions(ctx context.Context, userID int64, categoryIDs []int64) ([]core.LimitVersion, error)

	// GetIncome returns nil when no income record exists for the period.
	GetIncome(ctx context.Context, userID int64, period core.Period) (*core.IncomeRecord, error)

	// SumExpensesByCategory totals expenses per category for the calendar
	// month, both boundary days inclusive.
	SumExpensesByCategory(ctx context.Context, userID int64, period core.Period) (map[int64]float64, error)

	ListActiveDebts(ctx context.Context, userID int64) ([]core.Debt, error)
}

// AlertStore persists generated alerts. InsertIfAbsent must be atomic with
// respect to the (user, code, year, month) key so concurrent evaluations
// cannot create duplicates; a conflicting insert reports created=false and
// no error.
type AlertStore interface {
	InsertAlertIfAbsent(ctx context.Context, alert core.Alert) (created bool, err error)
}

// LimitWriter is the single mutator of the limit version history.
type LimitWriter interface {
	// UpsertLimit writes the exact-period version, overwriting the amount
	// when the (user, category, year, month) key already exists.
	UpsertLimit(ctx context.Context, userID int64, v core.LimitVersion) error
}

// EventPublisher hands newly created alerts off to an external channel.
// Delivery is somebody else's problem; the engine only announces.
type EventPublisher interface {
	PublishAlertCreated(ctx context.Context, alert core.Alert) error
}
