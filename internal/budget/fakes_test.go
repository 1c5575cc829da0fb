package budget

import (
	"context"
	"fmt"

	"budgetd/internal/core"
)

// fakeStore is an in-memory Store for engine tests.
type fakeStore struct {
	categories []core.Category
	versions   []core.LimitVersion
	income     *core.IncomeRecord
	spent      map[int64]float64
	debts      []core.Debt
}

func (f *fakeStore) ListActiveCategories(_ context.Context, _ int64) ([]core.Category, error) {
	return f.categories, nil
}

func (f *fakeStore) GetCategory(_ context.Context, _, categoryID int64) (*core.Category, error) {
	for _, c := range f.categories {
		if c.ID == categoryID {
			cat := c
			return &cat, nil
		}
	}
	return nil, fmt.Errorf("category %d not found", categoryID)
}

func (f *fakeStore) ListLimitVersions(_ context.Context, _ int64, categoryIDs []int64) ([]core.LimitVersion, error) {
	wanted := make(map[int64]bool, len(categoryIDs))
	for _, id := range categoryIDs {
		wanted[id] = true
	}
	var out []core.LimitVersion
	for _, v := range f.versions {
		if wanted[v.CategoryID] {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeStore) GetIncome(_ context.Context, _ int64, _ core.Period) (*core.IncomeRecord, error) {
	return f.income, nil
}

func (f *fakeStore) SumExpensesByCategory(_ context.Context, _ int64, _ core.Period) (map[int64]float64, error) {
	if f.spent == nil {
		return map[int64]float64{}, nil
	}
	return f.spent, nil
}

func (f *fakeStore) ListActiveDebts(_ context.Context, _ int64) ([]core.Debt, error) {
	return f.debts, nil
}

func (f *fakeStore) UpsertLimit(_ context.Context, _ int64, v core.LimitVersion) error {
	for i, existing := range f.versions {
		if existing.CategoryID == v.CategoryID && existing.Year == v.Year && existing.Month == v.Month {
			f.versions[i] = v
			return nil
		}
	}
	f.versions = append(f.versions, v)
	return nil
}

// fakeAlertStore records inserted alerts keyed by their dedup code.
type fakeAlertStore struct {
	alerts   map[string]core.Alert
	attempts int
}

func newFakeAlertStore() *fakeAlertStore {
	return &fakeAlertStore{alerts: make(map[string]core.Alert)}
}

func (f *fakeAlertStore) InsertAlertIfAbsent(_ context.Context, alert core.Alert) (bool, error) {
	f.attempts++
	key := fmt.Sprintf("%d|%s|%d|%d", alert.UserID, alert.Code, alert.Year, alert.Month)
	if _, exists := f.alerts[key]; exists {
		return false, nil
	}
	f.alerts[key] = alert
	return true, nil
}

// fakePublisher captures alert events.
type fakePublisher struct {
	published []core.Alert
}

func (f *fakePublisher) PublishAlertCreated(_ context.Context, alert core.Alert) error {
	f.published = append(f.published, alert)
	return nil
}
