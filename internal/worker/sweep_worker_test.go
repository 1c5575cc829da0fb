package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"budgetd/internal/amqp"
	"budgetd/internal/budget"
	"budgetd/internal/core"
)

type fakeBackend struct {
	mu      sync.Mutex
	userIDs []int64
	spent   map[int64]map[int64]float64 // userID -> categoryID -> amount
	alerts  map[string]core.Alert
	failFor int64
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		spent:  make(map[int64]map[int64]float64),
		alerts: make(map[string]core.Alert),
	}
}

func (f *fakeBackend) ListUserIDs(ctx context.Context) ([]int64, error) { return f.userIDs, nil }

func (f *fakeBackend) ListActiveCategories(ctx context.Context, userID int64) ([]core.Category, error) {
	if userID == f.failFor {
		return nil, errors.New("storage offline")
	}
	return []core.Category{
		{ID: 1, UserID: userID, Name: "Groceries", MonthlyLimit: 100, Tag: core.TagRegular, IsActive: true},
	}, nil
}

func (f *fakeBackend) GetCategory(ctx context.Context, userID, categoryID int64) (*core.Category, error) {
	return nil, errors.New("not used")
}

func (f *fakeBackend) ListLimitVersions(ctx context.Context, userID int64, categoryIDs []int64) ([]core.LimitVersion, error) {
	return nil, nil
}

func (f *fakeBackend) GetIncome(ctx context.Context, userID int64, period core.Period) (*core.IncomeRecord, error) {
	return nil, nil
}

func (f *fakeBackend) SumExpensesByCategory(ctx context.Context, userID int64, period core.Period) (map[int64]float64, error) {
	return f.spent[userID], nil
}

func (f *fakeBackend) ListActiveDebts(ctx context.Context, userID int64) ([]core.Debt, error) {
	return nil, nil
}

func (f *fakeBackend) UpsertLimit(ctx context.Context, userID int64, v core.LimitVersion) error {
	return nil
}

func (f *fakeBackend) InsertAlertIfAbsent(ctx context.Context, alert core.Alert) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := fmt.Sprintf("%d|%s", alert.UserID, alert.Code)
	if _, ok := f.alerts[key]; ok {
		return false, nil
	}
	f.alerts[key] = alert
	return true, nil
}

func (f *fakeBackend) alertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.alerts)
}

func newSweepWorker(backend *fakeBackend) *SweepWorker {
	service := budget.NewService(backend, backend)
	alerts := budget.NewAlertGenerator(backend, nil)
	w := NewSweepWorker(backend, service, alerts, time.Minute, 2)
	w.now = func() time.Time { return time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC) }
	return w
}

func TestSweep_CreatesAlertsForEveryUser(t *testing.T) {
	backend := newFakeBackend()
	backend.userIDs = []int64{1, 2, 3}
	for _, id := range backend.userIDs {
		backend.spent[id] = map[int64]float64{1: 120} // over the 100 limit
	}
	w := newSweepWorker(backend)

	if err := w.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if got := backend.alertCount(); got != 3 {
		t.Errorf("alerts created = %v, want 3", got)
	}
}

func TestSweep_Idempotent(t *testing.T) {
	backend := newFakeBackend()
	backend.userIDs = []int64{1}
	backend.spent[1] = map[int64]float64{1: 120}
	w := newSweepWorker(backend)

	for i := 0; i < 3; i++ {
		if err := w.Sweep(context.Background()); err != nil {
			t.Fatalf("Sweep() #%d error = %v", i, err)
		}
	}
	if got := backend.alertCount(); got != 1 {
		t.Errorf("alerts after repeated sweeps = %v, want 1", got)
	}
}

func TestHandleAlertEvent(t *testing.T) {
	msg := &amqp.AlertCreatedMessage{
		AlertID: 42, UserID: 1, Year: 2026, Month: 9,
		Code: "pace-2026-9", Level: "alert",
		Message: "Overall spending pace is projected to exceed the budget.",
	}
	if err := HandleAlertEvent(context.Background(), msg); err != nil {
		t.Errorf("HandleAlertEvent() error = %v", err)
	}

	// A nil event must be rejected so the consumer nacks it.
	if err := HandleAlertEvent(context.Background(), nil); err == nil {
		t.Error("HandleAlertEvent(nil) should fail")
	}
}

func TestSweep_UserFailureDoesNotStopOthers(t *testing.T) {
	backend := newFakeBackend()
	backend.userIDs = []int64{1, 2}
	backend.failFor = 1
	backend.spent[2] = map[int64]float64{1: 120}
	w := newSweepWorker(backend)

	if err := w.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if got := backend.alertCount(); got != 1 {
		t.Errorf("alerts created = %v, want 1 from the healthy user", got)
	}
}
