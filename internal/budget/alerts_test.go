package budget

import (
	"context"
	"testing"

	"budgetd/internal/core"
)

func summaryFixture() *core.Summary {
	return &core.Summary{
		Year:        2025,
		Month:       3,
		TotalIncome: 2000,
		Categories: []core.CategorySummary{
			{CategoryID: 1, Name: "Rent", MonthlyLimit: 1000, Spent: 400},
			{CategoryID: 2, Name: "Dining", MonthlyLimit: 200, Spent: 180},
			{CategoryID: 3, Name: "Groceries", MonthlyLimit: 300, Spent: 300},
		},
	}
}

func TestEvaluate_ThresholdAlerts(t *testing.T) {
	store := newFakeAlertStore()
	gen := NewAlertGenerator(store, nil)
	period := core.Period{Year: 2025, Month: 3}

	created, err := gen.Evaluate(context.Background(), 1, period, summaryFixture())
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	if len(created) != 2 {
		t.Fatalf("created %d alerts, want 2", len(created))
	}

	byCode := make(map[string]core.Alert)
	for _, a := range created {
		byCode[a.Code] = a
	}

	warning, ok := byCode["cat-2-80-2025-3"]
	if !ok {
		t.Fatal("missing 80% warning for Dining")
	}
	if warning.Level != core.LevelWarning {
		t.Errorf("Dining alert level = %q, want warning", warning.Level)
	}

	over, ok := byCode["cat-3-100-2025-3"]
	if !ok {
		t.Fatal("missing full-limit alert for Groceries")
	}
	if over.Level != core.LevelAlert {
		t.Errorf("Groceries alert level = %q, want alert", over.Level)
	}
}

func TestEvaluate_MostSevereRuleWins(t *testing.T) {
	store := newFakeAlertStore()
	gen := NewAlertGenerator(store, nil)
	period := core.Period{Year: 2025, Month: 3}

	summary := &core.Summary{
		Year:  2025,
		Month: 3,
		Categories: []core.CategorySummary{
			// Over the limit also means over 80%; only the breach fires.
			{CategoryID: 5, Name: "Subscriptions", MonthlyLimit: 100, Spent: 150},
		},
	}

	created, err := gen.Evaluate(context.Background(), 1, period, summary)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("created %d alerts, want 1", len(created))
	}
	if created[0].Code != "cat-5-100-2025-3" {
		t.Errorf("Code = %q, want the 100%% breach", created[0].Code)
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	store := newFakeAlertStore()
	gen := NewAlertGenerator(store, nil)
	period := core.Period{Year: 2025, Month: 3}
	ctx := context.Background()

	first, err := gen.Evaluate(ctx, 1, period, summaryFixture())
	if err != nil {
		t.Fatalf("first Evaluate() error = %v", err)
	}
	second, err := gen.Evaluate(ctx, 1, period, summaryFixture())
	if err != nil {
		t.Fatalf("second Evaluate() error = %v", err)
	}

	if len(second) != 0 {
		t.Errorf("second evaluation created %d alerts, want 0", len(second))
	}
	if len(store.alerts) != len(first) {
		t.Errorf("stored %d alerts, want %d (one per triggered code)", len(store.alerts), len(first))
	}
}

func TestEvaluate_PacingAlert(t *testing.T) {
	tests := []struct {
		name           string
		totalIncome    float64
		plannedSavings float64
		projected      float64
		want           bool
	}{
		{
			name:        "projection under income",
			totalIncome: 2000, projected: 1500,
			want: false,
		},
		{
			name:        "projection over income",
			totalIncome: 2000, projected: 2100,
			want: true,
		},
		{
			name:        "savings tighten the threshold",
			totalIncome: 2000, plannedSavings: 300, projected: 1800,
			want: true,
		},
		{
			name:        "zero income never paces",
			totalIncome: 0, projected: 500,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeAlertStore()
			gen := NewAlertGenerator(store, nil)
			summary := &core.Summary{
				Year:           2025,
				Month:          3,
				TotalIncome:    tt.totalIncome,
				PlannedSavings: tt.plannedSavings,
				ProjectedTotal: tt.projected,
			}

			created, err := gen.Evaluate(context.Background(), 1, core.Period{Year: 2025, Month: 3}, summary)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}

			got := false
			for _, a := range created {
				if a.Code == "pace-2025-3" {
					got = true
				}
			}
			if got != tt.want {
				t.Errorf("pacing alert = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluate_PublishesCreatedAlerts(t *testing.T) {
	store := newFakeAlertStore()
	pub := &fakePublisher{}
	gen := NewAlertGenerator(store, pub)
	period := core.Period{Year: 2025, Month: 3}
	ctx := context.Background()

	created, err := gen.Evaluate(ctx, 1, period, summaryFixture())
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(pub.published) != len(created) {
		t.Errorf("published %d events, want %d", len(pub.published), len(created))
	}

	// Re-evaluation creates nothing and therefore publishes nothing.
	if _, err := gen.Evaluate(ctx, 1, period, summaryFixture()); err != nil {
		t.Fatalf("second Evaluate() error = %v", err)
	}
	if len(pub.published) != len(created) {
		t.Errorf("re-evaluation published extra events: %d total", len(pub.published))
	}
}
