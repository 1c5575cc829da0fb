package budget

import (
	"context"
	"fmt"
	"log/slog"

	"budgetd/internal/core"
)

// AlertGenerator turns a computed summary into persisted alerts. Each alert
// carries a code unique per (user, code, year, month); creation goes through
// the store's insert-if-absent so re-evaluating an unchanged month is a
// no-op and an alert is never raised twice, even if its condition persists.
type AlertGenerator struct {
	alerts AlertStore
	events EventPublisher // optional, nil disables publishing
}

func NewAlertGenerator(alerts AlertStore, events EventPublisher) *AlertGenerator {
	return &AlertGenerator{alerts: alerts, events: events}
}

// Evaluate applies the threshold and pacing rules to an already-computed
// summary and persists whatever fires. Per category the most severe rule
// wins: full-limit breach over the 80% warning. Returns the alerts actually
// created this call.
func (g *AlertGenerator) Evaluate(ctx context.Context, userID int64, period core.Period, summary *core.Summary) ([]core.Alert, error) {
	var created []core.Alert

	for _, cat := range summary.Categories {
		if cat.MonthlyLimit <= 0 {
			continue
		}
		switch {
		case cat.Spent >= cat.MonthlyLimit:
			alert, err := g.create(ctx, core.Alert{
				UserID:     userID,
				CategoryID: cat.CategoryID,
				Year:       period.Year,
				Month:      period.Month,
				Code:       fmt.Sprintf("cat-%d-100-%d-%d", cat.CategoryID, period.Year, period.Month),
				Level:      core.LevelAlert,
				Message:    fmt.Sprintf("%s is over the monthly limit.", cat.Name),
			})
			if err != nil {
				return created, err
			}
			if alert != nil {
				created = append(created, *alert)
			}
		case cat.Spent >= warnRatio*cat.MonthlyLimit:
			alert, err := g.create(ctx, core.Alert{
				UserID:     userID,
				CategoryID: cat.CategoryID,
				Year:       period.Year,
				Month:      period.Month,
				Code:       fmt.Sprintf("cat-%d-80-%d-%d", cat.CategoryID, period.Year, period.Month),
				Level:      core.LevelWarning,
				Message:    fmt.Sprintf("%s reached 80%% of the monthly limit.", cat.Name),
			})
			if err != nil {
				return created, err
			}
			if alert != nil {
				created = append(created, *alert)
			}
		}
	}

	// Pacing: compare the linear projection against income net of planned
	// savings (gross income when no savings line exists).
	threshold := summary.TotalIncome
	if summary.PlannedSavings > 0 {
		threshold = summary.TotalIncome - summary.PlannedSavings
	}
	if threshold > 0 && summary.ProjectedTotal > threshold {
		alert, err := g.create(ctx, core.Alert{
			UserID:  userID,
			Year:    period.Year,
			Month:   period.Month,
			Code:    fmt.Sprintf("pace-%d-%d", period.Year, period.Month),
			Level:   core.LevelAlert,
			Message: "Overall spending pace is projected to exceed the budget.",
		})
		if err != nil {
			return created, err
		}
		if alert != nil {
			created = append(created, *alert)
		}
	}

	return created, nil
}

func (g *AlertGenerator) create(ctx context.Context, alert core.Alert) (*core.Alert, error) {
	ok, err := g.alerts.InsertAlertIfAbsent(ctx, alert)
	if err != nil {
		return nil, fmt.Errorf("insert alert %s: %w", alert.Code, err)
	}
	if !ok {
		// Already raised for this period.
		return nil, nil
	}

	if g.events != nil {
		if err := g.events.PublishAlertCreated(ctx, alert); err != nil {
			// The alert is persisted; a lost event is not worth failing for.
			slog.ErrorContext(ctx, "Failed to publish alert event",
				"code", alert.Code, "error", err)
		}
	}

	return &alert, nil
}
