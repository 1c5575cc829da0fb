// Package worker runs the periodic alert sweep. The HTTP API evaluates
// alerts on summary reads; the sweep catches users who never open the app
// during a month.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"budgetd/internal/budget"
	"budgetd/internal/core"
)

// UserLister enumerates users with budgeting data.
type UserLister interface {
	ListUserIDs(ctx context.Context) ([]int64, error)
}

type SweepWorker struct {
	users       UserLister
	service     *budget.Service
	alerts      *budget.AlertGenerator
	interval    time.Duration
	concurrency int
	now         func() time.Time
}

func NewSweepWorker(users UserLister, service *budget.Service, alerts *budget.AlertGenerator, interval time.Duration, concurrency int) *SweepWorker {
	return &SweepWorker{
		users:       users,
		service:     service,
		alerts:      alerts,
		interval:    interval,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// Run sweeps immediately, then on every tick until ctx is cancelled.
func (w *SweepWorker) Run(ctx context.Context) error {
	slog.InfoContext(ctx, "Alert sweep worker started",
		"interval", w.interval, "concurrency", w.concurrency)

	if err := w.Sweep(ctx); err != nil {
		slog.ErrorContext(ctx, "Initial sweep failed", "error", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Alert sweep worker stopping", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			if err := w.Sweep(ctx); err != nil {
				slog.ErrorContext(ctx, "Sweep failed", "error", err)
			}
		}
	}
}

// Sweep evaluates the current month's alerts for every user. Per-user
// failures are logged and do not stop the sweep.
func (w *SweepWorker) Sweep(ctx context.Context) error {
	userIDs, err := w.users.ListUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	period := core.CurrentPeriod(w.now())
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)

	for _, userID := range userIDs {
		g.Go(func() error {
			if err := w.sweepUser(ctx, userID, period); err != nil {
				slog.ErrorContext(ctx, "User sweep failed",
					"error", err, "user_id", userID, "year", period.Year, "month", period.Month)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Sweep completed",
		"users", len(userIDs), "duration", time.Since(start))
	return nil
}

func (w *SweepWorker) sweepUser(ctx context.Context, userID int64, period core.Period) error {
	summary, err := w.service.ComputeSummary(ctx, userID, period)
	if err != nil {
		return fmt.Errorf("compute summary: %w", err)
	}

	created, err := w.alerts.Evaluate(ctx, userID, period, summary)
	if err != nil {
		return fmt.Errorf("evaluate alerts: %w", err)
	}

	if len(created) > 0 {
		slog.InfoContext(ctx, "Sweep created alerts", "user_id", userID, "count", len(created))
	}
	return nil
}
