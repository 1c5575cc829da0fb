package budget

import (
	"errors"
	"sort"
	"strings"

	"budgetd/internal/core"
)

// maxSimulationMonths caps the amortization loop at roughly a hundred
// years, so a portfolio whose minimums never cover interest still
// terminates.
const maxSimulationMonths = 1200

// ErrInvalidStrategy rejects an unrecognized payoff strategy name. This is
// caller input, not a system fault.
var ErrInvalidStrategy = errors.New("strategy must be avalanche or snowball")

type Strategy string

const (
	// StrategyAvalanche targets the highest APR first; ties go to the
	// smaller balance.
	StrategyAvalanche Strategy = "avalanche"
	// StrategySnowball targets the smallest balance first; ties go to the
	// higher APR.
	StrategySnowball Strategy = "snowball"
)

// ParseStrategy normalizes case and surrounding whitespace.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyAvalanche:
		return StrategyAvalanche, nil
	case StrategySnowball:
		return StrategySnowball, nil
	}
	return "", ErrInvalidStrategy
}

// strategyOrderings maps each strategy to its extra-payment ordering. The
// ordering only governs distribution of the extra pool; minimum payments go
// to every debt regardless.
var strategyOrderings = map[Strategy]func(a, b *workingDebt) bool{
	StrategyAvalanche: func(a, b *workingDebt) bool {
		if a.apr != b.apr {
			return a.apr > b.apr
		}
		return a.balance < b.balance
	},
	StrategySnowball: func(a, b *workingDebt) bool {
		if a.balance != b.balance {
			return a.balance < b.balance
		}
		return a.apr > b.apr
	},
}

// workingDebt is the simulation's own mutable copy of a debt. Caller
// records are never touched.
type workingDebt struct {
	id          int64
	name        string
	balance     float64
	apr         float64
	minimum     float64
	extra       float64
	paidTotal   float64
	payoffMonth int // 0 until the balance first reaches zero
}

// Simulate runs a month-by-month amortization of the portfolio under the
// given strategy. Each month: interest compounds at apr/12, every open debt
// pays its own minimum+extra, then the extra pool (the global extra payment
// plus rollover freed by payoffs in the previous month) is walked in
// strategy order. A paid-off debt's minimum+extra joins the pool starting
// the following month.
//
// Debts that never reach zero within the cap are reported with PaidOff
// false and PayoffMonths equal to the final simulated month.
func Simulate(debts []core.Debt, strategy string, extraMonthly float64) (core.PayoffPlan, error) {
	strat, err := ParseStrategy(strategy)
	if err != nil {
		return core.PayoffPlan{}, err
	}

	work := make([]*workingDebt, 0, len(debts))
	for _, d := range debts {
		if d.Balance <= 0 {
			continue
		}
		work = append(work, &workingDebt{
			id:      d.ID,
			name:    d.Name,
			balance: d.Balance,
			apr:     d.APR,
			minimum: d.Minimum,
			extra:   d.Extra,
		})
	}
	if len(work) == 0 {
		return core.PayoffPlan{TotalMonths: 0, Schedule: []core.PayoffEntry{}}, nil
	}

	less := strategyOrderings[strat]
	ordered := make([]*workingDebt, len(work))
	copy(ordered, work)

	month := 0
	rolloverNext := 0.0
	for month < maxSimulationMonths {
		month++
		rollover := rolloverNext
		rolloverNext = 0

		for _, d := range work {
			if d.balance <= 0 {
				continue
			}
			d.balance += d.balance * d.apr / 100 / 12
		}

		// Balances moved, so the target order is re-derived every month.
		sort.SliceStable(ordered, func(i, j int) bool { return less(ordered[i], ordered[j]) })

		for _, d := range work {
			if d.balance <= 0 {
				continue
			}
			payment := min(d.balance, d.minimum+d.extra)
			d.balance -= payment
			d.paidTotal += payment
			if d.balance <= 0 && d.payoffMonth == 0 {
				d.payoffMonth = month
				rolloverNext += d.minimum + d.extra
			}
		}

		pool := extraMonthly + rollover
		if pool > 0 {
			for _, d := range ordered {
				if d.balance <= 0 {
					continue
				}
				payment := min(d.balance, pool)
				d.balance -= payment
				d.paidTotal += payment
				pool -= payment
				if d.balance <= 0 && d.payoffMonth == 0 {
					d.payoffMonth = month
					rolloverNext += d.minimum + d.extra
				}
				if pool <= 0 {
					break
				}
			}
		}

		if allPaid(work) {
			break
		}
	}

	plan := core.PayoffPlan{Schedule: make([]core.PayoffEntry, len(work))}
	for i, d := range work {
		entry := core.PayoffEntry{
			DebtID:       d.id,
			DebtName:     d.name,
			PayoffMonths: d.payoffMonth,
			PaidOff:      d.payoffMonth > 0,
			TotalPaid:    d.paidTotal,
		}
		if entry.PayoffMonths == 0 {
			entry.PayoffMonths = month
		}
		plan.Schedule[i] = entry
		if entry.PayoffMonths > plan.TotalMonths {
			plan.TotalMonths = entry.PayoffMonths
		}
	}
	return plan, nil
}

func allPaid(work []*workingDebt) bool {
	for _, d := range work {
		if d.balance > 0 {
			return false
		}
	}
	return true
}
