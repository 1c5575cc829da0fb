package budget

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"budgetd/internal/core"
)

// Tuning knobs for the summary heuristics. These are policy choices, not
// derived optima; keep them in one place so they can move to config later.
const (
	// warnRatio is the share of a limit at which a category turns "warning".
	warnRatio = 0.8
	// cutRatio bounds a single deficit-cut suggestion to this share of the
	// category's limit.
	cutRatio = 0.2
	// maxCutSuggestions caps how many categories a deficit is spread over.
	maxCutSuggestions = 3
)

// Service computes monthly budget summaries over the store.
type Service struct {
	store  Store
	limits LimitWriter
	now    func() time.Time
}

func NewService(store Store, limits LimitWriter) *Service {
	return &Service{
		store:  store,
		limits: limits,
		now:    time.Now,
	}
}

// EffectiveLimit resolves the limit in force for one category at the given
// period, falling back to the category's default when no version applies.
func (s *Service) EffectiveLimit(ctx context.Context, userID, categoryID int64, period core.Period) (float64, error) {
	category, err := s.store.GetCategory(ctx, userID, categoryID)
	if err != nil {
		return 0, fmt.Errorf("get category: %w", err)
	}

	versions, err := s.store.ListLimitVersions(ctx, userID, []int64{categoryID})
	if err != nil {
		return 0, fmt.Errorf("list limit versions: %w", err)
	}

	if limit, ok := NewResolver(versions).Effective(categoryID, period); ok {
		return limit, nil
	}
	return category.MonthlyLimit, nil
}

// UpsertLimit writes the exact-period limit version for a category.
func (s *Service) UpsertLimit(ctx context.Context, userID int64, v core.LimitVersion) error {
	if err := v.Validate(); err != nil {
		return err
	}
	return s.limits.UpsertLimit(ctx, userID, v)
}

// ComputeSummary builds the full monthly picture: income totals, resolved
// limits and spend per category, flex remainder, a linear month-end
// projection, and ordered savings suggestions. Missing income or limit data
// counts as zero; a summary is always produced.
func (s *Service) ComputeSummary(ctx context.Context, userID int64, period core.Period) (*core.Summary, error) {
	categories, err := s.store.ListActiveCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	categoryIDs := make([]int64, len(categories))
	for i, c := range categories {
		categoryIDs[i] = c.ID
	}

	versions, err := s.store.ListLimitVersions(ctx, userID, categoryIDs)
	if err != nil {
		return nil, fmt.Errorf("list limit versions: %w", err)
	}
	resolver := NewResolver(versions)

	income, err := s.store.GetIncome(ctx, userID, period)
	if err != nil {
		return nil, fmt.Errorf("get income: %w", err)
	}

	spentMap, err := s.store.SumExpensesByCategory(ctx, userID, period)
	if err != nil {
		return nil, fmt.Errorf("sum expenses: %w", err)
	}

	summary := &core.Summary{
		Year:        period.Year,
		Month:       period.Month,
		Suggestions: []string{},
	}
	if income != nil {
		summary.Salary = income.Salary
		summary.OtherIncome = income.OtherIncome
		summary.TotalIncome = income.Salary + income.OtherIncome
		for _, src := range income.Sources {
			summary.TotalIncome += src.Amount
		}
	}

	var totalLimits float64
	summary.Categories = make([]core.CategorySummary, 0, len(categories))
	for _, category := range categories {
		limit, ok := resolver.Effective(category.ID, period)
		if !ok {
			limit = category.MonthlyLimit
		}
		totalLimits += limit

		switch category.Tag {
		case core.TagSavings:
			summary.PlannedSavings += limit
		case core.TagDebt:
			summary.PlannedDebtPayment += limit
		default:
			summary.FixedTotal += limit
		}

		spent := spentMap[category.ID]
		var percent float64
		if limit > 0 {
			percent = math.Round(spent/limit*100*100) / 100
		}
		status := core.StatusOK
		if limit > 0 && spent >= limit {
			status = core.StatusOver
		} else if limit > 0 && spent >= warnRatio*limit {
			status = core.StatusWarning
		}

		summary.Categories = append(summary.Categories, core.CategorySummary{
			CategoryID:   category.ID,
			Name:         category.Name,
			MonthlyLimit: limit,
			Spent:        spent,
			Percent:      percent,
			Status:       status,
			Tag:          category.Tag,
		})
	}

	summary.RemainingFlex = summary.TotalIncome - totalLimits
	summary.OverBudget = summary.RemainingFlex < 0

	// Spend without a matching active category still counts toward the
	// month total.
	for _, spent := range spentMap {
		summary.TotalSpent += spent
	}

	summary.ProjectedTotal = s.projectTotal(summary.TotalSpent, period)
	summary.Suggestions = buildSuggestions(summary)

	summary.SuggestedDebtPayment = summary.PlannedDebtPayment
	if summary.PlannedDebtPayment <= 0 {
		debts, err := s.store.ListActiveDebts(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("list debts: %w", err)
		}
		for _, d := range debts {
			summary.SuggestedDebtPayment += d.Minimum
		}
	}

	return summary, nil
}

// projectTotal extrapolates spend linearly across the month. Past and
// future periods are taken as final: elapsed equals the full month.
func (s *Service) projectTotal(totalSpent float64, period core.Period) float64 {
	days := period.Days()
	elapsed := days
	now := s.now()
	if core.CurrentPeriod(now) == period {
		elapsed = now.Day()
		if elapsed < 1 {
			elapsed = 1
		}
	}
	return totalSpent / float64(elapsed) * float64(days)
}

// buildSuggestions emits the ordered heuristic advice list. With a deficit,
// the largest limits are asked to give up at most cutRatio of themselves
// until the gap is covered; otherwise a fixed sequence of growth nudges.
func buildSuggestions(summary *core.Summary) []string {
	suggestions := []string{}

	if summary.RemainingFlex < 0 {
		limited := make([]core.CategorySummary, 0, len(summary.Categories))
		for _, c := range summary.Categories {
			if c.MonthlyLimit > 0 {
				limited = append(limited, c)
			}
		}
		sort.SliceStable(limited, func(i, j int) bool {
			return limited[i].MonthlyLimit > limited[j].MonthlyLimit
		})
		if len(limited) > maxCutSuggestions {
			limited = limited[:maxCutSuggestions]
		}

		deficit := -summary.RemainingFlex
		for _, c := range limited {
			cut := math.Min(deficit, c.MonthlyLimit*cutRatio)
			if cut <= 0 {
				continue
			}
			suggestions = append(suggestions,
				fmt.Sprintf("Reduce %s by $%s to close the gap.",
					c.Name, humanize.FormatFloat("#,###.##", cut)))
			deficit -= cut
		}
		return suggestions
	}

	if summary.PlannedSavings <= 0 && summary.TotalIncome > 0 {
		suggestions = append(suggestions, "Add a Savings category at 10% of salary.")
	}
	suggestions = append(suggestions,
		"Allocate extra toward Savings.",
		"Increase Debt Payment for faster payoff.",
		"Create or grow a Flex category.",
	)
	return suggestions
}
