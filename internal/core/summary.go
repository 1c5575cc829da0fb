package core

const (
	StatusOK      = "ok"
	StatusWarning = "warning"
	StatusOver    = "over"
)

// CategorySummary is the per-category slice of a monthly summary.
type CategorySummary struct {
	CategoryID   int64       `json:"category_id"`
	Name         string      `json:"name"`
	MonthlyLimit float64     `json:"monthly_limit"`
	Spent        float64     `json:"spent"`
	Percent      float64     `json:"percent"`
	Status       string      `json:"status"`
	Tag          CategoryTag `json:"tag"`
}

// Summary is the full monthly budget picture for one user and period.
type Summary struct {
	Year                 int               `json:"year"`
	Month                int               `json:"month"`
	Salary               float64           `json:"salary"`
	OtherIncome          float64           `json:"other_income"`
	TotalIncome          float64           `json:"total_income"`
	FixedTotal           float64           `json:"fixed_total"`
	PlannedSavings       float64           `json:"planned_savings"`
	PlannedDebtPayment   float64           `json:"planned_debt_payment"`
	SuggestedDebtPayment float64           `json:"suggested_debt_payment"`
	RemainingFlex        float64           `json:"remaining_flex"`
	TotalSpent           float64           `json:"total_spent"`
	ProjectedTotal       float64           `json:"projected_total"`
	OverBudget           bool              `json:"over_budget"`
	Suggestions          []string          `json:"suggestions"`
	Categories           []CategorySummary `json:"categories"`
}

// PayoffEntry records when a single debt clears in a simulation.
type PayoffEntry struct {
	DebtID       int64   `json:"debt_id"`
	DebtName     string  `json:"debt_name"`
	PayoffMonths int     `json:"payoff_months"`
	PaidOff      bool    `json:"paid_off"`
	TotalPaid    float64 `json:"total_paid"`
}

// PayoffPlan is the result of a debt amortization simulation.
type PayoffPlan struct {
	TotalMonths int           `json:"total_months"`
	Schedule    []PayoffEntry `json:"schedule"`
}
