package spending

import (
	"github.com/shopspring/decimal"

	"example.com/subscription-reaper/backend/internal/models"
)

// Limit compares spending against one budget period.
type Limit struct {
	Budget    decimal.Decimal `json:"budget"`
	Spent     decimal.Decimal `json:"spent"`
	Remaining decimal.Decimal `json:"remaining"`
	Usage     float64         `json:"usage"`
	Exceeded  bool            `json:"exceeded"`
}

// BudgetStatus reports budget usage for the current subscriptions.
type BudgetStatus struct {
	Enabled  bool   `json:"enabled"`
	Currency string `json:"currency"`
	Monthly  Limit  `json:"monthly"`
	Annual   Limit  `json:"annual"`
}

// Budget evaluates settings against a summary in the settings currency.
func Budget(settings models.Settings, summary Summary) BudgetStatus {
	return BudgetStatus{
		Enabled:  settings.BudgetEnabled,
		Currency: summary.Currency,
		Monthly:  limit(settings.MonthlyBudget, summary.MonthlyTotal),
		Annual:   limit(settings.AnnualBudget, summary.YearlyTotal),
	}
}

func limit(budget, spent decimal.Decimal) Limit {
	l := Limit{
		Budget:    budget,
		Spent:     spent,
		Remaining: budget.Sub(spent),
		Exceeded:  spent.GreaterThan(budget),
	}
	if budget.IsPositive() {
		l.Usage = spent.Div(budget).Round(4).InexactFloat64()
	}
	return l
}
