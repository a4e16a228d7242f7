package core

import "github.com/shopspring/decimal"

// MonthlyBucket is the aggregated income/expense/savings triple for one
// calendar month. Savings is always income minus expense.
type MonthlyBucket struct {
	Month   MonthKey
	Income  decimal.Decimal
	Expense decimal.Decimal
	Savings decimal.Decimal
}

// Totals is the scalar rollup across all matching records regardless of
// month.
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Savings decimal.Decimal
}

// ChartData is the serialization-ready shape consumed by the savings
// chart: sorted month labels with parallel series.
type ChartData struct {
	Labels  []string          `json:"labels"`
	Income  []decimal.Decimal `json:"income"`
	Expense []decimal.Decimal `json:"expense"`
	Savings []decimal.Decimal `json:"savings"`

	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	TotalSavings decimal.Decimal `json:"total_savings"`
}
