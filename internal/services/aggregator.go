// Package services holds the aggregation engine and the ledger mutation
// flows built on top of the storage layer.
package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"

	"github.com/shopspring/decimal"
)

// Aggregator computes month-bucketed rollups of a user's ledgers.
// It only reads; buckets are never stored and are recomputed from
// current ledger state on every call.
type Aggregator struct {
	store storage.Ledger
	now   func() time.Time
}

func NewAggregator(store storage.Ledger) *Aggregator {
	return &Aggregator{store: store, now: time.Now}
}

// WithClock overrides the aggregator's notion of now. Tests use this to
// pin relative ranges.
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

// MonthlyBuckets returns one bucket per calendar month present in
// either ledger after filtering, in ascending month order. A month
// present in only one ledger still yields a bucket with the other side
// at zero.
func (a *Aggregator) MonthlyBuckets(ctx context.Context, userID int64, f storage.Filter) ([]core.MonthlyBucket, error) {
	income, expenses, err := a.load(ctx, userID, f)
	if err != nil {
		return nil, err
	}

	incomeByMonth := make(map[core.MonthKey]decimal.Decimal)
	expenseByMonth := make(map[core.MonthKey]decimal.Decimal)
	for _, in := range income {
		k := in.Date.Key()
		incomeByMonth[k] = incomeByMonth[k].Add(in.Amount)
	}
	for _, e := range expenses {
		k := e.Date.Key()
		expenseByMonth[k] = expenseByMonth[k].Add(e.Amount)
	}

	keys := make([]core.MonthKey, 0, len(incomeByMonth)+len(expenseByMonth))
	seen := make(map[core.MonthKey]struct{})
	for k := range incomeByMonth {
		keys = append(keys, k)
		seen[k] = struct{}{}
	}
	for k := range expenseByMonth {
		if _, ok := seen[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	buckets := make([]core.MonthlyBucket, 0, len(keys))
	for _, k := range keys {
		// Missing map entries read as decimal zero, which is exactly the
		// "absent ledger sums to 0" rule.
		inSum := incomeByMonth[k]
		exSum := expenseByMonth[k]
		buckets = append(buckets, core.MonthlyBucket{
			Month:   k,
			Income:  inSum,
			Expense: exSum,
			Savings: inSum.Sub(exSum),
		})
	}
	return buckets, nil
}

// Totals returns the scalar rollup across all matching records. The sum
// of bucket incomes always equals Totals.Income for the same filter.
func (a *Aggregator) Totals(ctx context.Context, userID int64, f storage.Filter) (core.Totals, error) {
	income, expenses, err := a.load(ctx, userID, f)
	if err != nil {
		return core.Totals{}, err
	}

	var t core.Totals
	for _, in := range income {
		t.Income = t.Income.Add(in.Amount)
	}
	for _, e := range expenses {
		t.Expense = t.Expense.Add(e.Amount)
	}
	t.Savings = t.Income.Sub(t.Expense)
	return t, nil
}

// Summary resolves rangeName under the summary-page policy and returns
// chart data.
func (a *Aggregator) Summary(ctx context.Context, userID int64, rangeName string) (core.ChartData, error) {
	return a.chart(ctx, userID, rangeName, SummaryRange)
}

// Report resolves rangeName under the reports-API policy and returns
// chart data.
func (a *Aggregator) Report(ctx context.Context, userID int64, rangeName string) (core.ChartData, error) {
	return a.chart(ctx, userID, rangeName, ReportRange)
}

func (a *Aggregator) chart(ctx context.Context, userID int64, rangeName string, policy RangePolicy) (core.ChartData, error) {
	f, err := policy(rangeName, a.now())
	if err != nil {
		return core.ChartData{}, err
	}

	buckets, err := a.MonthlyBuckets(ctx, userID, f)
	if err != nil {
		return core.ChartData{}, fmt.Errorf("aggregate buckets: %w", err)
	}

	data := core.ChartData{
		Labels:  make([]string, 0, len(buckets)),
		Income:  make([]decimal.Decimal, 0, len(buckets)),
		Expense: make([]decimal.Decimal, 0, len(buckets)),
		Savings: make([]decimal.Decimal, 0, len(buckets)),
	}
	for _, b := range buckets {
		data.Labels = append(data.Labels, string(b.Month))
		data.Income = append(data.Income, b.Income)
		data.Expense = append(data.Expense, b.Expense)
		data.Savings = append(data.Savings, b.Savings)
		data.TotalIncome = data.TotalIncome.Add(b.Income)
		data.TotalExpense = data.TotalExpense.Add(b.Expense)
	}
	data.TotalSavings = data.TotalIncome.Sub(data.TotalExpense)
	return data, nil
}

func (a *Aggregator) load(ctx context.Context, userID int64, f storage.Filter) ([]core.Income, []core.Expense, error) {
	income, err := a.store.ListIncome(ctx, userID, f)
	if err != nil {
		return nil, nil, fmt.Errorf("list income: %w", err)
	}
	expenses, err := a.store.ListExpenses(ctx, userID, f)
	if err != nil {
		return nil, nil, fmt.Errorf("list expenses: %w", err)
	}
	return income, expenses, nil
}
