package storage

import (
	"context"

	"fintrack/internal/core"
)

// Ledger is the store surface the aggregation and mutation services
// depend on. Every call is scoped to one user; the store never returns
// or touches another user's rows. Update and Delete report (false, nil)
// when the targeted id does not belong to the given user: an ownership
// miss is a no-op, not an error.
type Ledger interface {
	ListIncome(ctx context.Context, userID int64, f Filter) ([]core.Income, error)
	ListExpenses(ctx context.Context, userID int64, f Filter) ([]core.Expense, error)

	InsertIncome(ctx context.Context, in core.Income) (int64, error)
	UpdateIncome(ctx context.Context, in core.Income) (bool, error)
	DeleteIncome(ctx context.Context, userID, id int64) (bool, error)

	InsertExpense(ctx context.Context, e core.Expense) (int64, error)
	UpdateExpense(ctx context.Context, e core.Expense) (bool, error)
	DeleteExpense(ctx context.Context, userID, id int64) (bool, error)

	// FindIncomeBySourceMonth returns the user's income record with the
	// given source in the given calendar month, or nil when absent.
	// Backed by the per-month uniqueness the upsert maintains.
	FindIncomeBySourceMonth(ctx context.Context, userID int64, source string, month core.MonthKey) (*core.Income, error)
}
