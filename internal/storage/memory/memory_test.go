package memory

import (
	"context"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/storage"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amt(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestInsertAndList(t *testing.T) {
	s := New()
	ctx := context.Background()

	id1, err := s.InsertIncome(ctx, core.Income{UserID: 1, Source: "Salary", Amount: amt("5000"), Date: core.NewDate(2024, 1, 5)})
	require.NoError(t, err)
	id2, err := s.InsertIncome(ctx, core.Income{UserID: 1, Source: "Freelance", Amount: amt("800"), Date: core.NewDate(2024, 2, 10)})
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	_, err = s.InsertIncome(ctx, core.Income{UserID: 2, Source: "Salary", Amount: amt("9000"), Date: core.NewDate(2024, 1, 5)})
	require.NoError(t, err)

	got, err := s.ListIncome(ctx, 1, storage.Filter{})
	require.NoError(t, err)
	require.Len(t, got, 2, "listing is scoped to the requesting user")
	assert.Equal(t, "2024-02-10", got[0].Date.String(), "newest first")
}

func TestListAppliesFilter(t *testing.T) {
	s := New()
	ctx := context.Background()

	for _, e := range []core.Expense{
		{UserID: 1, Amount: amt("50"), Category: "Groceries", Date: core.NewDate(2024, 3, 2)},
		{UserID: 1, Amount: amt("70"), Category: "Transport", Date: core.NewDate(2024, 3, 9)},
		{UserID: 1, Amount: amt("40"), Category: "Groceries", Date: core.NewDate(2024, 4, 1)},
	} {
		_, err := s.InsertExpense(ctx, e)
		require.NoError(t, err)
	}

	got, err := s.ListExpenses(ctx, 1, storage.NewFilter(
		storage.CategoryIs("Groceries"),
		storage.To(core.NewDate(2024, 3, 31)),
	))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2024-03-02", got[0].Date.String())
}

func TestUpdateDeleteOwnershipScoping(t *testing.T) {
	s := New()
	ctx := context.Background()

	id, err := s.InsertExpense(ctx, core.Expense{UserID: 1, Amount: amt("100"), Category: "Rent", Date: core.NewDate(2024, 1, 1)})
	require.NoError(t, err)

	// User 2 touching user 1's record changes nothing.
	changed, err := s.UpdateExpense(ctx, core.Expense{ID: id, UserID: 2, Amount: amt("1"), Category: "X", Date: core.NewDate(2024, 1, 1)})
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = s.DeleteExpense(ctx, 2, id)
	require.NoError(t, err)
	assert.False(t, changed)

	got, err := s.ListExpenses(ctx, 1, storage.Filter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Rent", got[0].Category)
	assert.True(t, got[0].Amount.Equal(amt("100")), "record unchanged after foreign edit attempt")

	// The owner succeeds.
	changed, err = s.DeleteExpense(ctx, 1, id)
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestFindIncomeBySourceMonth(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.InsertIncome(ctx, core.Income{UserID: 1, Source: "Salary", Amount: amt("5000"), Date: core.NewDate(2024, 3, 1)})
	require.NoError(t, err)

	found, err := s.FindIncomeBySourceMonth(ctx, 1, "Salary", core.MonthKey("2024-03"))
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, found.Amount.Equal(amt("5000")))

	missing, err := s.FindIncomeBySourceMonth(ctx, 1, "Salary", core.MonthKey("2023-03"))
	require.NoError(t, err)
	assert.Nil(t, missing, "same month of a different year is a different bucket")

	otherUser, err := s.FindIncomeBySourceMonth(ctx, 2, "Salary", core.MonthKey("2024-03"))
	require.NoError(t, err)
	assert.Nil(t, otherUser)
}
