package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// SourceSalary is the well-known income source managed by the monthly
// upsert operation.
const SourceSalary = "Salary"

// OtherSentinel marks a selector whose real value arrives in a free-text
// companion field.
const OtherSentinel = "Other"

var (
	ErrDateFormat      = errors.New("use date format DD/MM/YYYY")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidRange    = errors.New("unknown range name")
	ErrMissingSource   = errors.New("income source is required")
	ErrMissingCategory = errors.New("expense category is required")
	ErrNotFound        = errors.New("record not found")
)

type (
	// Income is one row of a user's income ledger.
	Income struct {
		ID          int64
		UserID      int64
		Source      string
		Amount      decimal.Decimal
		Date        Date
		Description string
	}

	// Expense is one row of a user's expense ledger.
	Expense struct {
		ID       int64
		UserID   int64
		Amount   decimal.Decimal
		Category string
		Date     Date
		Note     string
	}
)

func (in Income) Validate() error {
	if strings.TrimSpace(in.Source) == "" {
		return ErrMissingSource
	}
	if err := in.Date.Validate(); err != nil {
		return err
	}
	// Income amounts must be strictly positive.
	if !in.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.Category) == "" {
		return ErrMissingCategory
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	// Expense amounts are deliberately not checked for positivity; the
	// ledger historically accepts corrections entered as negative rows.
	return nil
}

// ResolveSelector collapses a selector plus its "Other" companion field
// into the stored value. The sentinel without a companion is an error
// (missing is the zero-value selector error of the caller).
func ResolveSelector(selected, other string) (string, bool) {
	selected = strings.TrimSpace(selected)
	other = strings.TrimSpace(other)
	if selected != OtherSentinel {
		return selected, selected != ""
	}
	return other, other != ""
}
