package services

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
	"fintrack/internal/events"
	applog "fintrack/internal/log"
	"fintrack/internal/storage"
)

// LedgerService runs every mutating flow: raw user input is normalized
// and validated here, before anything reaches the store, so a rejected
// operation leaves the ledger untouched. All operations are scoped to
// the calling user; an id owned by someone else reads as not found.
type LedgerService struct {
	store  storage.Ledger
	events *events.Publisher
}

func NewLedgerService(store storage.Ledger, publisher *events.Publisher) *LedgerService {
	return &LedgerService{store: store, events: publisher}
}

// IncomeInput carries raw user-entered income fields. Source may be the
// "Other" sentinel, in which case OtherSource holds the stored value.
type IncomeInput struct {
	Source      string
	OtherSource string
	Amount      string
	Date        string
	Description string
}

// ExpenseInput carries raw user-entered expense fields. Category may be
// the "Other" sentinel paired with OtherCategory.
type ExpenseInput struct {
	Category      string
	OtherCategory string
	Amount        string
	Date          string
	Note          string
}

// ExpenseQuery narrows an expense listing: exact category plus an
// inclusive date range, ANDed. Empty fields are skipped.
type ExpenseQuery struct {
	Category string
	From     string
	To       string
}

func (s *LedgerService) AddIncome(ctx context.Context, userID int64, input IncomeInput) (core.Income, error) {
	in, err := s.buildIncome(userID, input)
	if err != nil {
		return core.Income{}, err
	}

	id, err := s.store.InsertIncome(ctx, in)
	if err != nil {
		return core.Income{}, fmt.Errorf("add income: %w", err)
	}
	in.ID = id

	s.publish(ctx, events.LedgerIncome, events.ActionCreated, userID, id)
	return in, nil
}

func (s *LedgerService) EditIncome(ctx context.Context, userID, id int64, input IncomeInput) error {
	in, err := s.buildIncome(userID, input)
	if err != nil {
		return err
	}
	in.ID = id

	changed, err := s.store.UpdateIncome(ctx, in)
	if err != nil {
		return fmt.Errorf("edit income: %w", err)
	}
	if !changed {
		return core.ErrNotFound
	}

	s.publish(ctx, events.LedgerIncome, events.ActionUpdated, userID, id)
	return nil
}

func (s *LedgerService) DeleteIncome(ctx context.Context, userID, id int64) error {
	changed, err := s.store.DeleteIncome(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	if !changed {
		return core.ErrNotFound
	}

	s.publish(ctx, events.LedgerIncome, events.ActionDeleted, userID, id)
	return nil
}

func (s *LedgerService) AddExpense(ctx context.Context, userID int64, input ExpenseInput) (core.Expense, error) {
	e, err := s.buildExpense(userID, input)
	if err != nil {
		return core.Expense{}, err
	}

	id, err := s.store.InsertExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("add expense: %w", err)
	}
	e.ID = id

	s.publish(ctx, events.LedgerExpense, events.ActionCreated, userID, id)
	return e, nil
}

func (s *LedgerService) EditExpense(ctx context.Context, userID, id int64, input ExpenseInput) error {
	e, err := s.buildExpense(userID, input)
	if err != nil {
		return err
	}
	e.ID = id

	changed, err := s.store.UpdateExpense(ctx, e)
	if err != nil {
		return fmt.Errorf("edit expense: %w", err)
	}
	if !changed {
		return core.ErrNotFound
	}

	s.publish(ctx, events.LedgerExpense, events.ActionUpdated, userID, id)
	return nil
}

func (s *LedgerService) DeleteExpense(ctx context.Context, userID, id int64) error {
	changed, err := s.store.DeleteExpense(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if !changed {
		return core.ErrNotFound
	}

	s.publish(ctx, events.LedgerExpense, events.ActionDeleted, userID, id)
	return nil
}

// UpsertMonthlyIncome keeps at most one income record per user, source,
// and calendar month: the existing record is overwritten in place (same
// id), otherwise a new one is inserted. Calling it twice with the same
// month is idempotent.
func (s *LedgerService) UpsertMonthlyIncome(ctx context.Context, userID int64, source, amount, date, description string) error {
	amt, err := core.ParsePositiveAmount(amount)
	if err != nil {
		return err
	}
	day, err := core.ParseDate(date)
	if err != nil {
		return err
	}

	in := core.Income{
		UserID:      userID,
		Source:      source,
		Amount:      amt,
		Date:        day,
		Description: description,
	}
	if err := in.Validate(); err != nil {
		return err
	}

	existing, err := s.store.FindIncomeBySourceMonth(ctx, userID, source, day.Key())
	if err != nil {
		return fmt.Errorf("find monthly income: %w", err)
	}

	if existing != nil {
		in.ID = existing.ID
		changed, err := s.store.UpdateIncome(ctx, in)
		if err != nil {
			return fmt.Errorf("overwrite monthly income: %w", err)
		}
		if !changed {
			return core.ErrNotFound
		}
		s.publish(ctx, events.LedgerIncome, events.ActionUpdated, userID, in.ID)
		return nil
	}

	id, err := s.store.InsertIncome(ctx, in)
	if err != nil {
		return fmt.Errorf("insert monthly income: %w", err)
	}
	s.publish(ctx, events.LedgerIncome, events.ActionCreated, userID, id)
	return nil
}

// UpsertSalary is the one-salary-entry-per-month convenience over
// UpsertMonthlyIncome.
func (s *LedgerService) UpsertSalary(ctx context.Context, userID int64, amount, date, description string) error {
	return s.UpsertMonthlyIncome(ctx, userID, core.SourceSalary, amount, date, description)
}

// ListIncome returns the user's income newest first. limit <= 0 means
// no limit.
func (s *LedgerService) ListIncome(ctx context.Context, userID int64, limit int) ([]core.Income, error) {
	income, err := s.store.ListIncome(ctx, userID, storage.Filter{})
	if err != nil {
		return nil, fmt.Errorf("list income: %w", err)
	}
	if limit > 0 && len(income) > limit {
		income = income[:limit]
	}
	return income, nil
}

// ListExpenses returns the user's expenses newest first, narrowed by
// the query.
func (s *LedgerService) ListExpenses(ctx context.Context, userID int64, q ExpenseQuery) ([]core.Expense, error) {
	f := storage.Filter{}
	if q.Category != "" {
		f = f.And(storage.CategoryIs(q.Category))
	}
	if q.From != "" {
		from, err := core.ParseDate(q.From)
		if err != nil {
			return nil, err
		}
		f = f.And(storage.From(from))
	}
	if q.To != "" {
		to, err := core.ParseDate(q.To)
		if err != nil {
			return nil, err
		}
		f = f.And(storage.To(to))
	}

	expenses, err := s.store.ListExpenses(ctx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

func (s *LedgerService) buildIncome(userID int64, input IncomeInput) (core.Income, error) {
	source, ok := core.ResolveSelector(input.Source, input.OtherSource)
	if !ok {
		return core.Income{}, core.ErrMissingSource
	}

	amount, err := core.ParsePositiveAmount(input.Amount)
	if err != nil {
		return core.Income{}, err
	}

	date, err := core.ParseDate(input.Date)
	if err != nil {
		return core.Income{}, err
	}

	in := core.Income{
		UserID:      userID,
		Source:      source,
		Amount:      amount,
		Date:        date,
		Description: input.Description,
	}
	if err := in.Validate(); err != nil {
		return core.Income{}, err
	}
	return in, nil
}

func (s *LedgerService) buildExpense(userID int64, input ExpenseInput) (core.Expense, error) {
	category, ok := core.ResolveSelector(input.Category, input.OtherCategory)
	if !ok {
		return core.Expense{}, core.ErrMissingCategory
	}

	// Expense amounts are parsed without the positivity check income
	// gets: see core.Expense.Validate.
	amount, err := core.ParseAmount(input.Amount)
	if err != nil {
		return core.Expense{}, err
	}

	date, err := core.ParseDate(input.Date)
	if err != nil {
		return core.Expense{}, err
	}

	e := core.Expense{
		UserID:   userID,
		Amount:   amount,
		Category: category,
		Date:     date,
		Note:     input.Note,
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

func (s *LedgerService) publish(ctx context.Context, ledger events.Ledger, action events.Action, userID, recordID int64) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishLedgerChange(ctx, ledger, action, userID, recordID); err != nil {
		// The event stream is best-effort: the record is already
		// persisted, so a publish failure never fails the request.
		slog.ErrorContext(ctx, "Failed to publish ledger change",
			applog.FieldComponent, applog.ComponentLedger,
			applog.FieldLedger, string(ledger),
			applog.FieldAction, string(action),
			applog.FieldUserID, userID,
			applog.FieldRecordID, recordID,
			applog.FieldError, err)
	}
}
