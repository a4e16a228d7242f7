// Package memory provides an in-process Ledger implementation. It backs
// the default development configuration and the service and handler
// tests, where a database is more machinery than the scenario needs.
package memory

import (
	"context"
	"sort"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

type Store struct {
	mu       sync.RWMutex
	nextID   int64
	income   []core.Income
	expenses []core.Expense
}

func New() *Store {
	return &Store{nextID: 1}
}

func (s *Store) ListIncome(_ context.Context, userID int64, f storage.Filter) ([]core.Income, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Income
	for _, in := range s.income {
		if in.UserID == userID && f.MatchesIncome(in) {
			out = append(out, in)
		}
	}
	sortNewestFirst(out, func(in core.Income) (string, int64) { return in.Date.String(), in.ID })
	return out, nil
}

func (s *Store) ListExpenses(_ context.Context, userID int64, f storage.Filter) ([]core.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Expense
	for _, e := range s.expenses {
		if e.UserID == userID && f.MatchesExpense(e) {
			out = append(out, e)
		}
	}
	sortNewestFirst(out, func(e core.Expense) (string, int64) { return e.Date.String(), e.ID })
	return out, nil
}

func (s *Store) InsertIncome(_ context.Context, in core.Income) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in.ID = s.nextID
	s.nextID++
	s.income = append(s.income, in)
	return in.ID, nil
}

func (s *Store) UpdateIncome(_ context.Context, in core.Income) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.income {
		if existing.ID == in.ID && existing.UserID == in.UserID {
			s.income[i] = in
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) DeleteIncome(_ context.Context, userID, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.income {
		if existing.ID == id && existing.UserID == userID {
			s.income = append(s.income[:i], s.income[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) InsertExpense(_ context.Context, e core.Expense) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = s.nextID
	s.nextID++
	s.expenses = append(s.expenses, e)
	return e.ID, nil
}

func (s *Store) UpdateExpense(_ context.Context, e core.Expense) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.expenses {
		if existing.ID == e.ID && existing.UserID == e.UserID {
			s.expenses[i] = e
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) DeleteExpense(_ context.Context, userID, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.expenses {
		if existing.ID == id && existing.UserID == userID {
			s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) FindIncomeBySourceMonth(_ context.Context, userID int64, source string, month core.MonthKey) (*core.Income, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, in := range s.income {
		if in.UserID == userID && in.Source == source && in.Date.Key() == month {
			found := in
			return &found, nil
		}
	}
	return nil, nil
}

func sortNewestFirst[T any](items []T, key func(T) (string, int64)) {
	sort.SliceStable(items, func(i, j int) bool {
		di, ii := key(items[i])
		dj, ij := key(items[j])
		if di != dj {
			return di > dj
		}
		return ii > ij
	})
}
