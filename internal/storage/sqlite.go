package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"fintrack/internal/core"
	applog "fintrack/internal/log"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// SQLiteLedger persists both ledgers in a local SQLite database.
// Amounts are stored as decimal text and dates in canonical YYYY-MM-DD
// form, so date comparison in SQL is plain string comparison.
type SQLiteLedger struct {
	db *sql.DB
}

func NewSQLiteLedger(dbPath string) (*SQLiteLedger, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteLedger{db: db}, nil
}

func (s *SQLiteLedger) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteLedger) ListIncome(ctx context.Context, userID int64, f Filter) ([]core.Income, error) {
	where, args := f.IncomeSQL()
	query := `SELECT id, user_id, source, amount, date, description
		FROM income WHERE user_id = ?` + where + ` ORDER BY date DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, append([]any{userID}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("query income: %w", err)
	}
	defer rows.Close()

	var out []core.Income
	for rows.Next() {
		var (
			in           core.Income
			amount, date string
		)
		if err := rows.Scan(&in.ID, &in.UserID, &in.Source, &amount, &date, &in.Description); err != nil {
			return nil, fmt.Errorf("scan income row: %w", err)
		}
		if in.Amount, in.Date, err = parseStored(amount, date); err != nil {
			return nil, fmt.Errorf("income row %d: %w", in.ID, err)
		}
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate income rows: %w", err)
	}
	return out, nil
}

func (s *SQLiteLedger) ListExpenses(ctx context.Context, userID int64, f Filter) ([]core.Expense, error) {
	where, args := f.ExpenseSQL()
	query := `SELECT id, user_id, amount, category, date, note
		FROM expenses WHERE user_id = ?` + where + ` ORDER BY date DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, append([]any{userID}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		var (
			e            core.Expense
			amount, date string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &amount, &e.Category, &date, &e.Note); err != nil {
			return nil, fmt.Errorf("scan expense row: %w", err)
		}
		if e.Amount, e.Date, err = parseStored(amount, date); err != nil {
			return nil, fmt.Errorf("expense row %d: %w", e.ID, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expense rows: %w", err)
	}
	return out, nil
}

func (s *SQLiteLedger) InsertIncome(ctx context.Context, in core.Income) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO income (user_id, source, amount, date, description) VALUES (?, ?, ?, ?, ?)`,
		in.UserID, in.Source, in.Amount.String(), in.Date.String(), in.Description)
	if err != nil {
		return 0, fmt.Errorf("insert income: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("income insert id: %w", err)
	}

	slog.InfoContext(ctx, "Income saved",
		applog.FieldComponent, applog.ComponentStorage,
		applog.FieldRecordID, id,
		applog.FieldUserID, in.UserID,
		applog.FieldSource, in.Source,
		applog.FieldAmount, in.Amount.String(),
		applog.FieldDate, in.Date.String())
	return id, nil
}

func (s *SQLiteLedger) UpdateIncome(ctx context.Context, in core.Income) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE income SET source = ?, amount = ?, date = ?, description = ? WHERE id = ? AND user_id = ?`,
		in.Source, in.Amount.String(), in.Date.String(), in.Description, in.ID, in.UserID)
	if err != nil {
		return false, fmt.Errorf("update income: %w", err)
	}
	return changedRows(res, "update income")
}

func (s *SQLiteLedger) DeleteIncome(ctx context.Context, userID, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM income WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete income: %w", err)
	}
	return changedRows(res, "delete income")
}

func (s *SQLiteLedger) InsertExpense(ctx context.Context, e core.Expense) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (user_id, amount, category, date, note) VALUES (?, ?, ?, ?, ?)`,
		e.UserID, e.Amount.String(), e.Category, e.Date.String(), e.Note)
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("expense insert id: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		applog.FieldComponent, applog.ComponentStorage,
		applog.FieldRecordID, id,
		applog.FieldUserID, e.UserID,
		applog.FieldCategory, e.Category,
		applog.FieldAmount, e.Amount.String(),
		applog.FieldDate, e.Date.String())
	return id, nil
}

func (s *SQLiteLedger) UpdateExpense(ctx context.Context, e core.Expense) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE expenses SET amount = ?, category = ?, date = ?, note = ? WHERE id = ? AND user_id = ?`,
		e.Amount.String(), e.Category, e.Date.String(), e.Note, e.ID, e.UserID)
	if err != nil {
		return false, fmt.Errorf("update expense: %w", err)
	}
	return changedRows(res, "update expense")
}

func (s *SQLiteLedger) DeleteExpense(ctx context.Context, userID, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete expense: %w", err)
	}
	return changedRows(res, "delete expense")
}

func (s *SQLiteLedger) FindIncomeBySourceMonth(ctx context.Context, userID int64, source string, month core.MonthKey) (*core.Income, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, source, amount, date, description
		 FROM income WHERE user_id = ? AND source = ? AND substr(date, 1, 7) = ?
		 ORDER BY id LIMIT 1`,
		userID, source, string(month))

	var (
		in           core.Income
		amount, date string
	)
	err := row.Scan(&in.ID, &in.UserID, &in.Source, &amount, &date, &in.Description)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find income by source and month: %w", err)
	}
	if in.Amount, in.Date, err = parseStored(amount, date); err != nil {
		return nil, fmt.Errorf("income row %d: %w", in.ID, err)
	}
	return &in, nil
}

func changedRows(res sql.Result, op string) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s rows affected: %w", op, err)
	}
	return n > 0, nil
}

func parseStored(amount, date string) (decimal.Decimal, core.Date, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, core.Date{}, fmt.Errorf("parse stored amount %q: %w", amount, err)
	}
	day, err := core.ParseDate(date)
	if err != nil {
		return decimal.Zero, core.Date{}, fmt.Errorf("parse stored date %q: %w", date, err)
	}
	return d, day, nil
}
