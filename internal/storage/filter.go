package storage

import (
	"strings"

	"fintrack/internal/core"
)

// Op enumerates the clause kinds a ledger query can carry. Filters are
// built only from these typed constructors, never from raw SQL strings,
// so they stay injection-safe and testable without a database.
type Op int

const (
	opMonthEq Op = iota
	opDateFrom
	opDateTo
	opCategoryEq
	opSourceEq
)

// Clause is one typed predicate. Clauses in a Filter compose with AND
// semantics.
type Clause struct {
	op    Op
	value string
}

// MonthIs matches records whose date falls in the given calendar month.
// Year and month are matched jointly: a prior year's same month never
// qualifies.
func MonthIs(key core.MonthKey) Clause {
	return Clause{op: opMonthEq, value: string(key)}
}

// From matches records dated on or after d.
func From(d core.Date) Clause {
	return Clause{op: opDateFrom, value: d.String()}
}

// To matches records dated on or before d.
func To(d core.Date) Clause {
	return Clause{op: opDateTo, value: d.String()}
}

// CategoryIs matches expense records with the exact category. It never
// matches income records.
func CategoryIs(name string) Clause {
	return Clause{op: opCategoryEq, value: name}
}

// SourceIs matches income records with the exact source. It never
// matches expense records.
func SourceIs(name string) Clause {
	return Clause{op: opSourceEq, value: name}
}

// Filter is an immutable conjunction of clauses. The zero value matches
// every record of the queried user.
type Filter struct {
	clauses []Clause
}

// NewFilter builds a filter from the given clauses.
func NewFilter(clauses ...Clause) Filter {
	return Filter{clauses: clauses}
}

// And returns a new filter with c appended.
func (f Filter) And(c Clause) Filter {
	out := make([]Clause, 0, len(f.clauses)+1)
	out = append(out, f.clauses...)
	out = append(out, c)
	return Filter{clauses: out}
}

// IsEmpty reports whether the filter carries no clauses.
func (f Filter) IsEmpty() bool {
	return len(f.clauses) == 0
}

// IncomeSQL renders the filter as a WHERE fragment for the income
// table, to append after the user_id predicate, with placeholder args.
// Dates are canonical YYYY-MM-DD text, so lexicographic comparison is
// chronological. A category clause renders as a match-nothing
// predicate, mirroring MatchesIncome.
func (f Filter) IncomeSQL() (string, []any) {
	return f.sql(opSourceEq, "source")
}

// ExpenseSQL renders the filter as a WHERE fragment for the expenses
// table. A source clause renders as a match-nothing predicate,
// mirroring MatchesExpense.
func (f Filter) ExpenseSQL() (string, []any) {
	return f.sql(opCategoryEq, "category")
}

func (f Filter) sql(tagOp Op, tagColumn string) (string, []any) {
	if len(f.clauses) == 0 {
		return "", nil
	}
	var sb strings.Builder
	args := make([]any, 0, len(f.clauses))
	for _, c := range f.clauses {
		sb.WriteString(" AND ")
		switch c.op {
		case opMonthEq:
			sb.WriteString("substr(date, 1, 7) = ?")
		case opDateFrom:
			sb.WriteString("date >= ?")
		case opDateTo:
			sb.WriteString("date <= ?")
		case opCategoryEq, opSourceEq:
			// A tag clause aimed at the other ledger matches nothing.
			if c.op != tagOp {
				sb.WriteString("0 = 1")
				continue
			}
			sb.WriteString(tagColumn + " = ?")
		}
		args = append(args, c.value)
	}
	return sb.String(), args
}

// MatchesIncome evaluates the filter against an income record in memory.
func (f Filter) MatchesIncome(in core.Income) bool {
	for _, c := range f.clauses {
		if !c.matches(in.Date, c.op == opSourceEq, in.Source) {
			return false
		}
	}
	return true
}

// MatchesExpense evaluates the filter against an expense record in memory.
func (f Filter) MatchesExpense(e core.Expense) bool {
	for _, c := range f.clauses {
		if !c.matches(e.Date, c.op == opCategoryEq, e.Category) {
			return false
		}
	}
	return true
}

func (c Clause) matches(date core.Date, tagApplies bool, tag string) bool {
	switch c.op {
	case opMonthEq:
		return string(date.Key()) == c.value
	case opDateFrom:
		return date.String() >= c.value
	case opDateTo:
		return date.String() <= c.value
	case opCategoryEq, opSourceEq:
		// A tag clause aimed at the other ledger matches nothing.
		return tagApplies && tag == c.value
	}
	return false
}
