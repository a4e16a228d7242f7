package services

import (
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// Named ranges accepted by both policies.
const (
	RangeMonth     = "month"
	RangeSixMonths = "6months"
	RangeYear      = "year"
	RangeAll       = "all"
)

// RangePolicy maps a named range to a ledger filter relative to now.
//
// There are two policies because the summary page and the reports API
// disagree on what "year" means: the page shows year-to-date while the
// API serves the full history. The disagreement is long-observed
// behavior that downstream charts depend on, so it stays as two named
// policies rather than one silently unified resolver.
type RangePolicy func(name string, now time.Time) (storage.Filter, error)

// SummaryRange is the summary-page policy: "year" means year-to-date.
func SummaryRange(name string, now time.Time) (storage.Filter, error) {
	switch name {
	case RangeMonth:
		return storage.NewFilter(storage.MonthIs(core.DateOf(now).Key())), nil
	case RangeSixMonths:
		return storage.NewFilter(storage.From(core.DateOf(now.AddDate(0, -6, 0)))), nil
	case RangeYear:
		return storage.NewFilter(storage.From(core.NewDate(now.Year(), 1, 1))), nil
	case RangeAll, "":
		return storage.Filter{}, nil
	}
	return storage.Filter{}, core.ErrInvalidRange
}

// ReportRange is the reports-API policy: "year" means all-time.
func ReportRange(name string, now time.Time) (storage.Filter, error) {
	if name == RangeYear {
		return storage.Filter{}, nil
	}
	return SummaryRange(name, now)
}
