// Package report aggregates ledger records into financial reports and
// renders them for display and export.
package report

import (
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// UncategorizedLabel groups transactions without a category.
const UncategorizedLabel = "uncategorized"

// DefaultRange is how far back a report starts when no start date is given.
const DefaultRange = 30 * 24 * time.Hour

// Bound is an optional range endpoint. DateOnly marks a value supplied as a
// calendar date without a time of day.
type Bound struct {
	Time     time.Time
	DateOnly bool
}

// OnDate returns a date-only bound for the calendar day of t.
func OnDate(t time.Time) Bound {
	y, m, d := t.Date()
	return Bound{Time: time.Date(y, m, d, 0, 0, 0, 0, t.Location()), DateOnly: true}
}

// At returns a bound for the exact instant t.
func At(t time.Time) Bound {
	return Bound{Time: t}
}

func (b Bound) IsZero() bool {
	return b.Time.IsZero()
}

// EndOfDay is the last representable instant of the bound's calendar day.
func (b Bound) EndOfDay() time.Time {
	y, m, d := b.Time.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), b.Time.Location())
}

// Inclusive is the bound used as the end of a range: the end of its day
// when date-only, the instant itself otherwise.
func (b Bound) Inclusive() time.Time {
	if b.DateOnly {
		return b.EndOfDay()
	}
	return b.Time
}

// Request describes one report. It is built per call and never stored.
type Request struct {
	OwnerID    string
	Start      Bound
	End        Bound
	Type       core.ReportType
	CategoryID *int64

	// GroupByCategory fills the per-category totals used by charts.
	GroupByCategory bool
}

// Result is the output of Aggregate. Incomes and Expenses are never nil;
// a kind excluded by the report type yields an empty list and zero total.
type Result struct {
	Start    time.Time
	End      time.Time
	Type     core.ReportType
	Category *core.Category

	Incomes  []core.Transaction
	Expenses []core.Transaction

	IncomeTotal  decimal.Decimal
	ExpenseTotal decimal.Decimal
	Balance      decimal.Decimal

	// Set only when the request asked for grouping.
	IncomesByCategory  []core.CategoryTotal
	ExpensesByCategory []core.CategoryTotal
}
