package core

import "github.com/shopspring/decimal"

// CategoryTotal represents an amount aggregated by category name.
type CategoryTotal struct {
	Name   string
	Amount decimal.Decimal
}

// MonthOverview is a compact balance summary for a specific year+month.
type MonthOverview struct {
	Year     int
	Month    int // 1-12
	Incomes  decimal.Decimal
	Expenses decimal.Decimal
	Balance  decimal.Decimal
}

// BalanceColor is the presentation hint for the balance: "green" when the
// month closed at or above zero, "red" otherwise.
func (m MonthOverview) BalanceColor() string {
	if m.Balance.IsNegative() {
		return "red"
	}
	return "green"
}
