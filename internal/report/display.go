package report

import (
	"fintrack/internal/core"
)

// AllCategoriesLabel is shown when a report is not filtered by category.
const AllCategoriesLabel = "All categories"

// DisplayModel is the presentation form of a Result. Amounts are rendered
// with two fraction digits.
type DisplayModel struct {
	Title         string          `json:"title"`
	StartDate     string          `json:"startDate"`
	EndDate       string          `json:"endDate"`
	ReportType    core.ReportType `json:"reportType"`
	CategoryID    *int64          `json:"categoryId,omitempty"`
	CategoryLabel string          `json:"categoryLabel"`
	Incomes       []DisplayRow    `json:"incomes"`
	Expenses      []DisplayRow    `json:"expenses"`
	IncomeTotal   string          `json:"incomeTotal"`
	ExpenseTotal  string          `json:"expenseTotal"`
	Balance       string          `json:"balance"`
	IncomesByCat  []DisplayTotal  `json:"incomesByCategory,omitempty"`
	ExpensesByCat []DisplayTotal  `json:"expensesByCategory,omitempty"`
}

type DisplayRow struct {
	ID       int64  `json:"id"`
	Category string `json:"category"`
	Date     string `json:"date"`
	Amount   string `json:"amount"`
}

type DisplayTotal struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
}

// Title returns the heading for a report of type rt.
func Title(rt core.ReportType) string {
	switch rt {
	case core.ReportIncomes:
		return "Income report"
	case core.ReportExpenses:
		return "Expense report"
	}
	return "Financial report"
}

// ToDisplayModel passes the result through for on-screen viewing.
func ToDisplayModel(res Result) DisplayModel {
	m := DisplayModel{
		Title:         Title(res.Type),
		StartDate:     res.Start.Format(core.DateLayout),
		EndDate:       res.End.Format(core.DateLayout),
		ReportType:    res.Type,
		CategoryLabel: AllCategoriesLabel,
		Incomes:       displayRows(res.Incomes),
		Expenses:      displayRows(res.Expenses),
		IncomeTotal:   core.FormatAmount(res.IncomeTotal),
		ExpenseTotal:  core.FormatAmount(res.ExpenseTotal),
		Balance:       core.FormatAmount(res.Balance),
		IncomesByCat:  displayTotals(res.IncomesByCategory),
		ExpensesByCat: displayTotals(res.ExpensesByCategory),
	}
	if res.Category != nil {
		id := res.Category.ID
		m.CategoryID = &id
		m.CategoryLabel = res.Category.Name
	}
	return m
}

// CategoryName is the label of a transaction's category, or NoCategoryLabel.
func CategoryName(tx core.Transaction) string {
	if tx.Category == nil {
		return NoCategoryLabel
	}
	return tx.Category.Name
}

func displayRows(txs []core.Transaction) []DisplayRow {
	rows := make([]DisplayRow, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, DisplayRow{
			ID:       tx.ID,
			Category: CategoryName(tx),
			Date:     tx.Date.Format(core.DateLayout),
			Amount:   core.FormatAmount(tx.Amount),
		})
	}
	return rows
}

func displayTotals(totals []core.CategoryTotal) []DisplayTotal {
	if totals == nil {
		return nil
	}
	out := make([]DisplayTotal, 0, len(totals))
	for _, t := range totals {
		out = append(out, DisplayTotal{Category: t.Name, Amount: core.FormatAmount(t.Amount)})
	}
	return out
}
