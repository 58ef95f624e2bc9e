package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"fintrack/internal/core"
)

// NoCategoryLabel replaces the category of uncategorised transactions in
// exports and display rows.
const NoCategoryLabel = "No category"

// Header is the column order shared by every tabular export.
var Header = []string{"Type", "Category", "Date", "Amount"}

// Rows renders one record per transaction: all incomes in query order,
// then all expenses in query order.
func Rows(res Result) [][]string {
	rows := make([][]string, 0, len(res.Incomes)+len(res.Expenses))
	for _, tx := range res.Incomes {
		rows = append(rows, row(tx))
	}
	for _, tx := range res.Expenses {
		rows = append(rows, row(tx))
	}
	return rows
}

func row(tx core.Transaction) []string {
	return []string{
		tx.Kind.Label(),
		CategoryName(tx),
		tx.Date.Format(core.DateLayout),
		core.FormatAmount(tx.Amount),
	}
}

// TotalRows renders the totals block that follows the transaction rows in
// spreadsheet exports.
func TotalRows(res Result) [][]string {
	return [][]string{
		{"", "", "Income total", core.FormatAmount(res.IncomeTotal)},
		{"", "", "Expense total", core.FormatAmount(res.ExpenseTotal)},
		{"", "", "Balance", core.FormatAmount(res.Balance)},
	}
}

// WriteCSV writes the header and Rows of res to w.
func WriteCSV(w io.Writer, res Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(Rows(res)); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

// ToCSV renders res as a UTF-8 CSV document.
func ToCSV(res Result) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, res); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Filename builds the download name of an export, e.g.
// Raport_all_20240301_20240331.csv.
func Filename(res Result, ext string) string {
	return fmt.Sprintf("Raport_%s_%s_%s.%s",
		res.Type, res.Start.Format("20060102"), res.End.Format("20060102"), ext)
}
