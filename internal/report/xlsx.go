package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"fintrack/internal/core"
)

const xlsxSheet = "Report"

// ToXLSX renders res as a single-sheet workbook with the same columns as
// the CSV export followed by the totals.
func ToXLSX(res Result) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	// Built-in number format 2 is "0.00".
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return nil, fmt.Errorf("create amount style: %w", err)
	}

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	f.SetCellStyle(xlsxSheet, "A1", "D1", headerStyle)

	r := 2
	for _, group := range [][]core.Transaction{res.Incomes, res.Expenses} {
		for _, tx := range group {
			values := []interface{}{
				tx.Kind.Label(),
				CategoryName(tx),
				tx.Date.Format(core.DateLayout),
				tx.Amount.InexactFloat64(),
			}
			if err := f.SetSheetRow(xlsxSheet, fmt.Sprintf("A%d", r), &values); err != nil {
				return nil, fmt.Errorf("write row %d: %w", r, err)
			}
			r++
		}
	}
	if r > 2 {
		f.SetCellStyle(xlsxSheet, "D2", fmt.Sprintf("D%d", r-1), amountStyle)
	}

	r++
	totals := []struct {
		label string
		value float64
	}{
		{"Income total", res.IncomeTotal.InexactFloat64()},
		{"Expense total", res.ExpenseTotal.InexactFloat64()},
		{"Balance", res.Balance.InexactFloat64()},
	}
	for _, t := range totals {
		f.SetCellValue(xlsxSheet, fmt.Sprintf("C%d", r), t.label)
		f.SetCellValue(xlsxSheet, fmt.Sprintf("D%d", r), t.value)
		f.SetCellStyle(xlsxSheet, fmt.Sprintf("D%d", r), fmt.Sprintf("D%d", r), amountStyle)
		r++
	}

	f.SetColWidth(xlsxSheet, "A", "A", 10)
	f.SetColWidth(xlsxSheet, "B", "B", 32)
	f.SetColWidth(xlsxSheet, "C", "C", 14)
	f.SetColWidth(xlsxSheet, "D", "D", 14)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
