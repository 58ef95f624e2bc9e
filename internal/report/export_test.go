package report

import (
	"bytes"
	"context"
	"testing"

	"github.com/xuri/excelize/v2"

	"fintrack/internal/core"
)

func TestToXLSX(t *testing.T) {
	f := newFixture(t)
	res, err := f.agg.Aggregate(context.Background(), march(core.ReportAll))
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	out, err := ToXLSX(res)
	if err != nil {
		t.Fatalf("to xlsx: %v", err)
	}

	wb, err := excelize.OpenReader(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer wb.Close()

	rows, err := wb.GetRows(xlsxSheet)
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) < 3 {
		t.Fatalf("expected header and 2 data rows, got %d rows", len(rows))
	}
	if rows[0][0] != "Type" || rows[0][3] != "Amount" {
		t.Fatalf("unexpected header %v", rows[0])
	}
	if rows[2][1] != "Rent" {
		t.Fatalf("expected Rent in row 3, got %v", rows[2])
	}
}

func TestToPDF(t *testing.T) {
	f := newFixture(t)
	res, err := f.agg.Aggregate(context.Background(), march(core.ReportAll))
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	out, err := ToPDF(res)
	if err != nil {
		t.Fatalf("to pdf: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF document")
	}
}
