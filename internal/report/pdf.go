package report

import (
	"bytes"
	"fmt"

	"github.com/signintech/gopdf"
	"golang.org/x/image/font/gofont/goregular"

	"fintrack/internal/core"
)

const (
	pdfFont       = "goregular"
	pdfMarginLeft = 40.0
	pdfPageBottom = 800.0
	pdfLineHeight = 16.0
)

var pdfColumns = []float64{pdfMarginLeft, 120, 330, 440}

// ToPDF renders res as an A4 document: title, range, totals, then the
// transaction table paginated as needed.
func ToPDF(res Result) ([]byte, error) {
	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})

	if err := pdf.AddTTFFontData(pdfFont, goregular.TTF); err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}

	pdf.AddPage()
	w := pdfWriter{pdf: &pdf, y: 40}

	if err := w.text(18, pdfMarginLeft, Title(res.Type)); err != nil {
		return nil, err
	}
	w.y += 10
	label := AllCategoriesLabel
	if res.Category != nil {
		label = res.Category.Name
	}
	lines := []string{
		fmt.Sprintf("%s - %s", res.Start.Format(core.DateLayout), res.End.Format(core.DateLayout)),
		"Category: " + label,
		"Income total: " + core.FormatAmount(res.IncomeTotal),
		"Expense total: " + core.FormatAmount(res.ExpenseTotal),
		"Balance: " + core.FormatAmount(res.Balance),
	}
	for _, l := range lines {
		if err := w.text(11, pdfMarginLeft, l); err != nil {
			return nil, err
		}
	}
	w.y += pdfLineHeight

	if err := w.row(Header, true); err != nil {
		return nil, err
	}
	for _, r := range Rows(res) {
		if err := w.row(r, false); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

type pdfWriter struct {
	pdf *gopdf.GoPdf
	y   float64
}

func (w *pdfWriter) text(size float64, x float64, s string) error {
	if err := w.pdf.SetFont(pdfFont, "", size); err != nil {
		return fmt.Errorf("set font: %w", err)
	}
	w.pdf.SetXY(x, w.y)
	if err := w.pdf.Cell(nil, s); err != nil {
		return fmt.Errorf("write text: %w", err)
	}
	w.y += size + 6
	return nil
}

func (w *pdfWriter) row(cells []string, header bool) error {
	if w.y+pdfLineHeight > pdfPageBottom {
		w.pdf.AddPage()
		w.y = 40
	}
	if header {
		w.pdf.SetFillColor(221, 235, 247)
		w.pdf.RectFromUpperLeftWithStyle(pdfMarginLeft-4, w.y-2, 520, pdfLineHeight, "F")
	}
	if err := w.pdf.SetFont(pdfFont, "", 10); err != nil {
		return fmt.Errorf("set font: %w", err)
	}
	for i, c := range cells {
		w.pdf.SetXY(pdfColumns[i], w.y)
		if err := w.pdf.Cell(nil, c); err != nil {
			return fmt.Errorf("write cell: %w", err)
		}
	}
	w.y += pdfLineHeight
	return nil
}
