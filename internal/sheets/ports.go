package sheets

import "context"

// Table is a rendered report ready to be appended to a spreadsheet.
type Table struct {
	Title  string
	Header []string
	Rows   [][]string
	Footer [][]string
}

// Width is the widest row in the table.
func (t Table) Width() int {
	w := len(t.Header)
	for _, rows := range [][][]string{t.Rows, t.Footer} {
		for _, r := range rows {
			if len(r) > w {
				w = len(r)
			}
		}
	}
	return w
}

// Ports for outbound adapters.
type (
	// ReportWriter stores a report table and returns a reference to the
	// written range.
	ReportWriter interface {
		WriteReport(ctx context.Context, t Table) (rowRef string, err error)
	}
)
