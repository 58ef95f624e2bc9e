package memory

import (
	"context"
	"fmt"
	"sync"

	ports "fintrack/internal/sheets"
)

// Writer keeps written report tables in memory.
type Writer struct {
	mu     sync.Mutex
	tables []ports.Table
}

var _ ports.ReportWriter = (*Writer)(nil)

func New() *Writer {
	return &Writer{}
}

// WriteReport stores the table and returns a synthetic range reference.
func (w *Writer) WriteReport(ctx context.Context, t ports.Table) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tables = append(w.tables, t)
	return fmt.Sprintf("mem:%d", len(w.tables)), nil
}

// Tables returns a copy of everything written so far.
func (w *Writer) Tables() []ports.Table {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]ports.Table(nil), w.tables...)
}
