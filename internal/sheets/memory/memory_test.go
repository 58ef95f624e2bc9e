package memory

import (
	"context"
	"testing"

	ports "fintrack/internal/sheets"
)

func TestWriterStoresTables(t *testing.T) {
	w := New()

	ref, err := w.WriteReport(context.Background(), ports.Table{Title: "first"})
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected write: ref=%q err=%v", ref, err)
	}
	ref, err = w.WriteReport(context.Background(), ports.Table{Title: "second"})
	if err != nil || ref != "mem:2" {
		t.Fatalf("unexpected write: ref=%q err=%v", ref, err)
	}

	tables := w.Tables()
	if len(tables) != 2 || tables[1].Title != "second" {
		t.Errorf("Tables() = %+v", tables)
	}
}

func TestWriterHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New().WriteReport(ctx, ports.Table{}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if len(New().Tables()) != 0 {
		t.Error("new writer should be empty")
	}
}

func TestTableWidth(t *testing.T) {
	tbl := ports.Table{
		Header: []string{"a", "b"},
		Rows:   [][]string{{"1", "2", "3"}},
		Footer: [][]string{{"x"}},
	}
	if got := tbl.Width(); got != 3 {
		t.Errorf("Width() = %d, want 3", got)
	}
}
