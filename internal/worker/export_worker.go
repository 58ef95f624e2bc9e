package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/report"
	"fintrack/internal/sheets"
)

// ExportWorker turns export requests into report tables appended to a
// spreadsheet.
type ExportWorker struct {
	agg    *report.Aggregator
	writer sheets.ReportWriter
	loc    *time.Location
}

func NewExportWorker(agg *report.Aggregator, writer sheets.ReportWriter, loc *time.Location) *ExportWorker {
	if loc == nil {
		loc = time.UTC
	}
	return &ExportWorker{agg: agg, writer: writer, loc: loc}
}

// HandleExportRequest processes a single export request from AMQP.
// Requests that can never succeed are wrapped in amqp.ErrPermanent.
func (w *ExportWorker) HandleExportRequest(ctx context.Context, msg *amqp.ExportRequestMessage) error {
	rt, err := core.ParseReportType(msg.ReportType)
	if err != nil {
		return fmt.Errorf("%w: %w", amqp.ErrPermanent, err)
	}

	res, err := w.agg.Aggregate(ctx, report.Request{
		OwnerID:    msg.OwnerID,
		Start:      report.At(msg.Start),
		End:        report.At(msg.End),
		Type:       rt,
		CategoryID: msg.CategoryID,
	})
	if err != nil {
		if permanent(err) {
			return fmt.Errorf("%w: aggregate: %w", amqp.ErrPermanent, err)
		}
		return fmt.Errorf("aggregate: %w", err)
	}

	ref, err := w.writer.WriteReport(ctx, BuildTable(res, w.loc))
	if err != nil {
		return fmt.Errorf("write report to sheets: %w", err)
	}

	slog.InfoContext(ctx, "Report exported to sheets",
		log.FieldComponent, log.ComponentWorker,
		log.FieldRequestID, msg.RequestID,
		log.FieldOwnerID, msg.OwnerID,
		log.FieldReportType, string(rt),
		log.FieldIncomeCount, len(res.Incomes),
		log.FieldExpenseCount, len(res.Expenses),
		"range", ref)
	return nil
}

func permanent(err error) bool {
	for _, target := range []error{
		core.ErrUnauthenticated,
		core.ErrInvalidRange,
		core.ErrInvalidReportType,
		core.ErrCategoryNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// BuildTable lays out res the way the CSV export does, with a title row
// naming the report and its range, and the totals as footer.
func BuildTable(res report.Result, loc *time.Location) sheets.Table {
	category := report.AllCategoriesLabel
	if res.Category != nil {
		category = res.Category.Name
	}
	title := fmt.Sprintf("%s %s - %s (%s)",
		report.Title(res.Type),
		res.Start.In(loc).Format(core.DateLayout),
		res.End.In(loc).Format(core.DateLayout),
		category)

	return sheets.Table{
		Title:  title,
		Header: report.Header,
		Rows:   report.Rows(res),
		Footer: report.TotalRows(res),
	}
}
