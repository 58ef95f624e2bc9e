package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"fintrack/internal/chart"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/report"
)

// Output formats accepted by --format.
const (
	formatCSV    = "csv"
	formatXLSX   = "xlsx"
	formatPDF    = "pdf"
	formatPNGBar = "png-bar"
	formatPNGPie = "png-pie"
)

var formatExt = map[string]string{
	formatCSV:    "csv",
	formatXLSX:   "xlsx",
	formatPDF:    "pdf",
	formatPNGBar: "png",
	formatPNGPie: "png",
}

type reportOptions struct {
	owner      string
	from       string
	to         string
	reportType string
	category   string
	format     string
	output     string
	pieKind    string
}

func reportCmd() *cobra.Command {
	var opts reportOptions

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a report for one owner",
		Long: `Aggregate the owner's incomes and expenses over a date range and write
the result as CSV, XLSX, PDF or a PNG chart.

Dates accept YYYY-MM-DD, YYYY-MM-DDTHH:MM or RFC3339. Without --from the
report covers the last 30 days.`,
		Example: `  fintrack-report report --owner alice --from 2024-03-01 --to 2024-03-31 --format csv
  fintrack-report report --owner alice --type expenses --format png-pie -o march.png`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.owner, "owner", "", "owner whose ledger is reported (required)")
	cmd.Flags().StringVar(&opts.from, "from", "", "start date")
	cmd.Flags().StringVar(&opts.to, "to", "", "end date (default now)")
	cmd.Flags().StringVar(&opts.reportType, "type", string(core.ReportAll), "report type: incomes, expenses or all")
	cmd.Flags().StringVar(&opts.category, "category", "", "restrict to one category id")
	cmd.Flags().StringVar(&opts.format, "format", formatCSV, "output format: csv, xlsx, pdf, png-bar, png-pie")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, - for stdout (default: generated file name)")
	cmd.Flags().StringVar(&opts.pieKind, "pie-kind", "expenses", "kind charted by png-pie: expenses or incomes")
	_ = cmd.MarkFlagRequired("owner")

	return cmd
}

func runReport(ctx context.Context, stdout io.Writer, opts reportOptions) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}
	loc := cfg.Location()

	req, err := buildRequest(opts, loc)
	if err != nil {
		return err
	}

	repo, err := cli.OpenRepository(ctx, slog.Default(), cfg)
	if err != nil {
		return err
	}
	defer repo.Close()

	res, data, err := render(ctx, report.NewAggregator(repo), req, opts.format, opts.pieKind)
	if err != nil {
		return err
	}

	name := opts.output
	if name == "" {
		name = report.Filename(res, formatExt[opts.format])
	}
	if name == "-" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}

	slog.InfoContext(ctx, "Report written",
		log.FieldOwnerID, req.OwnerID,
		log.FieldReportType, string(res.Type),
		log.FieldStartDate, res.Start.Format(core.DateLayout),
		log.FieldEndDate, res.End.Format(core.DateLayout),
		log.FieldFormat, opts.format,
		log.FieldBytes, len(data),
		"file", name)
	return nil
}

// buildRequest validates the flags into a report request.
func buildRequest(opts reportOptions, loc *time.Location) (report.Request, error) {
	owner := strings.TrimSpace(opts.owner)
	if owner == "" {
		return report.Request{}, core.ErrUnauthenticated
	}
	if _, ok := formatExt[opts.format]; !ok {
		return report.Request{}, fmt.Errorf("unknown format %q", opts.format)
	}
	if opts.pieKind != "expenses" && opts.pieKind != "incomes" {
		return report.Request{}, fmt.Errorf("unknown pie kind %q", opts.pieKind)
	}

	req := report.Request{OwnerID: owner, GroupByCategory: opts.format == formatPNGPie}
	var err error
	if req.Start, err = report.ParseBound(opts.from, loc); err != nil {
		return req, err
	}
	if req.End, err = report.ParseBound(opts.to, loc); err != nil {
		return req, err
	}
	if req.Type, err = core.ParseReportType(opts.reportType); err != nil {
		return req, err
	}
	if req.CategoryID, err = report.ParseOptionalID("category", opts.category); err != nil {
		return req, err
	}
	return req, nil
}

// render aggregates req and encodes it in format.
func render(ctx context.Context, agg *report.Aggregator, req report.Request, format, pieKind string) (report.Result, []byte, error) {
	res, err := agg.Aggregate(ctx, req)
	if err != nil {
		return report.Result{}, nil, err
	}

	var data []byte
	switch format {
	case formatCSV:
		data, err = report.ToCSV(res)
	case formatXLSX:
		data, err = report.ToXLSX(res)
	case formatPDF:
		data, err = report.ToPDF(res)
	case formatPNGBar:
		caption := fmt.Sprintf("%s - %s", res.Start.Format(core.DateLayout), res.End.Format(core.DateLayout))
		data, err = chart.RenderBarChart(res.IncomeTotal, res.ExpenseTotal, caption)
	case formatPNGPie:
		if pieKind == "incomes" {
			data, err = chart.RenderPieChart(res.IncomesByCategory, "Incomes by category")
		} else {
			data, err = chart.RenderPieChart(res.ExpensesByCategory, "Expenses by category")
		}
	default:
		err = fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return report.Result{}, nil, fmt.Errorf("render %s: %w", format, err)
	}
	return res, data, nil
}
