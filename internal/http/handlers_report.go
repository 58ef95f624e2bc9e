package http

import (
	"fmt"
	"net/http"
	"net/url"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/middleware/auth"
	"fintrack/internal/report"
	"fintrack/internal/services"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

// reportParams collects report parameters from the query string and, for
// POST, the request body. Body values win.
func reportParams(w http.ResponseWriter, r *http.Request) (url.Values, error) {
	values := r.URL.Query()
	if r.Method != http.MethodPost {
		return values, nil
	}
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		return nil, err
	}
	for k, v := range p.Values() {
		values[k] = v
	}
	return values, nil
}

// parseReport builds the report request of r for the authenticated owner.
func (s *Server) parseReport(w http.ResponseWriter, r *http.Request) (report.Request, error) {
	owner, ok := auth.OwnerFromContext(r.Context())
	if !ok {
		return report.Request{}, core.ErrUnauthenticated
	}
	values, err := reportParams(w, r)
	if err != nil {
		return report.Request{}, err
	}
	return ParseReportRequest(values, owner, s.opts.Location)
}

// aggregate parses and runs the report of r. On failure it has already
// written the error response.
func (s *Server) aggregate(w http.ResponseWriter, r *http.Request, groupByCategory bool) (report.Result, bool) {
	req, err := s.parseReport(w, r)
	if err != nil {
		WriteError(w, r, err)
		return report.Result{}, false
	}
	req.GroupByCategory = groupByCategory

	ctx, cancel := s.reportContext(r)
	defer cancel()

	res, err := s.deps.Aggregator.Aggregate(ctx, req)
	if err != nil {
		WriteError(w, r, err)
		return report.Result{}, false
	}
	s.countReport()
	return res, true
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	res, ok := s.aggregate(w, r, true)
	if !ok {
		return
	}
	NewJSONResponse().Body(report.ToDisplayModel(res)).Write(w)
}

// exportHandler renders the report of the request with render and sends it
// as an attachment.
func (s *Server) exportHandler(format, ext, contentType string, render func(report.Result) ([]byte, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := s.aggregate(w, r, false)
		if !ok {
			return
		}

		data, err := render(res)
		if err != nil {
			s.structured.LogError(r.Context(), "Export rendering failed", err,
				applog.ComponentReport, applog.OpRender, applog.NewFields().With(applog.FieldFormat, format))
			InternalServerError("could not render export").Write(w)
			return
		}

		owner, _ := auth.OwnerFromContext(r.Context())
		s.structured.LogReportGenerated(r.Context(), owner, string(res.Type),
			res.Start.Format(core.DateLayout), res.End.Format(core.DateLayout), format, len(data))
		s.countExport()

		WriteAttachment(w, contentType, report.Filename(res, ext), data)
	}
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	s.exportHandler("csv", "csv", contentTypeCSV, report.ToCSV)(w, r)
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	s.exportHandler("xlsx", "xlsx", contentTypeXLSX, report.ToXLSX)(w, r)
}

func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	s.exportHandler("pdf", "pdf", contentTypePDF, report.ToPDF)(w, r)
}

// handleBarChart renders income against expense totals of the report.
func (s *Server) handleBarChart(w http.ResponseWriter, r *http.Request) {
	res, ok := s.aggregate(w, r, false)
	if !ok {
		return
	}
	caption := fmt.Sprintf("%s - %s", res.Start.Format(core.DateLayout), res.End.Format(core.DateLayout))
	s.writeChart(w, r, "bar", func() ([]byte, error) {
		return s.deps.Charts.Bar(res.IncomeTotal, res.ExpenseTotal, caption)
	})
}

// handlePieChart renders per-category totals of one kind, expenses unless
// kind=incomes.
func (s *Server) handlePieChart(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	switch kind {
	case "", "expenses", "incomes":
	default:
		WriteError(w, r, fmt.Errorf("%w: kind %q", ErrInvalidParameter, kind))
		return
	}

	res, ok := s.aggregate(w, r, true)
	if !ok {
		return
	}

	totals, title := res.ExpensesByCategory, "Expenses by category"
	if kind == "incomes" {
		totals, title = res.IncomesByCategory, "Incomes by category"
	}
	s.writeChart(w, r, "pie", func() ([]byte, error) {
		return s.deps.Charts.Pie(totals, title)
	})
}

func (s *Server) writeChart(w http.ResponseWriter, r *http.Request, name string, render func() ([]byte, error)) {
	data, err := render()
	if err != nil {
		s.structured.LogError(r.Context(), "Chart rendering failed", err,
			applog.ComponentChart, applog.OpRender, applog.NewFields().With("chart", name))
		InternalServerError("could not render chart").Write(w)
		return
	}
	s.countChart()
	WritePNG(w, data)
}

// sheetsResponse is the body of an accepted Sheets export.
type sheetsResponse struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
}

// handleSheetsExport validates the report request and enqueues its export
// to the spreadsheet.
func (s *Server) handleSheetsExport(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseReport(w, r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	ctx, cancel := s.reportContext(r)
	defer cancel()

	if s.deps.Exports == nil {
		WriteError(w, r, services.ErrExportUnavailable)
		return
	}
	id, err := s.deps.Exports.RequestSheetsExport(ctx, req)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	s.countQueued()

	NewJSONResponse().
		Status(http.StatusAccepted).
		Body(sheetsResponse{RequestID: id, Status: "queued"}).
		Write(w)
}
