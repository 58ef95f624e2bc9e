package http

import (
	"fmt"
	"net/http"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/middleware/auth"
)

// summaryResponse is the JSON form of a month overview.
type summaryResponse struct {
	Year         int    `json:"year"`
	Month        int    `json:"month"`
	Incomes      string `json:"incomes"`
	Expenses     string `json:"expenses"`
	Balance      string `json:"balance"`
	BalanceColor string `json:"balanceColor"`
}

// monthSummary loads the overview of the month selected by year/month,
// defaulting to the current month. On failure it has already written the
// error response.
func (s *Server) monthSummary(w http.ResponseWriter, r *http.Request) (core.MonthOverview, bool) {
	owner, ok := auth.OwnerFromContext(r.Context())
	if !ok {
		WriteError(w, r, core.ErrUnauthenticated)
		return core.MonthOverview{}, false
	}
	params, err := ParseMonthParams(r.URL.Query(), s.now().In(s.opts.Location))
	if err != nil {
		WriteError(w, r, err)
		return core.MonthOverview{}, false
	}

	ctx, cancel := s.reportContext(r)
	defer cancel()

	ov, err := s.deps.Aggregator.MonthSummary(ctx, owner, params.Year, time.Month(params.Month), s.opts.Location)
	if err != nil {
		WriteError(w, r, err)
		return core.MonthOverview{}, false
	}
	return ov, true
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	ov, ok := s.monthSummary(w, r)
	if !ok {
		return
	}
	NewJSONResponse().Body(summaryResponse{
		Year:         ov.Year,
		Month:        ov.Month,
		Incomes:      core.FormatAmount(ov.Incomes),
		Expenses:     core.FormatAmount(ov.Expenses),
		Balance:      core.FormatAmount(ov.Balance),
		BalanceColor: ov.BalanceColor(),
	}).Write(w)
}

// handleSummaryChart renders the month as a bar chart captioned "March 2024".
func (s *Server) handleSummaryChart(w http.ResponseWriter, r *http.Request) {
	ov, ok := s.monthSummary(w, r)
	if !ok {
		return
	}
	caption := fmt.Sprintf("%s %d", time.Month(ov.Month), ov.Year)
	s.writeChart(w, r, "summary", func() ([]byte, error) {
		return s.deps.Charts.Bar(ov.Incomes, ov.Expenses, caption)
	})
}
