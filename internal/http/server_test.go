package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/amqp"
	"fintrack/internal/chart"
	"fintrack/internal/core"
	"fintrack/internal/ledger/memory"
	"fintrack/internal/report"
	"fintrack/internal/services"
)

var testNow = time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)

type fakePublisher struct {
	msgs []*amqp.ExportRequestMessage
	err  error
}

func (p *fakePublisher) PublishExportRequest(_ context.Context, msg *amqp.ExportRequestMessage) error {
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

type testServer struct {
	*Server
	store *memory.Store
	pub   *fakePublisher
	rent  core.Category
}

// newTestServer seeds alice with an income of 1000.00 on 2024-03-15 and
// an expense of 250.50 (Rent) on 2024-03-20.
func newTestServer(t *testing.T, rateLimit int) *testServer {
	t.Helper()
	ctx := context.Background()

	store := memory.New()
	rent, err := store.CreateCategory(ctx, core.Category{Name: "Rent", OwnerID: "alice"})
	if err != nil {
		t.Fatalf("seed category: %v", err)
	}
	for _, tx := range []core.Transaction{
		{Kind: core.Income, Amount: decimal.RequireFromString("1000.00"), Date: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), OwnerID: "alice"},
		{Kind: core.Expense, Amount: decimal.RequireFromString("250.50"), Date: time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), OwnerID: "alice", Category: &rent},
	} {
		if _, err := store.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("seed transaction: %v", err)
		}
	}

	agg := report.NewAggregator(store, report.WithClock(func() time.Time { return testNow }))
	pub := &fakePublisher{}

	s := NewServer(Options{
		Addr:            ":0",
		OwnerHeader:     "X-Forwarded-User",
		ReportTimeout:   5 * time.Second,
		ExportRateLimit: rateLimit,
		Location:        time.UTC,
	}, Deps{
		Ledger:     services.NewLedgerService(store),
		Aggregator: agg,
		Exports:    services.NewExportService(agg, pub),
		Charts:     chart.NewRenderer(nil),
		Health:     store,
	})
	s.now = func() time.Time { return testNow }
	t.Cleanup(func() { s.limiter.Stop() })

	return &testServer{Server: s, store: store, pub: pub, rent: rent}
}

func (ts *testServer) do(method, target, owner, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	if owner != "" {
		r.Header.Set("X-Forwarded-User", owner)
	}
	w := httptest.NewRecorder()
	ts.Handler.ServeHTTP(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, 0)
	w := ts.do(http.MethodGet, "/healthz", "", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := decode[map[string]any](t, w)
	if body["status"] != "ok" {
		t.Errorf("status = %v", body["status"])
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing security headers")
	}
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("database is locked") }

func TestReadyz(t *testing.T) {
	ts := newTestServer(t, 0)
	if w := ts.do(http.MethodGet, "/readyz", "", ""); w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}

	ts.deps.Health = failingPinger{}
	w := ts.do(http.MethodGet, "/readyz", "", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestReport_Unauthenticated(t *testing.T) {
	ts := newTestServer(t, 0)
	for _, target := range []string{"/reports", "/reports/export.csv", "/summary", "/api/categories"} {
		if w := ts.do(http.MethodGet, target, "", ""); w.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", target, w.Code)
		}
	}
}

func TestReport_DisplayModel(t *testing.T) {
	ts := newTestServer(t, 0)
	w := ts.do(http.MethodGet, "/reports?startDate=2024-03-01&endDate=2024-03-31", "alice", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	m := decode[report.DisplayModel](t, w)
	if m.IncomeTotal != "1000.00" || m.ExpenseTotal != "250.50" || m.Balance != "749.50" {
		t.Errorf("totals = %s/%s/%s", m.IncomeTotal, m.ExpenseTotal, m.Balance)
	}
	if m.Title != "Financial report" {
		t.Errorf("Title = %q", m.Title)
	}
	if len(m.Incomes) != 1 || m.Incomes[0].Category != report.NoCategoryLabel {
		t.Errorf("Incomes = %+v", m.Incomes)
	}
}

func TestReport_PostForm(t *testing.T) {
	ts := newTestServer(t, 0)
	w := ts.do(http.MethodPost, "/reports", "alice",
		`{"startDate":"2024-03-01","endDate":"2024-03-31","reportType":"expenses"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	m := decode[report.DisplayModel](t, w)
	if m.ReportType != core.ReportExpenses || len(m.Incomes) != 0 || len(m.Expenses) != 1 {
		t.Errorf("unexpected model %+v", m)
	}
}

func TestReport_Errors(t *testing.T) {
	ts := newTestServer(t, 0)
	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"inverted range", "startDate=2024-03-31&endDate=2024-03-01", http.StatusBadRequest},
		{"unknown type", "reportType=transfers", http.StatusBadRequest},
		{"malformed date", "startDate=March", http.StatusBadRequest},
		{"unknown category", "categoryId=999", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(http.MethodGet, "/reports?"+tt.query, "alice", "")
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestReport_OwnerIsolation(t *testing.T) {
	ts := newTestServer(t, 0)
	q := url.Values{"categoryId": {"1"}}

	// alice's category does not exist for bob.
	w := ts.do(http.MethodGet, "/reports?"+q.Encode(), "bob", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}

	w = ts.do(http.MethodGet, "/reports?startDate=2024-03-01&endDate=2024-03-31", "bob", "")
	m := decode[report.DisplayModel](t, w)
	if len(m.Incomes)+len(m.Expenses) != 0 {
		t.Errorf("bob sees alice's data: %+v", m)
	}
}

func TestExports(t *testing.T) {
	ts := newTestServer(t, 0)
	tests := []struct {
		path        string
		contentType string
		filename    string
	}{
		{"/reports/export.csv", contentTypeCSV, "Raport_all_20240301_20240331.csv"},
		{"/reports/export.xlsx", contentTypeXLSX, "Raport_all_20240301_20240331.xlsx"},
		{"/reports/export.pdf", contentTypePDF, "Raport_all_20240301_20240331.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := ts.do(http.MethodGet, tt.path+"?startDate=2024-03-01&endDate=2024-03-31", "alice", "")
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
			}
			if got := w.Header().Get("Content-Type"); got != tt.contentType {
				t.Errorf("Content-Type = %q", got)
			}
			if got := w.Header().Get("Content-Disposition"); !strings.Contains(got, tt.filename) {
				t.Errorf("Content-Disposition = %q, want %s", got, tt.filename)
			}
			if w.Body.Len() == 0 {
				t.Error("empty export")
			}
		})
	}
}

func TestExportCSV_Content(t *testing.T) {
	ts := newTestServer(t, 0)
	w := ts.do(http.MethodGet, "/reports/export.csv?startDate=2024-03-01&endDate=2024-03-31", "alice", "")

	body := w.Body.String()
	for _, want := range []string{"Type,Category,Date,Amount", "Income,No category,2024-03-15,1000.00", "Expense,Rent,2024-03-20,250.50"} {
		if !strings.Contains(body, want) {
			t.Errorf("CSV missing %q:\n%s", want, body)
		}
	}
}

func TestCharts(t *testing.T) {
	ts := newTestServer(t, 0)
	for _, target := range []string{
		"/reports/chart/bar.png?startDate=2024-03-01&endDate=2024-03-31",
		"/reports/chart/pie.png?startDate=2024-03-01&endDate=2024-03-31",
		"/reports/chart/pie.png?kind=incomes",
		"/summary/chart.png?year=2024&month=3",
	} {
		w := ts.do(http.MethodGet, target, "alice", "")
		if w.Code != http.StatusOK {
			t.Errorf("%s: status = %d, body %s", target, w.Code, w.Body.String())
			continue
		}
		if got := w.Header().Get("Content-Type"); got != "image/png" {
			t.Errorf("%s: Content-Type = %q", target, got)
		}
		if !strings.HasPrefix(w.Body.String(), "\x89PNG") {
			t.Errorf("%s: body is not a PNG", target)
		}
		if cc := w.Header().Get("Cache-Control"); !strings.Contains(cc, "private") {
			t.Errorf("%s: Cache-Control = %q", target, cc)
		}
	}

	if w := ts.do(http.MethodGet, "/reports/chart/pie.png?kind=transfers", "alice", ""); w.Code != http.StatusBadRequest {
		t.Errorf("unknown kind: status = %d, want 400", w.Code)
	}
}

func TestSummary(t *testing.T) {
	ts := newTestServer(t, 0)
	w := ts.do(http.MethodGet, "/summary", "alice", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	got := decode[summaryResponse](t, w)
	want := summaryResponse{Year: 2024, Month: 3, Incomes: "1000.00", Expenses: "250.50", Balance: "749.50", BalanceColor: "green"}
	if got != want {
		t.Errorf("summary = %+v, want %+v", got, want)
	}

	if w := ts.do(http.MethodGet, "/summary?month=13", "alice", ""); w.Code != http.StatusBadRequest {
		t.Errorf("month=13: status = %d, want 400", w.Code)
	}
}

func TestSheetsExport(t *testing.T) {
	ts := newTestServer(t, 0)
	w := ts.do(http.MethodPost, "/reports/sheets", "alice",
		`{"startDate":"2024-03-01","endDate":"2024-03-31","reportType":"all"}`)

	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	resp := decode[sheetsResponse](t, w)
	if resp.Status != "queued" || resp.RequestID == "" {
		t.Errorf("response = %+v", resp)
	}
	if len(ts.pub.msgs) != 1 {
		t.Fatalf("published %d messages, want 1", len(ts.pub.msgs))
	}
	msg := ts.pub.msgs[0]
	if msg.OwnerID != "alice" || msg.RequestID != resp.RequestID {
		t.Errorf("message = %+v", msg)
	}
	if !msg.End.Equal(time.Date(2024, 3, 31, 23, 59, 59, 999999999, time.UTC)) {
		t.Errorf("End = %v, want end of day", msg.End)
	}
}

func TestSheetsExport_Rejections(t *testing.T) {
	ts := newTestServer(t, 0)

	w := ts.do(http.MethodPost, "/reports/sheets", "alice", `{"startDate":"2024-04-01","endDate":"2024-03-01"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("inverted range: status = %d, want 400", w.Code)
	}

	ts.pub.err = errors.New("connection refused")
	w = ts.do(http.MethodPost, "/reports/sheets", "alice", `{"startDate":"2024-03-01"}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("broker down: status = %d, want 503", w.Code)
	}
	if len(ts.pub.msgs) != 0 {
		t.Errorf("published %d messages, want 0", len(ts.pub.msgs))
	}
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, 2)
	target := "/reports/export.csv?startDate=2024-03-01"

	for i := 0; i < 2; i++ {
		if w := ts.do(http.MethodGet, target, "alice", ""); w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, w.Code)
		}
	}
	w := ts.do(http.MethodGet, target, "alice", "")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}

	// Budgets are per owner.
	if w := ts.do(http.MethodGet, target, "bob", ""); w.Code != http.StatusOK {
		t.Errorf("bob: status = %d, want 200", w.Code)
	}
	// The JSON report is not limited.
	if w := ts.do(http.MethodGet, "/reports", "alice", ""); w.Code != http.StatusOK {
		t.Errorf("/reports: status = %d, want 200", w.Code)
	}
}

func TestCategoryCRUD(t *testing.T) {
	ts := newTestServer(t, 0)

	w := ts.do(http.MethodPost, "/api/categories", "alice", `{"name":"  Groceries "}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body %s", w.Code, w.Body.String())
	}
	created := decode[categoryJSON](t, w)
	if created.Name != "Groceries" {
		t.Errorf("Name = %q, want trimmed", created.Name)
	}
	path := w.Header().Get("Location")

	if w := ts.do(http.MethodPut, path, "alice", `{"name":"Food"}`); w.Code != http.StatusOK {
		t.Errorf("rename: status = %d", w.Code)
	}
	if w := ts.do(http.MethodGet, path, "bob", ""); w.Code != http.StatusNotFound {
		t.Errorf("foreign get: status = %d, want 404", w.Code)
	}

	w = ts.do(http.MethodGet, "/api/categories", "alice", "")
	list := decode[[]categoryJSON](t, w)
	if len(list) != 2 {
		t.Errorf("list = %+v, want 2 categories", list)
	}

	if w := ts.do(http.MethodPost, "/api/categories", "alice", `{"name":""}`); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("empty name: status = %d, want 422", w.Code)
	}
	long := `{"name":"` + strings.Repeat("x", core.MaxCategoryNameLength+1) + `"}`
	if w := ts.do(http.MethodPost, "/api/categories", "alice", long); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("long name: status = %d, want 422", w.Code)
	}

	if w := ts.do(http.MethodDelete, path, "alice", ""); w.Code != http.StatusNoContent {
		t.Errorf("delete: status = %d", w.Code)
	}
	if w := ts.do(http.MethodGet, path, "alice", ""); w.Code != http.StatusNotFound {
		t.Errorf("get after delete: status = %d, want 404", w.Code)
	}
}

func TestTransactionCRUD(t *testing.T) {
	ts := newTestServer(t, 0)

	w := ts.do(http.MethodPost, "/api/expenses", "alice",
		`{"amount":"12.30","date":"2024-03-05","categoryId":"1"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body %s", w.Code, w.Body.String())
	}
	created := decode[transactionJSON](t, w)
	if created.Amount != "12.30" || created.CategoryName != "Rent" || created.Kind != core.Expense {
		t.Errorf("created = %+v", created)
	}
	path := w.Header().Get("Location")

	w = ts.do(http.MethodPut, path, "alice", `{"amount":"20","date":"2024-03-06"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update: status = %d, body %s", w.Code, w.Body.String())
	}
	updated := decode[transactionJSON](t, w)
	if updated.Amount != "20.00" || updated.CategoryID != nil {
		t.Errorf("updated = %+v", updated)
	}

	w = ts.do(http.MethodGet, "/api/expenses?startDate=2024-03-01&endDate=2024-03-06", "alice", "")
	list := decode[[]transactionJSON](t, w)
	if len(list) != 1 || list[0].ID != created.ID {
		t.Errorf("list = %+v", list)
	}

	if w := ts.do(http.MethodGet, "/api/incomes", "alice", ""); len(decode[[]transactionJSON](t, w)) != 1 {
		t.Error("expected the seeded income")
	}

	invalid := []struct {
		name string
		body string
		want int
	}{
		{"zero amount", `{"amount":"0","date":"2024-03-05"}`, http.StatusUnprocessableEntity},
		{"too large", `{"amount":"10000000.01","date":"2024-03-05"}`, http.StatusUnprocessableEntity},
		{"missing date", `{"amount":"5"}`, http.StatusUnprocessableEntity},
		{"bad date", `{"amount":"5","date":"05/03/2024"}`, http.StatusUnprocessableEntity},
		{"bad category", `{"amount":"5","date":"2024-03-05","categoryId":"abc"}`, http.StatusBadRequest},
	}
	for _, tc := range invalid {
		if w := ts.do(http.MethodPost, "/api/expenses", "alice", tc.body); w.Code != tc.want {
			t.Errorf("%s: status = %d, want %d (%s)", tc.name, w.Code, tc.want, w.Body.String())
		}
	}

	if w := ts.do(http.MethodDelete, path, "bob", ""); w.Code != http.StatusNotFound {
		t.Errorf("foreign delete: status = %d, want 404", w.Code)
	}
	if w := ts.do(http.MethodDelete, path, "alice", ""); w.Code != http.StatusNoContent {
		t.Errorf("delete: status = %d", w.Code)
	}
}

func TestListTransactions_DateOnlyEndCoversWholeDay(t *testing.T) {
	ts := newTestServer(t, 0)
	late := time.Date(2024, 3, 20, 23, 30, 0, 0, time.UTC)
	if _, err := ts.store.CreateTransaction(context.Background(), core.Transaction{
		Kind: core.Expense, Amount: decimal.RequireFromString("9.99"), Date: late, OwnerID: "alice",
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	tests := []struct {
		query string
		want  int
	}{
		{"endDate=2024-03-20", 2},
		{"endDate=2024-03-20T12:00", 1},
		{"startDate=2024-03-21", 0},
	}
	for _, tc := range tests {
		w := ts.do(http.MethodGet, "/api/expenses?"+tc.query, "alice", "")
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status = %d, body %s", tc.query, w.Code, w.Body.String())
		}
		if got := len(decode[[]transactionJSON](t, w)); got != tc.want {
			t.Errorf("%s: %d transactions, want %d", tc.query, got, tc.want)
		}
	}
}
