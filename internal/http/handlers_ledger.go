package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/middleware/auth"
	"fintrack/internal/report"
	"fintrack/internal/services"
)

type transactionResource struct {
	path string
	kind core.Kind
}

var (
	incomesResource  = transactionResource{path: "incomes", kind: core.Income}
	expensesResource = transactionResource{path: "expenses", kind: core.Expense}
)

// Bounds of a transaction listing without startDate or endDate.
var (
	listFloor   = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)
	listCeiling = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)
)

type categoryJSON struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type transactionJSON struct {
	ID           int64     `json:"id"`
	Kind         core.Kind `json:"kind"`
	Amount       string    `json:"amount"`
	Date         string    `json:"date"`
	CategoryID   *int64    `json:"categoryId"`
	CategoryName string    `json:"categoryName,omitempty"`
}

func toCategoryJSON(c core.Category) categoryJSON {
	return categoryJSON{ID: c.ID, Name: c.Name}
}

func toTransactionJSON(tx core.Transaction) transactionJSON {
	out := transactionJSON{
		ID:         tx.ID,
		Kind:       tx.Kind,
		Amount:     core.FormatAmount(tx.Amount),
		Date:       tx.Date.Format(core.DateLayout),
		CategoryID: tx.CategoryID(),
	}
	if tx.Category != nil {
		out.CategoryName = tx.Category.Name
	}
	return out
}

// owner returns the authenticated owner, writing 401 when there is none.
func owner(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := auth.OwnerFromContext(r.Context())
	if !ok {
		WriteError(w, r, core.ErrUnauthenticated)
	}
	return id, ok
}

// parseBody reads a JSON or form body, writing 400 on failure.
func parseBody(w http.ResponseWriter, r *http.Request) (*RequestBodyParser, bool) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		WriteError(w, r, err)
		return nil, false
	}
	return p, true
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	cats, err := s.deps.Ledger.ListCategories(r.Context(), ownerID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	out := make([]categoryJSON, 0, len(cats))
	for _, c := range cats {
		out = append(out, toCategoryJSON(c))
	}
	NewJSONResponse().Body(out).Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	c, err := s.deps.Ledger.CreateCategory(r.Context(), ownerID, p.Get("name"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", fmt.Sprintf("/api/categories/%d", c.ID)).
		Body(toCategoryJSON(c)).
		Write(w)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	id, err := PathID(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	c, err := s.deps.Ledger.GetCategory(r.Context(), ownerID, id)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	NewJSONResponse().Body(toCategoryJSON(c)).Write(w)
}

func (s *Server) handleRenameCategory(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	id, err := PathID(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	c, err := s.deps.Ledger.RenameCategory(r.Context(), ownerID, id, p.Get("name"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	NewJSONResponse().Body(toCategoryJSON(c)).Write(w)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	id, err := PathID(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if err := s.deps.Ledger.DeleteCategory(r.Context(), ownerID, id); err != nil {
		WriteError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

// transactionInput reads amount, date and categoryId from the body.
func (s *Server) transactionInput(p *RequestBodyParser) (services.TransactionInput, error) {
	in := services.TransactionInput{Amount: p.Get("amount")}

	if v := p.Get("date"); v != "" {
		d, err := time.ParseInLocation(core.DateLayout, v, s.opts.Location)
		if err != nil {
			return in, fmt.Errorf("%w: %q", core.ErrInvalidDate, v)
		}
		in.Date = d
	}

	catID, err := report.ParseOptionalID("categoryId", p.Get("categoryId"))
	if err != nil {
		return in, err
	}
	in.CategoryID = catID
	return in, nil
}

func (s *Server) handleListTransactions(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := owner(w, r)
		if !ok {
			return
		}
		q := r.URL.Query()
		from, err := report.ParseBound(q.Get("startDate"), s.opts.Location)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		to, err := report.ParseBound(q.Get("endDate"), s.opts.Location)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		start, end := listFloor, listCeiling
		if !from.IsZero() {
			start = from.Time
		}
		if !to.IsZero() {
			end = to.Inclusive()
		}

		txs, err := s.deps.Ledger.ListTransactions(r.Context(), kind, ownerID, start, end)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		out := make([]transactionJSON, 0, len(txs))
		for _, tx := range txs {
			out = append(out, toTransactionJSON(tx))
		}
		NewJSONResponse().Body(out).Write(w)
	}
}

func (s *Server) handleCreateTransaction(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := owner(w, r)
		if !ok {
			return
		}
		p, ok := parseBody(w, r)
		if !ok {
			return
		}
		in, err := s.transactionInput(p)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		tx, err := s.deps.Ledger.CreateTransaction(r.Context(), kind, ownerID, in)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		NewJSONResponse().
			Status(http.StatusCreated).
			Header("Location", fmt.Sprintf("%s/%d", strings.TrimSuffix(r.URL.Path, "/"), tx.ID)).
			Body(toTransactionJSON(tx)).
			Write(w)
	}
}

func (s *Server) handleGetTransaction(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := owner(w, r)
		if !ok {
			return
		}
		id, err := PathID(r)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		tx, err := s.deps.Ledger.GetTransaction(r.Context(), kind, ownerID, id)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		NewJSONResponse().Body(toTransactionJSON(tx)).Write(w)
	}
}

func (s *Server) handleUpdateTransaction(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := owner(w, r)
		if !ok {
			return
		}
		id, err := PathID(r)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		p, ok := parseBody(w, r)
		if !ok {
			return
		}
		in, err := s.transactionInput(p)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		tx, err := s.deps.Ledger.UpdateTransaction(r.Context(), kind, ownerID, id, in)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		NewJSONResponse().Body(toTransactionJSON(tx)).Write(w)
	}
}

func (s *Server) handleDeleteTransaction(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := owner(w, r)
		if !ok {
			return
		}
		id, err := PathID(r)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		if err := s.deps.Ledger.DeleteTransaction(r.Context(), kind, ownerID, id); err != nil {
			WriteError(w, r, err)
			return
		}
		NewJSONResponse().Status(http.StatusNoContent).Write(w)
	}
}
