package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
)

// Aggregator builds reports from the transactions in a ledger store. It
// holds no per-report state and is safe for concurrent use.
type Aggregator struct {
	store ledger.Store
	now   func() time.Time
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithClock replaces the clock used for default range endpoints.
func WithClock(now func() time.Time) AggregatorOption {
	return func(a *Aggregator) { a.now = now }
}

// NewAggregator returns an Aggregator reading from store. The clock
// defaults to time.Now.
func NewAggregator(store ledger.Store, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{store: store, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate selects the owner's transactions matching req and totals them.
//
// Validation happens before any transaction query: missing owner, then
// the date range, then category ownership. Store failures wrap
// core.ErrStoreUnavailable; context cancellation is returned as is.
func (a *Aggregator) Aggregate(ctx context.Context, req Request) (Result, error) {
	r, err := a.resolve(ctx, req)
	if err != nil {
		return Result{}, err
	}
	start, end, rt := r.start, r.end, r.rt

	res := Result{
		Start:        start,
		End:          end,
		Type:         rt,
		Category:     r.category,
		Incomes:      []core.Transaction{},
		Expenses:     []core.Transaction{},
		IncomeTotal:  decimal.Zero,
		ExpenseTotal: decimal.Zero,
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, kind := range []core.Kind{core.Income, core.Expense} {
		if !rt.Includes(kind) {
			continue
		}
		q := ledger.Query{
			OwnerID:    req.OwnerID,
			Kind:       kind,
			From:       start,
			To:         end,
			CategoryID: req.CategoryID,
		}
		dst := &res.Incomes
		if kind == core.Expense {
			dst = &res.Expenses
		}
		g.Go(func() error {
			txs, err := a.store.FindTransactions(gctx, q)
			if err != nil {
				return storeError("find "+string(q.Kind)+"s", err)
			}
			if txs != nil {
				*dst = txs
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// errgroup cancels gctx on the first failure; report the caller's
		// cancellation rather than a derived one.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		return Result{}, err
	}

	res.IncomeTotal = sum(res.Incomes)
	res.ExpenseTotal = sum(res.Expenses)
	res.Balance = res.IncomeTotal.Sub(res.ExpenseTotal)

	if req.GroupByCategory {
		res.IncomesByCategory = GroupByCategory(res.Incomes)
		res.ExpensesByCategory = GroupByCategory(res.Expenses)
	}

	slog.DebugContext(ctx, "Report aggregated",
		log.FieldComponent, log.ComponentReport,
		log.FieldOwnerID, req.OwnerID,
		log.FieldReportType, string(rt),
		log.FieldIncomeCount, len(res.Incomes),
		log.FieldExpenseCount, len(res.Expenses))

	return res, nil
}

// MonthSummary totals the owner's incomes and expenses for one calendar
// month in loc.
func (a *Aggregator) MonthSummary(ctx context.Context, ownerID string, year int, month time.Month, loc *time.Location) (core.MonthOverview, error) {
	if loc == nil {
		loc = time.UTC
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1)

	res, err := a.Aggregate(ctx, Request{
		OwnerID: ownerID,
		Start:   OnDate(first),
		End:     OnDate(last),
		Type:    core.ReportAll,
	})
	if err != nil {
		return core.MonthOverview{}, err
	}
	return core.MonthOverview{
		Year:     year,
		Month:    int(month),
		Incomes:  res.IncomeTotal,
		Expenses: res.ExpenseTotal,
		Balance:  res.Balance,
	}, nil
}

type resolved struct {
	start    time.Time
	end      time.Time
	rt       core.ReportType
	category *core.Category
}

func (a *Aggregator) resolve(ctx context.Context, req Request) (resolved, error) {
	if req.OwnerID == "" {
		return resolved{}, core.ErrUnauthenticated
	}

	rt := req.Type
	if rt == "" {
		rt = core.ReportAll
	}
	if _, err := core.ParseReportType(string(rt)); err != nil {
		return resolved{}, err
	}

	start, end := a.resolveRange(req.Start, req.End)
	if start.After(end) {
		return resolved{}, fmt.Errorf("%w: %s > %s", core.ErrInvalidRange,
			start.Format(core.DateLayout), end.Format(core.DateLayout))
	}

	r := resolved{start: start, end: end, rt: rt}
	if req.CategoryID != nil {
		cat, err := a.store.FindCategory(ctx, *req.CategoryID, req.OwnerID)
		if errors.Is(err, core.ErrNotFound) {
			return resolved{}, fmt.Errorf("%w: id %d", core.ErrCategoryNotFound, *req.CategoryID)
		}
		if err != nil {
			return resolved{}, storeError("find category", err)
		}
		r.category = cat
	}
	return r, nil
}

// Resolve runs the validation of Aggregate without querying transactions
// and returns req with exact bounds and an explicit report type, so that a
// deferred Aggregate covers the same instants.
func (a *Aggregator) Resolve(ctx context.Context, req Request) (Request, error) {
	r, err := a.resolve(ctx, req)
	if err != nil {
		return Request{}, err
	}
	out := req
	out.Start = At(r.start)
	out.End = At(r.end)
	out.Type = r.rt
	return out, nil
}

// resolveRange applies defaults and extends a date-only end to the end of
// its day.
func (a *Aggregator) resolveRange(startB, endB Bound) (time.Time, time.Time) {
	now := a.now()

	start := startB.Time
	if startB.IsZero() {
		start = now.Add(-DefaultRange)
	}

	end := endB.Inclusive()
	if endB.IsZero() {
		end = now
	}
	return start, end
}

// GroupByCategory sums amounts per category name in order of first
// appearance. Transactions without a category fall under UncategorizedLabel.
func GroupByCategory(txs []core.Transaction) []core.CategoryTotal {
	out := []core.CategoryTotal{}
	index := map[string]int{}
	for _, tx := range txs {
		name := UncategorizedLabel
		if tx.Category != nil {
			name = tx.Category.Name
		}
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, core.CategoryTotal{Name: name, Amount: decimal.Zero})
		}
		out[i].Amount = out[i].Amount.Add(tx.Amount)
	}
	return out
}

func sum(txs []core.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.Amount)
	}
	return total
}

func storeError(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", core.ErrStoreUnavailable, op, err)
}
