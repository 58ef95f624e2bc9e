package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/ledger"

	_ "modernc.org/sqlite"
)

// timeLayout is fixed width so lexical order in SQLite matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	loc     *time.Location
}

// RepositoryOption configures a SQLiteRepository.
type RepositoryOption func(*SQLiteRepository)

// WithLocation sets the zone transaction dates are returned in. Instants
// are stored in UTC; without this option they are read back in UTC.
func WithLocation(loc *time.Location) RepositoryOption {
	return func(r *SQLiteRepository) {
		if loc != nil {
			r.loc = loc
		}
	}
}

var _ ledger.Repository = (*SQLiteRepository)(nil)

// DSN returns the connection string for dbPath with foreign keys enabled.
func DSN(dbPath string) string {
	return "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func NewSQLiteRepository(dbPath string, opts ...RepositoryOption) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := DSN(dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{
		db:      db,
		queries: New(db),
		loc:     time.UTC,
	}
	for _, opt := range opts {
		opt(repo)
	}

	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// FindTransactions implements ledger.Store
func (r *SQLiteRepository) FindTransactions(ctx context.Context, q ledger.Query) ([]core.Transaction, error) {
	params := FindTransactionsParams{
		OwnerID: q.OwnerID,
		Kind:    string(q.Kind),
		From:    formatTime(q.From),
		To:      formatTime(q.To),
	}
	if q.CategoryID != nil {
		params.CategoryID = sql.NullInt64{Int64: *q.CategoryID, Valid: true}
	}

	rows, err := r.queries.FindTransactions(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("find transactions: %w", err)
	}

	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		tx, err := r.toTransaction(row)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

// FindCategory implements ledger.Store
func (r *SQLiteRepository) FindCategory(ctx context.Context, id int64, ownerID string) (*core.Category, error) {
	c, err := r.queries.GetCategory(ctx, id, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get category %d: %w", id, err)
	}
	cat := toCategory(c)
	return &cat, nil
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	row, err := r.queries.CreateCategory(ctx, CreateCategoryParams{OwnerID: c.OwnerID, Name: c.Name})
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}

	slog.InfoContext(ctx, "Category saved to SQLite", "id", row.ID, "owner_id", row.OwnerID)
	return toCategory(row), nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, ownerID string) ([]core.Category, error) {
	rows, err := r.queries.ListCategories(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]core.Category, 0, len(rows))
	for _, row := range rows {
		out = append(out, toCategory(row))
	}
	return out, nil
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	row, err := r.queries.UpdateCategory(ctx, UpdateCategoryParams{Name: c.Name, ID: c.ID, OwnerID: c.OwnerID})
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("update category %d: %w", c.ID, err)
	}
	return toCategory(row), nil
}

// DeleteCategory removes the category and nulls the reference on every
// transaction that pointed to it.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id int64, ownerID string) error {
	return r.withTx(ctx, func(q *Queries) error {
		if err := q.DetachCategory(ctx, id, ownerID); err != nil {
			return fmt.Errorf("detach category %d: %w", id, err)
		}
		n, err := q.DeleteCategory(ctx, id, ownerID)
		if err != nil {
			return fmt.Errorf("delete category %d: %w", id, err)
		}
		if n == 0 {
			return core.ErrNotFound
		}
		slog.InfoContext(ctx, "Category deleted from SQLite", "id", id, "owner_id", ownerID)
		return nil
	})
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	var created core.Transaction
	err := r.withTx(ctx, func(q *Queries) error {
		cid, err := ownedCategory(ctx, q, t)
		if err != nil {
			return err
		}
		id, err := q.CreateTransaction(ctx, CreateTransactionParams{
			OwnerID:     t.OwnerID,
			Kind:        string(t.Kind),
			AmountCents: core.ToCents(t.Amount),
			OccurredAt:  formatTime(t.Date),
			CategoryID:  cid,
		})
		if err != nil {
			return fmt.Errorf("create %s: %w", t.Kind, err)
		}
		row, err := q.GetTransaction(ctx, id, string(t.Kind), t.OwnerID)
		if err != nil {
			return fmt.Errorf("reload %s %d: %w", t.Kind, id, err)
		}
		created, err = r.toTransaction(row)
		return err
	})
	if err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", created.ID,
		"kind", created.Kind,
		"amount", core.FormatAmount(created.Amount),
		"date", created.Date.Format(core.DateLayout))

	return created, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, kind core.Kind, id int64, ownerID string) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, id, string(kind), ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get %s %d: %w", kind, id, err)
	}
	return r.toTransaction(row)
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	var updated core.Transaction
	err := r.withTx(ctx, func(q *Queries) error {
		cid, err := ownedCategory(ctx, q, t)
		if err != nil {
			return err
		}
		n, err := q.UpdateTransaction(ctx, UpdateTransactionParams{
			AmountCents: core.ToCents(t.Amount),
			OccurredAt:  formatTime(t.Date),
			CategoryID:  cid,
			ID:          t.ID,
			Kind:        string(t.Kind),
			OwnerID:     t.OwnerID,
		})
		if err != nil {
			return fmt.Errorf("update %s %d: %w", t.Kind, t.ID, err)
		}
		if n == 0 {
			return core.ErrNotFound
		}
		row, err := q.GetTransaction(ctx, t.ID, string(t.Kind), t.OwnerID)
		if err != nil {
			return fmt.Errorf("reload %s %d: %w", t.Kind, t.ID, err)
		}
		updated, err = r.toTransaction(row)
		return err
	})
	return updated, err
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, kind core.Kind, id int64, ownerID string) error {
	n, err := r.queries.DeleteTransaction(ctx, id, string(kind), ownerID)
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", kind, id, err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) withTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(r.queries.WithTx(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func ownedCategory(ctx context.Context, q *Queries, t core.Transaction) (sql.NullInt64, error) {
	cid := t.CategoryID()
	if cid == nil {
		return sql.NullInt64{}, nil
	}
	if _, err := q.GetCategory(ctx, *cid, t.OwnerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sql.NullInt64{}, core.ErrCategoryNotFound
		}
		return sql.NullInt64{}, fmt.Errorf("get category %d: %w", *cid, err)
	}
	return sql.NullInt64{Int64: *cid, Valid: true}, nil
}

func toCategory(c Category) core.Category {
	return core.Category{ID: c.ID, Name: c.Name, OwnerID: c.OwnerID}
}

func (r *SQLiteRepository) toTransaction(row TransactionRow) (core.Transaction, error) {
	at, err := time.Parse(timeLayout, row.OccurredAt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse occurred_at of %d: %w", row.ID, err)
	}
	tx := core.Transaction{
		ID:      row.ID,
		Kind:    core.Kind(row.Kind),
		Amount:  core.FromCents(row.AmountCents),
		Date:    at.In(r.loc),
		OwnerID: row.OwnerID,
	}
	if row.CategoryID.Valid && row.CategoryName.Valid {
		tx.Category = &core.Category{
			ID:      row.CategoryID.Int64,
			Name:    row.CategoryName.String,
			OwnerID: row.OwnerID,
		}
	}
	return tx, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
