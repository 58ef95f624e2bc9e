package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
)

// LedgerService orchestrates owner-scoped CRUD over categories, incomes and
// expenses. Every call is validated before it reaches the repository.
type LedgerService struct {
	repo ledger.Repository
}

func NewLedgerService(repo ledger.Repository) *LedgerService {
	return &LedgerService{repo: repo}
}

func (s *LedgerService) CreateCategory(ctx context.Context, ownerID, name string) (core.Category, error) {
	c := core.Category{Name: strings.TrimSpace(name), OwnerID: ownerID}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	created, err := s.repo.CreateCategory(ctx, c)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	slog.InfoContext(ctx, "Category created",
		log.FieldComponent, log.ComponentLedger,
		log.FieldOwnerID, ownerID,
		log.FieldCategoryID, created.ID)
	return created, nil
}

func (s *LedgerService) ListCategories(ctx context.Context, ownerID string) ([]core.Category, error) {
	if ownerID == "" {
		return nil, core.ErrEmptyOwner
	}
	cats, err := s.repo.ListCategories(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

func (s *LedgerService) GetCategory(ctx context.Context, ownerID string, id int64) (core.Category, error) {
	c, err := s.repo.FindCategory(ctx, id, ownerID)
	if err != nil {
		return core.Category{}, err
	}
	return *c, nil
}

func (s *LedgerService) RenameCategory(ctx context.Context, ownerID string, id int64, name string) (core.Category, error) {
	c := core.Category{ID: id, Name: strings.TrimSpace(name), OwnerID: ownerID}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	updated, err := s.repo.UpdateCategory(ctx, c)
	if err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	return updated, nil
}

// DeleteCategory removes the category; its transactions become uncategorised.
func (s *LedgerService) DeleteCategory(ctx context.Context, ownerID string, id int64) error {
	if err := s.repo.DeleteCategory(ctx, id, ownerID); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	slog.InfoContext(ctx, "Category deleted",
		log.FieldComponent, log.ComponentLedger,
		log.FieldOwnerID, ownerID,
		log.FieldCategoryID, id)
	return nil
}

// TransactionInput carries the user-editable fields of an income or expense.
type TransactionInput struct {
	Amount     string
	Date       time.Time
	CategoryID *int64
}

func (in TransactionInput) build(kind core.Kind, ownerID string) (core.Transaction, error) {
	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	t := core.Transaction{Kind: kind, Amount: amount, Date: in.Date, OwnerID: ownerID}
	if in.CategoryID != nil {
		t.Category = &core.Category{ID: *in.CategoryID, OwnerID: ownerID}
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

func (s *LedgerService) CreateTransaction(ctx context.Context, kind core.Kind, ownerID string, in TransactionInput) (core.Transaction, error) {
	t, err := in.build(kind, ownerID)
	if err != nil {
		return core.Transaction{}, err
	}
	created, err := s.repo.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create %s: %w", kind, err)
	}
	slog.InfoContext(ctx, "Transaction created",
		log.FieldComponent, log.ComponentLedger,
		log.FieldOwnerID, ownerID,
		"kind", string(kind),
		"id", created.ID)
	return created, nil
}

func (s *LedgerService) GetTransaction(ctx context.Context, kind core.Kind, ownerID string, id int64) (core.Transaction, error) {
	if err := kind.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return s.repo.GetTransaction(ctx, kind, id, ownerID)
}

// ListTransactions returns the owner's transactions of one kind within
// [from, to], ordered by date.
func (s *LedgerService) ListTransactions(ctx context.Context, kind core.Kind, ownerID string, from, to time.Time) ([]core.Transaction, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}
	if ownerID == "" {
		return nil, core.ErrEmptyOwner
	}
	if from.After(to) {
		return nil, core.ErrInvalidRange
	}
	txs, err := s.repo.FindTransactions(ctx, ledger.Query{OwnerID: ownerID, Kind: kind, From: from, To: to})
	if err != nil {
		return nil, fmt.Errorf("list %ss: %w", kind, err)
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	return txs, nil
}

func (s *LedgerService) UpdateTransaction(ctx context.Context, kind core.Kind, ownerID string, id int64, in TransactionInput) (core.Transaction, error) {
	t, err := in.build(kind, ownerID)
	if err != nil {
		return core.Transaction{}, err
	}
	t.ID = id
	updated, err := s.repo.UpdateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update %s: %w", kind, err)
	}
	return updated, nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, kind core.Kind, ownerID string, id int64) error {
	if err := kind.Validate(); err != nil {
		return err
	}
	if err := s.repo.DeleteTransaction(ctx, kind, id, ownerID); err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	return nil
}
