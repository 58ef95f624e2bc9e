// Package ledger defines the ports of the ledger store. Every operation is
// scoped by owner: a record owned by someone else behaves exactly like a
// missing one.
package ledger

import (
	"context"
	"time"

	"fintrack/internal/core"
)

// Query selects transactions of one kind for one owner within the
// inclusive range [From, To]. When CategoryID is set only transactions
// referencing that category match.
type Query struct {
	OwnerID    string
	Kind       core.Kind
	From       time.Time
	To         time.Time
	CategoryID *int64
}

// Matches reports whether t satisfies every filter of the query.
func (q Query) Matches(t core.Transaction) bool {
	if t.OwnerID != q.OwnerID || t.Kind != q.Kind {
		return false
	}
	if t.Date.Before(q.From) || t.Date.After(q.To) {
		return false
	}
	if q.CategoryID != nil {
		id := t.CategoryID()
		if id == nil || *id != *q.CategoryID {
			return false
		}
	}
	return true
}

// Ports for the ledger store.
type (
	// Store is the read side consumed by report aggregation. Results of
	// FindTransactions are ordered by date, then id.
	Store interface {
		FindTransactions(ctx context.Context, q Query) ([]core.Transaction, error)
		// FindCategory returns core.ErrNotFound when no category with that
		// id belongs to ownerID.
		FindCategory(ctx context.Context, id int64, ownerID string) (*core.Category, error)
	}

	CategoryRepository interface {
		CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
		ListCategories(ctx context.Context, ownerID string) ([]core.Category, error)
		UpdateCategory(ctx context.Context, c core.Category) (core.Category, error)
		// DeleteCategory detaches the category from its transactions
		// before removing it.
		DeleteCategory(ctx context.Context, id int64, ownerID string) error
	}

	// TransactionRepository persists incomes and expenses. Create and
	// Update fail with core.ErrCategoryNotFound when the referenced
	// category is not owned by the transaction owner.
	TransactionRepository interface {
		CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		GetTransaction(ctx context.Context, kind core.Kind, id int64, ownerID string) (core.Transaction, error)
		UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, kind core.Kind, id int64, ownerID string) error
	}

	// Repository is the full ledger used by the CRUD services.
	Repository interface {
		Store
		CategoryRepository
		TransactionRepository
		Ping(ctx context.Context) error
		Close() error
	}
)
