// Package memory is an in-process ledger used for development and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

type record struct {
	tx         core.Transaction
	categoryID *int64
}

type Store struct {
	mu         sync.Mutex
	nextCat    int64
	nextTx     int64
	categories map[int64]core.Category
	records    []record
}

var _ ledger.Repository = (*Store)(nil)

func New() *Store {
	return &Store{categories: make(map[int64]core.Category)}
}

// FindTransactions implements ledger.Store.
func (s *Store) FindTransactions(ctx context.Context, q ledger.Query) ([]core.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0)
	for _, r := range s.records {
		tx := s.resolve(r)
		if q.Matches(tx) {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// FindCategory implements ledger.Store.
func (s *Store) FindCategory(ctx context.Context, id int64, ownerID string) (*core.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok || c.OwnerID != ownerID {
		return nil, core.ErrNotFound
	}
	return &c, nil
}

func (s *Store) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextCat++
	c.ID = s.nextCat
	s.categories[c.ID] = c
	return c, nil
}

func (s *Store) ListCategories(_ context.Context, ownerID string) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Category, 0)
	for _, c := range s.categories {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) UpdateCategory(_ context.Context, c core.Category) (core.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.categories[c.ID]
	if !ok || existing.OwnerID != c.OwnerID {
		return core.Category{}, core.ErrNotFound
	}
	s.categories[c.ID] = c
	return c, nil
}

func (s *Store) DeleteCategory(_ context.Context, id int64, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.categories[id]
	if !ok || existing.OwnerID != ownerID {
		return core.ErrNotFound
	}
	for i := range s.records {
		if cid := s.records[i].categoryID; cid != nil && *cid == id {
			s.records[i].categoryID = nil
		}
	}
	delete(s.categories, id)
	return nil
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cid, err := s.ownedCategory(t)
	if err != nil {
		return core.Transaction{}, err
	}
	s.nextTx++
	t.ID = s.nextTx
	r := record{tx: t, categoryID: cid}
	s.records = append(s.records, r)
	return s.resolve(r), nil
}

func (s *Store) GetTransaction(_ context.Context, kind core.Kind, id int64, ownerID string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(kind, id, ownerID)
	if i < 0 {
		return core.Transaction{}, core.ErrNotFound
	}
	return s.resolve(s.records[i]), nil
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(t.Kind, t.ID, t.OwnerID)
	if i < 0 {
		return core.Transaction{}, core.ErrNotFound
	}
	cid, err := s.ownedCategory(t)
	if err != nil {
		return core.Transaction{}, err
	}
	s.records[i] = record{tx: t, categoryID: cid}
	return s.resolve(s.records[i]), nil
}

func (s *Store) DeleteTransaction(_ context.Context, kind core.Kind, id int64, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(kind, id, ownerID)
	if i < 0 {
		return core.ErrNotFound
	}
	s.records = append(s.records[:i], s.records[i+1:]...)
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Store) Close() error { return nil }

// resolve attaches the current category to a stored record. Caller holds mu.
func (s *Store) resolve(r record) core.Transaction {
	tx := r.tx
	tx.Category = nil
	if r.categoryID != nil {
		if c, ok := s.categories[*r.categoryID]; ok {
			tx.Category = &c
		}
	}
	return tx
}

func (s *Store) ownedCategory(t core.Transaction) (*int64, error) {
	cid := t.CategoryID()
	if cid == nil {
		return nil, nil
	}
	c, ok := s.categories[*cid]
	if !ok || c.OwnerID != t.OwnerID {
		return nil, core.ErrCategoryNotFound
	}
	return cid, nil
}

func (s *Store) indexOf(kind core.Kind, id int64, ownerID string) int {
	for i, r := range s.records {
		if r.tx.ID == id && r.tx.Kind == kind && r.tx.OwnerID == ownerID {
			return i
		}
	}
	return -1
}
