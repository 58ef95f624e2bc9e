package storage

import (
	"context"
	"database/sql"
)

const createCategory = `
INSERT INTO categories (owner_id, name) VALUES (?, ?)
RETURNING id, owner_id, name`

type CreateCategoryParams struct {
	OwnerID string
	Name    string
}

func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error) {
	row := q.db.QueryRowContext(ctx, createCategory, arg.OwnerID, arg.Name)
	var i Category
	err := row.Scan(&i.ID, &i.OwnerID, &i.Name)
	return i, err
}

const getCategory = `
SELECT id, owner_id, name FROM categories
WHERE id = ? AND owner_id = ?`

func (q *Queries) GetCategory(ctx context.Context, id int64, ownerID string) (Category, error) {
	row := q.db.QueryRowContext(ctx, getCategory, id, ownerID)
	var i Category
	err := row.Scan(&i.ID, &i.OwnerID, &i.Name)
	return i, err
}

const listCategories = `
SELECT id, owner_id, name FROM categories
WHERE owner_id = ?
ORDER BY name, id`

func (q *Queries) ListCategories(ctx context.Context, ownerID string) ([]Category, error) {
	rows, err := q.db.QueryContext(ctx, listCategories, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Category{}
	for rows.Next() {
		var i Category
		if err := rows.Scan(&i.ID, &i.OwnerID, &i.Name); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateCategory = `
UPDATE categories SET name = ?
WHERE id = ? AND owner_id = ?
RETURNING id, owner_id, name`

type UpdateCategoryParams struct {
	Name    string
	ID      int64
	OwnerID string
}

func (q *Queries) UpdateCategory(ctx context.Context, arg UpdateCategoryParams) (Category, error) {
	row := q.db.QueryRowContext(ctx, updateCategory, arg.Name, arg.ID, arg.OwnerID)
	var i Category
	err := row.Scan(&i.ID, &i.OwnerID, &i.Name)
	return i, err
}

const detachCategory = `
UPDATE transactions SET category_id = NULL
WHERE category_id = ? AND owner_id = ?`

func (q *Queries) DetachCategory(ctx context.Context, categoryID int64, ownerID string) error {
	_, err := q.db.ExecContext(ctx, detachCategory, categoryID, ownerID)
	return err
}

const deleteCategory = `
DELETE FROM categories WHERE id = ? AND owner_id = ?`

func (q *Queries) DeleteCategory(ctx context.Context, id int64, ownerID string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteCategory, id, ownerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const transactionColumns = `
SELECT t.id, t.owner_id, t.kind, t.amount_cents, t.occurred_at, t.category_id, c.name
FROM transactions t
LEFT JOIN categories c ON c.id = t.category_id AND c.owner_id = t.owner_id`

const findTransactions = transactionColumns + `
WHERE t.owner_id = ?
  AND t.kind = ?
  AND t.occurred_at >= ?
  AND t.occurred_at <= ?
  AND (? IS NULL OR t.category_id = ?)
ORDER BY t.occurred_at, t.id`

type FindTransactionsParams struct {
	OwnerID    string
	Kind       string
	From       string
	To         string
	CategoryID sql.NullInt64
}

func (q *Queries) FindTransactions(ctx context.Context, arg FindTransactionsParams) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, findTransactions,
		arg.OwnerID, arg.Kind, arg.From, arg.To, arg.CategoryID, arg.CategoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []TransactionRow{}
	for rows.Next() {
		i, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getTransaction = transactionColumns + `
WHERE t.id = ? AND t.kind = ? AND t.owner_id = ?`

func (q *Queries) GetTransaction(ctx context.Context, id int64, kind, ownerID string) (TransactionRow, error) {
	return scanTransaction(q.db.QueryRowContext(ctx, getTransaction, id, kind, ownerID))
}

const createTransaction = `
INSERT INTO transactions (owner_id, kind, amount_cents, occurred_at, category_id)
VALUES (?, ?, ?, ?, ?)
RETURNING id`

type CreateTransactionParams struct {
	OwnerID     string
	Kind        string
	AmountCents int64
	OccurredAt  string
	CategoryID  sql.NullInt64
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createTransaction,
		arg.OwnerID, arg.Kind, arg.AmountCents, arg.OccurredAt, arg.CategoryID)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const updateTransaction = `
UPDATE transactions SET amount_cents = ?, occurred_at = ?, category_id = ?
WHERE id = ? AND kind = ? AND owner_id = ?`

type UpdateTransactionParams struct {
	AmountCents int64
	OccurredAt  string
	CategoryID  sql.NullInt64
	ID          int64
	Kind        string
	OwnerID     string
}

func (q *Queries) UpdateTransaction(ctx context.Context, arg UpdateTransactionParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateTransaction,
		arg.AmountCents, arg.OccurredAt, arg.CategoryID, arg.ID, arg.Kind, arg.OwnerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteTransaction = `
DELETE FROM transactions WHERE id = ? AND kind = ? AND owner_id = ?`

func (q *Queries) DeleteTransaction(ctx context.Context, id int64, kind, ownerID string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTransaction, id, kind, ownerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s scanner) (TransactionRow, error) {
	var i TransactionRow
	err := s.Scan(
		&i.ID,
		&i.OwnerID,
		&i.Kind,
		&i.AmountCents,
		&i.OccurredAt,
		&i.CategoryID,
		&i.CategoryName,
	)
	return i, err
}
