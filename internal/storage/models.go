package storage

import "database/sql"

type Category struct {
	ID      int64
	OwnerID string
	Name    string
}

// TransactionRow is a transactions row joined with its category name.
type TransactionRow struct {
	ID           int64
	OwnerID      string
	Kind         string
	AmountCents  int64
	OccurredAt   string
	CategoryID   sql.NullInt64
	CategoryName sql.NullString
}
