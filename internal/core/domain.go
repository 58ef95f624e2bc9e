package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

const (
	ReportIncomes  ReportType = "incomes"
	ReportExpenses ReportType = "expenses"
	ReportAll      ReportType = "all"
)

// MaxCategoryNameLength is the longest category name accepted, in runes.
const MaxCategoryNameLength = 30

// DateLayout is the calendar date format used on the wire and in exports.
const DateLayout = "2006-01-02"

type (
	// Kind distinguishes the two transaction types of the ledger.
	Kind string

	// ReportType selects which kinds a report covers.
	ReportType string

	Category struct {
		ID      int64
		Name    string
		OwnerID string
	}

	// Transaction is the shared shape of incomes and expenses. Category is
	// nil when the transaction was never categorised or its category was
	// deleted.
	Transaction struct {
		ID       int64
		Kind     Kind
		Amount   decimal.Decimal
		Date     time.Time
		Category *Category
		OwnerID  string
	}
)

var (
	ErrInvalidKind         = errors.New("invalid transaction kind")
	ErrInvalidReportType   = errors.New("invalid report type")
	ErrInvalidDate         = errors.New("invalid date")
	ErrEmptyCategoryName   = errors.New("empty category name")
	ErrCategoryNameTooLong = fmt.Errorf("category name too long (max %d characters)", MaxCategoryNameLength)
	ErrEmptyOwner          = errors.New("empty owner")
)

func (k Kind) Validate() error {
	switch k {
	case Income, Expense:
		return nil
	}
	return ErrInvalidKind
}

// Label is the human readable name of the kind used in exports.
func (k Kind) Label() string {
	switch k {
	case Income:
		return "Income"
	case Expense:
		return "Expense"
	}
	return string(k)
}

// ParseReportType maps a request parameter to a ReportType. An empty value
// selects ReportAll.
func ParseReportType(s string) (ReportType, error) {
	switch ReportType(strings.ToLower(strings.TrimSpace(s))) {
	case "", ReportAll:
		return ReportAll, nil
	case ReportIncomes:
		return ReportIncomes, nil
	case ReportExpenses:
		return ReportExpenses, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidReportType, s)
}

// Includes reports whether transactions of kind k are selected by the report type.
func (t ReportType) Includes(k Kind) bool {
	switch t {
	case ReportAll:
		return true
	case ReportIncomes:
		return k == Income
	case ReportExpenses:
		return k == Expense
	}
	return false
}

func (c Category) Validate() error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return ErrEmptyCategoryName
	}
	if utf8.RuneCountInString(name) > MaxCategoryNameLength {
		return ErrCategoryNameTooLong
	}
	if strings.TrimSpace(c.OwnerID) == "" {
		return ErrEmptyOwner
	}
	return nil
}

// CategoryID returns the id of the referenced category, or nil.
func (t Transaction) CategoryID() *int64 {
	if t.Category == nil {
		return nil
	}
	id := t.Category.ID
	return &id
}

func (t Transaction) Validate() error {
	if err := t.Kind.Validate(); err != nil {
		return err
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if err := ValidateAmount(t.Amount); err != nil {
		return err
	}
	if strings.TrimSpace(t.OwnerID) == "" {
		return ErrEmptyOwner
	}
	return nil
}
