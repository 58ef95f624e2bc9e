package core

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseReportType(t *testing.T) {
	cases := []struct {
		in   string
		want ReportType
		ok   bool
	}{
		{"", ReportAll, true},
		{"all", ReportAll, true},
		{"incomes", ReportIncomes, true},
		{"EXPENSES", ReportExpenses, true},
		{" expenses ", ReportExpenses, true},
		{"income", "", false},
		{"both", "", false},
	}
	for _, tc := range cases {
		got, err := ParseReportType(tc.in)
		if tc.ok {
			if err != nil || got != tc.want {
				t.Fatalf("%q expected %q, got %q (err=%v)", tc.in, tc.want, got, err)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidReportType) {
			t.Fatalf("%q expected ErrInvalidReportType, got %v", tc.in, err)
		}
	}
}

func TestReportTypeIncludes(t *testing.T) {
	cases := []struct {
		rt      ReportType
		income  bool
		expense bool
	}{
		{ReportAll, true, true},
		{ReportIncomes, true, false},
		{ReportExpenses, false, true},
		{ReportType("bogus"), false, false},
	}
	for _, tc := range cases {
		if got := tc.rt.Includes(Income); got != tc.income {
			t.Fatalf("%s includes income: got %v", tc.rt, got)
		}
		if got := tc.rt.Includes(Expense); got != tc.expense {
			t.Fatalf("%s includes expense: got %v", tc.rt, got)
		}
	}
}

func TestCategoryValidate(t *testing.T) {
	good := Category{Name: "Salary", OwnerID: "alice"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		c    Category
		want error
	}{
		{Category{Name: "  ", OwnerID: "alice"}, ErrEmptyCategoryName},
		{Category{Name: strings.Repeat("x", 31), OwnerID: "alice"}, ErrCategoryNameTooLong},
		{Category{Name: "Rent", OwnerID: ""}, ErrEmptyOwner},
	}
	for i, tc := range cases {
		if err := tc.c.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}

	// 30 multi-byte runes is still within the limit.
	if err := (Category{Name: strings.Repeat("ż", 30), OwnerID: "a"}).Validate(); err != nil {
		t.Fatalf("expected rune-counted name to pass, got %v", err)
	}
}

func TestTransactionValidate(t *testing.T) {
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	good := Transaction{Kind: Income, Amount: decimal.RequireFromString("1000.00"), Date: day, OwnerID: "alice"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Kind: "transfer", Amount: decimal.NewFromInt(1), Date: day, OwnerID: "a"},
		{Kind: Income, Amount: decimal.Zero, Date: day, OwnerID: "a"},
		{Kind: Expense, Amount: decimal.NewFromInt(10_000_001), Date: day, OwnerID: "a"},
		{Kind: Expense, Amount: decimal.NewFromInt(1), OwnerID: "a"},
		{Kind: Expense, Amount: decimal.NewFromInt(1), Date: day},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTransactionCategoryID(t *testing.T) {
	tx := Transaction{}
	if tx.CategoryID() != nil {
		t.Fatalf("expected nil category id")
	}
	tx.Category = &Category{ID: 7}
	if id := tx.CategoryID(); id == nil || *id != 7 {
		t.Fatalf("expected 7, got %v", id)
	}
}

func TestMonthOverviewBalanceColor(t *testing.T) {
	if c := (MonthOverview{Balance: decimal.NewFromInt(-1)}).BalanceColor(); c != "red" {
		t.Fatalf("expected red, got %s", c)
	}
	if c := (MonthOverview{}).BalanceColor(); c != "green" {
		t.Fatalf("expected green, got %s", c)
	}
}
