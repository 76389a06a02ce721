package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the textual form of a transaction date.
const DateLayout = "2006-01-02"

// ID identifies a persisted transaction. Zero means "not persisted yet".
type ID int64

// String returns the decimal form of the ID.
func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseID parses a decimal transaction ID like "42".
func ParseID(s string) (ID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid transaction id %q: %w", s, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid transaction id %q: must be positive", s)
	}
	return ID(n), nil
}

// Type tells income and expense apart.
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

// Valid reports whether t is income or expense.
func (t Type) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// ParseType matches a type case-insensitively.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", &ValidationError{Field: "type", Reason: fmt.Sprintf("%q is not income or expense", s)}
	}
	return t, nil
}

// Draft is a transaction that has not been assigned an ID by a store.
type Draft struct {
	Amount   decimal.Decimal
	Category Category
	Type     Type
	Date     time.Time
	Note     string
}

// Transaction is a persisted ledger row.
type Transaction struct {
	ID       ID
	Amount   decimal.Decimal
	Category Category
	Type     Type
	Date     time.Time
	Note     string
}

// WithID returns the persisted form of d.
func (d Draft) WithID(id ID) Transaction {
	return Transaction{
		ID:       id,
		Amount:   d.Amount,
		Category: d.Category,
		Type:     d.Type,
		Date:     d.Date,
		Note:     d.Note,
	}
}

// Draft strips the identity from t.
func (t Transaction) Draft() Draft {
	return Draft{
		Amount:   t.Amount,
		Category: t.Category,
		Type:     t.Type,
		Date:     t.Date,
		Note:     t.Note,
	}
}

// ParseDate parses a YYYY-MM-DD calendar date into UTC midnight.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return d, nil
}

// FormatDate renders a date as YYYY-MM-DD.
func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}
