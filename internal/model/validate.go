package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrValidation marks a malformed draft.
var ErrValidation = errors.New("validation failed")

// ValidationError describes why a draft was rejected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Validate checks a draft before it is handed to a store.
func (d Draft) Validate() error {
	if d.Amount.IsNegative() {
		return &ValidationError{Field: "amount", Reason: fmt.Sprintf("%s is negative", d.Amount)}
	}
	if d.Date.IsZero() {
		return &ValidationError{Field: "date", Reason: "missing"}
	}
	if !d.Type.Valid() {
		return &ValidationError{Field: "type", Reason: fmt.Sprintf("%q is not income or expense", d.Type)}
	}
	if !d.Category.Valid() {
		return &ValidationError{Field: "category", Reason: fmt.Sprintf("%q is not a known category", d.Category)}
	}
	return nil
}

// ParseDraft builds a draft from raw input fields. Category and type are
// matched case-insensitively; the note is trimmed.
func ParseDraft(amount, category, typ, date, note string) (Draft, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return Draft{}, &ValidationError{Field: "amount", Reason: "missing"}
	}
	amt, err := decimal.NewFromString(amount)
	if err != nil {
		return Draft{}, &ValidationError{Field: "amount", Reason: fmt.Sprintf("%q is not a number", amount)}
	}

	if strings.TrimSpace(date) == "" {
		return Draft{}, &ValidationError{Field: "date", Reason: "missing"}
	}
	d, err := ParseDate(date)
	if err != nil {
		return Draft{}, &ValidationError{Field: "date", Reason: fmt.Sprintf("%q is not YYYY-MM-DD", date)}
	}

	cat, err := ParseCategory(category)
	if err != nil {
		return Draft{}, err
	}
	t, err := ParseType(typ)
	if err != nil {
		return Draft{}, err
	}

	draft := Draft{
		Amount:   amt,
		Category: cat,
		Type:     t,
		Date:     d,
		Note:     strings.TrimSpace(note),
	}
	if err := draft.Validate(); err != nil {
		return Draft{}, err
	}
	return draft, nil
}
