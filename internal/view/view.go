// Package view derives what the ledger screen shows from the full set of
// transactions: the filtered list, income/expense totals and the expense
// breakdown by category. Everything here is a pure function of its inputs.
package view

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ivanvaic99/fintrack/internal/model"
)

// Query selects a month and an optional search term.
type Query struct {
	Month  model.Month
	Search string
}

// Totals are the sums over a filtered set.
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Net     decimal.Decimal
}

// CategoryTotal is the expense sum for one category.
type CategoryTotal struct {
	Category model.Category
	Amount   decimal.Decimal
}

// Result is everything the presentation layer renders for one Query.
type Result struct {
	Transactions []model.Transaction
	Totals       Totals
	Categories   []CategoryTotal
}

// Compute filters txns by q and summarises the filtered set.
func Compute(txns []model.Transaction, q Query) Result {
	filtered := Filter(txns, q)
	return Result{
		Transactions: filtered,
		Totals:       Summarize(filtered),
		Categories:   ByCategory(filtered),
	}
}

// Filter keeps the transactions dated in q.Month whose category or note
// contains q.Search, ignoring case. Input order is preserved.
func Filter(txns []model.Transaction, q Query) []model.Transaction {
	term := strings.ToLower(q.Search)
	out := make([]model.Transaction, 0, len(txns))
	for _, t := range txns {
		if !q.Month.Contains(t.Date) {
			continue
		}
		if !matches(t, term) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func matches(t model.Transaction, term string) bool {
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(string(t.Category)), term) {
		return true
	}
	return t.Note != "" && strings.Contains(strings.ToLower(t.Note), term)
}

// Summarize adds up income and expense. An empty slice gives zero totals.
func Summarize(txns []model.Transaction) Totals {
	income := decimal.Zero
	expense := decimal.Zero
	for _, t := range txns {
		switch t.Type {
		case model.TypeIncome:
			income = income.Add(t.Amount)
		case model.TypeExpense:
			expense = expense.Add(t.Amount)
		}
	}
	return Totals{
		Income:  income,
		Expense: expense,
		Net:     income.Sub(expense),
	}
}

// ByCategory sums expenses per category in enumeration order. Categories
// with a zero sum are left out, as are categories outside the enumeration.
func ByCategory(txns []model.Transaction) []CategoryTotal {
	sums := make(map[model.Category]decimal.Decimal)
	for _, t := range txns {
		if t.Type != model.TypeExpense {
			continue
		}
		sums[t.Category] = sums[t.Category].Add(t.Amount)
	}

	var out []CategoryTotal
	for _, c := range model.Categories() {
		sum, ok := sums[c]
		if !ok || sum.IsZero() {
			continue
		}
		out = append(out, CategoryTotal{Category: c, Amount: sum})
	}
	return out
}

// Share returns each category's fraction of the largest amount, for bar
// rendering. The largest category gets 1.
func Share(cats []CategoryTotal) []float64 {
	out := make([]float64, len(cats))
	maxAmt := decimal.Zero
	for _, c := range cats {
		if c.Amount.GreaterThan(maxAmt) {
			maxAmt = c.Amount
		}
	}
	if maxAmt.IsZero() {
		return out
	}
	for i, c := range cats {
		out[i] = c.Amount.Div(maxAmt).InexactFloat64()
	}
	return out
}
