package view

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanvaic99/fintrack/internal/model"
)

func txn(id int, amount string, cat model.Category, typ model.Type, day string, note string) model.Transaction {
	d, err := time.Parse(model.DateLayout, day)
	if err != nil {
		panic(err)
	}
	return model.Transaction{
		ID:       model.ID(id),
		Amount:   decimal.RequireFromString(amount),
		Category: cat,
		Type:     typ,
		Date:     d,
		Note:     note,
	}
}

func month(t *testing.T, s string) model.Month {
	t.Helper()
	m, err := model.ParseMonth(s)
	require.NoError(t, err)
	return m
}

func ids(txns []model.Transaction) []model.ID {
	var out []model.ID
	for _, t := range txns {
		out = append(out, t.ID)
	}
	return out
}

func TestFilter_MonthBoundary(t *testing.T) {
	txns := []model.Transaction{
		txn(1, "10", model.CategoryFood, model.TypeExpense, "2024-01-31", ""),
		txn(2, "10", model.CategoryFood, model.TypeExpense, "2024-02-01", ""),
	}

	assert.Equal(t, []model.ID{1}, ids(Filter(txns, Query{Month: month(t, "2024-01")})))
	assert.Equal(t, []model.ID{2}, ids(Filter(txns, Query{Month: month(t, "2024-02")})))
}

func TestFilter_SameMonthOtherYear(t *testing.T) {
	txns := []model.Transaction{
		txn(1, "10", model.CategoryFood, model.TypeExpense, "2023-01-15", ""),
	}
	assert.Empty(t, Filter(txns, Query{Month: month(t, "2024-01")}))
}

func TestFilter_SearchCategoryOrNote(t *testing.T) {
	txns := []model.Transaction{
		txn(1, "10", model.CategoryFood, model.TypeExpense, "2024-01-03", ""),
		txn(2, "20", model.CategoryOther, model.TypeExpense, "2024-01-04", "Groceries for food"),
		txn(3, "30", model.CategoryRent, model.TypeExpense, "2024-01-05", "January"),
	}
	jan := month(t, "2024-01")

	tests := []struct {
		search string
		want   []model.ID
	}{
		{"food", []model.ID{1, 2}},
		{"FOOD", []model.ID{1, 2}},
		{"groceries", []model.ID{2}},
		{"rent", []model.ID{3}},
		{"jan", []model.ID{3}},
		{"", []model.ID{1, 2, 3}},
		{"salary", nil},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(txns, Query{Month: jan, Search: tt.search})))
		})
	}
}

func TestFilter_PreservesInputOrder(t *testing.T) {
	txns := []model.Transaction{
		txn(3, "1", model.CategoryFood, model.TypeExpense, "2024-01-20", ""),
		txn(1, "1", model.CategoryFood, model.TypeExpense, "2024-01-02", ""),
		txn(2, "1", model.CategoryFood, model.TypeExpense, "2024-01-10", ""),
	}
	assert.Equal(t, []model.ID{3, 1, 2}, ids(Filter(txns, Query{Month: month(t, "2024-01")})))
}

func TestSummarize_MixedTypes(t *testing.T) {
	txns := []model.Transaction{
		txn(1, "100", model.CategorySalary, model.TypeIncome, "2024-01-01", ""),
		txn(2, "50", model.CategoryFreelance, model.TypeIncome, "2024-01-02", ""),
		txn(3, "30", model.CategoryFood, model.TypeExpense, "2024-01-03", ""),
	}

	got := Summarize(txns)
	assert.True(t, got.Income.Equal(decimal.NewFromInt(150)), "income = %s", got.Income)
	assert.True(t, got.Expense.Equal(decimal.NewFromInt(30)), "expense = %s", got.Expense)
	assert.True(t, got.Net.Equal(decimal.NewFromInt(120)), "net = %s", got.Net)
}

func TestSummarize_Empty(t *testing.T) {
	got := Summarize(nil)
	assert.True(t, got.Income.IsZero())
	assert.True(t, got.Expense.IsZero())
	assert.True(t, got.Net.IsZero())
}

func TestSummarize_ExactDecimals(t *testing.T) {
	txns := []model.Transaction{
		txn(1, "0.1", model.CategoryFood, model.TypeExpense, "2024-01-01", ""),
		txn(2, "0.2", model.CategoryFood, model.TypeExpense, "2024-01-02", ""),
	}
	assert.Equal(t, "0.3", Summarize(txns).Expense.String())
}

func TestByCategory_ExcludesZeroSums(t *testing.T) {
	txns := []model.Transaction{
		txn(1, "10", model.CategoryFood, model.TypeExpense, "2024-01-01", ""),
		txn(2, "0", model.CategoryRent, model.TypeExpense, "2024-01-02", ""),
	}

	got := ByCategory(txns)
	require.Len(t, got, 1)
	assert.Equal(t, model.CategoryFood, got[0].Category)
	assert.True(t, got[0].Amount.Equal(decimal.NewFromInt(10)))
}

func TestByCategory_EnumerationOrderAndExpenseOnly(t *testing.T) {
	txns := []model.Transaction{
		txn(1, "5", model.CategoryOther, model.TypeExpense, "2024-01-01", ""),
		txn(2, "900", model.CategoryRent, model.TypeExpense, "2024-01-01", ""),
		txn(3, "7", model.CategoryFood, model.TypeExpense, "2024-01-02", ""),
		txn(4, "3", model.CategoryFood, model.TypeExpense, "2024-01-03", ""),
		txn(5, "2500", model.CategorySalary, model.TypeIncome, "2024-01-01", ""),
		txn(6, "40", "Pets", model.TypeExpense, "2024-01-04", ""),
	}

	got := ByCategory(txns)
	var cats []model.Category
	for _, c := range got {
		cats = append(cats, c.Category)
	}
	assert.Equal(t, []model.Category{model.CategoryFood, model.CategoryRent, model.CategoryOther}, cats)
	assert.True(t, got[0].Amount.Equal(decimal.NewFromInt(10)))
}

func TestCompute(t *testing.T) {
	txns := []model.Transaction{
		txn(1, "2500", model.CategorySalary, model.TypeIncome, "2024-01-01", ""),
		txn(2, "12.40", model.CategoryFood, model.TypeExpense, "2024-01-03", "Groceries"),
		txn(3, "800", model.CategoryRent, model.TypeExpense, "2024-02-01", ""),
	}

	got := Compute(txns, Query{Month: month(t, "2024-01")})
	assert.Equal(t, []model.ID{1, 2}, ids(got.Transactions))
	assert.Equal(t, "2487.6", got.Totals.Net.String())
	require.Len(t, got.Categories, 1)
	assert.Equal(t, model.CategoryFood, got.Categories[0].Category)

	again := Compute(txns, Query{Month: month(t, "2024-01")})
	assert.Equal(t, got.Totals.Net.String(), again.Totals.Net.String())
}

func TestShare(t *testing.T) {
	cats := []CategoryTotal{
		{Category: model.CategoryFood, Amount: decimal.NewFromInt(25)},
		{Category: model.CategoryRent, Amount: decimal.NewFromInt(100)},
	}
	assert.InDeltaSlice(t, []float64{0.25, 1}, Share(cats), 1e-9)
	assert.Empty(t, Share(nil))
}
