package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ivanvaic99/fintrack/internal/activity"
	"github.com/ivanvaic99/fintrack/internal/model"
	"github.com/ivanvaic99/fintrack/internal/view"
)

var (
	incomeColor  = lipgloss.Color("#4ECDC4")
	expenseColor = lipgloss.Color("#FF6B6B")
	subtleColor  = lipgloss.Color("#666666")

	titleStyle   = lipgloss.NewStyle().Bold(true)
	incomeStyle  = lipgloss.NewStyle().Foreground(incomeColor)
	expenseStyle = lipgloss.NewStyle().Foreground(expenseColor)
	subtleStyle  = lipgloss.NewStyle().Foreground(subtleColor)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFE66D"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	amountStyle  = cellStyle.Align(lipgloss.Right)
)

const barWidth = 30

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func renderResult(w io.Writer, month model.Month, search string, res view.Result) {
	title := "Transactions for " + month.String()
	if search != "" {
		title += fmt.Sprintf(" matching %q", search)
	}
	fmt.Fprintln(w, titleStyle.Render(title))

	if len(res.Transactions) == 0 {
		fmt.Fprintln(w, subtleStyle.Render("No transactions."))
	} else {
		fmt.Fprintln(w, transactionTable(res.Transactions))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %s\n", titleStyle.Render("Income: "), incomeStyle.Render(money(res.Totals.Income)))
	fmt.Fprintf(w, "%s %s\n", titleStyle.Render("Expense:"), expenseStyle.Render(money(res.Totals.Expense)))
	fmt.Fprintf(w, "%s %s\n", titleStyle.Render("Net:    "), money(res.Totals.Net))

	if len(res.Categories) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render("Expenses by category"))
	shares := view.Share(res.Categories)
	for i, c := range res.Categories {
		n := int(shares[i]*barWidth + 0.5)
		if n == 0 {
			n = 1
		}
		fmt.Fprintf(w, "%-14s %s %s\n", c.Category, expenseStyle.Render(strings.Repeat("█", n)), money(c.Amount))
	}
}

func transactionTable(txns []model.Transaction) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "Date", "Type", "Category", "Amount", "Note").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 4:
				return amountStyle
			default:
				return cellStyle
			}
		})

	for _, txn := range txns {
		amount := money(txn.Amount)
		switch txn.Type {
		case model.TypeIncome:
			amount = incomeStyle.Render("+" + amount)
		case model.TypeExpense:
			amount = expenseStyle.Render("-" + amount)
		}
		t.Row(
			txn.ID.String(),
			model.FormatDate(txn.Date),
			string(txn.Type),
			string(txn.Category),
			amount,
			strings.ReplaceAll(txn.Note, "\n", " "),
		)
	}
	return t.String()
}

func historyTable(entries []activity.Entry) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Time", "Action", "Details", "Transaction", "Batch").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, e := range entries {
		txnID := ""
		if e.TransactionID != 0 {
			txnID = e.TransactionID.String()
		}
		batch := ""
		if e.BatchID != uuid.Nil {
			batch = e.BatchID.String()[:8]
		}
		t.Row(
			e.Timestamp.Local().Format("2006-01-02 15:04"),
			string(e.Action),
			e.Details,
			txnID,
			batch,
		)
	}
	return t.String()
}
