package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ivanvaic99/fintrack/internal/activity"
	"github.com/ivanvaic99/fintrack/internal/model"
	"github.com/ivanvaic99/fintrack/internal/view"
)

func newAddCommand(a *app) *cobra.Command {
	var amount, category, typ, date, note string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an income or expense",
		Example: `  fintrack add --amount 12.40 --category Food --note "Groceries"
  fintrack add --amount 2500 --category Salary --type income --date 2024-01-01`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if date == "" {
				date = model.FormatDate(time.Now())
			}
			d, err := model.ParseDraft(amount, category, typ, date, note)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			s, store, err := a.openSession(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			txn, err := s.AddTransaction(ctx, d)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added transaction %s: %s %s %s on %s\n",
				txn.ID, txn.Type, money(txn.Amount), txn.Category, model.FormatDate(txn.Date))

			return a.record(ctx, activity.Entry{
				Timestamp:     time.Now(),
				Action:        activity.ActionAdd,
				Details:       fmt.Sprintf("%s %s %s on %s", txn.Type, money(txn.Amount), txn.Category, model.FormatDate(txn.Date)),
				TransactionID: txn.ID,
			})
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "amount, a non-negative decimal (required)")
	cmd.Flags().StringVar(&category, "category", "", "category: "+strings.Join(model.CategoryNames(), ", ")+" (required)")
	cmd.Flags().StringVar(&typ, "type", string(model.TypeExpense), "income or expense")
	cmd.Flags().StringVar(&date, "date", "", "date as YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&note, "note", "", "free-text note")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func newDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := model.ParseID(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			s, store, err := a.openSession(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			txn, found := s.State().Find(id)
			if err := s.DeleteTransaction(ctx, id); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !found {
				fmt.Fprintf(out, "No transaction %s; nothing to delete\n", id)
				return nil
			}
			fmt.Fprintf(out, "Deleted transaction %s\n", id)

			return a.record(ctx, activity.Entry{
				Timestamp:     time.Now(),
				Action:        activity.ActionDelete,
				Details:       fmt.Sprintf("%s %s %s on %s", txn.Type, money(txn.Amount), txn.Category, model.FormatDate(txn.Date)),
				TransactionID: id,
			})
		},
	}
}

func newListCommand(a *app) *cobra.Command {
	var month, search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show a month's transactions, totals and expenses by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m := model.MonthOf(time.Now())
			if month != "" {
				parsed, err := model.ParseMonth(month)
				if err != nil {
					return err
				}
				m = parsed
			}

			ctx := cmd.Context()
			s, store, err := a.openSession(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			res := s.View(view.Query{Month: m, Search: search})
			renderResult(cmd.OutOrStdout(), m, search, res)
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "month as YYYY-MM (default current month)")
	cmd.Flags().StringVar(&search, "search", "", "case-insensitive match on category or note")

	return cmd
}
