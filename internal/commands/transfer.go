package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ivanvaic99/fintrack/internal/activity"
	"github.com/ivanvaic99/fintrack/internal/session"
)

func newImportCommand(a *app) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import transactions from a CSV export",
		Long: `Import reads a CSV file with the header id,amount,category,type,date,note.
The id column is ignored and every row gets a new id. Rows whose amount or
date cannot be parsed are skipped and reported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening import file: %w", err)
			}
			defer f.Close()

			var bar *progressbar.ProgressBar
			progress := func(done, total int) {
				if quiet {
					return
				}
				if bar == nil {
					bar = progressbar.NewOptions(total,
						progressbar.OptionSetWriter(cmd.ErrOrStderr()),
						progressbar.OptionShowCount(),
						progressbar.OptionSetWidth(40),
						progressbar.OptionSetDescription("Importing transactions"),
						progressbar.OptionOnCompletion(func() {
							fmt.Fprintln(cmd.ErrOrStderr())
						}),
					)
				}
				_ = bar.Set(done)
			}

			ctx := cmd.Context()
			s, store, err := a.openSession(ctx, session.WithImportProgress(progress))
			if err != nil {
				return err
			}
			defer store.Close()

			res, importErr := s.ImportCSV(ctx, f)

			// Rows inserted before a failure are kept, so they are logged either way.
			var recordErr error
			if len(res.Imported) > 0 || len(res.Skipped) > 0 {
				recordErr = a.record(ctx, activity.Entry{
					Timestamp: time.Now(),
					Action:    activity.ActionImport,
					Details:   fmt.Sprintf("imported %d rows from %s, skipped %d", len(res.Imported), args[0], len(res.Skipped)),
					BatchID:   res.BatchID,
				})
			}

			return reportImport(cmd.OutOrStdout(), res, importErr, recordErr)
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not show a progress bar")

	return cmd
}

// reportImport prints the outcome of an import and returns importErr and
// recordErr joined. The partial count is printed even when the activity log
// could not be written.
func reportImport(out io.Writer, res session.ImportResult, importErr, recordErr error) error {
	for _, skipped := range res.Skipped {
		fmt.Fprintln(out, warnStyle.Render(fmt.Sprintf("skipped line %d: %v", skipped.Line, skipped.Err)))
	}

	if pe, ok := session.IsPartialImport(importErr); ok {
		fmt.Fprintf(out, "Imported %d of %d transactions before failing\n", pe.Inserted, pe.Total)
	} else if importErr == nil {
		fmt.Fprintf(out, "Imported %d transactions, skipped %d rows (batch %s)\n",
			len(res.Imported), len(res.Skipped), res.BatchID)
	}

	return errors.Join(importErr, recordErr)
}

func newExportCommand(a *app) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every transaction to " + session.ExportName,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			target := a.exportDir()
			if dir != "" {
				target = dir
			}
			deliverer := session.FileDeliverer{Dir: target}

			ctx := cmd.Context()
			s, store, err := a.openSession(ctx, session.WithDeliverer(deliverer))
			if err != nil {
				return err
			}
			defer store.Close()

			e, err := s.ExportCSV(ctx)
			if err != nil {
				return err
			}

			path := deliverer.Path(e.Name)
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d transactions to %s\n", s.State().Len(), path)

			return a.record(ctx, activity.Entry{
				Timestamp: time.Now(),
				Action:    activity.ActionExport,
				Details:   fmt.Sprintf("exported %d transactions to %s", s.State().Len(), path),
			})
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "output directory (default from fintrack.yaml)")

	return cmd
}

func newHistoryCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show the activity log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := activity.Read(a.root)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, subtleStyle.Render("No activity yet."))
				return nil
			}
			fmt.Fprintln(out, historyTable(entries))
			return nil
		},
	}
}
