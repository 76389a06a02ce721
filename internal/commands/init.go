package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ivanvaic99/fintrack/internal/activity"
	"github.com/ivanvaic99/fintrack/internal/config"
	"github.com/ivanvaic99/fintrack/internal/gitops"
	"github.com/ivanvaic99/fintrack/internal/ledger"
)

func newInitCommand(a *app) *cobra.Command {
	var backend string
	var useGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new FinTrack project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := a.root
			if len(args) > 0 {
				abs, err := filepath.Abs(args[0])
				if err != nil {
					return fmt.Errorf("resolving path: %w", err)
				}
				dir = abs
			}

			b, err := ledger.ParseBackend(backend)
			if err != nil {
				return err
			}

			hash, err := runInit(cmd.Context(), a, dir, b, useGit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if hash != "" {
				fmt.Fprintf(out, "Initialized FinTrack project at %s (%s)\n", dir, hash)
			} else {
				fmt.Fprintf(out, "Initialized FinTrack project at %s\n", dir)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&backend, "backend", string(ledger.BackendSQLite), "storage backend (sqlite, csv, memory)")
	cmd.Flags().BoolVar(&useGit, "git", false, "initialize a git repository and commit every change")

	return cmd
}

func runInit(ctx context.Context, a *app, dir string, backend ledger.Backend, useGit bool) (string, error) {
	cfgPath := filepath.Join(dir, config.FileName)
	if fileExists(cfgPath) {
		return "", fmt.Errorf("%s already exists", cfgPath)
	}

	cfg := config.Default()
	cfg.Storage.Backend = string(backend)
	cfg.Storage.Path = config.DefaultStoragePath(string(backend))
	cfg.Git.AutoCommit = useGit

	for _, d := range []string{"data", cfg.Export.Dir, "logs"} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return "", fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		return "", fmt.Errorf("writing config: %w", err)
	}

	gitignore := cfg.Export.Dir + "/\n.env\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return "", fmt.Errorf("writing .gitignore: %w", err)
	}

	// Opening the store creates the ledger file or database schema.
	store, err := ledger.Open(ctx, ledger.Options{
		Backend: backend,
		Path:    config.Resolve(dir, cfg.Storage.Path),
	})
	if err != nil {
		return "", fmt.Errorf("creating ledger: %w", err)
	}
	if err := store.Close(); err != nil {
		return "", fmt.Errorf("closing ledger: %w", err)
	}

	if err := activity.Append(dir, activity.Entry{
		Timestamp: time.Now(),
		Action:    activity.ActionInit,
		Details:   fmt.Sprintf("created project with %s storage", backend),
	}); err != nil {
		return "", fmt.Errorf("writing activity log: %w", err)
	}

	if !useGit {
		return "", nil
	}

	if !gitops.IsRepo(dir) {
		if err := gitops.Init(ctx, dir); err != nil {
			return "", err
		}
	}
	author := gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
	hash, err := gitops.CommitAll(ctx, dir, "init: FinTrack project", author)
	if err != nil {
		return "", fmt.Errorf("initial commit: %w", err)
	}
	a.logger.Debug("project committed", "component", "git", "hash", hash)
	return hash, nil
}
