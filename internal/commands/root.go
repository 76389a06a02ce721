package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ivanvaic99/fintrack/internal/activity"
	"github.com/ivanvaic99/fintrack/internal/buildinfo"
	"github.com/ivanvaic99/fintrack/internal/config"
	"github.com/ivanvaic99/fintrack/internal/gitops"
	"github.com/ivanvaic99/fintrack/internal/ledger"
	"github.com/ivanvaic99/fintrack/internal/logging"
	"github.com/ivanvaic99/fintrack/internal/session"
)

// app is the state shared by every subcommand of one root command.
type app struct {
	v      *viper.Viper
	root   string
	cfg    *config.Config
	logger *slog.Logger
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:     "fintrack",
		Short:   "Personal income and expense ledger",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	rootCmd.PersistentFlags().String("repo", ".", "project directory")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (console, json)")

	_ = a.v.BindPFlag("repo", rootCmd.PersistentFlags().Lookup("repo"))
	_ = a.v.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = a.v.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(newInitCommand(a))
	rootCmd.AddCommand(newAddCommand(a))
	rootCmd.AddCommand(newDeleteCommand(a))
	rootCmd.AddCommand(newListCommand(a))
	rootCmd.AddCommand(newImportCommand(a))
	rootCmd.AddCommand(newExportCommand(a))
	rootCmd.AddCommand(newHistoryCommand(a))

	return rootCmd
}

// setup loads .env, environment, flags and fintrack.yaml, then configures
// logging. Flags and FINTRACK_* variables override the file.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	a.v.SetEnvPrefix("FINTRACK")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	root, err := filepath.Abs(a.v.GetString("repo"))
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}
	a.root = root

	cfg, err := config.Load(filepath.Join(root, config.FileName))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		cfg = config.Default()
	case err != nil:
		return err
	}
	if level := a.v.GetString("logging.level"); level != "" {
		cfg.Logging.Level = level
	}
	if format := a.v.GetString("logging.format"); format != "" {
		cfg.Logging.Format = format
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := logging.Setup(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	a.logger = logger
	return nil
}

func (a *app) storeOptions() (ledger.Options, error) {
	backend, err := ledger.ParseBackend(a.cfg.Storage.Backend)
	if err != nil {
		return ledger.Options{}, err
	}
	return ledger.Options{
		Backend: backend,
		Path:    config.Resolve(a.root, a.cfg.Storage.Path),
	}, nil
}

// openSession opens the configured store and loads it. The caller closes
// the returned store.
func (a *app) openSession(ctx context.Context, opts ...session.Option) (*session.Session, ledger.Store, error) {
	storeOpts, err := a.storeOptions()
	if err != nil {
		return nil, nil, err
	}
	store, err := ledger.Open(ctx, storeOpts)
	if err != nil {
		return nil, nil, err
	}

	opts = append([]session.Option{session.WithLogger(a.logger)}, opts...)
	s, err := session.Open(ctx, store, opts...)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return s, store, nil
}

// record appends to the activity log and, when enabled, commits the project.
func (a *app) record(ctx context.Context, e activity.Entry) error {
	if err := activity.Append(a.root, e); err != nil {
		return fmt.Errorf("writing activity log: %w", err)
	}

	if !a.cfg.Git.AutoCommit || !gitops.IsRepo(a.root) {
		return nil
	}
	author := gitops.Author{Name: a.cfg.Git.AuthorName, Email: a.cfg.Git.AuthorEmail}
	hash, err := gitops.CommitAll(ctx, a.root, fmt.Sprintf("%s: %s", e.Action, e.Details), author)
	if err != nil {
		return fmt.Errorf("auto-commit: %w", err)
	}
	if hash != "" {
		a.logger.Debug("committed change", "component", "git", "hash", hash, "action", e.Action)
	}
	return nil
}

func (a *app) exportDir() string {
	return config.Resolve(a.root, a.cfg.Export.Dir)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
