package cli

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/camellia/internal/config"
	"github.com/roach88/camellia/internal/journal"
	"github.com/roach88/camellia/internal/model"
	"github.com/roach88/camellia/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string
	DataDir    string // overrides config when set

	// Clock and IDs override the store's wall clock and order id
	// generator (for testing). Nil means the store defaults.
	Clock func() time.Time
	IDs   model.IDGenerator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the camellia CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "camellia",
		Short: "Camellia - café point-of-service ordering",
		Long: `Manage the café catalog, accounts and orders kept as JSON files
in a data directory. Missing or unreadable data is replaced by the default
seed set on start-up.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "YAML config file (default ./"+config.DefaultFile+" if present)")
	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "data directory (overrides config)")

	cmd.AddCommand(NewProductsCommand(opts))
	cmd.AddCommand(NewUsersCommand(opts))
	cmd.AddCommand(NewLoginCommand(opts))
	cmd.AddCommand(NewOrdersCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewCatalogCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// session is an open store plus the settings it was opened with.
type session struct {
	cfg     config.Config
	log     *slog.Logger
	store   *store.Store
	journal *journal.Journal // nil when disabled
}

// openSession resolves configuration, configures logging, and opens the
// journal and the store.
func openSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load(config.Sources{File: opts.ConfigFile})
	if err != nil {
		return nil, WrapExitError(ExitCommandError, ErrCodeConfig, "failed to load configuration", err)
	}
	if opts.DataDir != "" {
		cfg.DataDir = opts.DataDir
	}

	level := cfg.Level()
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	s := &session{cfg: cfg, log: logger}
	storeOpts := []store.Option{store.WithLogger(logger)}
	if opts.Clock != nil {
		storeOpts = append(storeOpts, store.WithClock(opts.Clock))
	}
	if opts.IDs != nil {
		storeOpts = append(storeOpts, store.WithIDGenerator(opts.IDs))
	}

	if path, ok := cfg.Journal(); ok {
		j, err := journal.Open(path)
		if err != nil {
			// The journal is an audit aid; the data files stay usable without it.
			logger.Warn("journal unavailable", "path", path, "error", err)
		} else {
			s.journal = j
			storeOpts = append(storeOpts, store.WithJournal(j))
		}
	}

	logger.Debug("opening store", "dir", cfg.DataDir)
	st, err := store.Open(cfg.DataDir, storeOpts...)
	if err != nil {
		if s.journal != nil {
			_ = s.journal.Close()
		}
		return nil, WrapExitError(ExitCommandError, ErrCodeStorage, "failed to open data directory", err)
	}
	s.store = st
	return s, nil
}

// withSession opens a session, runs fn and reports any error through the
// formatter. The store is flushed and closed afterwards.
func withSession(opts *RootOptions, cmd *cobra.Command, fn func(f *OutputFormatter, s *session) error) error {
	f := newFormatter(opts, cmd)
	s, err := openSession(opts, cmd)
	if err != nil {
		return report(f, err)
	}
	defer s.Close()

	if err := fn(f, s); err != nil {
		if IsReported(err) {
			return err
		}
		return report(f, err)
	}
	return nil
}

// Close flushes the store and closes the journal.
func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.log.Error("error closing store", "error", err)
	}
}
