package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/pfrederiksen/npb-scrape/internal/alias"
	"github.com/pfrederiksen/npb-scrape/internal/config"
	"github.com/pfrederiksen/npb-scrape/internal/logger"
	"github.com/pfrederiksen/npb-scrape/internal/pending"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess    = 0
	ExitError      = 1
	ExitUnresolved = 2
)

// ErrUnresolved is returned by scrape when at least one name was recorded
// as pending. The output has already been written.
var ErrUnresolved = errors.New("unresolved names recorded")

var (
	flagRoot    string
	flagFormat  string
	flagVerbose bool
)

// app is the wiring shared by all subcommands
type app struct {
	cfg     *config.Config
	store   *alias.Store
	aliases *alias.Registry
	pending *pending.Registry
}

// loadApp reads configuration and opens the alias layers and pending registry
func loadApp() (*app, error) {
	cfg, err := config.Load(flagRoot)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	level := logger.ParseLevel(cfg.LogLevel)
	if flagVerbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.New(level, os.Stderr))

	pend, err := pending.New(cfg.PendingDir)
	if err != nil {
		return nil, err
	}

	store := alias.NewStore(cfg.AliasBaseFile, cfg.AliasLocalFile)
	return &app{
		cfg:     cfg,
		store:   store,
		aliases: alias.NewRegistry(store, cfg.RegistrationLog, cfg.AuditLog),
		pending: pend,
	}, nil
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "npb-scrape",
		Short: "Scrape NPB game pages and curate team and stadium aliases",
		Long: `A CLI tool to scrape NPB game pages and resolve the team and stadium
names they print to dictionary IDs. Names that cannot be resolved are recorded
for review and can be registered as aliases, then promoted to the base layer.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if !flagVerbose {
				return nil
			}
			encoder := json.NewEncoder(cmd.ErrOrStderr())
			encoder.SetIndent("", "  ")
			return encoder.Encode(logger.GetMetricsSnapshot())
		},
	}

	cmd.PersistentFlags().StringVar(&flagRoot, "root", "", "Project root holding .env, data/ and logs/ (or env: APP_ROOT)")
	cmd.PersistentFlags().StringVar(&flagFormat, "format", "", "Output format: text or json (default depends on the command)")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging and print metrics on exit")

	cmd.AddCommand(newScrapeCmd(), newAliasCmd(), newPendingCmd())

	return cmd
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		if errors.Is(err, ErrUnresolved) {
			os.Exit(ExitUnresolved)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
