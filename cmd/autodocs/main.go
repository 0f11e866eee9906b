package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dejo1307/autodocs/internal/config"
	"github.com/dejo1307/autodocs/internal/engine"
	"github.com/dejo1307/autodocs/internal/fixtures"
	"github.com/dejo1307/autodocs/internal/library"
	"github.com/dejo1307/autodocs/internal/logger"
	"github.com/dejo1307/autodocs/internal/metrics"
	"github.com/dejo1307/autodocs/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	if err := execute(ctx, a, newRootCommand(a)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// execute runs root and closes the store whether or not the command failed.
// cobra skips post-run hooks after a RunE error, so closing happens here.
func execute(ctx context.Context, a *app, root *cobra.Command) error {
	err := root.ExecuteContext(ctx)
	if cerr := a.close(); err == nil {
		err = cerr
	}
	return err
}

// app holds the components shared by every subcommand.
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	metrics *metrics.Metrics
	store   store.Store
	eng     *engine.Engine
	lib     *library.Library
}

// rootFlags are the persistent flags that override configuration.
type rootFlags struct {
	configPath string
	logLevel   string
	backend    string
	storeDir   string
}

func newRootCommand(a *app) *cobra.Command {
	var flags rootFlags

	root := &cobra.Command{
		Use:           "autodocs",
		Short:         "Generate, version and diff project documentation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			return a.init(flags)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default "+config.DefaultFile+" when present)")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&flags.backend, "store", "", "store backend: memory, json or sqlite")
	pf.StringVar(&flags.storeDir, "store-dir", "", "directory for the json and sqlite stores")

	root.AddCommand(newGenerateCommand(a))
	root.AddCommand(newPreviewCommand(a))
	root.AddCommand(newListCommand(a))
	root.AddCommand(newShowCommand(a))
	root.AddCommand(newDiffCommand(a))
	root.AddCommand(newDeleteCommand(a))
	root.AddCommand(newExportCommand(a))
	root.AddCommand(newImportCommand(a))
	root.AddCommand(newSourcesCommand(a))
	root.AddCommand(newStatsCommand(a))
	root.AddCommand(newServeCommand(a))
	return root
}

// init resolves configuration and builds the engine and library.
func (a *app) init(flags rootFlags) error {
	cfg, err := config.Resolve(flags.configPath)
	if err != nil {
		return err
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if flags.backend != "" {
		cfg.Store.Backend = flags.backend
	}
	if flags.storeDir != "" {
		cfg.Store.Dir = flags.storeDir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	fx, err := fixtures.Load(cfg.FixturesDir)
	if err != nil {
		return fmt.Errorf("loading fixtures: %w", err)
	}

	m := metrics.New()
	st, err := store.Open(store.Config{Backend: cfg.Store.Backend, Dir: cfg.Store.Dir}, logger.Component(log, "store"), m)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = log
	a.metrics = m
	a.store = st
	a.eng = engine.New(fx,
		engine.WithStore(st),
		engine.WithLogger(log),
		engine.WithMetrics(m),
	)
	a.lib = library.New(st, m)
	return nil
}

func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	if err != nil {
		return fmt.Errorf("closing store: %w", err)
	}
	return nil
}
