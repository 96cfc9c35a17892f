package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/udice/internal/catalog"
	"github.com/cory-johannsen/udice/internal/config"
	"github.com/cory-johannsen/udice/internal/dice"
	"github.com/cory-johannsen/udice/internal/observability"
	"github.com/cory-johannsen/udice/internal/scripting"
	"github.com/cory-johannsen/udice/internal/storage"
	"github.com/cory-johannsen/udice/internal/storage/postgres"
)

// app is the state shared by every command, built once flags are parsed.
type app struct {
	configPath string

	cfg     config.Config
	logger  *zap.Logger
	roller  *dice.LoggedRoller
	scripts *scripting.Manager
	reg     *catalog.Registry

	// openRepo connects to the die set store. Tests replace it.
	openRepo func(ctx context.Context) (storage.Repository, func(), error)
}

func newApp() *app {
	a := &app{}
	a.openRepo = a.openPostgres
	return a
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "udice",
		Short:         "Roll dice expressions and die sets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "config file path")
	flags.Int64("seed", 0, "seed for the random stream (0 draws one from the OS)")
	flags.String("catalog", "", "directory of YAML die sets")
	flags.String("log-level", "", "minimum log level: debug, info, warn, error")

	root.AddCommand(
		newRollCommand(a),
		newStatsCommand(a),
		newCatalogCommand(a),
		newStoreCommand(a),
		newSetsCommand(a),
	)
	return root
}

// setup loads configuration, layering flags over the file and environment,
// and builds the logger, roller and script manager.
func (a *app) setup(cmd *cobra.Command) error {
	v := config.NewViper()
	if a.configPath != "" {
		v.SetConfigFile(a.configPath)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file: %w", err)
		}
	}
	flags := cmd.Flags()
	for key, flag := range map[string]string{
		"rolling.seed":  "seed",
		"catalog.dir":   "catalog",
		"logging.level": "log-level",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return fmt.Errorf("binding --%s: %w", flag, err)
		}
	}

	cfg, err := config.LoadFromViper(v)
	if err != nil {
		return err
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return err
	}

	rng := dice.NewRng()
	if cfg.Rolling.Seed != 0 {
		rng = dice.Seeded(uint64(cfg.Rolling.Seed))
	}

	a.cfg = cfg
	a.logger = logger
	a.roller = dice.NewLoggedRoller(rng, logger)
	a.scripts = scripting.NewManager(cfg.Scripting.InstructionLimit, logger)
	if cfg.Scripting.Dir != "" {
		if _, err := a.scripts.LoadDir(cfg.Scripting.Dir); err != nil {
			return err
		}
	}
	return nil
}

// teardown releases the script interpreters and flushes the logger. It is
// safe to call when setup never ran.
func (a *app) teardown() {
	if a.scripts != nil {
		a.scripts.Close()
		a.scripts = nil
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func (a *app) catalogOptions() catalog.Options {
	return catalog.Options{Scripts: a.scripts, ExplosionLimit: a.cfg.Rolling.ExplosionLimit}
}

// catalog loads the configured catalog directory on first use.
func (a *app) catalog() (*catalog.Registry, error) {
	if a.reg != nil {
		return a.reg, nil
	}
	reg, err := catalog.LoadDirectory(a.cfg.Catalog.Dir, a.catalogOptions(), a.logger)
	if err != nil {
		return nil, err
	}
	a.reg = reg
	return reg, nil
}

// set returns the catalog set called name.
func (a *app) set(name string) (*catalog.Set, error) {
	reg, err := a.catalog()
	if err != nil {
		return nil, err
	}
	s, ok := reg.Get(name)
	if !ok {
		return nil, fmt.Errorf("no die set %q in %s", name, a.cfg.Catalog.Dir)
	}
	return s, nil
}

func (a *app) openPostgres(ctx context.Context) (storage.Repository, func(), error) {
	pool, err := postgres.NewPool(ctx, a.cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	repo := postgres.NewDiceRepository(pool.DB(), a.catalogOptions(), a.logger)
	return repo, pool.Close, nil
}
