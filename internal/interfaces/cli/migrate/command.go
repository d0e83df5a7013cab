package migrate

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"scholara/internal/infrastructure/config"
	"scholara/internal/infrastructure/database"
	"scholara/internal/infrastructure/migration"
	"scholara/internal/shared/logger"
)

var (
	env   string
	steps int
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Manage database migrations: apply pending migrations, roll back, and inspect the current version.`,
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")

	cmd.AddCommand(
		newUpCommand(),
		newDownCommand(),
		newVersionCommand(),
		newForceCommand(),
	)

	return cmd
}

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			strategy, cleanup, err := initStrategy()
			if err != nil {
				return err
			}
			defer cleanup()

			if err := strategy.Migrate(database.Get(), migration.AllModels()...); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			logger.Info("migrations applied")
			return nil
		},
	}
}

func newDownCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Rollback migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			strategy, cleanup, err := initStrategy()
			if err != nil {
				return err
			}
			defer cleanup()

			golangMigrate, ok := strategy.(*migration.GolangMigrateStrategy)
			if !ok {
				return fmt.Errorf("rollback requires the script-based migration strategy")
			}

			if err := golangMigrate.MigrateDown(database.Get(), steps); err != nil {
				return fmt.Errorf("rollback failed: %w", err)
			}

			logger.Info("migrations rolled back", "steps", steps)
			return nil
		},
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to rollback")

	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show current migration version",
		RunE: func(cmd *cobra.Command, args []string) error {
			strategy, cleanup, err := initStrategy()
			if err != nil {
				return err
			}
			defer cleanup()

			golangMigrate, ok := strategy.(*migration.GolangMigrateStrategy)
			if !ok {
				return fmt.Errorf("version inspection requires the script-based migration strategy")
			}

			version, dirty, err := golangMigrate.GetVersion(database.Get())
			if err != nil {
				return fmt.Errorf("failed to read migration version: %w", err)
			}

			fmt.Printf("version: %d dirty: %v\n", version, dirty)
			return nil
		},
	}
}

func newForceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "force [version]",
		Short: "Force the migration version without running migrations",
		Long:  `Set the recorded migration version. Use after manually repairing a dirty database state.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q: %w", args[0], err)
			}

			strategy, cleanup, err := initStrategy()
			if err != nil {
				return err
			}
			defer cleanup()

			golangMigrate, ok := strategy.(*migration.GolangMigrateStrategy)
			if !ok {
				return fmt.Errorf("forcing a version requires the script-based migration strategy")
			}

			if err := golangMigrate.Force(database.Get(), version); err != nil {
				return fmt.Errorf("failed to force version: %w", err)
			}

			logger.Info("migration version forced", "version", version)
			return nil
		},
	}
}

// initStrategy loads configuration, opens the database, and returns the
// environment's migration strategy together with a cleanup func.
func initStrategy() (migration.Strategy, func(), error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger, "release"); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := database.Init(&cfg.Database); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	strategy := migration.NewManager(env).GetStrategy()

	return strategy, func() { database.Close() }, nil
}
